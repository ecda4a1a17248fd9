// Package parsers turns untrusted model output into canonical domain values.
// Parsing is tolerant by design: malformed pieces degrade to warnings carried
// alongside the result instead of aborting the request.
package parsers

import (
	"encoding/json"
	"fmt"

	logx "github.com/pcbuilder-api/server/pkg/logger"
)

// CandidateSet is the canonical form of one recommendation reply: the
// build-candidate objects in model order, plus the non-fatal diagnostics
// collected while extracting them.
type CandidateSet struct {
	Candidates []map[string]any
	// AnalysisNotes is the model-supplied analysis text, when present.
	AnalysisNotes string
	// AltFieldUsed marks that the list came from the alternate "builds" field.
	AltFieldUsed bool
	// Skipped records candidate entries that were not JSON objects.
	Skipped []string
	// StructureErr is set when no shape rule matched the top-level value.
	// This is a recoverable condition, not a parse failure.
	StructureErr string
	// Parsed keeps the raw decoded value for operator diagnostics.
	Parsed any
}

// shapeRule recognises one accepted top-level shape of a model reply and
// extracts the candidate list from it.
type shapeRule struct {
	name    string
	extract func(v any) (items []any, notes string, ok bool)
}

// shapeRules is the ordered dispatch table for top-level shapes. Earlier
// rules win; the order is part of the contract.
var shapeRules = []shapeRule{
	{
		name: "array",
		extract: func(v any) ([]any, string, bool) {
			items, ok := v.([]any)
			return items, "", ok
		},
	},
	{
		name: "single_build",
		extract: func(v any) ([]any, string, bool) {
			obj, ok := v.(map[string]any)
			if !ok {
				return nil, "", false
			}
			if _, has := obj["build_name"]; !has {
				return nil, "", false
			}
			return []any{v}, "", true
		},
	},
	{
		name: "recommendations_field",
		extract: func(v any) ([]any, string, bool) {
			return listField(v, "recommendations")
		},
	},
	{
		name: "builds_field",
		extract: func(v any) ([]any, string, bool) {
			return listField(v, "builds")
		},
	},
}

func listField(v any, field string) ([]any, string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, "", false
	}
	items, ok := obj[field].([]any)
	if !ok {
		return nil, "", false
	}
	notes, _ := obj["analysis_notes"].(string)
	return items, notes, true
}

// ExtractCandidates parses raw model output and locates the candidate list.
// A syntactically invalid payload returns an error; every other irregularity
// is recorded on the CandidateSet and processing continues.
func ExtractCandidates(raw string) (*CandidateSet, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	set := &CandidateSet{Parsed: parsed}

	var items []any
	matched := false
	for _, rule := range shapeRules {
		list, notes, ok := rule.extract(parsed)
		if !ok {
			continue
		}
		items = list
		set.AnalysisNotes = notes
		set.AltFieldUsed = rule.name == "builds_field"
		matched = true
		break
	}

	if !matched {
		set.StructureErr = fmt.Sprintf("model returned JSON in an unhandled top-level structure: %T", parsed)
		logx.Warn().Str("component", "candidate_parser").Msg(set.StructureErr)
		return set, nil
	}

	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			msg := fmt.Sprintf("candidate %d is %T, not an object", i, item)
			set.Skipped = append(set.Skipped, msg)
			logx.Warn().Str("component", "candidate_parser").Msg("skipping non-object candidate: " + msg)
			continue
		}
		set.Candidates = append(set.Candidates, obj)
	}
	return set, nil
}
