// Package recommender runs the recommendation and explanation pipelines:
// compose a prompt, call the model once, and post-process the untrusted reply
// into a numerically consistent result. Every failure mode is recovered here
// and converted into a structured result carrying an error description; no
// request-scoped error escapes as a Go error.
package recommender

import (
	"context"
	"errors"
	"fmt"

	errx "github.com/pcbuilder-api/server/internal/core/error"
	"github.com/pcbuilder-api/server/internal/llm"
	"github.com/pcbuilder-api/server/internal/recommender/model"
	"github.com/pcbuilder-api/server/internal/recommender/parsers"
	"github.com/pcbuilder-api/server/internal/recommender/prompts"
	logx "github.com/pcbuilder-api/server/pkg/logger"
)

const (
	defaultAnalysisNotes = "AI analysis complete, referencing current prices in Thailand."
	altFieldNote         = " (the model's 'builds' field was used directly)"
)

// Service is the recommendation core. It is stateless and safe for
// concurrent use; each call performs at most one outbound model call.
type Service struct {
	gen       llm.Generator
	promptCfg prompts.Config
}

func NewService(gen llm.Generator, promptCfg prompts.Config) *Service {
	return &Service{gen: gen, promptCfg: promptCfg}
}

// Configured reports whether the underlying model client holds credentials.
func (s *Service) Configured() bool {
	return s.gen.Configured()
}

// Recommend runs the full pipeline for one budget query. The returned result
// is never nil; failures are described in its Error field.
func (s *Service) Recommend(ctx context.Context, q model.BudgetQuery) *model.RecommendationResult {
	res := &model.RecommendationResult{
		Budget:          q.Budget,
		Currency:        q.Currency,
		Recommendations: []model.Build{},
	}

	if !s.gen.Configured() {
		res.Error = errx.AIUnavailableMessage
		return res
	}

	promptText, err := prompts.BuildRecommendationPrompt(ctx, s.promptCfg, q)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render recommendation prompt")
		res.Error = errx.SystemErrorMessage
		return res
	}

	raw, err := s.gen.GenerateJSON(ctx, promptText)
	if err != nil {
		s.applyGenerateError(err, raw, func(msg string, feedback string, rawOut any) {
			res.Error = msg
			res.PromptFeedback = feedback
			res.RawAIOutput = rawOut
		})
		return res
	}

	set, err := parsers.ExtractCandidates(raw)
	if err != nil {
		res.Error = fmt.Sprintf("failed to decode JSON from the model: %v", err)
		res.RawAIOutput = raw
		return res
	}
	if set.StructureErr != "" {
		res.Error = set.StructureErr
		res.RawAIOutput = set.Parsed
		return res
	}

	notes := defaultAnalysisNotes
	if set.AltFieldUsed {
		notes += altFieldNote
	}
	if set.AnalysisNotes != "" {
		notes = set.AnalysisNotes
	}
	res.AnalysisNotes = notes

	for _, cand := range set.Candidates {
		build, _ := parsers.Reconcile(cand)
		res.Recommendations = append(res.Recommendations, build)
	}
	return res
}

// Explain asks the model to justify one previously recommended build against
// the user's original query. The returned result is never nil.
func (s *Service) Explain(ctx context.Context, selected map[string]any, q model.BudgetQuery) *model.ExplanationResult {
	res := &model.ExplanationResult{}

	if !s.gen.Configured() {
		res.Error = errx.AIUnavailableMessage
		return res
	}

	// Reuse the reconciliation summation so the prompt always shows a real
	// computed total, honouring a total the caller already computed.
	build, _ := parsers.Reconcile(selected)
	if v, ok := selected["calculated_total_price_thb"].(float64); ok {
		build.CalculatedTotal = v
	}

	promptText, err := prompts.BuildExplanationPrompt(ctx, build, q)
	if err != nil {
		logx.Error().Err(err).Msg("failed to render explanation prompt")
		res.Error = errx.SystemErrorMessage
		return res
	}

	raw, err := s.gen.GenerateJSON(ctx, promptText)
	if err != nil {
		s.applyGenerateError(err, raw, func(msg string, feedback string, rawOut any) {
			res.Error = msg
			res.PromptFeedback = feedback
			res.RawAIOutput = rawOut
		})
		return res
	}

	explanation, parsed, err := parsers.ExtractExplanation(raw)
	switch {
	case errors.Is(err, parsers.ErrExplanationMissing):
		logx.Warn().Str("component", "explainer").Msg("model reply lacks an explanation field")
		res.Error = "AI did not provide an explanation in the expected format."
		res.RawAIOutput = parsed
	case err != nil:
		res.Error = fmt.Sprintf("failed to decode explanation JSON from the model: %v", err)
		res.RawAIOutput = raw
	default:
		res.Explanation = explanation
	}
	return res
}

// applyGenerateError maps a model-call failure onto the error-result shape.
// Content blocks carry the provider feedback; everything else (transport
// failures, timeouts) is surfaced as-is.
func (s *Service) applyGenerateError(err error, raw string, set func(msg, feedback string, rawOut any)) {
	var rawOut any
	if raw != "" {
		rawOut = raw
	}

	var blocked *llm.BlockedError
	if errors.As(err, &blocked) {
		set("AI request was blocked or failed. Feedback: "+blocked.Feedback, blocked.Feedback, rawOut)
		return
	}
	logx.Error().Err(err).Msg("model call failed")
	set(fmt.Sprintf("AI request failed: %v", err), "", rawOut)
}
