package model

import "strings"

// DesiredParts holds the optional component hints a user may pin down when
// asking for a recommendation. Every field is free text and may be empty.
type DesiredParts struct {
	CPU                string `json:"cpu,omitempty"`
	GPU                string `json:"gpu,omitempty"`
	RAM                string `json:"ram,omitempty"`
	StorageType        string `json:"storage_type,omitempty"`
	StorageSize        string `json:"storage_size,omitempty"`
	MotherboardChipset string `json:"motherboard_chipset,omitempty"`
	PSUWattage         string `json:"psu_wattage,omitempty"`
}

// PartHint is one labelled, non-empty desired-part entry.
type PartHint struct {
	Label string
	Value string
}

// Hints returns the non-empty desired parts with their display labels, in a
// fixed order.
func (d DesiredParts) Hints() []PartHint {
	all := []PartHint{
		{"Requested CPU", d.CPU},
		{"Requested GPU", d.GPU},
		{"Requested RAM", d.RAM},
		{"Storage type", d.StorageType},
		{"Storage size", d.StorageSize},
		{"Motherboard chipset", d.MotherboardChipset},
		{"PSU wattage", d.PSUWattage},
	}
	hints := make([]PartHint, 0, len(all))
	for _, h := range all {
		if strings.TrimSpace(h.Value) != "" {
			hints = append(hints, h)
		}
	}
	return hints
}

// HasAny reports whether at least one desired part carries information.
func (d DesiredParts) HasAny() bool {
	return len(d.Hints()) > 0
}

// BudgetQuery is a validated recommendation request. Budget must be positive;
// callers reject non-positive budgets before the query reaches the pipeline.
type BudgetQuery struct {
	Budget         float64      `json:"budget"`
	Currency       string       `json:"currency"`
	DesiredParts   DesiredParts `json:"desired_parts"`
	PreferredGames []string     `json:"preferred_games,omitempty"`
}
