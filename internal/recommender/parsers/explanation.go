package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrExplanationMissing is reported when the reply parsed as JSON but did not
// contain a string-typed "explanation" field.
var ErrExplanationMissing = errors.New("explanation field missing or not a string")

// ExtractExplanation validates an explanation reply. It returns the
// explanation text, the parsed value (for diagnostics when validation
// failed), and an error that is either a decode failure or
// ErrExplanationMissing.
func ExtractExplanation(raw string) (string, any, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", nil, fmt.Errorf("decode explanation output: %w", err)
	}
	explanation, ok := parsed["explanation"].(string)
	if !ok {
		return "", parsed, ErrExplanationMissing
	}
	return explanation, parsed, nil
}
