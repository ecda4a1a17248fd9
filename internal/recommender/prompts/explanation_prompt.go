package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/pcbuilder-api/server/internal/recommender/model"
)

//go:embed template/explanation_prompt.txt
var explanationTemplate string

// BuildExplanationPrompt renders the justification request for one selected
// build. The build's CalculatedTotal must already be backfilled by the caller
// so the prompt always shows a real computed total.
func BuildExplanationPrompt(ctx context.Context, build model.Build, q model.BudgetQuery) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(explanationTemplate),
	)
	vars := map[string]any{
		"QueryBlock": queryBlock(q),
		"BuildBlock": buildBlock(build),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("explanation prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("explanation prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func queryBlock(q model.BudgetQuery) string {
	currency := q.Currency
	if currency == "" {
		currency = "THB"
	}
	lines := []string{
		fmt.Sprintf("- Budget: %s %s", formatBaht(q.Budget), currency),
	}

	if hints := q.DesiredParts.Hints(); len(hints) > 0 {
		parts := make([]string, 0, len(hints))
		for _, h := range hints {
			parts = append(parts, fmt.Sprintf("%s: %s", h.Label, h.Value))
		}
		lines = append(lines, "- Specifically requested components: "+strings.Join(parts, ", "))
	} else {
		lines = append(lines, "- Specifically requested components: none specified")
	}

	if len(q.PreferredGames) > 0 {
		lines = append(lines, "- Games to play: "+strings.Join(q.PreferredGames, ", "))
	} else {
		lines = append(lines, "- Games to play: none specified")
	}

	return strings.Join(lines, "\n")
}

func buildBlock(b model.Build) string {
	var lines []string
	if b.Name != "" {
		lines = append(lines, "- Build name: "+b.Name)
	}
	lines = append(lines, fmt.Sprintf("- Approximate total (from components): %s THB", formatBaht(b.CalculatedTotal)))

	for _, key := range model.ComponentKeys {
		c := b.Component(key)
		if c == nil {
			continue
		}
		name := c.Name
		if name == "" {
			name = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (approx. %s THB)", strings.ToUpper(key), name, formatBaht(c.Price)))
	}

	if b.Notes != "" {
		lines = append(lines, "- Original notes for the selected build: "+b.Notes)
	}
	return strings.Join(lines, "\n")
}
