// Package prompts renders the instruction text sent to the model. Rendering
// is deterministic: the same query always produces the same prompt.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/pcbuilder-api/server/internal/recommender/model"
)

//go:embed template/recommendation_prompt.txt
var recommendationTemplate string

// Config holds the market framing baked into every prompt.
type Config struct {
	MarketRegion string `envconfig:"PROMPT_MARKET_REGION" default:"Thailand"`
	Retailers    string `envconfig:"PROMPT_RETAILERS" default:"JIB, Advice, Banana IT"`
}

// Example component prices for the worked example embedded in the prompt.
// The example total is their literal sum, so the formatting exemplar itself
// honours the sum invariant the model is being asked to keep.
var examplePrices = []struct {
	key   string
	name  string
	price int
}{
	{"cpu", "AMD Ryzen 5 5600 (example)", 5000},
	{"gpu", "NVIDIA GeForce RTX 3060 12GB (example)", 10000},
	{"ram", "16GB (2x8GB) DDR4 3200MHz (example)", 1800},
	{"storage", "1TB NVMe SSD M.2 PCIe Gen3 (example)", 2200},
	{"motherboard", "B550 Chipset Motherboard (AM4) (example)", 3000},
	{"psu", "650W 80+ Bronze (example)", 2000},
	{"case", "ATX Mid-Tower Case with good airflow (example)", 1500},
	{"cooler", "Stock cooler or budget air cooler if needed (example)", 700},
}

// BuildRecommendationPrompt renders the recommendation instruction text for
// the given query. Queries with no desired parts and no preferred games get
// the budget-only framing asking for at least 3 alternative builds; anything
// else gets the constrained framing asking for 1-2.
func BuildRecommendationPrompt(ctx context.Context, cfg Config, q model.BudgetQuery) (string, error) {
	budgetOnly := !q.DesiredParts.HasAny() && len(q.PreferredGames) == 0

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.UserMessage(recommendationTemplate),
	)
	vars := map[string]any{
		"MarketRegion":     cfg.MarketRegion,
		"Retailers":        cfg.Retailers,
		"Budget":           formatBaht(q.Budget),
		"BudgetOnly":       budgetOnly,
		"ConstraintsBlock": constraintsBlock(q),
		"ExampleJSON":      exampleBuildJSON(),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("recommendation prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("recommendation prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// constraintsBlock folds the desired parts and preferred games into the
// constrained framing. Only called when at least one of them has content.
func constraintsBlock(q model.BudgetQuery) string {
	var lines []string

	if hints := q.DesiredParts.Hints(); len(hints) > 0 {
		lines = append(lines, "The user has requested these specific components (if any are expensive or hard to find locally right now, suggest close, better-value alternatives and adjust the total accordingly):")
		for _, h := range hints {
			lines = append(lines, fmt.Sprintf("- %s: %s", h.Label, h.Value))
		}
		lines = append(lines, "Analyse and complete the remaining parts of the build within the budget, referencing current local market prices.")
	} else {
		lines = append(lines, "The user did not single out any specific components.")
	}

	if len(q.PreferredGames) > 0 {
		lines = append(lines,
			fmt.Sprintf("The user wants to play these games smoothly: %s.", strings.Join(q.PreferredGames, ", ")),
			"Analyse and recommend a build that runs these games as smoothly as possible within the budget, considering local price and availability.",
			"Prioritise GPU and CPU choices with the best local price-to-performance for the listed games.",
		)
	} else {
		lines = append(lines, "Analyse and recommend the build with the best overall performance for the budget, focused on local value.")
	}

	return strings.Join(lines, "\n")
}

func exampleBuildJSON() string {
	total := 0
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("    \"build_name\": \"Value Gaming Build (example)\",\n")
	for _, p := range examplePrices {
		total += p.price
	}
	b.WriteString(fmt.Sprintf("    \"total_price_estimate_thb\": %d,\n", total))
	for _, p := range examplePrices {
		b.WriteString(fmt.Sprintf("    %q: { \"name\": %q, \"price_thb\": %d },\n", p.key, p.name, p.price))
	}
	b.WriteString("    \"notes\": \"This is an example of the required JSON structure. The total must match the sum of every component price.\"\n")
	b.WriteString("}")
	return b.String()
}

// formatBaht renders an amount the way it appears in the prompt: rounded to
// whole baht with thousands separators.
func formatBaht(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
