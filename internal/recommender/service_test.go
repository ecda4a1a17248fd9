package recommender

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/pcbuilder-api/server/internal/core/error"
	"github.com/pcbuilder-api/server/internal/llm"
	"github.com/pcbuilder-api/server/internal/recommender/model"
	"github.com/pcbuilder-api/server/internal/recommender/parsers"
	"github.com/pcbuilder-api/server/internal/recommender/prompts"
)

// fakeGenerator scripts one model reply and records the prompt it was given.
type fakeGenerator struct {
	configured bool
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Configured() bool { return f.configured }

func (f *fakeGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func newTestService(gen *fakeGenerator) *Service {
	return NewService(gen, prompts.Config{MarketRegion: "Thailand", Retailers: "JIB, Advice, Banana IT"})
}

func testQuery() model.BudgetQuery {
	return model.BudgetQuery{Budget: 30000, Currency: "THB"}
}

func TestRecommend_Unconfigured(t *testing.T) {
	svc := newTestService(&fakeGenerator{configured: false})

	res := svc.Recommend(context.Background(), testQuery())
	require.NotNil(t, res)
	assert.Equal(t, errx.AIUnavailableMessage, res.Error)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, float64(30000), res.Budget)
	assert.Equal(t, "THB", res.Currency)
}

func TestRecommend_TransportError(t *testing.T) {
	gen := &fakeGenerator{configured: true, err: errors.New("connection reset")}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	assert.Equal(t, "AI request failed: connection reset", res.Error)
	assert.Empty(t, res.PromptFeedback)
	assert.Nil(t, res.RawAIOutput)
}

func TestRecommend_BlockedPrompt(t *testing.T) {
	gen := &fakeGenerator{configured: true, err: &llm.BlockedError{Feedback: "SAFETY"}}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	assert.Equal(t, "AI request was blocked or failed. Feedback: SAFETY", res.Error)
	assert.Equal(t, "SAFETY", res.PromptFeedback)
}

func TestRecommend_NonJSONReply(t *testing.T) {
	raw := "Sure! Here are some builds for you..."
	gen := &fakeGenerator{configured: true, reply: raw}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	assert.Contains(t, res.Error, "failed to decode JSON from the model")
	assert.Equal(t, raw, res.RawAIOutput)
	assert.Empty(t, res.Recommendations)
}

func TestRecommend_UnhandledStructure(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{"unexpected": true}`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	assert.Contains(t, res.Error, "unhandled top-level structure")
	assert.Equal(t, map[string]any{"unexpected": true}, res.RawAIOutput)
}

func TestRecommend_ArrayReply(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `[
		{"build_name": "Build A", "total_price_estimate_thb": 5000,
		 "cpu": {"name": "CPU A", "price_thb": 5000}},
		{"build_name": "Build B", "total_price_estimate_thb": 9000,
		 "cpu": {"name": "CPU B", "price_thb": 6000},
		 "gpu": {"name": "GPU B", "price_thb": 3000}}
	]`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	require.Empty(t, res.Error)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Build A", res.Recommendations[0].Name)
	assert.Equal(t, "Build B", res.Recommendations[1].Name)
	assert.Equal(t, float64(9000), res.Recommendations[1].TotalPrice)
	assert.Equal(t, "AI analysis complete, referencing current prices in Thailand.", res.AnalysisNotes)

	// The query reached the prompt composer.
	assert.Contains(t, gen.lastPrompt, "30,000 Thai Baht")
}

func TestRecommend_SingleObjectReply(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{"build_name": "Solo",
		"total_price_estimate_thb": 7000,
		"cpu": {"name": "CPU", "price_thb": 7000}}`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	require.Empty(t, res.Error)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "Solo", res.Recommendations[0].Name)
}

func TestRecommend_BuildsFieldAnnotatesNotes(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{"builds": [{"build_name": "Alt"}]}`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	require.Empty(t, res.Error)
	assert.Contains(t, res.AnalysisNotes, "'builds' field was used directly")
}

func TestRecommend_ModelNotesWin(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{
		"recommendations": [{"build_name": "A"}],
		"analysis_notes": "prices spiked this week"
	}`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	assert.Equal(t, "prices spiked this week", res.AnalysisNotes)
}

func TestRecommend_EmptyArrayIsNotAnError(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `[]`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Recommendations)
}

func TestRecommend_ReconcilesEachCandidate(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `[{
		"build_name": "Mismatch",
		"total_price_estimate_thb": 20000,
		"cpu": {"name": "CPU", "price_thb": 5000},
		"gpu": {"name": "GPU", "price_thb": 14000}
	}]`}
	svc := newTestService(gen)

	res := svc.Recommend(context.Background(), testQuery())
	require.Len(t, res.Recommendations, 1)
	b := res.Recommendations[0]
	assert.Equal(t, float64(19000), b.TotalPrice)
	assert.Equal(t, float64(19000), b.CalculatedTotal)
	assert.Equal(t, parsers.NoteTotalRecomputed, b.PriceNote)
}

func selectedBuild() map[string]any {
	return map[string]any{
		"build_name": "Chosen",
		"cpu":        map[string]any{"name": "CPU", "price_thb": float64(5000)},
		"gpu":        map[string]any{"name": "GPU", "price_thb": float64(14000)},
	}
}

func TestExplain_Success(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{"explanation": "Balanced for the budget."}`}
	svc := newTestService(gen)

	res := svc.Explain(context.Background(), selectedBuild(), testQuery())
	require.Empty(t, res.Error)
	assert.Equal(t, "Balanced for the budget.", res.Explanation)

	// The prompt shows the total recomputed from the component prices.
	assert.Contains(t, gen.lastPrompt, "19,000 THB")
	assert.Contains(t, gen.lastPrompt, "Chosen")
}

func TestExplain_HonoursProvidedCalculatedTotal(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{"explanation": "ok"}`}
	svc := newTestService(gen)

	sel := selectedBuild()
	sel["calculated_total_price_thb"] = float64(12345)
	svc.Explain(context.Background(), sel, testQuery())

	assert.Contains(t, gen.lastPrompt, "12,345 THB")
}

func TestExplain_Unconfigured(t *testing.T) {
	svc := newTestService(&fakeGenerator{configured: false})

	res := svc.Explain(context.Background(), selectedBuild(), testQuery())
	assert.Equal(t, errx.AIUnavailableMessage, res.Error)
}

func TestExplain_MissingExplanationField(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `{"summary": "wrong shape"}`}
	svc := newTestService(gen)

	res := svc.Explain(context.Background(), selectedBuild(), testQuery())
	assert.Equal(t, "AI did not provide an explanation in the expected format.", res.Error)
	assert.Equal(t, map[string]any{"summary": "wrong shape"}, res.RawAIOutput)
}

func TestExplain_NonJSONReply(t *testing.T) {
	raw := "It is a good build because..."
	gen := &fakeGenerator{configured: true, reply: raw}
	svc := newTestService(gen)

	res := svc.Explain(context.Background(), selectedBuild(), testQuery())
	assert.Contains(t, res.Error, "failed to decode explanation JSON")
	assert.Equal(t, raw, res.RawAIOutput)
}
