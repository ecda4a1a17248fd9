package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	logx "github.com/pcbuilder-api/server/pkg/logger"
)

// ErrNotConfigured is reported before any network call when no API key is set.
var ErrNotConfigured = errors.New("llm: API key not configured")

// ErrEmptyResponse is reported when the model returned no usable candidate.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// BlockedError carries the provider's feedback when a prompt was refused on
// content-policy grounds.
type BlockedError struct {
	Feedback string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("llm: request blocked by provider: %s", e.Feedback)
}

// Config holds the Gemini connection parameters, sourced from environment
// variables. An empty APIKey is allowed: the client constructs but reports
// itself unconfigured, and callers surface that as a service-unavailable
// condition instead of failing at boot.
type Config struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash-latest"`
	MaxTokens   int     `envconfig:"GEMINI_MAX_TOKENS" default:"8192"`
	Temperature float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.4"`
}

// Generator is the single outbound dependency of the recommendation core: one
// JSON-mode text completion per call.
type Generator interface {
	Configured() bool
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements Generator on top of the official genai client.
type GeminiClient struct {
	cli *genai.Client
	cfg Config
}

// NewGeminiClient builds a Gemini-backed generator. When cfg.APIKey is empty
// the returned client is usable but unconfigured.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		logx.Warn().Msg("GEMINI_API_KEY is not set, AI recommendations will not work")
		return &GeminiClient{cfg: cfg}, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	cli, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, cfg: cfg}, nil
}

// Configured reports whether the client holds credentials.
func (g *GeminiClient) Configured() bool {
	return g.cli != nil
}

// GenerateJSON sends the prompt in JSON response mode and returns the raw
// text of the first candidate. Content-policy refusals surface as
// *BlockedError with the provider feedback attached.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if g.cli == nil {
		return "", ErrNotConfigured
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr(g.cfg.Temperature),
			MaxOutputTokens:  int32(g.cfg.MaxTokens),
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		feedback := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			feedback += ": " + fb.BlockReasonMessage
		}
		logx.Warn().Str("component", "gemini").Str("feedback", feedback).Msg("prompt blocked by provider")
		return "", &BlockedError{Feedback: feedback}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
