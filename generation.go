package admsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Generation Client — structured chat invocation + response parsing
// ──────────────────────────────────────────────

// ChatRequest is a single chat completion call to the generative backend.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	// JSONMode asks the backend for a JSON-structured response. The
	// backend contract, not this package, guarantees the content is JSON.
	JSONMode bool
}

// TokenUsage reports the token accounting of one generation call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the backend's answer to a ChatRequest.
type ChatResponse struct {
	Content string
	Usage   TokenUsage
}

// ChatFunc invokes the generative backend. Wire it to an OpenAI-compatible
// endpoint, Gemini, or a test double.
type ChatFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)

// RawVariant is one model-produced variation before strategy parsing and
// length validation.
type RawVariant struct {
	Strategy              string   `json:"strategy"`
	Subject               string   `json:"subject"`
	Body                  string   `json:"body"`
	RecommendedProductIDs []string `json:"recommended_product_ids,omitempty"`
	BrandAlignmentScore   float64  `json:"brand_alignment_score"`
	EmotionScore          float64  `json:"emotion_score"`
}

// RawGeneration is the parsed backend output of one request.
type RawGeneration struct {
	Variants []RawVariant
	Usage    TokenUsage
}

// GenerationClientConfig configures the generation client. Model and
// temperature come from configuration so the same pipeline can be pointed
// at different backends.
type GenerationClientConfig struct {
	Model       string        // default "gpt-4-turbo-preview"
	Temperature float32       // default 0.7
	Timeout     time.Duration // default 60s; 0 keeps the caller's deadline
}

// GenerationClient invokes the generative backend with an assembled prompt
// and parses the structured variations response.
type GenerationClient struct {
	chat        ChatFunc
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGenerationClient creates a client around the given ChatFunc.
func NewGenerationClient(chat ChatFunc, config ...GenerationClientConfig) *GenerationClient {
	cfg := GenerationClientConfig{Model: "gpt-4-turbo-preview", Temperature: 0.7, Timeout: 60 * time.Second}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo-preview"
	}
	return &GenerationClient{
		chat:        chat,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

// Model returns the configured backend model name.
func (c *GenerationClient) Model() string { return c.model }

// Temperature returns the configured sampling temperature.
func (c *GenerationClient) Temperature() float32 { return c.temperature }

// Generate invokes the backend and parses the variations array. Failures
// are typed: transport problems surface as GenerationBackendError, a
// deadline as GenerationTimeoutError, unparseable content as
// GenerationParseError. None are retried here; retry policy belongs to
// the caller.
func (c *GenerationClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*RawGeneration, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.chat(ctx, ChatRequest{
		Model:       c.model,
		System:      systemPrompt,
		User:        userPrompt,
		Temperature: c.temperature,
		JSONMode:    true,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &GenerationTimeoutError{Timeout: c.timeout}
		}
		return nil, &GenerationBackendError{Err: err}
	}

	variants, err := parseVariations(resp.Content)
	if err != nil {
		return nil, &GenerationParseError{Raw: snippet(resp.Content, 300), Err: err}
	}
	return &RawGeneration{Variants: variants, Usage: resp.Usage}, nil
}

// parseVariations extracts the variations array from backend content.
// Code fences and surrounding prose are tolerated; a missing or malformed
// variations payload is an error.
func parseVariations(content string) ([]RawVariant, error) {
	text := strings.TrimSpace(content)

	if strings.HasPrefix(text, "```") {
		var cleaned []string
		for _, l := range strings.Split(text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), "```") {
				continue
			}
			cleaned = append(cleaned, l)
		}
		text = strings.TrimSpace(strings.Join(cleaned, "\n"))
	}

	var payload struct {
		Variations []RawVariant `json:"variations"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		// The model sometimes wraps the object in prose; take the outermost braces.
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in response: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
			return nil, fmt.Errorf("decode variations: %w", err)
		}
	}
	return payload.Variations, nil
}

// snippet truncates s for error reporting without flooding logs.
func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
