package admsg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ──────────────────────────────────────────────
// Gemini chat backend
// ──────────────────────────────────────────────

// NewGeminiChatFunc returns a ChatFunc backed by the Gemini API, plus a
// close function that releases the underlying client.
func NewGeminiChatFunc(ctx context.Context, apiKey string) (ChatFunc, func() error, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}

	chat := func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		model := client.GenerativeModel(req.Model)
		model.SetTemperature(req.Temperature)
		if req.System != "" {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(req.System)},
			}
		}
		if req.JSONMode {
			model.ResponseMIMEType = "application/json"
		}

		resp, err := model.GenerateContent(ctx, genai.Text(req.User))
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, fmt.Errorf("gemini: no content generated")
		}

		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}

		out := &ChatResponse{Content: sb.String()}
		if resp.UsageMetadata != nil {
			out.Usage = TokenUsage{
				PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			}
		}
		return out, nil
	}

	return chat, client.Close, nil
}
