package admsg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ──────────────────────────────────────────────
// OpenAI-compatible chat backend
// ──────────────────────────────────────────────

// OpenAIChatConfig configures the OpenAI-compatible chat backend. BaseURL
// may point at any /chat/completions-compatible server.
type OpenAIChatConfig struct {
	BaseURL    string // default "https://api.openai.com/v1"
	APIKey     string
	HTTPClient *http.Client
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIChatFunc returns a ChatFunc backed by an OpenAI-compatible
// chat completions endpoint.
func NewOpenAIChatFunc(config OpenAIChatConfig) ChatFunc {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		payload := openAIChatRequest{
			Model:       req.Model,
			Temperature: req.Temperature,
			Messages: []openAIMessage{
				{Role: "system", Content: req.System},
				{Role: "user", Content: req.User},
			},
		}
		if req.JSONMode {
			payload.ResponseFormat = &struct {
				Type string `json:"type"`
			}{Type: "json_object"}
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+config.APIKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("chat completions: %d %s", resp.StatusCode, string(body))
		}

		var parsed openAIChatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("chat completions: decode response: %w", err)
		}
		if parsed.Error != nil {
			return nil, fmt.Errorf("chat completions: %s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		if len(parsed.Choices) == 0 {
			return nil, fmt.Errorf("chat completions: empty choices")
		}
		return &ChatResponse{
			Content: parsed.Choices[0].Message.Content,
			Usage: TokenUsage{
				PromptTokens:     parsed.Usage.PromptTokens,
				CompletionTokens: parsed.Usage.CompletionTokens,
				TotalTokens:      parsed.Usage.TotalTokens,
			},
		}, nil
	}
}
