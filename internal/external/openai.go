package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"floe/internal/config"
	"floe/internal/types"
)

// OpenAIConfig holds the configuration for creating an OpenAIClient.
type OpenAIConfig struct {
	APIKey      config.SecretString
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Logger      *slog.Logger
}

// OpenAIClient implements the LLM collaborator contract by making direct HTTP
// calls to the chat completions API through BaseClient. Output length and
// temperature are fixed at construction; callers only supply prompts and the
// model to use, which keeps the commentary generator in charge of the fallback
// model chain.
type OpenAIClient struct {
	base        *BaseClient
	apiKey      config.SecretString
	baseURL     string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewOpenAIClient creates a new OpenAIClient. The httpClient timeout bounds
// each completion call.
func NewOpenAIClient(httpClient *http.Client, cfg OpenAIConfig) *OpenAIClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"openai",
		DefaultRetryPolicy(),
		"floe/1.0",
	)

	return &OpenAIClient{
		base:        base,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Complete sends a system prompt and user message to the given model and
// returns the generated text. Failures map to upstream_llm_unavailable; the
// commentary generator is responsible for degrading them to fallback text.
func (c *OpenAIClient) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal completion request",
			err,
		)
	}

	reqURL := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create completion request",
			err,
		)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeUpstreamLLM,
			"completion provider is unavailable",
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", types.NewAppError(
			types.ErrCodeUpstreamLLM,
			"completion provider returned an error",
			fmt.Errorf("model %s: status %d: %s", model, resp.StatusCode, string(respBody)),
		)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", types.NewAppError(
			types.ErrCodeUpstreamLLM,
			"failed to decode completion response",
			err,
		)
	}

	if len(completion.Choices) == 0 {
		return "", types.NewAppError(
			types.ErrCodeUpstreamLLM,
			"completion response contained no choices",
			nil,
		)
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// Chat completions API payload types.

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
