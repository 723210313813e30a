package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"floe/internal/types"
)

func TestOpenAIComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Take an umbrella.  "}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.Client(), OpenAIConfig{
		APIKey:      "sk-test",
		BaseURL:     server.URL,
		MaxTokens:   150,
		Temperature: 0.8,
	})

	text, err := client.Complete(context.Background(), "gpt-4o-mini", "be a penguin", "umbrella?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if text != "Take an umbrella." {
		t.Errorf("text = %q (whitespace should be trimmed)", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" || gotReq.MaxTokens != 150 {
		t.Errorf("request = %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestOpenAICompleteProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.Client(), OpenAIConfig{APIKey: "bad", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), "gpt-4o-mini", "sys", "user")
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamLLM {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.Client(), OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL})

	_, err := client.Complete(context.Background(), "gpt-4o-mini", "sys", "user")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamLLM {
		t.Errorf("unexpected error: %v", err)
	}
}
