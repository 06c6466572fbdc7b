package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Enabled(t *testing.T) {
	t.Parallel()

	if NewClient("", "gpt-3.5-turbo", 1000, 0.7, testLogger()).Enabled() {
		t.Error("Client without API key should be disabled")
	}
	if !NewClient("sk-test", "gpt-3.5-turbo", 1000, 0.7, testLogger()).Enabled() {
		t.Error("Client with API key should be enabled")
	}
}

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-3.5-turbo" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Your balance is $100.00"}}]}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", "gpt-3.5-turbo", 1000, 0.7, testLogger(), WithBaseURL(srv.URL))

	got, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "You are a financial assistant"},
		{Role: "user", Content: "What is my balance?"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "Your balance is $100.00" {
		t.Errorf("Complete() = %q", got)
	}
}

func TestClient_Complete_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Incorrect API key"}}`))
	}))
	defer srv.Close()

	client := NewClient("sk-bad", "gpt-3.5-turbo", 1000, 0.7, testLogger(), WithBaseURL(srv.URL))

	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("Complete() should fail on API error")
	}
}

func TestClient_Complete_NotConfigured(t *testing.T) {
	t.Parallel()

	client := NewClient("", "gpt-3.5-turbo", 1000, 0.7, testLogger())

	if _, err := client.Complete(context.Background(), nil); err != ErrNotConfigured {
		t.Errorf("Complete() error = %v, want ErrNotConfigured", err)
	}
}
