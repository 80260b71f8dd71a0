package llm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shoutdesk/internal/services/llm"
)

func TestSuggestTopicRequiresAPIKey(t *testing.T) {
	client := llm.NewClient(llm.Config{})
	if _, err := client.SuggestTopic(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestSuggestTopicReturnsContent(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Your best concert memory  "}}]}`))
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "key", BaseURL: server.URL, Model: "test"})
	suggestion, err := client.SuggestTopic(context.Background())
	if err != nil {
		t.Fatalf("SuggestTopic failed: %v", err)
	}
	if suggestion != "Your best concert memory" {
		t.Fatalf("unexpected suggestion: %q", suggestion)
	}
	if authHeader != "Bearer key" {
		t.Fatalf("unexpected auth header: %q", authHeader)
	}
}

func TestSuggestTopicRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"A song that got you through school"}}]}`))
	}))
	defer server.Close()

	var slept int
	client := llm.NewClient(
		llm.Config{APIKey: "key", BaseURL: server.URL, Model: "test"},
		llm.WithRetryMaxAttempts(3),
		llm.WithRetryBackoff(time.Millisecond, time.Millisecond),
		llm.WithSleeper(func(time.Duration) { slept++ }),
	)
	suggestion, err := client.SuggestTopic(context.Background())
	if err != nil {
		t.Fatalf("SuggestTopic failed: %v", err)
	}
	if suggestion == "" || slept != 2 {
		t.Fatalf("expected success after 2 retries, got %q slept=%d", suggestion, slept)
	}
}

func TestSuggestTopicDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Config{APIKey: "key", BaseURL: server.URL, Model: "test"},
		llm.WithRetryMaxAttempts(5),
		llm.WithSleeper(func(time.Duration) {}),
	)
	_, err := client.SuggestTopic(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
	if !strings.Contains(err.Error(), "http 400") {
		t.Fatalf("unexpected error: %v", err)
	}
}
