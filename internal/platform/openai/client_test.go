package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/pkg/httpx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

func TestChatSendsOptionsAndParsesReply(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Active \n"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	c := newClient(logger.Nop(), srv.URL, "key", "gpt-3.5-turbo", srv.Client(), 0)
	out, err := c.Chat(context.Background(), "sys", "hello", ChatOptions{Temperature: Temp(0), MaxTokens: 10})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "Active" {
		t.Fatalf("expected trimmed reply, got %q", out)
	}
	if got.Model != "gpt-3.5-turbo" || got.MaxTokens != 10 || got.Temperature == nil || *got.Temperature != 0 {
		t.Fatalf("request options not forwarded: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestChatRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newClient(logger.Nop(), srv.URL, "key", "m", srv.Client(), 2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := c.Chat(ctx, "", "hi", ChatOptions{})
	if err != nil || out != "ok" {
		t.Fatalf("expected ok after retry, got %q err=%v", out, err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", hits)
	}
}

func TestChatClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newClient(logger.Nop(), srv.URL, "key", "m", srv.Client(), 3)
	_, err := c.Chat(context.Background(), "", "hi", ChatOptions{})
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one hit, got %d", hits)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	c := newClient(logger.Nop(), srv.URL, "key", "m", srv.Client(), 0)
	if _, err := c.Chat(context.Background(), "", "hi", ChatOptions{}); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestEmbedPostsInputAndReturnsVector(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}],"usage":{"prompt_tokens":4}}`))
	}))
	defer srv.Close()

	c := newClient(logger.Nop(), srv.URL, "key", "m", srv.Client(), 0)
	vec, err := c.Embed(context.Background(), " chicken curry ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Fatalf("unexpected vector %v", vec)
	}
	if got.Model != defaultEmbeddingModel || got.Input != "chicken curry" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestEmbedRejectsEmptyInputAndReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := newClient(logger.Nop(), srv.URL, "key", "m", srv.Client(), 0)
	if _, err := c.Embed(context.Background(), "  "); !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("blank input: want ErrEmptyEmbedding, got %v", err)
	}
	if _, err := c.Embed(context.Background(), "soup"); !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("empty data: want ErrEmptyEmbedding, got %v", err)
	}
}
