package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/observability"
	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/httpx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

// ChatOptions are per call site. Zero values fall back to client defaults.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	// JSONObject asks the API for response_format json_object.
	JSONObject bool
}

// Client is the chat-completion surface the rest of the backend depends on.
type Client interface {
	Chat(ctx context.Context, system, user string, opts ChatOptions) (string, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ErrEmptyCompletion is returned when the API answers without any choice text.
var ErrEmptyCompletion = errors.New("openai: empty completion")

// ErrEmptyEmbedding is returned when the embeddings call yields no vector.
var ErrEmptyEmbedding = errors.New("openai: empty embedding")

const defaultEmbeddingModel = "text-embedding-ada-002"

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
	maxRetries int
}

// Temp is a helper for ChatOptions.Temperature.
func Temp(v float64) *float64 { return &v }

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	timeoutSec := 180
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	c := newClient(log, baseURL, apiKey, model, &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}, maxRetries)
	if v := strings.TrimSpace(os.Getenv("OPENAI_EMBEDDING_MODEL")); v != "" {
		c.embedModel = v
	}
	return c, nil
}

func newClient(log *logger.Logger, baseURL, apiKey, model string, hc *http.Client, maxRetries int) *client {
	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		embedModel: defaultEmbeddingModel,
		httpClient: hc,
		maxRetries: maxRetries,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage usage `json:"usage"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage usage `json:"usage"`
}

func (c *client) Chat(ctx context.Context, system, user string, opts ChatOptions) (string, error) {
	ctx = ctxutil.Default(ctx)
	req := chatRequest{
		Model:       c.model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: user})
	if opts.JSONObject {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out chatResponse
	if err := c.do(ctx, "/v1/chat/completions", req.Model, req, &out, &out.Usage); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx = ctxutil.Default(ctx)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyEmbedding
	}
	req := embeddingRequest{Model: c.embedModel, Input: text}
	var out embeddingResponse
	if err := c.do(ctx, "/v1/embeddings", req.Model, req, &out, &out.Usage); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return out.Data[0].Embedding, nil
}

func (c *client) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpx.StatusError{Service: "openai", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do posts body with retries and decodes into out. u must point into out so
// token usage is recorded after decoding.
func (c *client) do(ctx context.Context, path, model string, body, out any, u *usage) error {
	start := time.Now()
	var lastResp *http.Response
	var raw []byte

	err := httpx.Retry(ctx, httpx.RetryPolicy{
		MaxRetries: c.maxRetries,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			c.log.Warn("OpenAI request retrying",
				"path", path,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"sleep", sleep.String(),
				"error", err.Error(),
			)
		},
	}, func(int) (*http.Response, error) {
		resp, b, err := c.doOnce(ctx, path, body)
		lastResp, raw = resp, b
		return resp, err
	})

	status := statusLabel(lastResp, err)
	if err != nil {
		observability.Current().ObserveLLMRequest(model, status, time.Since(start), 0, 0)
		return err
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("openai decode error: %w", uErr)
	}
	observability.Current().ObserveLLMRequest(model, status, time.Since(start), u.PromptTokens, u.CompletionTokens)
	return nil
}

func statusLabel(resp *http.Response, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	if err != nil {
		return "error"
	}
	return "unknown"
}
