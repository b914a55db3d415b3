// Package mealdb is a small client for TheMealDB JSON API.
package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/httpx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

const defaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

var ErrMealNotFound = errors.New("mealdb: meal not found")

type Client interface {
	// Lookup fetches one meal by MealDB id. ErrMealNotFound when absent.
	Lookup(ctx context.Context, id string) (Meal, error)
	// Search returns every meal whose name matches q; empty when none do.
	Search(ctx context.Context, q string) ([]Meal, error)
	// ByFirstLetter lists every meal whose name starts with letter.
	ByFirstLetter(ctx context.Context, letter string) ([]Meal, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) Client {
	baseURL := strings.TrimSpace(os.Getenv("MEALDB_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return newClient(log, baseURL, &http.Client{Timeout: 10 * time.Second}, 2)
}

func newClient(log *logger.Logger, baseURL string, hc *http.Client, maxRetries int) *client {
	return &client{
		log:        log.With("service", "MealDBClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		maxRetries: maxRetries,
	}
}

type envelope struct {
	Meals []map[string]any `json:"meals"`
}

func (c *client) Lookup(ctx context.Context, id string) (Meal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Meal{}, ErrMealNotFound
	}
	var env envelope
	if err := c.get(ctx, "/lookup.php", url.Values{"i": {id}}, &env); err != nil {
		return Meal{}, err
	}
	if len(env.Meals) == 0 || env.Meals[0] == nil {
		return Meal{}, ErrMealNotFound
	}
	return Meal{Raw: env.Meals[0]}, nil
}

func (c *client) Search(ctx context.Context, q string) ([]Meal, error) {
	return c.list(ctx, url.Values{"s": {strings.TrimSpace(q)}})
}

func (c *client) ByFirstLetter(ctx context.Context, letter string) ([]Meal, error) {
	letter = strings.TrimSpace(letter)
	if len(letter) != 1 {
		return nil, fmt.Errorf("mealdb: first-letter search needs one letter, got %q", letter)
	}
	return c.list(ctx, url.Values{"f": {letter}})
}

func (c *client) list(ctx context.Context, q url.Values) ([]Meal, error) {
	var env envelope
	if err := c.get(ctx, "/search.php", q, &env); err != nil {
		return nil, err
	}
	out := make([]Meal, 0, len(env.Meals))
	for _, m := range env.Meals {
		if m != nil {
			out = append(out, Meal{Raw: m})
		}
	}
	return out, nil
}

func (c *client) get(ctx context.Context, path string, q url.Values, out any) error {
	ctx = ctxutil.Default(ctx)
	var raw []byte
	err := httpx.Retry(ctx, httpx.RetryPolicy{
		MaxRetries: c.maxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			c.log.Warn("MealDB request retrying", "path", path, "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
		},
	}, func(int) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp, &httpx.StatusError{Service: "mealdb", StatusCode: resp.StatusCode, Body: httpx.ReadLimited(resp.Body, 512)}
		}
		raw, err = io.ReadAll(resp.Body)
		return resp, err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mealdb decode: %w", err)
	}
	return nil
}
