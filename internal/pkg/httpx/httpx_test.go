package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := map[int]bool{200: false, 400: false, 404: false, 408: true, 429: true, 500: true, 503: true}
	for code, want := range cases {
		if got := IsRetryableHTTPStatus(code); got != want {
			t.Fatalf("status %d: got %v want %v", code, got, want)
		}
	}
}

func TestRetryAfterDurationCapped(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"30"}}}
	if got := RetryAfterDuration(resp, time.Second, 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected cap at 5s, got %v", got)
	}
	if got := RetryAfterDuration(nil, 2*time.Second, 0); got != 2*time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, func(int) (*http.Response, error) {
		calls++
		return nil, &StatusError{Service: "x", StatusCode: 400}
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected single call and error, got calls=%d err=%v", calls, err)
	}
}

func TestRetryRecovers(t *testing.T) {
	calls := 0
	retried := 0
	err := Retry(context.Background(), RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		OnRetry:    func(int, time.Duration, error) { retried++ },
	}, func(int) (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, &StatusError{Service: "x", StatusCode: 503}
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || retried != 2 {
		t.Fatalf("calls=%d retried=%d", calls, retried)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, RetryPolicy{MaxRetries: 2, BaseDelay: time.Second}, func(int) (*http.Response, error) {
		return nil, &StatusError{Service: "x", StatusCode: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
