package observability

import (
	"context"
	"testing"

	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

func TestParseHeaders(t *testing.T) {
	h := parseHeaders(" api-key = abc , bad, =x, team=diet ")
	if len(h) != 2 || h["api-key"] != "abc" || h["team"] != "diet" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestSampleRatioClamped(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	if sampleRatio() != 1 {
		t.Fatalf("expected clamp to 1")
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	if sampleRatio() != 0 {
		t.Fatalf("expected clamp to 0")
	}
}

func TestInitOTelDisabledReturnsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{ServiceName: "test"})
	if shutdown == nil {
		t.Fatalf("shutdown must never be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
