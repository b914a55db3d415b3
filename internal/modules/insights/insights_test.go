package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai/openaitest"
)

func TestHealthInsight(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) { return "  Walk more.  ", nil }}
	p := &health.HealthProfile{
		HeightCM:       180,
		WeightKG:       82,
		AssessmentData: datatypes.JSON(`{"lifestyle_category":"Active","diet_category":"Healty","goal_category":"Weight loss"}`),
	}
	got, err := New(fake).Health(context.Background(), p)
	if err != nil || got != "Walk more." {
		t.Fatalf("got %q err=%v", got, err)
	}
	call := fake.Calls()[0]
	if !strings.Contains(call.User, `"goal_category":"Weight loss"`) || !strings.Contains(call.User, `"height_cm":180`) {
		t.Fatalf("profile not in prompt: %s", call.User)
	}
	if call.Opts.MaxTokens != 200 || *call.Opts.Temperature != 1 {
		t.Fatalf("unexpected options %+v", call.Opts)
	}
}

func TestHealthInsightEmpty(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) { return " ", nil }}
	if _, err := New(fake).Health(context.Background(), &health.HealthProfile{}); !errors.Is(err, ErrEmptyInsight) {
		t.Fatalf("expected ErrEmptyInsight, got %v", err)
	}
}

func TestNutritionPrompt(t *testing.T) {
	p := NutritionPrompt(NutritionInput{
		Targets: diet.Nutrition{Calories: 2000, Protein: 120},
		Days: map[string]diet.Nutrition{
			"2026-03-12": {Calories: 1800, Protein: 90},
			"2026-03-11": {Calories: 2100, Protein: 100},
		},
		BaseScore: pointers.Ptr(88),
		Ratio:     pointers.Ptr(1.0),
	})
	for _, want := range []string{
		"- Calories: 2000 kcal",
		"- Carbs: Not specifiedg",
		"- Total Calories: 3900 kcal",
		"- Base Score: 88",
		"- Adjusted Score: Not specified",
		"- Adherence Ratio: 1.0",
		"2026-03-11: 2100 kcal",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Index(p, "2026-03-11") > strings.Index(p, "2026-03-12") {
		t.Fatalf("breakdown should be date ordered")
	}
}

func TestNutritionFallback(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) { return "", errors.New("down") }}
	if got := New(fake).Nutrition(context.Background(), NutritionInput{}); got != NutritionUnavailable {
		t.Fatalf("got %q", got)
	}
}
