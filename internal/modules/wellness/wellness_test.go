package wellness

import (
	"testing"

	"github.com/yungbote/nutribridge-backend/internal/domain/health"
)

func TestScoreHealthyBMI(t *testing.T) {
	got := Score(Inputs{BMI: 22, HasBMI: true, Lifestyle: "Active", Diet: "Healty", Goal: "Muscle gain"})
	if got != 113 {
		t.Fatalf("expected 113, got %d", got)
	}
}

func TestScoreFromProfile(t *testing.T) {
	p := &health.HealthProfile{
		HeightCM:       180,
		WeightKG:       80,
		AssessmentData: []byte(`{"lifestyle_category":"Sedentary","diet_category":"Reasonable","goal_category":"Weight loss"}`),
	}
	if got := Score(FromProfile(p)); got != 88 {
		t.Fatalf("expected 88, got %d", got)
	}
}

func TestScoreWithoutBMI(t *testing.T) {
	if got := Score(Inputs{Lifestyle: "Sedentary", Diet: "Unhealty"}); got != 100 {
		t.Fatalf("expected 100 without BMI, got %d", got)
	}
}

func TestUnknownLabelsContributeZero(t *testing.T) {
	got := Score(Inputs{BMI: 22, HasBMI: true, Lifestyle: "Couch philosopher", Diet: "", Goal: "???"})
	if got != 100 {
		t.Fatalf("expected 100 for unknown labels, got %d", got)
	}
	if LifestyleAdjustment("nope") != 0 || DietAdjustment("nope") != 0 || GoalAdjustment("nope") != 0 {
		t.Fatalf("unknown label adjustments must be zero")
	}
}

func TestBMIPenalty(t *testing.T) {
	cases := []struct {
		bmi  float64
		want int
	}{
		{18.5, 0},
		{25, 0},
		{17.5, 2},
		{30, 10},
		{25.25, 0}, // 0.5 rounds to even
		{25.75, 2}, // 1.5 rounds to even
	}
	for _, c := range cases {
		if got := BMIPenalty(c.bmi); got != c.want {
			t.Fatalf("BMIPenalty(%v)=%d want %d", c.bmi, got, c.want)
		}
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	got := Score(Inputs{BMI: 80, HasBMI: true, Lifestyle: "Sedentary", Diet: "Unhealty"})
	if got != 0 {
		t.Fatalf("expected floor at 0, got %d", got)
	}
}

func TestAdjusted(t *testing.T) {
	if got := Adjusted(88, 1.2); got != 106 {
		t.Fatalf("expected round(88*1.2)=106, got %d", got)
	}
	if got := Adjusted(100, 0.6); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}
