package health

import (
	"math"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestValidate(t *testing.T) {
	if err := (&HealthProfile{HeightCM: 0, WeightKG: 70}).Validate(); err != ErrNonPositiveHeight {
		t.Fatalf("expected height error, got %v", err)
	}
	if err := (&HealthProfile{HeightCM: 170, WeightKG: -1}).Validate(); err != ErrNonPositiveWeight {
		t.Fatalf("expected weight error, got %v", err)
	}
	if err := (&HealthProfile{HeightCM: 170, WeightKG: 70}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBMI(t *testing.T) {
	bmi, ok := (&HealthProfile{HeightCM: 180, WeightKG: 80}).BMI()
	if !ok || math.Abs(bmi-24.69) > 0.01 {
		t.Fatalf("bmi = %v ok=%v", bmi, ok)
	}
	if _, ok := (&HealthProfile{}).BMI(); ok {
		t.Fatalf("expected no bmi for empty profile")
	}
}

func TestAssessmentDecode(t *testing.T) {
	p := &HealthProfile{AssessmentData: datatypes.JSON(`{"lifestyle_category":"Active","diet_category":"Healty","goal_category":"Muscle gain"}`)}
	a := p.Assessment()
	if a.LifestyleCategory != "Active" || a.DietCategory != "Healty" || a.GoalCategory != "Muscle gain" {
		t.Fatalf("unexpected assessment %+v", a)
	}
	if (&HealthProfile{}).Assessment() != (Assessment{}) {
		t.Fatalf("expected empty assessment")
	}
}

func TestGoalPlanStale(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)
	if (&GoalPlan{}).Stale() {
		t.Fatalf("untouched plan should not be stale")
	}
	if !(&GoalPlan{LastProfileUpdate: &now}).Stale() {
		t.Fatalf("never generated plan with profile update should be stale")
	}
	if !(&GoalPlan{LastProfileUpdate: &now, GeneratedAt: &earlier}).Stale() {
		t.Fatalf("profile newer than generation should be stale")
	}
	if (&GoalPlan{LastProfileUpdate: &earlier, GeneratedAt: &now}).Stale() {
		t.Fatalf("generation newer than profile should be fresh")
	}
}

func TestBMICategory(t *testing.T) {
	cases := map[float64]string{18.4: "Underweight", 18.5: "Normal weight", 24.9: "Normal weight", 25: "Overweight", 31: "Obese"}
	for bmi, want := range cases {
		if got := BMICategory(bmi); got != want {
			t.Fatalf("BMICategory(%v) = %q, want %q", bmi, got, want)
		}
	}
}
