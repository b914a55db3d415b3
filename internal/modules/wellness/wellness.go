// Package wellness computes the non-negative wellness score from BMI and the
// three classified labels.
package wellness

import (
	"math"

	"github.com/yungbote/nutribridge-backend/internal/domain/health"
)

const (
	base = 100

	bmiLow  = 18.5
	bmiHigh = 25.0
)

// Inputs carry the classified labels as stored. Unknown or empty labels
// contribute zero.
type Inputs struct {
	BMI       float64
	HasBMI    bool
	Lifestyle string
	Diet      string
	Goal      string
}

// FromProfile reads BMI and labels off a profile.
func FromProfile(p *health.HealthProfile) Inputs {
	if p == nil {
		return Inputs{}
	}
	bmi, ok := p.BMI()
	a := p.Assessment()
	return Inputs{
		BMI:       bmi,
		HasBMI:    ok,
		Lifestyle: a.LifestyleCategory,
		Diet:      a.DietCategory,
		Goal:      a.GoalCategory,
	}
}

// Score returns max(0, 100 - bmi penalty + label adjustments). Without a BMI
// the score is exactly 100 regardless of labels.
func Score(in Inputs) int {
	if !in.HasBMI {
		return base
	}
	score := base - BMIPenalty(in.BMI)
	score += LifestyleAdjustment(in.Lifestyle)
	score += DietAdjustment(in.Diet)
	score += GoalAdjustment(in.Goal)
	if score < 0 {
		return 0
	}
	return score
}

// BMIPenalty is round(2*|bmi-boundary|) outside [18.5, 25], zero inside.
func BMIPenalty(bmi float64) int {
	switch {
	case bmi < bmiLow:
		return roundHalfEven(2 * (bmiLow - bmi))
	case bmi > bmiHigh:
		return roundHalfEven(2 * (bmi - bmiHigh))
	default:
		return 0
	}
}

func LifestyleAdjustment(label string) int {
	l, ok := health.ParseLifestyle(label)
	if !ok {
		return 0
	}
	switch l {
	case health.LifestyleSedentary:
		return -15
	case health.LifestyleLightlyActive:
		return -5
	case health.LifestyleActive:
		return 5
	case health.LifestyleVeryActive:
		return 10
	case health.LifestyleEnduranceAthlete:
		return 15
	default:
		return 0
	}
}

func DietAdjustment(label string) int {
	d, ok := health.ParseDiet(label)
	if !ok {
		return 0
	}
	switch d {
	case health.DietUnhealthy:
		return -10
	case health.DietReasonable:
		return 0
	case health.DietHealthy:
		return 5
	case health.DietEducated:
		return 10
	default:
		return 0
	}
}

func GoalAdjustment(label string) int {
	g, ok := health.ParseGoal(label)
	if !ok {
		return 0
	}
	switch g {
	case health.GoalWeightLoss, health.GoalMuscleGain:
		return 3
	case health.GoalGeneralFitness:
		return 2
	case health.GoalEnduranceTraining:
		return 4
	case health.GoalInjuryRecovery:
		return 1
	default:
		return 0
	}
}

// Adjusted applies an adherence ratio to a base score.
func Adjusted(baseScore int, ratio float64) int {
	return roundHalfEven(float64(baseScore) * ratio)
}

func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}
