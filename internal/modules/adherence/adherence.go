// Package adherence turns a week of planned calories into the score
// multiplier stored on NutritionAdherenceSnapshot.
package adherence

import "math"

const (
	RatioBonus   = 1.2
	RatioOnTrack = 1.0
	RatioDrift   = 0.8
	RatioPenalty = 0.6

	DefaultDailyTarget = 2000.0

	tightPerDay  = 200.0
	okPerDay     = 400.0
	loosePerDay  = 800.0
	daysInWindow = 7
)

// Result keeps the intermediate numbers for logging and dashboards.
type Result struct {
	Ratio         float64 `json:"adherence_ratio"`
	TotalCalories float64 `json:"total_calories"`
	WeekTarget    float64 `json:"week_target"`
	Diff          float64 `json:"diff"`
	MissingDays   int     `json:"missing_days"`
	DaysWithData  int     `json:"days_with_data"`
}

// Calculate picks the ratio for the given per-day calories. A day at zero is
// missing, and any missing day means the penalty ratio.
func Calculate(dailyTarget float64, dayCalories []float64) Result {
	if dailyTarget <= 0 {
		dailyTarget = DefaultDailyTarget
	}
	res := Result{WeekTarget: dailyTarget * daysInWindow}
	for _, c := range dayCalories {
		if c > 0 {
			res.TotalCalories += c
			res.DaysWithData++
		} else {
			res.MissingDays++
		}
	}
	res.Diff = math.Abs(res.TotalCalories - res.WeekTarget)
	res.Ratio = ratioFor(res.MissingDays, res.Diff)
	return res
}

func ratioFor(missingDays int, diff float64) float64 {
	switch {
	case missingDays > 0:
		return RatioPenalty
	case diff <= tightPerDay*daysInWindow:
		return RatioBonus
	case diff <= okPerDay*daysInWindow:
		return RatioOnTrack
	case diff <= loosePerDay*daysInWindow:
		return RatioDrift
	default:
		return RatioPenalty
	}
}

// NoAnalysis is the result used when the user has no meal-planning analysis.
func NoAnalysis() Result {
	return Result{Ratio: RatioPenalty}
}
