package health

import "strings"

// LifestyleCategory is the closed set the lifestyle classifier may emit.
type LifestyleCategory string

const (
	LifestyleSedentary        LifestyleCategory = "Sedentary"
	LifestyleLightlyActive    LifestyleCategory = "Lightly active"
	LifestyleActive           LifestyleCategory = "Active"
	LifestyleVeryActive       LifestyleCategory = "Very active"
	LifestyleEnduranceAthlete LifestyleCategory = "Endurance athlete"
)

// DietCategory labels keep the historical spellings; stored rows and the
// classification prompt both use them.
type DietCategory string

const (
	DietHealthy    DietCategory = "Healty"
	DietUnhealthy  DietCategory = "Unhealty"
	DietEducated   DietCategory = "Educated"
	DietReasonable DietCategory = "Reasonable"
)

type GoalCategory string

const (
	GoalWeightLoss        GoalCategory = "Weight loss"
	GoalMuscleGain        GoalCategory = "Muscle gain"
	GoalGeneralFitness    GoalCategory = "General fitness"
	GoalEnduranceTraining GoalCategory = "Endurance training"
	GoalInjuryRecovery    GoalCategory = "Injury recovery"
)

func LifestyleCategories() []LifestyleCategory {
	return []LifestyleCategory{LifestyleSedentary, LifestyleLightlyActive, LifestyleActive, LifestyleVeryActive, LifestyleEnduranceAthlete}
}

func DietCategories() []DietCategory {
	return []DietCategory{DietHealthy, DietUnhealthy, DietEducated, DietReasonable}
}

func GoalCategories() []GoalCategory {
	return []GoalCategory{GoalWeightLoss, GoalMuscleGain, GoalGeneralFitness, GoalEnduranceTraining, GoalInjuryRecovery}
}

func ParseLifestyle(raw string) (LifestyleCategory, bool) {
	return matchLabel(raw, LifestyleCategories())
}

func ParseDiet(raw string) (DietCategory, bool) {
	return matchLabel(raw, DietCategories())
}

func ParseGoal(raw string) (GoalCategory, bool) {
	return matchLabel(raw, GoalCategories())
}

// matchLabel accepts the exact label modulo case, surrounding quotes, a list
// bullet, and trailing punctuation. Anything else is a mismatch.
func matchLabel[T ~string](raw string, allowed []T) (T, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "- ")
	s = strings.Trim(s, "\"'`*. \t\r\n")
	for _, a := range allowed {
		if strings.EqualFold(s, string(a)) {
			return a, true
		}
	}
	var zero T
	return zero, false
}
