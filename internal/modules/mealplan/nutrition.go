package mealplan

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
)

// EntryNutrition is the adjusted nutrition of one plan entry. ok is false
// when the meal is unknown or has no macros or servings yet.
func EntryNutrition(e diet.PlanEntry, meals map[uuid.UUID]*diet.UserSavedMeal) (diet.Nutrition, bool) {
	id, err := uuid.Parse(e.SavedMealID)
	if err != nil {
		return diet.Nutrition{}, false
	}
	m := meals[id]
	if m == nil || m.RecommendedServings == nil || *m.RecommendedServings == 0 {
		return diet.Nutrition{}, false
	}
	macros, ok := m.Macros()
	if !ok {
		return diet.Nutrition{}, false
	}
	return diet.AdjustedNutrition(macros, *m.RecommendedServings, e.Multiplier()), true
}

// SlotNutrition counts only the first entry in a slot.
func SlotNutrition(pm *diet.PlannedMeal, meals map[uuid.UUID]*diet.UserSavedMeal) (diet.Nutrition, bool) {
	primary, ok := DecodePlan(pm).Primary()
	if !ok {
		return diet.Nutrition{}, false
	}
	return EntryNutrition(primary, meals)
}

// DailyTotals sums SlotNutrition per YYYY-MM-DD. Dates with no resolvable
// slot are absent.
func DailyTotals(slots []*diet.PlannedMeal, meals map[uuid.UUID]*diet.UserSavedMeal) map[string]diet.Nutrition {
	out := map[string]diet.Nutrition{}
	for _, pm := range slots {
		n, ok := SlotNutrition(pm, meals)
		if !ok {
			continue
		}
		key := domain.DateKey(pm.PlannedDate)
		out[key] = out[key].Add(n)
	}
	return out
}

// DayCalories returns per-day calories over window, zero for empty days.
func DayCalories(window []time.Time, totals map[string]diet.Nutrition) []float64 {
	out := make([]float64, len(window))
	for i, d := range window {
		out[i] = totals[domain.DateKey(d)].Calories
	}
	return out
}
