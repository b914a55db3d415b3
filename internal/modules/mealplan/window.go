// Package mealplan holds the rolling planner window and the nutrition math
// every planner view, snapshot and ratio shares.
package mealplan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
)

// WindowDays is the planner horizon.
const WindowDays = 7

// Window returns the seven dates starting tomorrow.
func Window(today time.Time) []time.Time {
	start := domain.DateOnly(today).AddDate(0, 0, 1)
	out := make([]time.Time, WindowDays)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Bounds returns the first and last date of Window(today).
func Bounds(today time.Time) (time.Time, time.Time) {
	w := Window(today)
	return w[0], w[len(w)-1]
}

// DecodePlan reads plan_json; malformed or empty plans decode to no meals.
func DecodePlan(pm *diet.PlannedMeal) diet.MealPlan {
	var out diet.MealPlan
	if pm == nil || len(pm.PlanJSON) == 0 {
		return out
	}
	if err := json.Unmarshal(pm.PlanJSON, &out); err != nil {
		return diet.MealPlan{}
	}
	return out
}

// ReferencedMealIDs collects every saved_meal_id in the slots.
func ReferencedMealIDs(slots []*diet.PlannedMeal) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, pm := range slots {
		for _, e := range DecodePlan(pm).Meals {
			id, err := uuid.Parse(e.SavedMealID)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
