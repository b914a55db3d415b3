package handlers

import (
	"fmt"

	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/modules/macros"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type savedMealMacros struct{ Deps }

// NewSavedMealMacros estimates macros and servings for a saved meal.
func NewSavedMealMacros(d Deps) runtime.Handler {
	d.Log = d.Log.With("handler", jobs.TypeSavedMealMacros)
	return &savedMealMacros{d}
}

func (h *savedMealMacros) Type() string { return jobs.TypeSavedMealMacros }

func (h *savedMealMacros) Run(jc *runtime.Context) error {
	mealID, ok := jc.EntityID("saved_meal_id")
	if !ok {
		jc.Fail("load", errMissingEntity)
		return nil
	}
	meal, err := h.Repos.SavedMeal.GetByID(jc.DBC(), jc.Job.OwnerUserID, mealID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if meal == nil {
		// Deleted before the job ran; nothing to estimate.
		jc.Succeed("done", map[string]any{"skipped": true})
		return nil
	}

	jc.Progress("estimate", 30, "Estimating macros")
	estimated, estErr := h.Estimator.Estimate(jc.Ctx, meal)
	if estErr != nil {
		h.Log.Warn("macro estimation failed", "saved_meal_id", meal.ID, "error", estErr)
	}
	updates := macros.Updates(meal, estimated)
	if len(updates) > 0 {
		if err := h.Repos.SavedMeal.UpdateFields(jc.DBC(), meal.ID, updates); err != nil {
			jc.Fail("store", fmt.Errorf("store macros: %w", err))
			return nil
		}
	}
	jc.Emit(realtime.SSEEventSavedMealUpdated, map[string]any{"saved_meal": meal})
	syncDiet(jc, h.Syncer, h.Log)

	result := map[string]any{
		"saved_meal_id":        meal.ID,
		"macros":               meal.MacrosJSON,
		"recommended_servings": meal.RecommendedServings,
	}
	if estErr != nil {
		result["estimate_error"] = estErr.Error()
	}
	jc.Succeed("done", result)
	return nil
}
