package handlers

import (
	"fmt"

	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/modules/onboarding"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
)

type mealPlanningAnalysis struct{ Deps }

// NewMealPlanningAnalysis writes the meal planning analysis and baseline
// onto the user's dietary preferences.
func NewMealPlanningAnalysis(d Deps) runtime.Handler {
	d.Log = d.Log.With("handler", jobs.TypeMealPlanningAnalysis)
	return &mealPlanningAnalysis{d}
}

func (h *mealPlanningAnalysis) Type() string { return jobs.TypeMealPlanningAnalysis }

func (h *mealPlanningAnalysis) Run(jc *runtime.Context) error {
	dbc := jc.DBC()
	prefs, err := h.Repos.Preferences.GetByUserID(dbc, jc.Job.OwnerUserID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if prefs == nil {
		jc.Fail("load", fmt.Errorf("dietary preferences not found"))
		return nil
	}
	profile, err := h.Repos.HealthProfile.GetByUserID(dbc, jc.Job.OwnerUserID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	in := onboarding.InputFromPreferences(prefs, profile)

	jc.Progress("analysis", 30, "Analyzing nutrition needs")
	analysis, analysisFallback := h.Onboarder.Analysis(jc.Ctx, in)
	jc.Progress("baseline", 60, "Building meal baseline")
	baseline, baselineFallback := h.Onboarder.Baseline(jc.Ctx, analysis, in)

	if err := h.Repos.Preferences.UpdateFields(dbc, prefs.ID, map[string]interface{}{
		"meal_planning_analysis": jsonx.Marshal(analysis),
		"meal_baseline":          jsonx.Marshal(baseline),
	}); err != nil {
		jc.Fail("store", err)
		return nil
	}
	syncDiet(jc, h.Syncer, h.Log)
	jc.Succeed("done", map[string]any{
		"meal_planning_analysis": analysis,
		"meal_baseline":          baseline,
		"analysis_fallback":      analysisFallback,
		"baseline_fallback":      baselineFallback,
	})
	return nil
}
