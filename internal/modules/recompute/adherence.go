package recompute

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/adherence"
	"github.com/yungbote/nutribridge-backend/internal/modules/mealplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
	"github.com/yungbote/nutribridge-backend/internal/observability"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
)

// RefreshAdherence recomputes and stores the ratio for the planner window.
// Without a meal-planning analysis the ratio is forced to the penalty.
func (o *Orchestrator) RefreshAdherence(ctx context.Context, userID uuid.UUID) (adherence.Result, error) {
	dbc := dbctx.New(ctx)
	prefs, err := o.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return adherence.Result{}, err
	}
	res := adherence.NoAnalysis()
	if prefs != nil && !jsonx.Empty(prefs.MealPlanningAnalysis) {
		a, err := jsonx.Decode[diet.MealPlanningAnalysis](prefs.MealPlanningAnalysis)
		if err != nil {
			o.log.Warn("undecodable meal planning analysis", "user_id", userID, "error", err)
		} else {
			window := mealplan.Window(o.now())
			slots, err := o.repos.PlannedMeal.ListInRange(dbc, userID, window[0], window[len(window)-1])
			if err != nil {
				return adherence.Result{}, err
			}
			meals, err := o.repos.SavedMeal.GetByIDs(dbc, userID, mealplan.ReferencedMealIDs(slots))
			if err != nil {
				return adherence.Result{}, err
			}
			res = adherence.Calculate(a.DailyCalories, mealplan.DayCalories(window, mealplan.DailyTotals(slots, meals)))
		}
	}
	if _, err := o.repos.Adherence.Upsert(dbc, userID, res.Ratio); err != nil {
		return res, fmt.Errorf("store adherence: %w", err)
	}
	observability.Current().ObserveAdherenceRatio(res.Ratio)
	return res, nil
}

// WellnessOutcome is the regenerate-wellness-score result.
type WellnessOutcome struct {
	BaseScore     int              `json:"base_wellness_score"`
	AdjustedScore int              `json:"adjusted_wellness_score"`
	Adherence     adherence.Result `json:"adherence"`
}

// RegenerateWellnessScore refreshes adherence, then records the base score
// and returns it with the adherence-adjusted score.
func (o *Orchestrator) RegenerateWellnessScore(ctx context.Context, userID uuid.UUID) (WellnessOutcome, error) {
	var out WellnessOutcome
	res, err := o.RefreshAdherence(ctx, userID)
	if err != nil {
		return out, err
	}
	out.Adherence = res
	dbc := dbctx.New(ctx)
	profile, err := o.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return out, err
	}
	out.BaseScore = wellness.Score(wellness.FromProfile(profile))
	out.AdjustedScore = wellness.Adjusted(out.BaseScore, res.Ratio)
	if profile != nil {
		if err := o.repos.WellnessScore.Create(dbc, &domain.WellnessScoreHistory{UserID: userID, Score: out.BaseScore, RecordedAt: o.now()}); err != nil {
			return out, err
		}
	}
	return out, nil
}
