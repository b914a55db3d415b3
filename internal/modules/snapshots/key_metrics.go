package snapshots

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/modules/adherence"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
)

const defaultKeyProteinTarget = 100

// KeyMetrics is the quick-reference block handed to the assistant.
type KeyMetrics struct {
	DailyCalorieTarget float64  `json:"daily_calorie_target"`
	ProteinTarget      float64  `json:"protein_target"`
	Allergies          []string `json:"allergies"`
	Dislikes           []string `json:"dislikes"`
	Weight             *float64 `json:"weight"`
	WellnessGoal       *string  `json:"wellness_goal"`
	WeightGoal         *float64 `json:"weight_goal"`
}

// DefaultKeyMetrics is used when the user has no preferences row.
func DefaultKeyMetrics() KeyMetrics {
	return KeyMetrics{
		DailyCalorieTarget: adherence.DefaultDailyTarget,
		ProteinTarget:      defaultKeyProteinTarget,
		Allergies:          []string{},
		Dislikes:           []string{},
	}
}

// KeyMetrics loads the block directly; it never fails on missing rows.
func (c *Collector) KeyMetrics(ctx context.Context, userID uuid.UUID) (KeyMetrics, error) {
	dbc := c.dbc(ctx)
	prefs, err := c.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return DefaultKeyMetrics(), err
	}
	profile, err := c.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return DefaultKeyMetrics(), err
	}
	plan, err := c.repos.GoalPlan.GetByUserID(dbc, userID)
	if err != nil {
		return DefaultKeyMetrics(), err
	}
	return keyMetrics(prefs, profile, plan), nil
}

func keyMetrics(prefs *diet.UserDietaryPreferences, profile *health.HealthProfile, plan *health.GoalPlan) KeyMetrics {
	out := DefaultKeyMetrics()
	if prefs != nil {
		analysis, hasAnalysis := decodeAnalysis(prefs)
		switch {
		case prefs.CalorieTarget != nil:
			out.DailyCalorieTarget = float64(*prefs.CalorieTarget)
		case hasAnalysis && analysis.DailyCalories > 0:
			out.DailyCalorieTarget = analysis.DailyCalories
		}
		switch {
		case prefs.ProteinTarget != nil:
			out.ProteinTarget = float64(*prefs.ProteinTarget)
		case hasAnalysis && analysis.MacroSplit.Protein > 0:
			out.ProteinTarget = analysis.MacroSplit.Protein
		}
		out.Allergies = jsonx.Strings(prefs.Allergies)
		out.Dislikes = jsonx.Strings(prefs.Dislikes)
	}
	if profile != nil {
		w := profile.WeightKG
		out.Weight = &w
		if profile.FitnessGoals != "" {
			g := profile.FitnessGoals
			out.WellnessGoal = &g
		}
	}
	if plan != nil {
		out.WeightGoal = plan.TargetWeight
	}
	return out
}
