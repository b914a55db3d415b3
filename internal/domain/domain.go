package domain

import (
	"github.com/yungbote/nutribridge-backend/internal/domain/analytics"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/domain/user"
)

type (
	User = user.User

	HealthProfile         = health.HealthProfile
	GoalPlan              = health.GoalPlan
	WellnessScoreHistory  = health.WellnessScoreHistory
	HistoricalMetric      = health.HistoricalMetric
	HealthInsight         = health.HealthInsight
	DailyActivitySnapshot = health.DailyActivitySnapshot

	UserDietaryPreferences     = diet.UserDietaryPreferences
	UserSavedMeal              = diet.UserSavedMeal
	PlannedMeal                = diet.PlannedMeal
	NutritionAdherenceSnapshot = diet.NutritionAdherenceSnapshot
	MealPlanVersion            = diet.MealPlanVersion
	ShoppingListVersion        = diet.ShoppingListVersion
	LibraryRecipe              = diet.LibraryRecipe

	UserDataSnapshot = analytics.UserDataSnapshot

	JobRun = jobs.JobRun
)

const (
	MetricWeight = health.MetricWeight

	SourceMealDB     = diet.SourceMealDB
	SourceCustom     = diet.SourceCustom
	SourceAI         = diet.SourceAI
	SourceSubstitute = diet.SourceSubstitute
	SourceLibrary    = diet.SourceLibrary

	DataTypeHealthSummary   = analytics.DataTypeHealthSummary
	DataTypeDietSummary     = analytics.DataTypeDietSummary
	DataTypeCurrentSnapshot = analytics.DataTypeCurrentSnapshot
)

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&HealthProfile{},
		&GoalPlan{},
		&WellnessScoreHistory{},
		&HistoricalMetric{},
		&HealthInsight{},
		&DailyActivitySnapshot{},
		&UserDietaryPreferences{},
		&UserSavedMeal{},
		&PlannedMeal{},
		&NutritionAdherenceSnapshot{},
		&MealPlanVersion{},
		&ShoppingListVersion{},
		&LibraryRecipe{},
		&UserDataSnapshot{},
		&JobRun{},
	}
}
