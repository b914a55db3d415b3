package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/analytics"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/diet"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/health"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/jobs"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/user"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type HealthProfileRepo = health.HealthProfileRepo
type GoalPlanRepo = health.GoalPlanRepo
type WellnessScoreRepo = health.WellnessScoreRepo
type HistoricalMetricRepo = health.HistoricalMetricRepo
type HealthInsightRepo = health.HealthInsightRepo
type DailyActivityRepo = health.DailyActivityRepo

type PreferencesRepo = diet.PreferencesRepo
type SavedMealRepo = diet.SavedMealRepo
type PlannedMealRepo = diet.PlannedMealRepo
type AdherenceRepo = diet.AdherenceRepo
type MealPlanVersionRepo = diet.MealPlanVersionRepo
type ShoppingListVersionRepo = diet.ShoppingListVersionRepo
type LibraryRecipeRepo = diet.LibraryRecipeRepo

type UserDataSnapshotRepo = analytics.UserDataSnapshotRepo

type JobRunRepo = jobs.JobRunRepo

var ErrDuplicateSavedMeal = diet.ErrDuplicateSavedMeal
var ErrDuplicateLibraryRecipe = diet.ErrDuplicateLibraryRecipe

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewHealthProfileRepo(db *gorm.DB, baseLog *logger.Logger) HealthProfileRepo {
	return health.NewHealthProfileRepo(db, baseLog)
}
func NewGoalPlanRepo(db *gorm.DB, baseLog *logger.Logger) GoalPlanRepo {
	return health.NewGoalPlanRepo(db, baseLog)
}
func NewWellnessScoreRepo(db *gorm.DB, baseLog *logger.Logger) WellnessScoreRepo {
	return health.NewWellnessScoreRepo(db, baseLog)
}
func NewHistoricalMetricRepo(db *gorm.DB, baseLog *logger.Logger) HistoricalMetricRepo {
	return health.NewHistoricalMetricRepo(db, baseLog)
}
func NewHealthInsightRepo(db *gorm.DB, baseLog *logger.Logger) HealthInsightRepo {
	return health.NewHealthInsightRepo(db, baseLog)
}
func NewDailyActivityRepo(db *gorm.DB, baseLog *logger.Logger) DailyActivityRepo {
	return health.NewDailyActivityRepo(db, baseLog)
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return diet.NewPreferencesRepo(db, baseLog)
}
func NewSavedMealRepo(db *gorm.DB, baseLog *logger.Logger) SavedMealRepo {
	return diet.NewSavedMealRepo(db, baseLog)
}
func NewPlannedMealRepo(db *gorm.DB, baseLog *logger.Logger) PlannedMealRepo {
	return diet.NewPlannedMealRepo(db, baseLog)
}
func NewAdherenceRepo(db *gorm.DB, baseLog *logger.Logger) AdherenceRepo {
	return diet.NewAdherenceRepo(db, baseLog)
}
func NewMealPlanVersionRepo(db *gorm.DB, baseLog *logger.Logger) MealPlanVersionRepo {
	return diet.NewMealPlanVersionRepo(db, baseLog)
}
func NewShoppingListVersionRepo(db *gorm.DB, baseLog *logger.Logger) ShoppingListVersionRepo {
	return diet.NewShoppingListVersionRepo(db, baseLog)
}
func NewLibraryRecipeRepo(db *gorm.DB, baseLog *logger.Logger) LibraryRecipeRepo {
	return diet.NewLibraryRecipeRepo(db, baseLog)
}

func NewUserDataSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) UserDataSnapshotRepo {
	return analytics.NewUserDataSnapshotRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

// Set bundles every repo over one handle.
type Set struct {
	User UserRepo

	HealthProfile    HealthProfileRepo
	GoalPlan         GoalPlanRepo
	WellnessScore    WellnessScoreRepo
	HistoricalMetric HistoricalMetricRepo
	HealthInsight    HealthInsightRepo
	DailyActivity    DailyActivityRepo

	Preferences         PreferencesRepo
	SavedMeal           SavedMealRepo
	PlannedMeal         PlannedMealRepo
	Adherence           AdherenceRepo
	MealPlanVersion     MealPlanVersionRepo
	ShoppingListVersion ShoppingListVersionRepo
	LibraryRecipe       LibraryRecipeRepo

	UserDataSnapshot UserDataSnapshotRepo

	JobRun JobRunRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		User:                NewUserRepo(db, log),
		HealthProfile:       NewHealthProfileRepo(db, log),
		GoalPlan:            NewGoalPlanRepo(db, log),
		WellnessScore:       NewWellnessScoreRepo(db, log),
		HistoricalMetric:    NewHistoricalMetricRepo(db, log),
		HealthInsight:       NewHealthInsightRepo(db, log),
		DailyActivity:       NewDailyActivityRepo(db, log),
		Preferences:         NewPreferencesRepo(db, log),
		SavedMeal:           NewSavedMealRepo(db, log),
		PlannedMeal:         NewPlannedMealRepo(db, log),
		Adherence:           NewAdherenceRepo(db, log),
		MealPlanVersion:     NewMealPlanVersionRepo(db, log),
		ShoppingListVersion: NewShoppingListVersionRepo(db, log),
		LibraryRecipe:       NewLibraryRecipeRepo(db, log),
		UserDataSnapshot:    NewUserDataSnapshotRepo(db, log),
		JobRun:              NewJobRunRepo(db, log),
	}
}
