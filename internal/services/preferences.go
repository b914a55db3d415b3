package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/modules/onboarding"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
)

const (
	StepRestrictions = 1
	StepCuisines     = 2
	StepTiming       = 3
)

// PreferencesInput is a direct edit. Nil fields are left alone.
type PreferencesInput struct {
	DietaryTags        []string `json:"dietary_tags"`
	Allergies          []string `json:"allergies"`
	Dislikes           []string `json:"dislikes"`
	PreferredCuisines  []string `json:"preferred_cuisines"`
	MealsPerDay        *int     `json:"meals_per_day"`
	PreferredMealTimes []string `json:"preferred_meal_times"`
	CalorieTarget      *int     `json:"calorie_target"`
	ProteinTarget      *int     `json:"protein_target"`
	CarbTarget         *int     `json:"carb_target"`
	FatTarget          *int     `json:"fat_target"`
}

type OnboardingResult struct {
	Step        int                           `json:"step"`
	NextStep    int                           `json:"next_step,omitempty"`
	Complete    bool                          `json:"complete"`
	Message     string                        `json:"message"`
	Parsed      any                           `json:"parsed"`
	Preferences *types.UserDietaryPreferences `json:"preferences"`
	Job         *types.JobRun                 `json:"job,omitempty"`
}

type MealPlanningView struct {
	Preferences *types.UserDietaryPreferences `json:"preferences"`
	HealthGoals any                           `json:"health_goals"`
	Analysis    *diet.MealPlanningAnalysis    `json:"meal_analysis"`
	Baseline    *diet.MealBaseline            `json:"meal_baseline"`
	Job         *types.JobRun                 `json:"job,omitempty"`
}

type PreferencesService interface {
	// Get returns the user's preferences, creating the row on first access.
	Get(ctx context.Context) (*types.UserDietaryPreferences, error)
	Update(ctx context.Context, in PreferencesInput) (*types.UserDietaryPreferences, error)
	// Onboard parses one free-text onboarding step with the LLM. The last
	// step schedules the meal planning analysis.
	Onboard(ctx context.Context, step int, text string) (*OnboardingResult, error)
	Reset(ctx context.Context) error
	// MealPlanning returns the stored analysis, scheduling one when absent.
	MealPlanning(ctx context.Context) (*MealPlanningView, error)
}

type preferencesService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	jobs      JobService
	onboarder *onboarding.Onboarder
	analytics AnalyticsService
}

func NewPreferencesService(db *gorm.DB, baseLog *logger.Logger, r repos.Set, jobSvc JobService, onboarder *onboarding.Onboarder, analytics AnalyticsService) PreferencesService {
	return &preferencesService{
		db:        db,
		log:       baseLog.With("service", "PreferencesService"),
		repos:     r,
		jobs:      jobSvc,
		onboarder: onboarder,
		analytics: analytics,
	}
}

func (s *preferencesService) getOrCreate(dbc dbctx.Context, userID uuid.UUID) (*types.UserDietaryPreferences, error) {
	prefs, err := s.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}
	prefs = &types.UserDietaryPreferences{
		UserID:             userID,
		DietaryTags:        jsonx.Marshal([]string{}),
		Allergies:          jsonx.Marshal([]string{}),
		Dislikes:           jsonx.Marshal([]string{}),
		PreferredCuisines:  jsonx.Marshal([]string{}),
		PreferredMealTimes: jsonx.Marshal([]string{}),
		MealsPerDay:        onboarding.DefaultMealsPerDay,
	}
	if err := s.repos.Preferences.Create(dbc, prefs); err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	return prefs, nil
}

func (s *preferencesService) Get(ctx context.Context) (*types.UserDietaryPreferences, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.getOrCreate(dbctx.New(ctx), userID)
}

func (s *preferencesService) Update(ctx context.Context, in PreferencesInput) (*types.UserDietaryPreferences, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.MealsPerDay != nil && (*in.MealsPerDay < 1 || *in.MealsPerDay > 10) {
		return nil, apierr.BadRequest("invalid_preferences", "Meals per day must be between 1 and 10.")
	}
	updates := map[string]interface{}{}
	putList := func(col string, v []string) {
		if v != nil {
			updates[col] = jsonx.Marshal(cleanList(v))
		}
	}
	putList("dietary_tags", in.DietaryTags)
	putList("allergies", in.Allergies)
	putList("dislikes", in.Dislikes)
	putList("preferred_cuisines", in.PreferredCuisines)
	putList("preferred_meal_times", in.PreferredMealTimes)
	if in.MealsPerDay != nil {
		updates["meals_per_day"] = *in.MealsPerDay
	}
	for col, v := range map[string]*int{
		"calorie_target": in.CalorieTarget,
		"protein_target": in.ProteinTarget,
		"carb_target":    in.CarbTarget,
		"fat_target":     in.FatTarget,
	} {
		if v != nil {
			updates[col] = *v
		}
	}

	dbc := dbctx.New(ctx)
	prefs, err := s.getOrCreate(dbc, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Preferences.UpdateFields(dbc, prefs.ID, updates); err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	s.syncDiet(ctx, userID)
	return s.repos.Preferences.GetByUserID(dbc, userID)
}

func (s *preferencesService) Onboard(ctx context.Context, step int, text string) (*OnboardingResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.BadRequest("missing_input", "Please describe your preferences.")
	}

	out := &OnboardingResult{Step: step}
	updates := map[string]interface{}{}
	switch step {
	case StepRestrictions:
		r, err := s.onboarder.Restrictions(ctx, text)
		if err != nil {
			return nil, stepError(step, err)
		}
		updates["dietary_tags"] = jsonx.Marshal(r.DietaryTags)
		updates["allergies"] = jsonx.Marshal(r.Allergies)
		updates["dislikes"] = jsonx.Marshal(r.Dislikes)
		out.Parsed = r
		out.NextStep = StepCuisines
	case StepCuisines:
		c, err := s.onboarder.Cuisines(ctx, text)
		if err != nil {
			return nil, stepError(step, err)
		}
		// Favorite foods are parsed and shown but have no column.
		updates["preferred_cuisines"] = jsonx.Marshal(c.PreferredCuisines)
		out.Parsed = c
		out.NextStep = StepTiming
	case StepTiming:
		t, err := s.onboarder.Timing(ctx, text)
		if err != nil {
			return nil, stepError(step, err)
		}
		updates["meals_per_day"] = t.MealsPerDay
		updates["preferred_meal_times"] = jsonx.Marshal(t.MealTimes)
		out.Parsed = t
		out.Complete = true
	default:
		return nil, apierr.BadRequest("invalid_step", fmt.Sprintf("Unknown onboarding step %d.", step))
	}

	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		prefs, err := s.getOrCreate(dbc, userID)
		if err != nil {
			return err
		}
		if out.Complete {
			// A finished onboarding invalidates the previous analysis.
			updates["meal_planning_analysis"] = nil
			updates["meal_baseline"] = nil
		}
		if err := s.repos.Preferences.UpdateFields(dbc, prefs.ID, updates); err != nil {
			return fmt.Errorf("store onboarding step: %w", err)
		}
		if out.Complete {
			job, err := s.jobs.Enqueue(dbc, userID, jobs.TypeMealPlanningAnalysis, jobs.EntityPreferences, &prefs.ID, map[string]any{
				"preferences_id": prefs.ID.String(),
			})
			if err != nil {
				return err
			}
			out.Job = job
		}
		out.Preferences, err = s.repos.Preferences.GetByUserID(dbc, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.Message = fmt.Sprintf("Step %d completed successfully.", step)
	s.syncDiet(ctx, userID)
	return out, nil
}

func stepError(step int, err error) error {
	return apierr.New(http.StatusBadGateway, "onboarding_failed", fmt.Errorf("error processing step %d: %w", step, err))
}

func (s *preferencesService) Reset(ctx context.Context) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	if err := s.repos.Preferences.DeleteByUserID(dbctx.New(ctx), userID); err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	s.syncDiet(ctx, userID)
	return nil
}

func (s *preferencesService) MealPlanning(ctx context.Context) (*MealPlanningView, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	prefs, err := s.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil || profile == nil {
		return nil, apierr.New(http.StatusConflict, "onboarding_incomplete",
			fmt.Errorf("complete your health profile and dietary preferences first"))
	}

	view := &MealPlanningView{Preferences: prefs, HealthGoals: profile.Assessment()}
	if !jsonx.Empty(prefs.MealPlanningAnalysis) {
		if a, err := jsonx.Decode[diet.MealPlanningAnalysis](prefs.MealPlanningAnalysis); err == nil {
			view.Analysis = &a
		}
		if b, err := jsonx.Decode[diet.MealBaseline](prefs.MealBaseline); err == nil && !jsonx.Empty(prefs.MealBaseline) {
			view.Baseline = &b
		}
		return view, nil
	}

	pending, err := s.repos.JobRun.ExistsRunnable(dbc, userID, jobs.TypeMealPlanningAnalysis, jobs.EntityPreferences, &prefs.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		view.Job, err = s.repos.JobRun.GetLatestByEntity(dbc, userID, jobs.EntityPreferences, prefs.ID, jobs.TypeMealPlanningAnalysis)
		return view, err
	}
	view.Job, err = s.jobs.Enqueue(dbc, userID, jobs.TypeMealPlanningAnalysis, jobs.EntityPreferences, &prefs.ID, map[string]any{
		"preferences_id": prefs.ID.String(),
	})
	return view, err
}

func (s *preferencesService) syncDiet(ctx context.Context, userID uuid.UUID) {
	syncDiet(ctx, s.log, s.analytics, userID)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
