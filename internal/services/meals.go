package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	dietrepo "github.com/yungbote/nutribridge-backend/internal/data/repos/diet"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/modules/adherence"
	"github.com/yungbote/nutribridge-backend/internal/modules/macros"
	"github.com/yungbote/nutribridge-backend/internal/modules/mealplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/modules/wellness"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
	"github.com/yungbote/nutribridge-backend/internal/platform/mealdb"
)

const (
	SaveStatusSuccess = "success"
	SaveStatusInfo    = "info"
	SaveStatusExists  = "exists"
)

// SaveMealResult reports a saved meal and the macros job estimating it.
// Status is info (or exists, for library recipes) when the meal was
// already saved.
type SaveMealResult struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Meal    *types.UserSavedMeal `json:"meal"`
	Job     *types.JobRun        `json:"job,omitempty"`
}

type IngredientChoices struct {
	Message string                  `json:"message"`
	Choices []macros.Interpretation `json:"ingredient_choices"`
}

type CustomMealInput struct {
	MealName          string            `json:"meal_name"`
	Category          string            `json:"category"`
	Area              string            `json:"area"`
	Instructions      string            `json:"instructions"`
	ChosenIngredients []diet.Ingredient `json:"chosen_ingredients"`
}

type MealMacros struct {
	Macros   datatypes.JSON `json:"macros"`
	Servings *int           `json:"servings"`
}

// SavedMealsView is the saved-meals page: the library, the planner window
// and the adherence computed for it.
type SavedMealsView struct {
	SavedMeals            []*types.UserSavedMeal     `json:"saved_meals"`
	TotalCount            int                        `json:"total_count"`
	Week                  *WeekPlan                  `json:"week"`
	MealAnalysis          *diet.MealPlanningAnalysis `json:"meal_analysis"`
	Adherence             adherence.Result           `json:"adherence"`
	AdherenceRatio        float64                    `json:"adherence_ratio"`
	BaseWellnessScore     *int                       `json:"base_wellness_score"`
	AdjustedWellnessScore *int                       `json:"adjusted_wellness_score"`
}

type MealService interface {
	// Save copies a MealDB recipe into the user's library and schedules
	// macro estimation.
	Save(ctx context.Context, mealDBID string) (*SaveMealResult, error)
	InterpretCustom(ctx context.Context, text string) (*IngredientChoices, error)
	SaveCustom(ctx context.Context, in CustomMealInput) (*SaveMealResult, error)
	// List recomputes the adherence ratio for the planner window.
	List(ctx context.Context) (*SavedMealsView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]mealdb.Recipe, error)
	Recipe(ctx context.Context, id string) (*mealdb.Recipe, error)
	Macros(ctx context.Context, id uuid.UUID) (*MealMacros, error)
	PrepTime(ctx context.Context, id uuid.UUID) (float64, error)
}

type mealService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	jobs      JobService
	mealdb    mealdb.Client
	estimator *macros.Estimator
	orch      *recompute.Orchestrator
	analytics AnalyticsService
	saved     mealStore
	now       func() time.Time
}

func NewMealService(
	db *gorm.DB,
	baseLog *logger.Logger,
	r repos.Set,
	jobSvc JobService,
	client mealdb.Client,
	estimator *macros.Estimator,
	orch *recompute.Orchestrator,
	analytics AnalyticsService,
) MealService {
	log := baseLog.With("service", "MealService")
	return &mealService{
		db:        db,
		log:       log,
		repos:     r,
		jobs:      jobSvc,
		mealdb:    client,
		estimator: estimator,
		orch:      orch,
		analytics: analytics,
		saved:     mealStore{db: db, log: log, repos: r, jobs: jobSvc, analytics: analytics},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *mealService) Save(ctx context.Context, mealDBID string) (*SaveMealResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	mealDBID = strings.TrimSpace(mealDBID)
	if mealDBID == "" {
		return nil, apierr.BadRequest("missing_meal_id", "No meal ID provided")
	}
	dbc := dbctx.New(ctx)
	existing, err := s.repos.SavedMeal.GetByMealDBID(dbc, userID, mealDBID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SaveMealResult{Status: SaveStatusInfo, Message: "Meal already saved!", Meal: existing}, nil
	}

	meal, err := s.mealdb.Lookup(ctx, mealDBID)
	if errors.Is(err, mealdb.ErrMealNotFound) {
		return nil, apierr.NotFound("meal_not_found", "Meal not found")
	}
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "mealdb_unavailable", fmt.Errorf("network error: %w", err))
	}
	row := meal.SavedMeal()
	row.UserID = userID
	return s.saved.store(ctx, userID, row, "Meal saved successfully!")
}

// mealStore is the save path shared by every way a meal enters a user's
// library.
type mealStore struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	jobs      JobService
	analytics AnalyticsService
}

// store creates row and enqueues saved_meal_macros in one transaction.
func (s mealStore) store(ctx context.Context, userID uuid.UUID, row *types.UserSavedMeal, message string) (*SaveMealResult, error) {
	out := &SaveMealResult{Status: SaveStatusSuccess, Message: message, Meal: row}
	err := inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		if err := s.repos.SavedMeal.Create(dbc, row); err != nil {
			return err
		}
		job, err := s.jobs.Enqueue(dbc, userID, jobs.TypeSavedMealMacros, jobs.EntitySavedMeal, &row.ID, map[string]any{
			"saved_meal_id": row.ID.String(),
		})
		if err != nil {
			return err
		}
		out.Job = job
		return nil
	})
	if errors.Is(err, dietrepo.ErrDuplicateSavedMeal) {
		existing, gerr := s.repos.SavedMeal.GetByMealDBID(dbctx.New(ctx), userID, row.MealDBID)
		if gerr != nil {
			return nil, gerr
		}
		return &SaveMealResult{Status: SaveStatusInfo, Message: "Meal already saved!", Meal: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save meal: %w", err)
	}
	s.log.Info("meal saved", "user_id", userID, "saved_meal_id", row.ID, "source", row.Source, "job_id", out.Job.ID)
	syncDiet(ctx, s.log, s.analytics, userID)
	return out, nil
}

func (s *mealService) InterpretCustom(ctx context.Context, text string) (*IngredientChoices, error) {
	if _, err := requestUser(ctx); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.BadRequest("missing_ingredients", "Ingredients text is required.")
	}
	choices := s.estimator.Interpret(ctx, text)
	if len(choices) == 0 {
		return nil, apierr.BadRequest("uninterpretable_ingredients", "The AI could not understand the ingredients. Please try rephrasing them.")
	}
	return &IngredientChoices{Message: "Please confirm the ingredients.", Choices: choices}, nil
}

func (s *mealService) SaveCustom(ctx context.Context, in CustomMealInput) (*SaveMealResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.MealName)
	if name == "" || strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.Instructions) == "" || len(in.ChosenIngredients) == 0 {
		return nil, apierr.BadRequest("missing_fields", "Missing required fields.")
	}
	raw := macros.RawMealData(name, in.Category, in.Area, in.Instructions, in.ChosenIngredients)
	row := &types.UserSavedMeal{
		UserID:        userID,
		MealDBID:      diet.CustomMealID(name, s.now()),
		MealName:      name,
		Category:      in.Category,
		Area:          in.Area,
		Instructions:  in.Instructions,
		RawMealDBData: jsonx.Marshal(raw),
		Source:        diet.SourceCustom,
	}
	return s.saved.store(ctx, userID, row, "Custom meal saved. Nutritional info is being calculated in the background.")
}

func (s *mealService) List(ctx context.Context) (*SavedMealsView, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	saved, err := s.repos.SavedMeal.ListByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	w, err := loadWeek(dbc, s.repos, userID, s.now())
	if err != nil {
		return nil, err
	}
	view := &SavedMealsView{SavedMeals: saved, TotalCount: len(saved), Week: w.plan()}

	prefs, err := s.repos.Preferences.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil && !jsonx.Empty(prefs.MealPlanningAnalysis) {
		if a, err := jsonx.Decode[diet.MealPlanningAnalysis](prefs.MealPlanningAnalysis); err == nil {
			view.MealAnalysis = &a
		}
	}

	res, err := s.orch.RefreshAdherence(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh adherence: %w", err)
	}
	view.Adherence = res
	view.AdherenceRatio = res.Ratio

	profile, err := s.repos.HealthProfile.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		base := wellness.Score(wellness.FromProfile(profile))
		view.BaseWellnessScore = pointers.Ptr(base)
		view.AdjustedWellnessScore = pointers.Ptr(wellness.Adjusted(base, res.Ratio))
	}
	return view, nil
}

// Delete removes the meal and every plan entry that references it. Slots
// left without entries are deleted.
func (s *mealService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	ref := id.String()
	err = inTx(s.db, dbctx.New(ctx), func(dbc dbctx.Context) error {
		deleted, err := s.repos.SavedMeal.Delete(dbc, userID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apierr.NotFound("meal_not_found", "Meal not found.")
		}
		slots, err := s.repos.PlannedMeal.ListByUser(dbc, userID)
		if err != nil {
			return err
		}
		for _, pm := range slots {
			plan := mealplan.DecodePlan(pm)
			kept := make([]diet.PlanEntry, 0, len(plan.Meals))
			for _, e := range plan.Meals {
				if e.SavedMealID != ref {
					kept = append(kept, e)
				}
			}
			switch {
			case len(kept) == len(plan.Meals):
				continue
			case len(kept) == 0:
				err = s.repos.PlannedMeal.Delete(dbc, pm.ID)
			default:
				pm.PlanJSON = jsonx.Marshal(diet.MealPlan{Meals: kept})
				err = s.repos.PlannedMeal.Save(dbc, pm)
			}
			if err != nil {
				return fmt.Errorf("drop plan entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	syncDiet(ctx, s.log, s.analytics, userID)
	return nil
}

func (s *mealService) Search(ctx context.Context, query string) ([]mealdb.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierr.BadRequest("missing_query", "No search query provided")
	}
	meals, err := s.mealdb.Search(ctx, query)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "mealdb_unavailable", fmt.Errorf("network error: %w", err))
	}
	if len(meals) == 0 {
		return nil, apierr.NotFound("no_recipes", "No recipes found")
	}
	out := make([]mealdb.Recipe, 0, len(meals))
	for _, m := range meals {
		out = append(out, m.Recipe(false))
	}
	return out, nil
}

func (s *mealService) Recipe(ctx context.Context, id string) (*mealdb.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apierr.BadRequest("missing_recipe_id", "No recipe ID provided")
	}
	meal, err := s.mealdb.Lookup(ctx, id)
	if errors.Is(err, mealdb.ErrMealNotFound) {
		return nil, apierr.NotFound("recipe_not_found", "Recipe not found")
	}
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "mealdb_unavailable", fmt.Errorf("network error: %w", err))
	}
	r := meal.Recipe(true)
	return &r, nil
}

func (s *mealService) owned(dbc dbctx.Context, id uuid.UUID) (uuid.UUID, *types.UserSavedMeal, error) {
	userID, err := requestUser(dbc.Ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	m, err := s.repos.SavedMeal.GetByID(dbc, userID, id)
	if err != nil {
		return userID, nil, err
	}
	if m == nil {
		return userID, nil, apierr.NotFound("meal_not_found", "Meal not found.")
	}
	return userID, m, nil
}

// Macros estimates synchronously when the meal has none yet.
func (s *mealService) Macros(ctx context.Context, id uuid.UUID) (*MealMacros, error) {
	dbc := dbctx.New(ctx)
	userID, m, err := s.owned(dbc, id)
	if err != nil {
		return nil, err
	}
	var estimated datatypes.JSON
	if jsonx.Empty(m.MacrosJSON) {
		estimated, err = s.estimator.Estimate(ctx, m)
		if err != nil {
			s.log.Warn("macro estimate failed", "user_id", userID, "saved_meal_id", m.ID, "error", err)
			return nil, apierr.BadGateway("macros_unavailable", "Failed to get macros from AI.")
		}
	}
	if updates := macros.Updates(m, estimated); len(updates) > 0 {
		if err := s.repos.SavedMeal.UpdateFields(dbc, m.ID, updates); err != nil {
			return nil, fmt.Errorf("store macros: %w", err)
		}
		syncDiet(ctx, s.log, s.analytics, userID)
	}
	return &MealMacros{Macros: m.MacrosJSON, Servings: m.RecommendedServings}, nil
}

func (s *mealService) PrepTime(ctx context.Context, id uuid.UUID) (float64, error) {
	dbc := dbctx.New(ctx)
	userID, m, err := s.owned(dbc, id)
	if err != nil {
		return 0, err
	}
	if m.PrepTimeMin != nil {
		return *m.PrepTimeMin, nil
	}
	failed := apierr.BadGateway("prep_time_unavailable", "Failed to get prep time from AI.")
	estimated, err := s.estimator.Estimate(ctx, m)
	if err != nil {
		s.log.Warn("prep time estimate failed", "user_id", userID, "saved_meal_id", m.ID, "error", err)
		return 0, failed
	}
	tmp := &types.UserSavedMeal{MacrosJSON: estimated}
	parsed, ok := tmp.Macros()
	if !ok || parsed.PrepTimeMin == nil {
		return 0, failed
	}
	if err := s.repos.SavedMeal.UpdateFields(dbc, m.ID, map[string]interface{}{"prep_time_min": *parsed.PrepTimeMin}); err != nil {
		return 0, fmt.Errorf("store prep time: %w", err)
	}
	return *parsed.PrepTimeMin, nil
}
