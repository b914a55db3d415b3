package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/modules/recipes"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
	"github.com/yungbote/nutribridge-backend/internal/platform/usda"
)

const aiMealIDAttempts = 5

type SubstituteSuggestion struct {
	Original   string `json:"original"`
	Substitute string `json:"substitute"`
}

type Recommendations struct {
	Recommendations []recipes.Recommendation `json:"recommendations"`
	// Query is the text the profile was embedded as.
	Query string `json:"query"`
}

// RecipeService covers the recipe sources outside MealDB lookups: generated
// recipes, ingredient substitutes, the shared recipe library and USDA foods.
type RecipeService interface {
	Generate(ctx context.Context) (*recipes.Recipe, error)
	SaveGenerated(ctx context.Context, r recipes.Recipe) (*SaveMealResult, error)
	SuggestSubstitute(ctx context.Context, ingredient string) (*SubstituteSuggestion, error)
	// SaveSubstitute copies a saved meal with one ingredient swapped.
	SaveSubstitute(ctx context.Context, mealID uuid.UUID, original, substitute string) (*SaveMealResult, error)
	SearchLibrary(ctx context.Context, q recipes.Query) (*recipes.SearchResult, error)
	Recommend(ctx context.Context) (*Recommendations, error)
	SaveLibraryRecipe(ctx context.Context, id uuid.UUID) (*SaveMealResult, error)
	SearchFoods(ctx context.Context, q string, page, pageSize int) (*usda.SearchResult, error)
	Food(ctx context.Context, fdcID int64) (*usda.Food, error)
}

type recipeService struct {
	log     *logger.Logger
	repos   repos.Set
	writer  *recipes.Writer
	library *recipes.Library
	foods   usda.Client
	saved   mealStore
}

// NewRecipeService accepts a nil foods client; food routes then answer 503.
func NewRecipeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	r repos.Set,
	jobSvc JobService,
	writer *recipes.Writer,
	library *recipes.Library,
	foods usda.Client,
	analytics AnalyticsService,
) RecipeService {
	log := baseLog.With("service", "RecipeService")
	return &recipeService{
		log:     log,
		repos:   r,
		writer:  writer,
		library: library,
		foods:   foods,
		saved:   mealStore{db: db, log: log, repos: r, jobs: jobSvc, analytics: analytics},
	}
}

func (s *recipeService) profile(ctx context.Context) (uuid.UUID, recipes.Profile, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return uuid.Nil, recipes.Profile{}, err
	}
	prefs, err := s.repos.Preferences.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return userID, recipes.Profile{}, err
	}
	return userID, recipes.ProfileFrom(prefs), nil
}

func (s *recipeService) Generate(ctx context.Context) (*recipes.Recipe, error) {
	userID, p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.writer.Generate(ctx, p)
	if err != nil {
		s.log.Warn("recipe generation failed", "user_id", userID, "error", err)
		return nil, apierr.New(http.StatusBadGateway, "recipe_unavailable", fmt.Errorf("generate recipe: %w", err))
	}
	return &r, nil
}

func (s *recipeService) SaveGenerated(ctx context.Context, r recipes.Recipe) (*SaveMealResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if !r.Validate() {
		return nil, apierr.BadRequest("missing_fields", "Missing required fields")
	}
	dbc := dbctx.New(ctx)
	mealDBID := ""
	for i := 0; i < aiMealIDAttempts && mealDBID == ""; i++ {
		id := recipes.AIMealID()
		existing, err := s.repos.SavedMeal.GetByMealDBID(dbc, userID, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			mealDBID = id
		}
	}
	if mealDBID == "" {
		return nil, apierr.New(http.StatusInternalServerError, "meal_id_exhausted", errors.New("could not generate unique mealdb_id"))
	}
	row := r.SavedMeal()
	row.UserID = userID
	row.MealDBID = mealDBID
	return s.saved.store(ctx, userID, row, "Recipe saved. Nutritional info is being calculated in the background.")
}

func (s *recipeService) SuggestSubstitute(ctx context.Context, ingredient string) (*SubstituteSuggestion, error) {
	userID, p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, apierr.BadRequest("missing_ingredient", "Missing ingredient")
	}
	sub, err := s.writer.Substitute(ctx, ingredient, p)
	if err != nil {
		s.log.Warn("substitute suggestion failed", "user_id", userID, "ingredient", ingredient, "error", err)
		return nil, apierr.New(http.StatusBadGateway, "substitute_unavailable", fmt.Errorf("suggest substitute: %w", err))
	}
	return &SubstituteSuggestion{Original: ingredient, Substitute: sub}, nil
}

func (s *recipeService) SaveSubstitute(ctx context.Context, mealID uuid.UUID, original, substitute string) (*SaveMealResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if mealID == uuid.Nil || strings.TrimSpace(original) == "" || strings.TrimSpace(substitute) == "" {
		return nil, apierr.BadRequest("missing_data", "Missing data")
	}
	orig, err := s.repos.SavedMeal.GetByID(dbctx.New(ctx), userID, mealID)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, apierr.NotFound("meal_not_found", "Meal not found.")
	}
	row, err := recipes.Substituted(orig, original, substitute)
	if errors.Is(err, recipes.ErrIngredientNotFound) {
		return nil, apierr.BadRequest("ingredient_not_found", fmt.Sprintf("%q is not an ingredient of this meal.", strings.TrimSpace(original)))
	}
	if err != nil {
		return nil, err
	}
	row.UserID = userID
	return s.saved.store(ctx, userID, row, fmt.Sprintf("Saved a copy with %s instead of %s.", strings.TrimSpace(substitute), strings.TrimSpace(original)))
}

func (s *recipeService) SearchLibrary(ctx context.Context, q recipes.Query) (*recipes.SearchResult, error) {
	if _, err := requestUser(ctx); err != nil {
		return nil, err
	}
	return s.library.Search(ctx, q)
}

func (s *recipeService) Recommend(ctx context.Context) (*Recommendations, error) {
	_, p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.library.Recommend(ctx, p, 0)
	if err != nil {
		return nil, err
	}
	return &Recommendations{Recommendations: recs, Query: recipes.RecommendationQuery(p)}, nil
}

func (s *recipeService) SaveLibraryRecipe(ctx context.Context, id uuid.UUID) (*SaveMealResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	rec, err := s.repos.LibraryRecipe.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apierr.NotFound("recipe_not_found", "Recipe not found.")
	}
	existing, err := s.repos.SavedMeal.GetByMealDBID(dbc, userID, rec.MealDBID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SaveMealResult{Status: SaveStatusExists, Message: "You have already saved this meal.", Meal: existing}, nil
	}
	row := rec.SavedMeal()
	row.UserID = userID
	return s.saved.store(ctx, userID, row, "Meal saved successfully! You can find it in 'My Saved Meals'.")
}

func (s *recipeService) foodsClient(ctx context.Context) (usda.Client, error) {
	if _, err := requestUser(ctx); err != nil {
		return nil, err
	}
	if s.foods == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "usda_not_configured", usda.ErrNotConfigured)
	}
	return s.foods, nil
}

func (s *recipeService) SearchFoods(ctx context.Context, q string, page, pageSize int) (*usda.SearchResult, error) {
	c, err := s.foodsClient(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q) == "" {
		return nil, apierr.BadRequest("missing_query", "Search query is required.")
	}
	res, err := c.Search(ctx, q, page, pageSize)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "usda_unavailable", fmt.Errorf("usda search: %w", err))
	}
	return &res, nil
}

func (s *recipeService) Food(ctx context.Context, fdcID int64) (*usda.Food, error) {
	c, err := s.foodsClient(ctx)
	if err != nil {
		return nil, err
	}
	f, err := c.Food(ctx, fdcID)
	if errors.Is(err, usda.ErrFoodNotFound) {
		return nil, apierr.NotFound("food_not_found", "Food not found.")
	}
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "usda_unavailable", fmt.Errorf("usda food: %w", err))
	}
	return &f, nil
}
