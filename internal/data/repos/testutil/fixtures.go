package testutil

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, heightCM, weightKG float64, assessment string) *types.HealthProfile {
	tb.Helper()
	p := &types.HealthProfile{
		UserID:             userID,
		HeightCM:           heightCM,
		WeightKG:           weightKG,
		Lifestyle:          "I walk to work",
		DietaryPreferences: "mostly home cooked",
		FitnessGoals:       "lose a little weight",
	}
	if assessment != "" {
		p.AssessmentData = datatypes.JSON(assessment)
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedGoalPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, targetWeight float64, weekly int) *types.GoalPlan {
	tb.Helper()
	g := &types.GoalPlan{
		UserID:               userID,
		TargetWeight:         &targetWeight,
		WeeklyActivityTarget: &weekly,
		GoalDescription:      "get fitter",
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed goal plan: %v", err)
	}
	return g
}

func SeedPreferences(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, analysis string) *types.UserDietaryPreferences {
	tb.Helper()
	p := &types.UserDietaryPreferences{
		UserID:            userID,
		DietaryTags:       datatypes.JSON(`["vegetarian"]`),
		Allergies:         datatypes.JSON(`["peanuts"]`),
		Dislikes:          datatypes.JSON(`[]`),
		PreferredCuisines: datatypes.JSON(`["Italian"]`),
		MealsPerDay:       3,
	}
	if analysis != "" {
		p.MealPlanningAnalysis = datatypes.JSON(analysis)
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed preferences: %v", err)
	}
	return p
}

// SeedSavedMeal stores a meal with the given macro totals and servings.
func SeedSavedMeal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, calories float64, servings int) *types.UserSavedMeal {
	tb.Helper()
	m := &types.UserSavedMeal{
		UserID:        userID,
		MealDBID:      uuid.NewString()[:8],
		MealName:      name,
		RawMealDBData: datatypes.JSON(`{"strMeal":"` + name + `","strIngredient1":"Chicken","strMeasure1":"200 g","strIngredient2":"Rice","strMeasure2":"1 cup"}`),
		MacrosJSON:    datatypes.JSON(`{"calories":` + ftoa(calories) + `,"protein":30,"carbs":60,"fat":12}`),
	}
	if servings > 0 {
		m.RecommendedServings = &servings
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed saved meal: %v", err)
	}
	return m
}

// SeedLibraryRecipe stores a library recipe with the given ingredients and an
// optional embedding.
func SeedLibraryRecipe(tb testing.TB, ctx context.Context, tx *gorm.DB, name, category, area string, ingredients []string, vec []float64) *types.LibraryRecipe {
	tb.Helper()
	raw := map[string]any{"idMeal": uuid.NewString()[:8], "strMeal": name, "strCategory": category, "strArea": area}
	for i, ing := range ingredients {
		raw["strIngredient"+strconv.Itoa(i+1)] = ing
		raw["strMeasure"+strconv.Itoa(i+1)] = "100g"
	}
	b, _ := json.Marshal(raw)
	r := &types.LibraryRecipe{
		MealDBID:      raw["idMeal"].(string),
		MealName:      name,
		Category:      category,
		Area:          area,
		Instructions:  "Cook everything together until done.",
		RawMealDBData: datatypes.JSON(b),
	}
	if vec != nil {
		v, _ := json.Marshal(vec)
		r.Embedding = datatypes.JSON(v)
	}
	r.Index()
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed library recipe: %v", err)
	}
	return r
}
