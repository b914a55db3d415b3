package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/modules/recipes"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/platform/usda"
)

const generatedCurry = `Sure! {"title":"Chickpea Curry","ingredients":[{"ingredient":"Chickpeas","measure":"1 can"},{"ingredient":"Coconut Milk","measure":"200ml"}],"instructions":["Simmer the chickpeas.","Stir in the coconut milk."],"meal_type":"Dinner","cuisine":"Indian"}`

type fakeFoods struct {
	foods map[int64]usda.Food
	err   error
}

func (f *fakeFoods) Search(_ context.Context, q string, page, _ int) (usda.SearchResult, error) {
	if f.err != nil {
		return usda.SearchResult{}, f.err
	}
	out := usda.SearchResult{Query: q, CurrentPage: page}
	for _, food := range f.foods {
		if strings.Contains(strings.ToLower(food.Description), strings.ToLower(q)) {
			out.Foods = append(out.Foods, food)
		}
	}
	out.TotalHits = len(out.Foods)
	return out, nil
}

func (f *fakeFoods) Food(_ context.Context, id int64) (usda.Food, error) {
	if f.err != nil {
		return usda.Food{}, f.err
	}
	food, ok := f.foods[id]
	if !ok {
		return usda.Food{}, usda.ErrFoodNotFound
	}
	return food, nil
}

func newRecipes(e *env, foods usda.Client) RecipeService {
	lib := recipes.NewLibrary(e.set.LibraryRecipe, e.llm, e.log)
	return NewRecipeService(e.db, e.log, e.set, e.jobs, recipes.New(e.llm), lib, foods, nil)
}

func TestGenerateUsesPreferences(t *testing.T) {
	e := newEnv(t)
	testutil.SeedPreferences(t, context.Background(), e.db, e.user.ID, `{"daily_calories":1750}`)
	e.llm.Respond = func(_, user string) (string, error) { return generatedCurry, nil }
	svc := newRecipes(e, nil)

	r, err := svc.Generate(e.ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.Title != "Chickpea Curry" || len(r.Ingredients) != 2 {
		t.Fatalf("recipe=%+v", r)
	}
	calls := e.llm.Calls()
	if len(calls) != 1 || !strings.Contains(calls[0].User, "1750") || !strings.Contains(calls[0].User, "Allergies: peanuts") {
		t.Fatalf("prompt did not carry preferences: %+v", calls)
	}

	e.llm.Respond = func(string, string) (string, error) { return "", errors.New("rate limited") }
	_, err = svc.Generate(e.ctx)
	wantStatus(t, err, http.StatusBadGateway)
}

func TestSaveGeneratedEnqueuesMacros(t *testing.T) {
	e := newEnv(t)
	svc := newRecipes(e, nil)

	res, err := svc.SaveGenerated(e.ctx, recipes.Recipe{
		Title:        " Chickpea Curry ",
		Ingredients:  []diet.Ingredient{{Ingredient: "Chickpeas", Measure: "1 can"}},
		Instructions: []string{"Simmer.", " "},
		MealType:     "Dinner",
		Cuisine:      "Indian",
	})
	if err != nil {
		t.Fatalf("SaveGenerated: %v", err)
	}
	m := res.Meal
	if res.Status != SaveStatusSuccess || m.Source != diet.SourceAI || m.MealName != "Chickpea Curry" || m.Category != "Dinner" || len(m.MealDBID) != 8 {
		t.Fatalf("meal=%+v", m)
	}
	if m.Instructions != "Simmer." || jsonx.Map(m.RawMealDBData)["strIngredient1"] != "Chickpeas" {
		t.Fatalf("stored payload=%s instructions=%q", m.RawMealDBData, m.Instructions)
	}
	if res.Job == nil || res.Job.JobType != jobs.TypeSavedMealMacros {
		t.Fatalf("job=%+v", res.Job)
	}

	_, err = svc.SaveGenerated(e.ctx, recipes.Recipe{Title: "Empty"})
	if ae := wantStatus(t, err, http.StatusBadRequest); ae.Code != "missing_fields" {
		t.Fatalf("code=%q", ae.Code)
	}
}

func TestSubstituteSuggestAndSave(t *testing.T) {
	e := newEnv(t)
	e.llm.Respond = func(_, user string) (string, error) {
		if !strings.Contains(user, "'Chicken'") {
			return "", errors.New("unexpected prompt")
		}
		return "Tofu.", nil
	}
	svc := newRecipes(e, nil)

	s, err := svc.SuggestSubstitute(e.ctx, " Chicken ")
	if err != nil {
		t.Fatalf("SuggestSubstitute: %v", err)
	}
	if s.Original != "Chicken" || s.Substitute != "Tofu" {
		t.Fatalf("suggestion=%+v", s)
	}
	_, err = svc.SuggestSubstitute(e.ctx, "")
	wantStatus(t, err, http.StatusBadRequest)

	orig := testutil.SeedSavedMeal(t, context.Background(), e.db, e.user.ID, "Chicken Rice", 600, 2)
	res, err := svc.SaveSubstitute(e.ctx, orig.ID, "chicken", "Tofu")
	if err != nil {
		t.Fatalf("SaveSubstitute: %v", err)
	}
	m := res.Meal
	if m.MealName != "Subs - Chicken Rice" || m.Source != diet.SourceSubstitute || !strings.HasPrefix(m.MealDBID, "subs-") {
		t.Fatalf("copy=%+v", m)
	}
	raw := jsonx.Map(m.RawMealDBData)
	if raw["strIngredient1"] != "Tofu" || raw["strIngredient2"] != "Rice" || !jsonx.Empty(m.MacrosJSON) {
		t.Fatalf("copy payload=%s macros=%s", m.RawMealDBData, m.MacrosJSON)
	}
	if res.Job == nil {
		t.Fatal("expected a macros job for the copy")
	}

	_, err = svc.SaveSubstitute(e.ctx, orig.ID, "Beef", "Tofu")
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.SaveSubstitute(e.ctx, orig.ID, "Chicken", "")
	wantStatus(t, err, http.StatusBadRequest)

	other := testutil.SeedUser(t, context.Background(), e.db, "other@example.com")
	_, err = svc.SaveSubstitute(asUser(other.ID), orig.ID, "Chicken", "Tofu")
	wantStatus(t, err, http.StatusNotFound)
}

func TestSaveLibraryRecipeOnce(t *testing.T) {
	e := newEnv(t)
	rec := testutil.SeedLibraryRecipe(t, context.Background(), e.db, "Chicken Curry", "Chicken", "Indian", []string{"Chicken"}, nil)
	svc := newRecipes(e, nil)

	res, err := svc.SaveLibraryRecipe(e.ctx, rec.ID)
	if err != nil {
		t.Fatalf("SaveLibraryRecipe: %v", err)
	}
	if res.Status != SaveStatusSuccess || res.Meal.Source != diet.SourceLibrary || res.Meal.MealDBID != rec.MealDBID {
		t.Fatalf("result=%+v meal=%+v", res, res.Meal)
	}
	again, err := svc.SaveLibraryRecipe(e.ctx, rec.ID)
	if err != nil {
		t.Fatalf("SaveLibraryRecipe again: %v", err)
	}
	if again.Status != SaveStatusExists || again.Meal.ID != res.Meal.ID || again.Job != nil {
		t.Fatalf("second save=%+v", again)
	}
	_, err = svc.SaveLibraryRecipe(e.ctx, uuid.New())
	wantStatus(t, err, http.StatusNotFound)
}

func TestRecommendWithoutEmbeddingsIsEmpty(t *testing.T) {
	e := newEnv(t)
	testutil.SeedPreferences(t, context.Background(), e.db, e.user.ID, "")
	svc := newRecipes(e, nil)

	out, err := svc.Recommend(e.ctx)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(out.Recommendations) != 0 || out.Query != "vegetarian Italian" {
		t.Fatalf("recommendations=%+v", out)
	}
}

func TestFoodsErrors(t *testing.T) {
	e := newEnv(t)
	_, err := newRecipes(e, nil).SearchFoods(e.ctx, "apple", 1, 10)
	wantStatus(t, err, http.StatusServiceUnavailable)

	svc := newRecipes(e, &fakeFoods{foods: map[int64]usda.Food{171688: {FDCID: 171688, Description: "Apples, raw", Calories: 52}}})
	res, err := svc.SearchFoods(e.ctx, "apple", 1, 10)
	if err != nil || res.TotalHits != 1 || res.Foods[0].Calories != 52 {
		t.Fatalf("search=%+v err=%v", res, err)
	}
	_, err = svc.SearchFoods(e.ctx, " ", 1, 10)
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Food(e.ctx, 1)
	wantStatus(t, err, http.StatusNotFound)

	down := newRecipes(e, &fakeFoods{err: errors.New("usda http 500")})
	_, err = down.Food(e.ctx, 171688)
	wantStatus(t, err, http.StatusBadGateway)
}
