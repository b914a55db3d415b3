package recipes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/platform/mealdb"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai/openaitest"
)

// vectors maps query words onto a two-axis space: curry-like and taco-like.
func vectors(text string) ([]float64, error) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "broken"):
		return nil, errors.New("embeddings down")
	case strings.Contains(t, "curry"), strings.Contains(t, "indian"):
		return []float64{1, 0}, nil
	case strings.Contains(t, "taco"), strings.Contains(t, "mexican"):
		return []float64{0, 1}, nil
	}
	return []float64{0.7, 0.7}, nil
}

func seedLibrary(t *testing.T) (*gorm.DB, repos.Set) {
	t.Helper()
	db := testutil.DB(t)
	ctx := context.Background()
	testutil.SeedLibraryRecipe(t, ctx, db, "Chicken Curry", "Chicken", "Indian", []string{"Chicken", "Coconut Milk"}, []float64{1, 0})
	testutil.SeedLibraryRecipe(t, ctx, db, "Peanut Satay Curry", "Chicken", "Thai", []string{"Chicken", "Peanut Butter"}, []float64{0.95, 0.05})
	testutil.SeedLibraryRecipe(t, ctx, db, "Beef Tacos", "Beef", "Mexican", []string{"Beef", "Tortilla"}, []float64{0, 1})
	testutil.SeedLibraryRecipe(t, ctx, db, "Plain Taco Salad", "Vegetarian", "Mexican", []string{"Lettuce"}, nil)
	return db, repos.NewSet(db, testutil.Logger(t))
}

func TestSearchRanksBySimilarity(t *testing.T) {
	_, set := seedLibrary(t)
	lib := NewLibrary(set.LibraryRecipe, &openaitest.Fake{Vectors: vectors}, testutil.Logger(t))

	res, err := lib.Search(context.Background(), Query{Text: "curry night", Vector: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.VectorSearch || !res.RAGEnabled || res.Stats.Total != 4 || res.Stats.Embedded != 3 {
		t.Fatalf("unexpected result meta %+v", res)
	}
	if len(res.Results) != 3 || res.Results[0].MealName != "Chicken Curry" || res.Results[2].MealName != "Beef Tacos" {
		t.Fatalf("unexpected ranking %+v", res.Results)
	}
	if s := res.Results[0].Similarity; s == nil || *s != 1 {
		t.Fatalf("expected similarity 1, got %v", s)
	}
	if len(res.Areas) != 3 || len(res.Categories) != 3 {
		t.Fatalf("unexpected facets %v %v", res.Areas, res.Categories)
	}

	filtered, err := lib.Search(context.Background(), Query{Text: "curry", Area: "mexican", Vector: true})
	if err != nil || len(filtered.Results) != 1 || filtered.Results[0].MealName != "Beef Tacos" {
		t.Fatalf("filters must apply before ranking: %+v %v", filtered, err)
	}
}

func TestSearchFallsBackToText(t *testing.T) {
	_, set := seedLibrary(t)
	lib := NewLibrary(set.LibraryRecipe, &openaitest.Fake{Vectors: vectors}, testutil.Logger(t))

	res, err := lib.Search(context.Background(), Query{Text: "broken taco", Vector: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.VectorSearch || len(res.Results) != 0 {
		t.Fatalf("text fallback for the whole phrase should match nothing, got %+v", res.Results)
	}

	res, _ = lib.Search(context.Background(), Query{Text: "taco", Vector: false})
	if res.VectorSearch || len(res.Results) != 2 || res.Results[0].Similarity != nil {
		t.Fatalf("expected both taco recipes by text, got %+v", res.Results)
	}

	all, _ := lib.Search(context.Background(), Query{Dietary: "tortilla"})
	if len(all.Results) != 1 || all.Results[0].MealName != "Beef Tacos" {
		t.Fatalf("dietary filter without query: %+v", all.Results)
	}

	noEmbed := NewLibrary(set.LibraryRecipe, nil, testutil.Logger(t))
	res, _ = noEmbed.Search(context.Background(), Query{Text: "curry", Vector: true})
	if res.RAGEnabled || res.VectorSearch || len(res.Results) != 2 {
		t.Fatalf("without an embedder search is text only, got %+v", res)
	}
}

func TestRecommendSkipsAllergens(t *testing.T) {
	_, set := seedLibrary(t)
	fake := &openaitest.Fake{Vectors: vectors}
	lib := NewLibrary(set.LibraryRecipe, fake, testutil.Logger(t))

	recs, err := lib.Recommend(context.Background(), Profile{Cuisines: []string{"Indian"}, Allergies: []string{"peanut"}}, 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 || recs[0].MealName != "Chicken Curry" || recs[1].MealName != "Beef Tacos" {
		t.Fatalf("unexpected recommendations %+v", recs)
	}
	if recs[0].Nutrition.Calories != 207 {
		t.Fatalf("expected rough nutrition on each recommendation, got %+v", recs[0].Nutrition)
	}
	if got := fake.Embedded(); len(got) != 1 || got[0] != "Indian" {
		t.Fatalf("unexpected recommendation query %q", got)
	}
	if q := RecommendationQuery(Profile{}); q != "healthy dinner recipe" {
		t.Fatalf("unexpected fallback query %q", q)
	}

	down := NewLibrary(set.LibraryRecipe, &openaitest.Fake{}, testutil.Logger(t))
	if recs, err := down.Recommend(context.Background(), Profile{}, 0); err != nil || len(recs) != 0 {
		t.Fatalf("embedding failure should give an empty list, got %d %v", len(recs), err)
	}
}

func TestEmbedMissing(t *testing.T) {
	_, set := seedLibrary(t)
	fake := &openaitest.Fake{Vectors: vectors}
	lib := NewLibrary(set.LibraryRecipe, fake, testutil.Logger(t))

	rep, err := lib.EmbedMissing(context.Background(), EmbedOptions{})
	if err != nil {
		t.Fatalf("EmbedMissing: %v", err)
	}
	if rep.Processed != 1 || rep.Updated != 1 || rep.Failed != 0 || rep.Stats.Embedded != 4 {
		t.Fatalf("unexpected report %+v", rep)
	}
	got := fake.Embedded()
	if len(got) != 1 || !strings.HasPrefix(got[0], "Plain Taco Salad Lettuce 100g ") || !strings.HasSuffix(got[0], " Vegetarian Mexican") {
		t.Fatalf("unexpected embedding text %q", got)
	}

	failing := NewLibrary(set.LibraryRecipe, &openaitest.Fake{}, testutil.Logger(t))
	rep, err = failing.EmbedMissing(context.Background(), EmbedOptions{Force: true, Workers: 2})
	if err != nil || rep.Processed != 4 || rep.Failed != 4 || rep.Updated != 0 {
		t.Fatalf("per-recipe failures should be counted, got %+v %v", rep, err)
	}

	if _, err := NewLibrary(set.LibraryRecipe, nil, testutil.Logger(t)).EmbedMissing(context.Background(), EmbedOptions{}); !errors.Is(err, ErrNoEmbedder) {
		t.Fatalf("expected ErrNoEmbedder, got %v", err)
	}
}

type letterMealDB struct {
	byLetter map[string][]mealdb.Meal
	failing  string
}

func (f *letterMealDB) Lookup(context.Context, string) (mealdb.Meal, error) {
	return mealdb.Meal{}, mealdb.ErrMealNotFound
}

func (f *letterMealDB) Search(context.Context, string) ([]mealdb.Meal, error) { return nil, nil }

func (f *letterMealDB) ByFirstLetter(_ context.Context, letter string) ([]mealdb.Meal, error) {
	if letter == f.failing {
		return nil, errors.New("mealdb http 502")
	}
	return f.byLetter[letter], nil
}

func meal(id, name, area string) mealdb.Meal {
	return mealdb.Meal{Raw: map[string]any{
		"idMeal": id, "strMeal": name, "strCategory": "Side", "strArea": area,
		"strInstructions": "Mix well and serve.", "strIngredient1": "Tomato", "strMeasure1": "2",
	}}
}

func TestLoadSkipsDuplicatesAndStopsAtLimit(t *testing.T) {
	db := testutil.DB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	lib := NewLibrary(set.LibraryRecipe, nil, testutil.Logger(t))
	src := &letterMealDB{
		failing: "b",
		byLetter: map[string][]mealdb.Meal{
			"a": {meal("1", "Apple Salad", "British"), meal("1", "Apple Salad", "British"), meal("", "", "")},
			"c": {meal("2", "Chili", "Mexican"), meal("3", "Cobbler", "American"), meal("4", "Congee", "Chinese")},
		},
	}

	rep, err := lib.Load(context.Background(), src, LoadOptions{Letters: "abc", Limit: 3})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rep.Loaded != 3 || rep.Skipped != 2 || rep.Stats.Total != 3 || rep.Areas != 3 {
		t.Fatalf("unexpected report %+v", rep)
	}
	r, err := set.LibraryRecipe.GetByMealDBID(dbctx.New(context.Background()), "2")
	if err != nil || r == nil || r.IngredientsText != "2 Tomato" || len(r.SearchTags) == 0 {
		t.Fatalf("loaded row not indexed: %+v %v", r, err)
	}
}
