package recipes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai/openaitest"
)

const curryReply = "Here you go:\n```json\n" + `{"title":" Lentil Curry ","ingredients":[{"ingredient":"Red lentils","measure":"200g"},{"ingredient":" ","measure":"1"}],
"instructions":["Rinse the lentils.","  ","Simmer with spices for 20 minutes."],"meal_type":"dinner","cuisine":"Indian"}` + "\n```"

func TestGenerateParsesRecipe(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) { return curryReply, nil }}
	w := New(fake)

	r, err := w.Generate(context.Background(), Profile{DailyCalories: 1800, Allergies: []string{"peanuts"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if r.Title != "Lentil Curry" || len(r.Ingredients) != 1 || len(r.Instructions) != 2 || r.Cuisine != "Indian" {
		t.Fatalf("unexpected recipe %+v", r)
	}
	call := fake.Calls()[0]
	if !strings.Contains(call.User, "Daily calorie target: 1800") || !strings.Contains(call.User, "Allergies: peanuts") || !strings.Contains(call.User, "Dislikes: None") {
		t.Fatalf("profile missing from prompt:\n%s", call.User)
	}
	if call.Opts.Temperature == nil || *call.Opts.Temperature != 0.99 {
		t.Fatalf("expected temperature 0.99, got %+v", call.Opts)
	}
}

func TestGenerateRejectsIncompleteRecipe(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) {
		return `{"title":"Air","ingredients":[],"instructions":["Breathe."]}`, nil
	}}
	if _, err := New(fake).Generate(context.Background(), Profile{}); !errors.Is(err, ErrBadRecipe) {
		t.Fatalf("expected ErrBadRecipe, got %v", err)
	}
	fake.Respond = func(string, string) (string, error) { return "no json here", nil }
	if _, err := New(fake).Generate(context.Background(), Profile{}); !errors.Is(err, ErrBadRecipe) {
		t.Fatalf("expected ErrBadRecipe for prose, got %v", err)
	}
}

func TestSubstituteTrimsReply(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) { return " \"Greek yogurt.\"\nIt works well.", nil }}
	got, err := New(fake).Substitute(context.Background(), "sour cream", Profile{Dislikes: []string{"tofu", "olives"}})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if got != "Greek yogurt" {
		t.Fatalf("unexpected suggestion %q", got)
	}
	call := fake.Calls()[0]
	if !strings.Contains(call.User, "'sour cream'") || !strings.Contains(call.User, "dislikes (tofu, olives)") || !strings.Contains(call.User, "allergies (None)") {
		t.Fatalf("unexpected prompt:\n%s", call.User)
	}
	if call.System != substituteSystemPrompt {
		t.Fatalf("unexpected system prompt %q", call.System)
	}

	fake.Respond = func(string, string) (string, error) { return " . ", nil }
	if _, err := New(fake).Substitute(context.Background(), "x", Profile{}); !errors.Is(err, ErrEmptySuggestion) {
		t.Fatalf("expected ErrEmptySuggestion, got %v", err)
	}
}

func TestProfileFrom(t *testing.T) {
	p := ProfileFrom(nil)
	if p.DailyCalories != 2000 || p.Allergies == nil {
		t.Fatalf("unexpected defaults %+v", p)
	}
	prefs := &diet.UserDietaryPreferences{
		Allergies:            datatypes.JSON(`["shellfish"]`),
		PreferredCuisines:    datatypes.JSON(`["Thai"]`),
		MealPlanningAnalysis: datatypes.JSON(`{"daily_calories":1650}`),
	}
	p = ProfileFrom(prefs)
	if p.DailyCalories != 1650 || len(p.Allergies) != 1 || p.Cuisines[0] != "Thai" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestRecipeSavedMeal(t *testing.T) {
	r := Recipe{
		Title:        "Shakshuka",
		Ingredients:  []diet.Ingredient{{Ingredient: "Eggs", Measure: "4"}, {Ingredient: "Tomatoes", Measure: "400g"}},
		Instructions: []string{"Simmer the tomatoes.", "Crack in the eggs and cover."},
		MealType:     "breakfast",
		Cuisine:      "Middle Eastern",
	}
	m := r.SavedMeal()
	if m.Source != diet.SourceAI || m.Category != "breakfast" || m.Area != "Middle Eastern" {
		t.Fatalf("unexpected meal %+v", m)
	}
	if ings := m.Ingredients(); len(ings) != 2 || ings[1].Measure != "400g" {
		t.Fatalf("unexpected ingredients %+v", ings)
	}
	if steps := m.InstructionSteps(); len(steps) != 2 || steps[1].StepNumber != 2 {
		t.Fatalf("unexpected steps %+v", steps)
	}
	if id := AIMealID(); len(id) != 8 || id[0] == '0' {
		t.Fatalf("unexpected ai meal id %q", id)
	}
}

func TestSubstitutedReplacesFirstMatch(t *testing.T) {
	orig := &diet.UserSavedMeal{
		MealName:      "Pancakes",
		Category:      "Dessert",
		MacrosJSON:    datatypes.JSON(`{"calories":800}`),
		RawMealDBData: datatypes.JSON(`{"strMeal":"Pancakes","strIngredient1":"Flour","strIngredient2":" Milk ","strMeasure2":"300ml","strIngredient3":"milk"}`),
		Source:        diet.SourceMealDB,
	}
	m, err := Substituted(orig, "MILK", "Oat milk")
	if err != nil {
		t.Fatalf("Substituted: %v", err)
	}
	ings := m.Ingredients()
	if len(ings) != 3 || ings[1].Ingredient != "Oat milk" || ings[1].Measure != "300ml" || ings[2].Ingredient != "milk" {
		t.Fatalf("only the first match should change, got %+v", ings)
	}
	if m.MealName != "Subs - Pancakes" || m.Source != diet.SourceSubstitute || !strings.HasPrefix(m.MealDBID, "subs-") || len(m.MealDBID) != 17 {
		t.Fatalf("unexpected copy %+v", m)
	}
	if len(m.MacrosJSON) != 0 {
		t.Fatalf("macros must be estimated again, got %s", m.MacrosJSON)
	}
	if !strings.Contains(string(orig.RawMealDBData), `" Milk "`) {
		t.Fatalf("original payload was modified")
	}

	if _, err := Substituted(orig, "eggs", "flax"); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got %v", err)
	}
}

func TestEstimateNutrition(t *testing.T) {
	got := EstimateNutrition([]diet.Ingredient{
		{Ingredient: "Chicken Breast", Measure: "200g"},
		{Ingredient: "Basmati Rice", Measure: "1 cup"},
		{Ingredient: "Eggs", Measure: "2 large"},
		{Ingredient: "Saffron", Measure: "pinch"},
	})
	// 2 x chicken, 1 x rice, 1 x egg ("large" is not a gram measure).
	if got.Calories != 615 || got.Protein != 77.7 || got.Carbs != 29.1 || got.Fat != 18.5 {
		t.Fatalf("unexpected estimate %+v", got)
	}
	if z := EstimateNutrition(nil); z != (Estimate{}) {
		t.Fatalf("expected zero estimate, got %+v", z)
	}
}

func TestCosine(t *testing.T) {
	if c := Cosine([]float64{1, 0}, []float64{1, 0}); c != 1 {
		t.Fatalf("identical vectors: %v", c)
	}
	if c := Cosine([]float64{1, 0}, []float64{0, 1}); c != 0 {
		t.Fatalf("orthogonal vectors: %v", c)
	}
	if c := Cosine([]float64{1, 0}, []float64{1, 0, 0}); c != 0 {
		t.Fatalf("length mismatch should be 0, got %v", c)
	}
	if c := Cosine([]float64{0, 0}, []float64{1, 1}); c != 0 {
		t.Fatalf("zero vector should be 0, got %v", c)
	}
}
