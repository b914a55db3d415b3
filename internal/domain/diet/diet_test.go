package diet

import (
	"math"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestRecommendedServings(t *testing.T) {
	cases := []struct {
		macros string
		want   int
	}{
		{``, 1},
		{`{"protein":10}`, 1},
		{`{"calories":0}`, 1},
		{`{"calories":200}`, 1},
		{`{"calories":900}`, 2},
		{`{"calories":1800}`, 4},
	}
	for _, c := range cases {
		m := &UserSavedMeal{MacrosJSON: datatypes.JSON(c.macros)}
		if got := RecommendedServingsFor(m); got != c.want {
			t.Fatalf("macros %q: got %d want %d", c.macros, got, c.want)
		}
	}
}

func TestIngredients(t *testing.T) {
	raw := datatypes.JSON(`{"strIngredient1":" Chicken ","strMeasure1":" 200g ","strIngredient2":"","strIngredient3":null,"strIngredient4":"Salt","strMeasure4":null}`)
	got := IngredientsFromRaw(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 ingredients, got %+v", got)
	}
	if got[0] != (Ingredient{Ingredient: "Chicken", Measure: "200g"}) {
		t.Fatalf("unexpected first ingredient %+v", got[0])
	}
	if got[1] != (Ingredient{Ingredient: "Salt", Measure: ""}) {
		t.Fatalf("unexpected second ingredient %+v", got[1])
	}
	if len(IngredientsFromRaw(nil)) != 0 {
		t.Fatalf("expected empty list for nil payload")
	}
}

func TestAdjustedNutrition(t *testing.T) {
	n := AdjustedNutrition(Macros{Calories: 900, Protein: 60, Carbs: 90, Fat: 30}, 2, 1.5)
	if n.Calories != 675 || n.Protein != 45 || n.Carbs != 67.5 || n.Fat != 22.5 {
		t.Fatalf("unexpected nutrition %+v", n)
	}
	if z := AdjustedNutrition(Macros{Calories: 100}, 0, 1); z.Calories != 100 {
		t.Fatalf("zero servings should read as one, got %v", z.Calories)
	}
}

func TestCustomMealID(t *testing.T) {
	now := time.Unix(1700000000, 0)
	if got := CustomMealID("Grandma's lasagna", now); got != "custom_Grandma's _1700000000" {
		t.Fatalf("unexpected id %q", got)
	}
	if got := CustomMealID("Soup", now); !strings.HasPrefix(got, "custom_Soup_") {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestInstructionSteps(t *testing.T) {
	m := &UserSavedMeal{Instructions: "Preheat the oven to 200C.\r\nok\r\n\r\nBake for twenty minutes."}
	steps := m.InstructionSteps()
	if len(steps) != 2 || steps[0].StepNumber != 1 || steps[1].StepNumber != 4 {
		t.Fatalf("unexpected steps %+v", steps)
	}
}

func TestMealPlanPrimary(t *testing.T) {
	half := 0.5
	p := MealPlan{Meals: []PlanEntry{{SavedMealID: "a", PortionMultiplier: &half}, {SavedMealID: "b"}}}
	e, ok := p.Primary()
	if !ok || e.SavedMealID != "a" || math.Abs(e.Multiplier()-0.5) > 1e-9 {
		t.Fatalf("unexpected primary %+v", e)
	}
	if (PlanEntry{}).Multiplier() != 1 {
		t.Fatalf("unset multiplier should read as 1")
	}
	if _, ok := (MealPlan{}).Primary(); ok {
		t.Fatalf("empty plan has no primary")
	}
}

func TestParseMealType(t *testing.T) {
	if m, err := ParseMealType("dinner"); err != nil || m != MealDinner {
		t.Fatalf("ParseMealType(dinner) = %v, %v", m, err)
	}
	if _, err := ParseMealType("brunch"); err == nil {
		t.Fatalf("expected error for unknown slot")
	}
}

func TestLibraryRecipeIndex(t *testing.T) {
	r := &LibraryRecipe{
		Category:      "Seafood",
		Area:          "Japanese",
		RawMealDBData: datatypes.JSON(`{"strIngredient1":"Salmon","strMeasure1":"200g","strIngredient2":"Rice","strMeasure2":"1 cup","strIngredient3":"Salmon Roe","strMeasure3":""}`),
	}
	r.Index()
	if r.IngredientsText != "200g Salmon 1 cup Rice Salmon Roe" {
		t.Fatalf("unexpected ingredients text %q", r.IngredientsText)
	}
	if string(r.SearchTags) != `["seafood","japanese","carbs"]` {
		t.Fatalf("unexpected tags %s", r.SearchTags)
	}
	if r.Vector() != nil {
		t.Fatalf("no embedding should decode to nil")
	}
	m := r.SavedMeal()
	if m.Source != SourceLibrary || len(m.Ingredients()) != 3 {
		t.Fatalf("unexpected saved meal %+v", m)
	}
}
