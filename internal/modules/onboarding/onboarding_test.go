package onboarding

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai/openaitest"
)

func TestParseList(t *testing.T) {
	resp := "DIETARY_TAGS: vegetarian, gluten-free,  \nALLERGIES: peanuts\nDISLIKES:"
	if got := ParseList(resp, KeyDietaryTags); !reflect.DeepEqual(got, []string{"vegetarian", "gluten-free"}) {
		t.Fatalf("tags = %v", got)
	}
	if got := ParseList(resp, KeyAllergies); !reflect.DeepEqual(got, []string{"peanuts"}) {
		t.Fatalf("allergies = %v", got)
	}
	if got := ParseList(resp, KeyDislikes); len(got) != 0 {
		t.Fatalf("dislikes = %v", got)
	}
	if got := ParseList("  CUISINES: Thai", KeyCuisines); len(got) != 0 {
		t.Fatalf("indented key should not match, got %v", got)
	}
}

func TestParseMealTimes(t *testing.T) {
	n, times := ParseMealTimes("MEALS_PER_DAY: 4\nMEAL_TIMES: 07:00, 12:00, 16:00, 19:30")
	if n != 4 || len(times) != 4 || times[3] != "19:30" {
		t.Fatalf("got %d %v", n, times)
	}
	n, times = ParseMealTimes("MEALS_PER_DAY: a few\nMEAL_TIMES: 08:00")
	if n != DefaultMealsPerDay || len(times) != 1 {
		t.Fatalf("expected default count, got %d %v", n, times)
	}
	n, times = ParseMealTimes("")
	if n != DefaultMealsPerDay || len(times) != 0 {
		t.Fatalf("expected defaults, got %d %v", n, times)
	}
}

func TestStagesUseFormattedPrompt(t *testing.T) {
	fake := &openaitest.Fake{Rules: []openaitest.Rule{
		{Contains: "identify their dietary restrictions", Reply: "DIETARY_TAGS: vegan\nALLERGIES: soy\nDISLIKES: olives"},
		{Contains: "preferred cuisines", Reply: "CUISINES: Thai, Greek\nFAVORITE_FOODS: curry"},
		{Contains: "meal schedule", Err: errors.New("boom")},
	}}
	o := New(fake)
	ctx := context.Background()

	r, err := o.Restrictions(ctx, "no meat, soy makes me ill")
	if err != nil || r.DietaryTags[0] != "vegan" || r.Allergies[0] != "soy" {
		t.Fatalf("unexpected restrictions %+v err=%v", r, err)
	}
	if !strings.Contains(fake.Calls()[0].User, `"no meat, soy makes me ill"`) {
		t.Fatalf("user text not substituted into prompt")
	}
	c, _ := o.Cuisines(ctx, "thai")
	if len(c.PreferredCuisines) != 2 || c.FavoriteFoods[0] != "curry" {
		t.Fatalf("unexpected cuisines %+v", c)
	}
	tm, err := o.Timing(ctx, "three meals")
	if err == nil || tm.MealsPerDay != DefaultMealsPerDay || len(tm.MealTimes) != 0 {
		t.Fatalf("expected defaults and error, got %+v err=%v", tm, err)
	}
}

func TestAnalysisFallback(t *testing.T) {
	fake := &openaitest.Fake{Respond: func(string, string) (string, error) { return "I can't do that", nil }}
	a, fallback := New(fake).Analysis(context.Background(), AnalysisInput{MealsPerDay: 3})
	if !fallback || !reflect.DeepEqual(a, diet.DefaultAnalysis()) {
		t.Fatalf("expected default analysis, got %+v", a)
	}
	if !strings.Contains(fake.Calls()[0].User, "- Goal Category: Not specified") {
		t.Fatalf("missing categories should read Not specified")
	}
}

func TestAnalysisAndBaseline(t *testing.T) {
	fake := &openaitest.Fake{Rules: []openaitest.Rule{
		{Contains: "analyze this user's needs", Reply: "```json\n{\"daily_calories\": 2300, \"macro_split\": {\"protein\": 25, \"carbs\": 45, \"fats\": 30}, \"meal_size_distribution\": {\"breakfast\": 25, \"lunch\": 35, \"dinner\": 30, \"snacks\": 10}, \"nutrition_notes\": \"ok\"}\n```"},
		{Contains: "baseline meal structure", Reply: `{"meal_templates": {"breakfast": ["oats"]}, "portion_guidelines": {"proteins": "palm"}, "cuisine_rotation": ["Thai"]}`},
	}}
	o := New(fake)
	in := AnalysisInput{DietaryTags: []string{"vegan"}, MealsPerDay: 3}
	a, fallback := o.Analysis(context.Background(), in)
	if fallback || a.DailyCalories != 2300 || a.MacroSplit.Carbs != 45 {
		t.Fatalf("unexpected analysis %+v fallback=%v", a, fallback)
	}
	b, fallback := o.Baseline(context.Background(), a, in)
	if fallback || b.CuisineRotation[0] != "Thai" || b.MealTemplates["breakfast"][0] != "oats" {
		t.Fatalf("unexpected baseline %+v", b)
	}
	if !strings.Contains(fake.Calls()[1].User, "- Macro Split: {'protein': 25, 'carbs': 45, 'fats': 30}") {
		t.Fatalf("macro split not rendered:\n%s", fake.Calls()[1].User)
	}
}
