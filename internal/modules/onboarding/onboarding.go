// Package onboarding turns the three free-text onboarding answers into
// dietary preferences and derives the meal-planning analysis and baseline.
package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const (
	KeyDietaryTags   = "DIETARY_TAGS"
	KeyAllergies     = "ALLERGIES"
	KeyDislikes      = "DISLIKES"
	KeyCuisines      = "CUISINES"
	KeyFavoriteFoods = "FAVORITE_FOODS"
	KeyMealsPerDay   = "MEALS_PER_DAY"
	KeyMealTimes     = "MEAL_TIMES"

	DefaultMealsPerDay = 3

	notSpecified = "Not specified"
)

// ParseList reads the comma-separated values of the first line starting
// with "KEY:". Empty items are dropped.
func ParseList(response, key string) []string {
	prefix := key + ":"
	for _, line := range strings.Split(response, "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		out := []string{}
		for _, item := range strings.Split(strings.TrimPrefix(line, prefix), ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return []string{}
}

// ParseMealTimes reads MEALS_PER_DAY and MEAL_TIMES. An unparsable count
// keeps the default.
func ParseMealTimes(response string) (int, []string) {
	meals := DefaultMealsPerDay
	for _, line := range strings.Split(response, "\n") {
		if !strings.HasPrefix(line, KeyMealsPerDay+":") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, KeyMealsPerDay+":"))); err == nil {
			meals = n
		}
		break
	}
	return meals, ParseList(response, KeyMealTimes)
}

type Restrictions struct {
	DietaryTags []string `json:"dietary_tags"`
	Allergies   []string `json:"allergies"`
	Dislikes    []string `json:"dislikes"`
}

type Cuisines struct {
	PreferredCuisines []string `json:"preferred_cuisines"`
	FavoriteFoods     []string `json:"favorite_foods"`
}

type Timing struct {
	MealsPerDay int      `json:"meals_per_day"`
	MealTimes   []string `json:"meal_times"`
}

type Onboarder struct {
	llm openai.Client
}

func New(llm openai.Client) *Onboarder {
	return &Onboarder{llm: llm}
}

// Each stage treats a failed call as an empty reply so parsing falls back
// to defaults.
func (o *Onboarder) stage(ctx context.Context, template, text string) (string, error) {
	out, err := o.llm.Chat(ctx, stageSystemPrompt, strings.ReplaceAll(template, "{text}", text), openai.ChatOptions{
		Temperature: openai.Temp(0),
		MaxTokens:   300,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *Onboarder) Restrictions(ctx context.Context, text string) (Restrictions, error) {
	raw, err := o.stage(ctx, restrictionsPrompt, text)
	return Restrictions{
		DietaryTags: ParseList(raw, KeyDietaryTags),
		Allergies:   ParseList(raw, KeyAllergies),
		Dislikes:    ParseList(raw, KeyDislikes),
	}, err
}

func (o *Onboarder) Cuisines(ctx context.Context, text string) (Cuisines, error) {
	raw, err := o.stage(ctx, cuisinesPrompt, text)
	return Cuisines{
		PreferredCuisines: ParseList(raw, KeyCuisines),
		FavoriteFoods:     ParseList(raw, KeyFavoriteFoods),
	}, err
}

func (o *Onboarder) Timing(ctx context.Context, text string) (Timing, error) {
	raw, err := o.stage(ctx, timingPrompt, text)
	n, times := ParseMealTimes(raw)
	return Timing{MealsPerDay: n, MealTimes: times}, err
}

// AnalysisInput is what the analysis prompt draws on.
type AnalysisInput struct {
	Assessment        health.Assessment
	BMICategory       string
	DietaryTags       []string
	Allergies         []string
	PreferredCuisines []string
	MealsPerDay       int
}

// InputFromPreferences fills the dietary half of AnalysisInput.
func InputFromPreferences(p *diet.UserDietaryPreferences, profile *health.HealthProfile) AnalysisInput {
	in := AnalysisInput{MealsPerDay: DefaultMealsPerDay}
	if p != nil {
		in.DietaryTags = jsonx.Strings(p.DietaryTags)
		in.Allergies = jsonx.Strings(p.Allergies)
		in.PreferredCuisines = jsonx.Strings(p.PreferredCuisines)
		if p.MealsPerDay > 0 {
			in.MealsPerDay = p.MealsPerDay
		}
	}
	if profile != nil {
		in.Assessment = profile.Assessment()
		if bmi, ok := profile.BMI(); ok {
			in.BMICategory = health.BMICategory(bmi)
		}
	}
	return in
}

// Analysis never fails; any error or undecodable reply yields
// diet.DefaultAnalysis. fallback reports which happened.
func (o *Onboarder) Analysis(ctx context.Context, in AnalysisInput) (out diet.MealPlanningAnalysis, fallback bool) {
	prompt := fmt.Sprintf(analysisPrompt,
		orNotSpecified(in.Assessment.GoalCategory),
		orNotSpecified(in.Assessment.LifestyleCategory),
		orNotSpecified(in.BMICategory),
		strings.Join(in.DietaryTags, ", "),
		strings.Join(in.Allergies, ", "),
		strings.Join(in.PreferredCuisines, ", "),
		in.MealsPerDay,
	)
	raw, err := o.llm.Chat(ctx, analysisSystemPrompt, prompt, openai.ChatOptions{Temperature: openai.Temp(0.7)})
	if err != nil {
		return diet.DefaultAnalysis(), true
	}
	obj, ok := jsonx.ExtractObject(raw)
	if !ok {
		return diet.DefaultAnalysis(), true
	}
	if err := json.Unmarshal([]byte(obj), &out); err != nil || out.DailyCalories <= 0 {
		return diet.DefaultAnalysis(), true
	}
	return out, false
}

// Baseline follows Analysis and falls back to diet.DefaultBaseline.
func (o *Onboarder) Baseline(ctx context.Context, a diet.MealPlanningAnalysis, in AnalysisInput) (out diet.MealBaseline, fallback bool) {
	prompt := fmt.Sprintf(baselinePrompt,
		a.DailyCalories,
		fmt.Sprintf("{'protein': %v, 'carbs': %v, 'fats': %v}", a.MacroSplit.Protein, a.MacroSplit.Carbs, a.MacroSplit.Fats),
		fmt.Sprintf("{'breakfast': %v, 'lunch': %v, 'dinner': %v, 'snacks': %v}",
			a.MealSizeDistribution.Breakfast, a.MealSizeDistribution.Lunch, a.MealSizeDistribution.Dinner, a.MealSizeDistribution.Snacks),
		strings.Join(in.DietaryTags, ", "),
		strings.Join(in.PreferredCuisines, ", "),
		in.MealsPerDay,
	)
	raw, err := o.llm.Chat(ctx, baselineSystemPrompt, prompt, openai.ChatOptions{Temperature: openai.Temp(0.7)})
	if err != nil {
		return diet.DefaultBaseline(), true
	}
	obj, ok := jsonx.ExtractObject(raw)
	if !ok {
		return diet.DefaultBaseline(), true
	}
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return diet.DefaultBaseline(), true
	}
	return out, false
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}
