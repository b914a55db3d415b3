// Package recipes writes new recipes with the LLM, swaps ingredients in
// saved meals and searches the shared recipe library.
package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/macros"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai"
)

const defaultDailyCalories = 2000

var (
	ErrBadRecipe          = errors.New("recipes: reply is not a usable recipe")
	ErrEmptySuggestion    = errors.New("recipes: empty substitute suggestion")
	ErrIngredientNotFound = errors.New("recipes: ingredient not in meal")
)

// Profile is the slice of dietary preferences the recipe prompts use.
type Profile struct {
	DailyCalories int
	Allergies     []string
	Dislikes      []string
	DietaryTags   []string
	Cuisines      []string
}

// ProfileFrom reads prefs; nil prefs give the defaults. The calorie target
// comes from the meal planning analysis when it has one.
func ProfileFrom(prefs *diet.UserDietaryPreferences) Profile {
	p := Profile{DailyCalories: defaultDailyCalories, Allergies: []string{}, Dislikes: []string{}, DietaryTags: []string{}, Cuisines: []string{}}
	if prefs == nil {
		return p
	}
	p.Allergies = jsonx.Strings(prefs.Allergies)
	p.Dislikes = jsonx.Strings(prefs.Dislikes)
	p.DietaryTags = jsonx.Strings(prefs.DietaryTags)
	p.Cuisines = jsonx.Strings(prefs.PreferredCuisines)
	if a, err := jsonx.Decode[diet.MealPlanningAnalysis](prefs.MealPlanningAnalysis); err == nil && a.DailyCalories > 0 {
		p.DailyCalories = int(a.DailyCalories)
	}
	return p
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// Recipe is a generated recipe as the client shows it and posts it back.
type Recipe struct {
	Title        string            `json:"title"`
	Ingredients  []diet.Ingredient `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	MealType     string            `json:"meal_type,omitempty"`
	Cuisine      string            `json:"cuisine,omitempty"`
}

// Validate trims r in place and reports whether it can be saved.
func (r *Recipe) Validate() bool {
	r.Title = strings.TrimSpace(r.Title)
	ings := r.Ingredients[:0]
	for _, ing := range r.Ingredients {
		ing.Ingredient = strings.TrimSpace(ing.Ingredient)
		ing.Measure = strings.TrimSpace(ing.Measure)
		if ing.Ingredient != "" {
			ings = append(ings, ing)
		}
	}
	r.Ingredients = ings
	steps := r.Instructions[:0]
	for _, s := range r.Instructions {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	r.Instructions = steps
	return r.Title != "" && len(r.Ingredients) > 0 && len(r.Instructions) > 0
}

// SavedMeal maps r onto a new saved-meal row with a MealDB-shaped payload;
// the caller sets UserID and MealDBID.
func (r Recipe) SavedMeal() *diet.UserSavedMeal {
	instructions := strings.Join(r.Instructions, "\n")
	raw := macros.RawMealData(r.Title, r.MealType, r.Cuisine, instructions, r.Ingredients)
	return &diet.UserSavedMeal{
		MealName:      r.Title,
		Category:      r.MealType,
		Area:          r.Cuisine,
		Instructions:  instructions,
		RawMealDBData: jsonx.Marshal(raw),
		Source:        diet.SourceAI,
	}
}

// AIMealID returns a random eight-digit id. Callers retry on collision.
func AIMealID() string {
	return strconv.Itoa(10_000_000 + rand.IntN(90_000_000))
}

type Writer struct {
	llm openai.Client
}

func New(llm openai.Client) *Writer {
	return &Writer{llm: llm}
}

func (w *Writer) Generate(ctx context.Context, p Profile) (Recipe, error) {
	prompt := fmt.Sprintf(generatePrompt,
		p.DailyCalories,
		listOrNone(p.Allergies),
		listOrNone(p.Dislikes),
		strings.Join(mealTypes, ", "),
		strings.Join(proteins, ", "),
		strings.Join(carbs, ", "),
		strings.Join(cuisines, ", "),
	)
	raw, err := w.llm.Chat(ctx, generateSystemPrompt, prompt, openai.ChatOptions{Temperature: openai.Temp(0.99)})
	if err != nil {
		return Recipe{}, err
	}
	obj, ok := jsonx.ExtractObject(raw)
	if !ok {
		return Recipe{}, ErrBadRecipe
	}
	var out Recipe
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return Recipe{}, fmt.Errorf("%w: %v", ErrBadRecipe, err)
	}
	if !out.Validate() {
		return Recipe{}, ErrBadRecipe
	}
	return out, nil
}

// Substitute returns one replacement ingredient name.
func (w *Writer) Substitute(ctx context.Context, ingredient string, p Profile) (string, error) {
	prompt := fmt.Sprintf(substitutePrompt, strings.TrimSpace(ingredient), listOrNone(p.Allergies), listOrNone(p.Dislikes))
	raw, err := w.llm.Chat(ctx, substituteSystemPrompt, prompt, openai.ChatOptions{Temperature: openai.Temp(0.7)})
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), `."'`))
	if s == "" {
		return "", ErrEmptySuggestion
	}
	return s, nil
}

// SubstituteMealID is the synthetic mealdb_id for substituted copies.
func SubstituteMealID() string {
	return "subs-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Substituted copies orig with the first ingredient slot equal to original
// (case-insensitive, trimmed) replaced by sub. Macros are left empty so they
// are estimated again for the new ingredient list.
func Substituted(orig *diet.UserSavedMeal, original, sub string) (*diet.UserSavedMeal, error) {
	raw := jsonx.Map(orig.RawMealDBData)
	if raw == nil {
		raw = map[string]any{}
	}
	want := strings.ToLower(strings.TrimSpace(original))
	replaced := false
	for i := 1; i <= 20 && want != ""; i++ {
		key := fmt.Sprintf("strIngredient%d", i)
		v, _ := raw[key].(string)
		if strings.ToLower(strings.TrimSpace(v)) == want {
			raw[key] = strings.TrimSpace(sub)
			replaced = true
			break
		}
	}
	if !replaced {
		return nil, ErrIngredientNotFound
	}
	name := "Subs - " + orig.MealName
	raw["strMeal"] = name
	return &diet.UserSavedMeal{
		UserID:            orig.UserID,
		MealDBID:          SubstituteMealID(),
		MealName:          name,
		Category:          orig.Category,
		Area:              orig.Area,
		Instructions:      orig.Instructions,
		MealThumb:         orig.MealThumb,
		YoutubeLink:       orig.YoutubeLink,
		SourceLink:        orig.SourceLink,
		PreferredMealType: orig.PreferredMealType,
		PrepTimeMin:       orig.PrepTimeMin,
		RawMealDBData:     jsonx.Marshal(raw),
		Source:            diet.SourceSubstitute,
	}, nil
}
