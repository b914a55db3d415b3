// Package shopping turns the planned week into an aggregated ingredient list.
package shopping

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/modules/mealplan"
)

const CategoryOther = "other"

// categories is checked in order; the first keyword hit wins.
var categories = []struct {
	name     string
	keywords []string
}{
	{"dairy", []string{"milk", "cheese", "yogurt", "cream", "butter"}},
	{"produce", []string{"apple", "banana", "carrot", "lettuce", "tomato", "onion", "garlic"}},
	{"meat", []string{"chicken", "beef", "pork", "lamb", "turkey"}},
	{"pantry", []string{"flour", "sugar", "salt", "oil", "vinegar", "rice", "pasta"}},
	{"spices", []string{"pepper", "cumin", "paprika", "cinnamon", "oregano"}},
}

var qualifiers = regexp.MustCompile(`\b(fresh|dried|ground|powdered|whole|sliced|chopped)\b`)

// Normalize lowercases the name, drops preparation words and collapses spaces.
func Normalize(ingredient string) string {
	s := strings.ToLower(strings.TrimSpace(ingredient))
	s = qualifiers.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// ParseMeasure splits "200 g" into (200, "g"). Anything without a leading
// number is (1, measure).
func ParseMeasure(measure string) (float64, string) {
	parts := strings.Fields(measure)
	if len(parts) == 0 {
		return 1, ""
	}
	amount, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 1, measure
	}
	return amount, strings.Join(parts[1:], " ")
}

func Categorize(ingredient string) string {
	n := Normalize(ingredient)
	for _, c := range categories {
		for _, k := range c.keywords {
			if strings.Contains(n, k) {
				return c.name
			}
		}
	}
	return CategoryOther
}

// Item is one aggregated ingredient.
type Item struct {
	Name          string   `json:"name"`
	Amount        float64  `json:"amount"`
	Unit          string   `json:"unit"`
	Category      string   `json:"category"`
	OriginalNames []string `json:"original_names"`
	Meals         []string `json:"meals"`
}

// Aggregate multiplies each meal's ingredients by how often it is planned
// and merges them by normalized name. The last non-empty unit wins.
func Aggregate(ingredients map[string][]diet.Ingredient, counts map[string]int) map[string]*Item {
	type acc struct {
		item  *Item
		names map[string]bool
		meals map[string]bool
	}
	totals := map[string]*acc{}
	mealNames := make([]string, 0, len(ingredients))
	for name := range ingredients {
		mealNames = append(mealNames, name)
	}
	sort.Strings(mealNames)

	for _, meal := range mealNames {
		count, ok := counts[meal]
		if !ok {
			count = 1
		}
		for _, ing := range ingredients[meal] {
			key := Normalize(ing.Ingredient)
			amount, unit := ParseMeasure(ing.Measure)
			a := totals[key]
			if a == nil {
				a = &acc{item: &Item{Name: key}, names: map[string]bool{}, meals: map[string]bool{}}
				totals[key] = a
			}
			a.item.Amount += amount * float64(count)
			if unit != "" {
				a.item.Unit = unit
			}
			a.item.Category = Categorize(ing.Ingredient)
			a.names[ing.Ingredient] = true
			a.meals[meal] = true
		}
	}

	out := make(map[string]*Item, len(totals))
	for key, a := range totals {
		a.item.OriginalNames = sortedKeys(a.names)
		a.item.Meals = sortedKeys(a.meals)
		out[key] = a.item
	}
	return out
}

// List is the shopping list for one planner window.
type List struct {
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	MealCounts  map[string]int     `json:"meal_counts"`
	Categorized map[string][]*Item `json:"categorized_ingredients"`
	Items       []EditableItem     `json:"items"`
}

// EditableItem is the flattened row users edit before saving a version.
type EditableItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Build counts every entry of every slot by meal name; entries pointing at
// meals the user no longer has are skipped.
func Build(slots []*diet.PlannedMeal, meals map[uuid.UUID]*diet.UserSavedMeal) (map[string]int, map[string]*Item) {
	counts := map[string]int{}
	ingredients := map[string][]diet.Ingredient{}
	for _, pm := range slots {
		for _, e := range mealplan.DecodePlan(pm).Meals {
			id, err := uuid.Parse(e.SavedMealID)
			if err != nil {
				continue
			}
			m := meals[id]
			if m == nil {
				continue
			}
			counts[m.MealName]++
			if _, seen := ingredients[m.MealName]; !seen {
				ingredients[m.MealName] = m.Ingredients()
			}
		}
	}
	return counts, Aggregate(ingredients, counts)
}

// Group buckets items by category, each bucket sorted by name.
func Group(items map[string]*Item) map[string][]*Item {
	out := map[string][]*Item{}
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it)
	}
	for _, bucket := range out {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Name < bucket[j].Name })
	}
	return out
}

// Flatten returns the editable rows sorted by name.
func Flatten(items map[string]*Item) []EditableItem {
	out := make([]EditableItem, 0, len(items))
	for _, it := range items {
		out = append(out, EditableItem{Name: it.Name, Quantity: it.Amount, Unit: it.Unit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
