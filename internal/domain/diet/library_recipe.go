package diet

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SourceLibrary marks saved meals copied from the recipe library.
const SourceLibrary = "rag"

// LibraryRecipe is a bulk-loaded MealDB recipe shared by all users. It backs
// similarity search and is never edited by users.
type LibraryRecipe struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MealDBID string    `gorm:"column:mealdb_id;size:64;not null;uniqueIndex" json:"mealdb_id"`
	MealName string    `gorm:"column:meal_name;size:200;not null" json:"meal_name"`

	Category     string  `gorm:"column:category;size:100;index" json:"category"`
	Area         string  `gorm:"column:area;size:100;index" json:"area"`
	Instructions string  `gorm:"column:instructions;type:text" json:"instructions"`
	MealThumb    string  `gorm:"column:meal_thumb" json:"meal_thumb"`
	YoutubeLink  *string `gorm:"column:youtube_link" json:"youtube_link"`
	SourceLink   *string `gorm:"column:source_link" json:"source_link"`

	RawMealDBData datatypes.JSON `gorm:"column:raw_mealdb_data;type:jsonb" json:"raw_mealdb_data"`

	// Embedding is a JSON float array; null until the embed pass reaches it.
	Embedding       datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"-"`
	SearchTags      datatypes.JSON `gorm:"column:search_tags;type:jsonb" json:"search_tags"`
	IngredientsText string         `gorm:"column:ingredients_text;type:text" json:"ingredients_text"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LibraryRecipe) TableName() string { return "library_recipe" }

func (r *LibraryRecipe) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *LibraryRecipe) Ingredients() []Ingredient {
	if r == nil {
		return []Ingredient{}
	}
	return IngredientsFromRaw(r.RawMealDBData)
}

// InstructionSteps uses the same line rules as saved meals.
func (r *LibraryRecipe) InstructionSteps() []InstructionStep {
	if r == nil {
		return []InstructionStep{}
	}
	return (&UserSavedMeal{Instructions: r.Instructions}).InstructionSteps()
}

// Vector decodes Embedding; nil when absent or malformed.
func (r *LibraryRecipe) Vector() []float64 {
	if r == nil || len(r.Embedding) == 0 {
		return nil
	}
	var out []float64
	if err := json.Unmarshal(r.Embedding, &out); err != nil {
		return nil
	}
	return out
}

// Index fills SearchTags and IngredientsText from the raw payload.
func (r *LibraryRecipe) Index() {
	ings := r.Ingredients()
	parts := make([]string, 0, len(ings))
	for _, ing := range ings {
		parts = append(parts, strings.TrimSpace(ing.Measure+" "+ing.Ingredient))
	}
	r.IngredientsText = strings.Join(parts, " ")
	b, _ := json.Marshal(LibraryTags(r.Category, r.Area, ings))
	r.SearchTags = datatypes.JSON(b)
}

var tagGroups = []struct {
	tag   string
	words []string
}{
	{"meat", []string{"chicken", "beef", "pork", "lamb"}},
	{"seafood", []string{"salmon", "tuna", "fish", "shrimp"}},
	{"dairy", []string{"milk", "cheese", "yogurt", "cream"}},
	{"carbs", []string{"rice", "pasta", "bread", "potato"}},
	{"vegetables", []string{"tomato", "lettuce", "spinach", "carrot"}},
}

// LibraryTags derives filter tags from the category, the area and the first
// five ingredients. Each ingredient adds at most one tag; order is stable and
// duplicates are dropped.
func LibraryTags(category, area string, ings []Ingredient) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	add(strings.ToLower(strings.TrimSpace(category)))
	add(strings.ToLower(strings.TrimSpace(area)))
	for i, ing := range ings {
		if i >= 5 {
			break
		}
		name := strings.ToLower(ing.Ingredient)
	groups:
		for _, g := range tagGroups {
			for _, w := range g.words {
				if strings.Contains(name, w) {
					add(g.tag)
					break groups
				}
			}
		}
	}
	return out
}

// SavedMeal copies r into a new saved-meal row; the caller sets UserID.
func (r *LibraryRecipe) SavedMeal() *UserSavedMeal {
	return &UserSavedMeal{
		MealDBID:      r.MealDBID,
		MealName:      r.MealName,
		Category:      r.Category,
		Area:          r.Area,
		Instructions:  r.Instructions,
		MealThumb:     r.MealThumb,
		YoutubeLink:   r.YoutubeLink,
		SourceLink:    r.SourceLink,
		RawMealDBData: r.RawMealDBData,
		Source:        SourceLibrary,
	}
}
