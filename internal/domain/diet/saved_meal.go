package diet

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceMealDB     = "mealdb_api"
	SourceCustom     = "Custom"
	SourceAI         = "AI"
	SourceSubstitute = "Substitute"

	// CaloriesPerServing sizes recommended_servings.
	CaloriesPerServing = 450.0
)

// UserSavedMeal is a recipe saved by one user. Macros and RecommendedServings
// are filled in by the macro estimator after the row exists.
type UserSavedMeal struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_meal_user_mealdb,priority:1;index:idx_saved_meal_user_saved,priority:1" json:"user_id"`

	MealDBID string `gorm:"column:mealdb_id;size:64;not null;uniqueIndex:idx_saved_meal_user_mealdb,priority:2" json:"mealdb_id"`
	MealName string `gorm:"column:meal_name;size:200;not null" json:"meal_name"`

	Category     string  `gorm:"column:category;size:100" json:"category"`
	Area         string  `gorm:"column:area;size:100" json:"area"`
	Instructions string  `gorm:"column:instructions;type:text" json:"instructions"`
	MealThumb    string  `gorm:"column:meal_thumb" json:"meal_thumb"`
	YoutubeLink  *string `gorm:"column:youtube_link" json:"youtube_link"`
	SourceLink   *string `gorm:"column:source_link" json:"source_link"`

	RawMealDBData datatypes.JSON `gorm:"column:raw_mealdb_data;type:jsonb" json:"raw_mealdb_data"`

	SavedAt           time.Time `gorm:"column:saved_at;not null;index:idx_saved_meal_user_saved,priority:2" json:"saved_at"`
	Notes             string    `gorm:"column:notes;type:text" json:"notes"`
	Favorite          bool      `gorm:"column:favorite;not null;default:false" json:"favorite"`
	PreferredMealType string    `gorm:"column:preferred_meal_type;size:20" json:"preferred_meal_type"`

	MacrosJSON          datatypes.JSON `gorm:"column:macros_json;type:jsonb" json:"macros_json"`
	RecommendedServings *int           `gorm:"column:recommended_servings" json:"recommended_servings"`
	PrepTimeMin         *float64       `gorm:"column:prep_time_min" json:"prep_time_min"`

	Source    string    `gorm:"column:source;size:20;not null;default:mealdb_api" json:"source"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserSavedMeal) TableName() string { return "user_saved_meal" }

func (m *UserSavedMeal) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.SavedAt.IsZero() {
		m.SavedAt = time.Now().UTC()
	}
	if m.Source == "" {
		m.Source = SourceMealDB
	}
	return nil
}

// CustomMealID builds the synthetic mealdb_id for user-entered meals.
func CustomMealID(name string, now time.Time) string {
	r := []rune(name)
	if len(r) > 10 {
		r = r[:10]
	}
	return fmt.Sprintf("custom_%s_%d", string(r), now.Unix())
}

// Macros is the decoded macros_json blob. Values are totals for the recipe.
type Macros struct {
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	PrepTimeMin *float64 `json:"prep_time_min,omitempty"`
}

// Macros decodes MacrosJSON. ok is false when no macros were stored.
func (m *UserSavedMeal) Macros() (Macros, bool) {
	var out Macros
	if m == nil || len(m.MacrosJSON) == 0 || string(m.MacrosJSON) == "null" {
		return out, false
	}
	if err := json.Unmarshal(m.MacrosJSON, &out); err != nil {
		return Macros{}, false
	}
	return out, true
}

// HasCalories reports whether macros_json carries a calories key at all.
func (m *UserSavedMeal) HasCalories() bool {
	if m == nil || len(m.MacrosJSON) == 0 {
		return false
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(m.MacrosJSON, &raw); err != nil {
		return false
	}
	_, ok := raw["calories"]
	return ok
}

// RecommendedServingsFor returns max(1, round(calories/450)), or 1 when the
// calorie total is missing or zero.
func RecommendedServingsFor(m *UserSavedMeal) int {
	if !m.HasCalories() {
		return 1
	}
	macros, _ := m.Macros()
	if macros.Calories == 0 {
		return 1
	}
	n := int(math.RoundToEven(macros.Calories / CaloriesPerServing))
	if n < 1 {
		return 1
	}
	return n
}

// Ingredient is a parsed strIngredientN/strMeasureN pair.
type Ingredient struct {
	Ingredient string `json:"ingredient"`
	Measure    string `json:"measure"`
}

// Ingredients parses up to twenty ingredient slots from the raw MealDB payload.
func (m *UserSavedMeal) Ingredients() []Ingredient {
	if m == nil {
		return []Ingredient{}
	}
	return IngredientsFromRaw(m.RawMealDBData)
}

func IngredientsFromRaw(raw datatypes.JSON) []Ingredient {
	out := []Ingredient{}
	if len(raw) == 0 {
		return out
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return out
	}
	for i := 1; i <= 20; i++ {
		ing := strings.TrimSpace(stringField(data, fmt.Sprintf("strIngredient%d", i)))
		if ing == "" || strings.EqualFold(ing, "null") {
			continue
		}
		out = append(out, Ingredient{
			Ingredient: ing,
			Measure:    strings.TrimSpace(stringField(data, fmt.Sprintf("strMeasure%d", i))),
		})
	}
	return out
}

// InstructionStep is one non-trivial instruction line.
type InstructionStep struct {
	StepNumber  int    `json:"step_number"`
	Description string `json:"description"`
}

// InstructionSteps splits Instructions by line and drops lines of ten
// characters or fewer. Step numbers follow the source line index.
func (m *UserSavedMeal) InstructionSteps() []InstructionStep {
	out := []InstructionStep{}
	if m == nil || m.Instructions == "" {
		return out
	}
	lines := strings.Split(strings.ReplaceAll(m.Instructions, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 10 {
			out = append(out, InstructionStep{StepNumber: i + 1, Description: line})
		}
	}
	return out
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
