package diet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealSlots is the display order of a planner day.
var MealSlots = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

func ParseMealType(s string) (MealType, error) {
	for _, m := range MealSlots {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// PlannedMeal is one (user, date, meal_type) slot. PlanJSON holds the meal
// references; only the first entry is counted toward nutrition.
type PlannedMeal struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_planned_meal_slot,priority:1" json:"user_id"`
	PlannedDate time.Time `gorm:"column:planned_date;type:date;not null;uniqueIndex:idx_planned_meal_slot,priority:2" json:"planned_date"`
	MealType    string    `gorm:"column:meal_type;size:20;not null;uniqueIndex:idx_planned_meal_slot,priority:3" json:"meal_type"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`

	TotalCalories *float64 `gorm:"column:total_calories" json:"total_calories"`
	TotalProtein  *float64 `gorm:"column:total_protein" json:"total_protein"`
	TotalCarbs    *float64 `gorm:"column:total_carbs" json:"total_carbs"`
	TotalFat      *float64 `gorm:"column:total_fat" json:"total_fat"`

	PlanJSON datatypes.JSON `gorm:"column:plan_json;type:jsonb" json:"plan_json"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlannedMeal) TableName() string { return "planned_meal" }

func (p *PlannedMeal) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PlanEntry references a saved meal inside plan_json. PortionMultiplier is
// nil when the slot was never adjusted and reads as 1.0.
type PlanEntry struct {
	SavedMealID       string   `json:"saved_meal_id"`
	MealName          string   `json:"meal_name,omitempty"`
	MealThumb         string   `json:"meal_thumb,omitempty"`
	AddedAt           string   `json:"added_at,omitempty"`
	PortionMultiplier *float64 `json:"portion_multiplier,omitempty"`
}

func (e PlanEntry) Multiplier() float64 {
	if e.PortionMultiplier == nil {
		return 1.0
	}
	return *e.PortionMultiplier
}

// MealPlan is the decoded plan_json blob.
type MealPlan struct {
	Meals []PlanEntry `json:"meals"`
}

// Primary returns the first entry, the one nutrition is computed from.
func (p MealPlan) Primary() (PlanEntry, bool) {
	if len(p.Meals) == 0 {
		return PlanEntry{}, false
	}
	return p.Meals[0], true
}

// Nutrition is a per-portion macro total.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

// AdjustedNutrition is (macro / servings) * multiplier for each macro. Every
// caller that shows or sums meal nutrition goes through here.
func AdjustedNutrition(m Macros, servings int, multiplier float64) Nutrition {
	if servings <= 0 {
		servings = 1
	}
	s := float64(servings)
	return Nutrition{
		Calories: m.Calories / s * multiplier,
		Protein:  m.Protein / s * multiplier,
		Carbs:    m.Carbs / s * multiplier,
		Fat:      m.Fat / s * multiplier,
	}
}

// ErrNonPositivePortion is returned for multipliers <= 0.
var ErrNonPositivePortion = fmt.Errorf("portion multiplier must be positive")

func ValidatePortion(m float64) error {
	if m <= 0 {
		return ErrNonPositivePortion
	}
	return nil
}
