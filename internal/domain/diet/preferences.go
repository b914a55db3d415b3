package diet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserDietaryPreferences is one per user. MealPlanningAnalysis and
// MealBaseline are AI-written blobs generated once and then reused.
type UserDietaryPreferences struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	DietaryTags       datatypes.JSON `gorm:"column:dietary_tags;type:jsonb" json:"dietary_tags"`
	Allergies         datatypes.JSON `gorm:"column:allergies;type:jsonb" json:"allergies"`
	Dislikes          datatypes.JSON `gorm:"column:dislikes;type:jsonb" json:"dislikes"`
	PreferredCuisines datatypes.JSON `gorm:"column:preferred_cuisines;type:jsonb" json:"preferred_cuisines"`

	CalorieTarget *int `gorm:"column:calorie_target" json:"calorie_target"`
	ProteinTarget *int `gorm:"column:protein_target" json:"protein_target"`
	CarbTarget    *int `gorm:"column:carb_target" json:"carb_target"`
	FatTarget     *int `gorm:"column:fat_target" json:"fat_target"`

	MealsPerDay        int            `gorm:"column:meals_per_day;not null;default:3" json:"meals_per_day"`
	PreferredMealTimes datatypes.JSON `gorm:"column:preferred_meal_times;type:jsonb" json:"preferred_meal_times"`

	MealPlanningAnalysis datatypes.JSON `gorm:"column:meal_planning_analysis;type:jsonb" json:"meal_planning_analysis"`
	MealBaseline         datatypes.JSON `gorm:"column:meal_baseline;type:jsonb" json:"meal_baseline"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserDietaryPreferences) TableName() string { return "user_dietary_preferences" }

func (p *UserDietaryPreferences) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.MealsPerDay == 0 {
		p.MealsPerDay = 3
	}
	return nil
}

// MacroSplit is a percentage split; Fats keeps the pluralized key the
// analysis prompt asks for.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

type MealSizeDistribution struct {
	Breakfast float64 `json:"breakfast"`
	Lunch     float64 `json:"lunch"`
	Dinner    float64 `json:"dinner"`
	Snacks    float64 `json:"snacks"`
}

// MealPlanningAnalysis is the decoded meal_planning_analysis blob.
type MealPlanningAnalysis struct {
	DailyCalories        float64              `json:"daily_calories"`
	MacroSplit           MacroSplit           `json:"macro_split"`
	MealSizeDistribution MealSizeDistribution `json:"meal_size_distribution"`
	NutritionNotes       string               `json:"nutrition_notes"`
}

// DefaultAnalysis is written when the analysis call fails or returns junk.
func DefaultAnalysis() MealPlanningAnalysis {
	return MealPlanningAnalysis{
		DailyCalories:        2000,
		MacroSplit:           MacroSplit{Protein: 30, Carbs: 40, Fats: 30},
		MealSizeDistribution: MealSizeDistribution{Breakfast: 25, Lunch: 35, Dinner: 30, Snacks: 10},
		NutritionNotes:       "Could not generate personalized analysis. Using standard recommendations.",
	}
}

type PortionGuidelines struct {
	Proteins   string `json:"proteins"`
	Carbs      string `json:"carbs"`
	Vegetables string `json:"vegetables"`
	Fats       string `json:"fats"`
}

// MealBaseline is the decoded meal_baseline blob.
type MealBaseline struct {
	MealTemplates     map[string][]string `json:"meal_templates"`
	PortionGuidelines PortionGuidelines   `json:"portion_guidelines"`
	CuisineRotation   []string            `json:"cuisine_rotation"`
}

func DefaultBaseline() MealBaseline {
	return MealBaseline{
		MealTemplates: map[string][]string{
			"breakfast": {"protein-rich breakfast", "whole grain option", "fruit"},
			"lunch":     {"lean protein", "complex carbs", "vegetables"},
			"dinner":    {"protein source", "vegetables", "healthy carbs"},
			"snacks":    {"balanced snack options"},
		},
		PortionGuidelines: PortionGuidelines{
			Proteins:   "palm-sized portion",
			Carbs:      "fist-sized portion",
			Vegetables: "two fist-sized portions",
			Fats:       "thumb-sized portion",
		},
		CuisineRotation: []string{"balanced mix based on preferences"},
	}
}
