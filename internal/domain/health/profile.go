package health

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNonPositiveHeight = errors.New("height must be a positive number")
	ErrNonPositiveWeight = errors.New("weight must be a positive number")
)

// HealthProfile is one per user. AssessmentData is written only by the
// classifier.
type HealthProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	HeightCM float64 `gorm:"column:height_cm;not null" json:"height_cm"`
	WeightKG float64 `gorm:"column:weight_kg;not null" json:"weight_kg"`

	Lifestyle          string `gorm:"column:lifestyle;type:text" json:"lifestyle"`
	DietaryPreferences string `gorm:"column:dietary_preferences;type:text" json:"dietary_preferences"`
	FitnessGoals       string `gorm:"column:fitness_goals;type:text" json:"fitness_goals"`

	AssessmentData datatypes.JSON `gorm:"column:assessment_data;type:jsonb" json:"assessment_data"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (HealthProfile) TableName() string { return "health_profile" }

func (p *HealthProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Validate enforces the positive height/weight invariant before persistence.
func (p *HealthProfile) Validate() error {
	if p.HeightCM <= 0 {
		return ErrNonPositiveHeight
	}
	if p.WeightKG <= 0 {
		return ErrNonPositiveWeight
	}
	return nil
}

// BMI is weight_kg / (height_cm/100)^2; ok is false when either is unset.
func (p *HealthProfile) BMI() (float64, bool) {
	if p == nil || p.HeightCM <= 0 || p.WeightKG <= 0 {
		return 0, false
	}
	m := p.HeightCM / 100
	return p.WeightKG / (m * m), true
}

// Assessment is the classified-categories blob. Values are stored as plain
// strings so rows written before label validation still decode.
type Assessment struct {
	LifestyleCategory string `json:"lifestyle_category"`
	DietCategory      string `json:"diet_category"`
	GoalCategory      string `json:"goal_category"`
}

// Assessment decodes AssessmentData; a missing blob yields an empty Assessment.
func (p *HealthProfile) Assessment() Assessment {
	var a Assessment
	if p == nil || len(p.AssessmentData) == 0 {
		return a
	}
	_ = json.Unmarshal(p.AssessmentData, &a)
	return a
}

// Classification is the validated result of classifying a profile.
type Classification struct {
	Lifestyle LifestyleCategory
	Diet      DietCategory
	Goal      GoalCategory
}

func (c Classification) Assessment() Assessment {
	return Assessment{
		LifestyleCategory: string(c.Lifestyle),
		DietCategory:      string(c.Diet),
		GoalCategory:      string(c.Goal),
	}
}

// BMICategory buckets a BMI value on the WHO adult cut-offs.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}
