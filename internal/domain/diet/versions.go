package diet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const VersionActionManual = "manual"

// MealPlanVersion is an immutable copy of the 7-day window.
type MealPlanVersion struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;index:idx_meal_plan_version_user_time,priority:1" json:"user_id"`
	VersionName         string         `gorm:"column:version_name;size:200" json:"version_name"`
	CreatedByAction     string         `gorm:"column:created_by_action;size:50;not null;default:manual" json:"created_by_action"`
	MealPlanSnapshot    datatypes.JSON `gorm:"column:meal_plan_snapshot;type:jsonb;not null" json:"meal_plan_snapshot"`
	DailyTotalsSnapshot datatypes.JSON `gorm:"column:daily_totals_snapshot;type:jsonb;not null" json:"daily_totals_snapshot"`
	Notes               string         `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt           time.Time      `gorm:"not null;index:idx_meal_plan_version_user_time,priority:2" json:"created_at"`
}

func (MealPlanVersion) TableName() string { return "meal_plan_version" }

func (v *MealPlanVersion) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.VersionName == "" {
		v.VersionName = "Version saved on " + v.CreatedAt.Format("2006-01-02 15:04:05")
	}
	if v.CreatedByAction == "" {
		v.CreatedByAction = VersionActionManual
	}
	return nil
}

// SlotSnapshot is one slot inside meal_plan_snapshot[date][meal_type].
type SlotSnapshot struct {
	ID            string    `json:"id"`
	PlanJSON      *MealPlan `json:"plan_json"`
	Notes         string    `json:"notes"`
	TotalCalories *float64  `json:"total_calories"`
	TotalProtein  *float64  `json:"total_protein"`
	TotalCarbs    *float64  `json:"total_carbs"`
	TotalFat      *float64  `json:"total_fat"`
}

// PlanSnapshot is keyed by YYYY-MM-DD then meal type.
type PlanSnapshot map[string]map[string]SlotSnapshot

// MealCount counts populated slots across all days.
func (p PlanSnapshot) MealCount() int {
	n := 0
	for _, day := range p {
		n += len(day)
	}
	return n
}

type ShoppingListVersion struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"column:name;size:128" json:"name"`
	Notes     string         `gorm:"column:notes;type:text" json:"notes"`
	ItemsJSON datatypes.JSON `gorm:"column:items_json;type:jsonb;not null" json:"items_json"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (ShoppingListVersion) TableName() string { return "shopping_list_version" }

func (v *ShoppingListVersion) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
