package health

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// GoalPlan is one per user. The user sets the target fields; the AI fields are
// written by the goal-plan generator through targeted updates only.
type GoalPlan struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	TargetWeight         *float64 `gorm:"column:target_weight" json:"target_weight"`
	WeeklyActivityTarget *int     `gorm:"column:weekly_activity_target" json:"weekly_activity_target"`
	GoalDescription      string   `gorm:"column:goal_description;type:text" json:"goal_description"`

	// LastProfileUpdate is bumped whenever the health profile cascade runs.
	LastProfileUpdate *time.Time `gorm:"column:last_profile_update" json:"last_profile_update"`
	// GeneratedAt is when the AI fields were last written.
	GeneratedAt *time.Time `gorm:"column:generated_at" json:"generated_at"`

	AIWeeklyPlan     *string    `gorm:"column:ai_weekly_plan;type:text" json:"ai_weekly_plan"`
	AIMonthlyPlan    *string    `gorm:"column:ai_monthly_plan;type:text" json:"ai_monthly_plan"`
	AIPriority       *string    `gorm:"column:ai_priority;size:10" json:"ai_priority"`
	AIPriorityReason *string    `gorm:"column:ai_priority_reason;type:text" json:"ai_priority_reason"`
	AITargetDate     *time.Time `gorm:"column:ai_target_date;type:date" json:"ai_target_date"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (GoalPlan) TableName() string { return "goal_plan" }

func (g *GoalPlan) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Stale reports whether the profile changed after the plan was last generated.
func (g *GoalPlan) Stale() bool {
	if g == nil || g.LastProfileUpdate == nil {
		return false
	}
	return g.GeneratedAt == nil || g.LastProfileUpdate.After(*g.GeneratedAt)
}

// SameTargets reports whether the user-set fields match other.
func (g *GoalPlan) SameTargets(other *GoalPlan) bool {
	if g == nil || other == nil {
		return false
	}
	return g.GoalDescription == other.GoalDescription &&
		eqPtr(g.TargetWeight, other.TargetWeight) &&
		eqPtr(g.WeeklyActivityTarget, other.WeeklyActivityTarget)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
