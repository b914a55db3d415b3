package diet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NutritionAdherenceSnapshot is one per user, overwritten on each
// recalculation.
type NutritionAdherenceSnapshot struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	AdherenceRatio float64   `gorm:"column:adherence_ratio;not null;default:1" json:"adherence_ratio"`
	CalculatedAt   time.Time `gorm:"column:calculated_at;not null" json:"calculated_at"`
}

func (NutritionAdherenceSnapshot) TableName() string { return "nutrition_adherence_snapshot" }

func (n *NutritionAdherenceSnapshot) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CalculatedAt.IsZero() {
		n.CalculatedAt = time.Now().UTC()
	}
	return nil
}
