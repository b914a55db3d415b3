package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DataTypeHealthSummary   = "health_summary"
	DataTypeDietSummary     = "diet_summary"
	DataTypeCurrentSnapshot = "current_snapshot"
)

// UserDataSnapshot is a denormalized copy of an aggregator output. Summary
// rows are one per (user, data_type); current_snapshot rows are appended.
type UserDataSnapshot struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_data_snapshot_type,priority:1;index:idx_user_data_snapshot_time,priority:1" json:"user_id"`
	DataType  string         `gorm:"column:data_type;size:50;not null;index:idx_user_data_snapshot_type,priority:2" json:"data_type"`
	DataJSON  datatypes.JSON `gorm:"column:data_json;type:jsonb;not null" json:"data_json"`
	CreatedAt time.Time      `gorm:"not null;index:idx_user_data_snapshot_time,priority:2" json:"created_at"`
}

func (UserDataSnapshot) TableName() string { return "user_data_snapshot" }

func (s *UserDataSnapshot) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
