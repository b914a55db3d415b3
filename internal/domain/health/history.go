package health

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MetricWeight = "weight"

// WellnessScoreHistory is append-only.
type WellnessScoreHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_score_user_time,priority:1" json:"user_id"`
	Score      int       `gorm:"column:score;not null" json:"score"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;index:idx_score_user_time,priority:2" json:"recorded_at"`
}

func (WellnessScoreHistory) TableName() string { return "wellness_score_history" }

func (w *WellnessScoreHistory) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.RecordedAt.IsZero() {
		w.RecordedAt = time.Now().UTC()
	}
	return nil
}

// HistoricalMetric is append-only. (user, metric_type, recorded_at) is unique;
// two writes inside the same clock tick collide.
type HistoricalMetric struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_metric_user_type_time,priority:1" json:"user_id"`
	MetricType string    `gorm:"column:metric_type;size:50;not null;uniqueIndex:idx_metric_user_type_time,priority:2" json:"metric_type"`
	Value      float64   `gorm:"column:value;not null" json:"value"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;uniqueIndex:idx_metric_user_type_time,priority:3" json:"recorded_at"`
}

func (HistoricalMetric) TableName() string { return "historical_metric" }

func (h *HistoricalMetric) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.RecordedAt.IsZero() {
		h.RecordedAt = time.Now().UTC()
	}
	return nil
}

type HealthInsight struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null;index" json:"recorded_at"`
}

func (HealthInsight) TableName() string { return "health_insight" }

func (h *HealthInsight) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.RecordedAt.IsZero() {
		h.RecordedAt = time.Now().UTC()
	}
	return nil
}

// DailyActivitySnapshot is one per (user, date), upserted by the profile cascade.
type DailyActivitySnapshot struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_user_date,priority:1" json:"user_id"`
	Date                 time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_activity_user_date,priority:2" json:"date"`
	LifestyleCategory    string    `gorm:"column:lifestyle_category;size:50;not null" json:"lifestyle_category"`
	WeeklyActivityTarget *int      `gorm:"column:weekly_activity_target" json:"weekly_activity_target"`
	RecordedAt           time.Time `gorm:"column:recorded_at;not null" json:"recorded_at"`
}

func (DailyActivitySnapshot) TableName() string { return "daily_activity_snapshot" }

func (d *DailyActivitySnapshot) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now().UTC()
	}
	return nil
}
