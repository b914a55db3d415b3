package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateOnly truncates t to midnight UTC. Every date column is written through it
// so equality lookups agree across drivers.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date column the way JSON payloads key it.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDateKey parses YYYY-MM-DD as a date column value.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// NewID returns id, or a fresh v4 UUID when id is unset.
func NewID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
