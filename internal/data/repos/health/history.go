package health

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type WellnessScoreRepo interface {
	Create(dbc dbctx.Context, row *types.WellnessScoreHistory) error
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.WellnessScoreHistory, error)
}

type wellnessScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWellnessScoreRepo(db *gorm.DB, baseLog *logger.Logger) WellnessScoreRepo {
	return &wellnessScoreRepo{db: db, log: baseLog.With("repo", "WellnessScoreRepo")}
}

func (r *wellnessScoreRepo) Create(dbc dbctx.Context, row *types.WellnessScoreHistory) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *wellnessScoreRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.WellnessScoreHistory, error) {
	var out []*types.WellnessScoreHistory
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type HistoricalMetricRepo interface {
	Create(dbc dbctx.Context, row *types.HistoricalMetric) error
	ListRecent(dbc dbctx.Context, userID uuid.UUID, metricType string, limit int) ([]*types.HistoricalMetric, error)
}

type historicalMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoricalMetricRepo(db *gorm.DB, baseLog *logger.Logger) HistoricalMetricRepo {
	return &historicalMetricRepo{db: db, log: baseLog.With("repo", "HistoricalMetricRepo")}
}

func (r *historicalMetricRepo) Create(dbc dbctx.Context, row *types.HistoricalMetric) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *historicalMetricRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, metricType string, limit int) ([]*types.HistoricalMetric, error) {
	var out []*types.HistoricalMetric
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ? AND metric_type = ?", userID, metricType).Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type HealthInsightRepo interface {
	Create(dbc dbctx.Context, row *types.HealthInsight) error
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.HealthInsight, error)
}

type healthInsightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthInsightRepo(db *gorm.DB, baseLog *logger.Logger) HealthInsightRepo {
	return &healthInsightRepo{db: db, log: baseLog.With("repo", "HealthInsightRepo")}
}

func (r *healthInsightRepo) Create(dbc dbctx.Context, row *types.HealthInsight) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *healthInsightRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.HealthInsight, error) {
	var out []*types.HealthInsight
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("recorded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type DailyActivityRepo interface {
	// Upsert writes the (user, date) row, replacing category and target.
	Upsert(dbc dbctx.Context, row *types.DailyActivitySnapshot) error
	ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DailyActivitySnapshot, error)
}

type dailyActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyActivityRepo(db *gorm.DB, baseLog *logger.Logger) DailyActivityRepo {
	return &dailyActivityRepo{db: db, log: baseLog.With("repo", "DailyActivityRepo")}
}

func (r *dailyActivityRepo) Upsert(dbc dbctx.Context, row *types.DailyActivitySnapshot) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"lifestyle_category", "weekly_activity_target", "recorded_at"}),
		}).
		Create(row).Error
}

func (r *dailyActivityRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.DailyActivitySnapshot, error) {
	var out []*types.DailyActivitySnapshot
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
