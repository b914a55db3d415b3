package diet

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type AdherenceRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NutritionAdherenceSnapshot, error)
	Upsert(dbc dbctx.Context, userID uuid.UUID, ratio float64) (*types.NutritionAdherenceSnapshot, error)
}

type adherenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdherenceRepo(db *gorm.DB, baseLog *logger.Logger) AdherenceRepo {
	return &adherenceRepo{db: db, log: baseLog.With("repo", "AdherenceRepo")}
}

func (r *adherenceRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NutritionAdherenceSnapshot, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.NutritionAdherenceSnapshot
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *adherenceRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, ratio float64) (*types.NutritionAdherenceSnapshot, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	row := &types.NutritionAdherenceSnapshot{
		UserID:         userID,
		AdherenceRatio: ratio,
		CalculatedAt:   time.Now().UTC(),
	}
	err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"adherence_ratio", "calculated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}
