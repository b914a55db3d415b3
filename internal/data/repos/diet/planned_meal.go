package diet

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type PlannedMealRepo interface {
	// ListInRange returns slots with start <= planned_date <= end.
	ListInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) ([]*types.PlannedMeal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PlannedMeal, error)
	GetSlot(dbc dbctx.Context, userID uuid.UUID, date time.Time, mealType string) (*types.PlannedMeal, error)
	Create(dbc dbctx.Context, pm *types.PlannedMeal) error
	Save(dbc dbctx.Context, pm *types.PlannedMeal) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) (int64, error)
}

type plannedMealRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlannedMealRepo(db *gorm.DB, baseLog *logger.Logger) PlannedMealRepo {
	return &plannedMealRepo{db: db, log: baseLog.With("repo", "PlannedMealRepo")}
}

func (r *plannedMealRepo) ListInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) ([]*types.PlannedMeal, error) {
	var out []*types.PlannedMeal
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("user_id = ? AND planned_date >= ? AND planned_date <= ?", userID, types.DateOnly(start), types.DateOnly(end)).
		Order("planned_date ASC, meal_type ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *plannedMealRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PlannedMeal, error) {
	var out []*types.PlannedMeal
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *plannedMealRepo) GetSlot(dbc dbctx.Context, userID uuid.UUID, date time.Time, mealType string) (*types.PlannedMeal, error) {
	if userID == uuid.Nil || mealType == "" {
		return nil, nil
	}
	var pm types.PlannedMeal
	err := dbc.Conn(r.db).
		Where("user_id = ? AND planned_date = ? AND meal_type = ?", userID, types.DateOnly(date), mealType).
		First(&pm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pm, nil
}

func (r *plannedMealRepo) Create(dbc dbctx.Context, pm *types.PlannedMeal) error {
	if pm == nil {
		return nil
	}
	pm.PlannedDate = types.DateOnly(pm.PlannedDate)
	return dbc.Conn(r.db).Create(pm).Error
}

func (r *plannedMealRepo) Save(dbc dbctx.Context, pm *types.PlannedMeal) error {
	if pm == nil {
		return nil
	}
	pm.PlannedDate = types.DateOnly(pm.PlannedDate)
	return dbc.Conn(r.db).Save(pm).Error
}

func (r *plannedMealRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.Conn(r.db).Where("id = ?", id).Delete(&types.PlannedMeal{}).Error
}

func (r *plannedMealRepo) DeleteInRange(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	res := dbc.Conn(r.db).
		Where("user_id = ? AND planned_date >= ? AND planned_date <= ?", userID, types.DateOnly(start), types.DateOnly(end)).
		Delete(&types.PlannedMeal{})
	return res.RowsAffected, res.Error
}
