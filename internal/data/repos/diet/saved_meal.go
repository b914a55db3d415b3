package diet

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/db"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

// ErrDuplicateSavedMeal is returned when (user, mealdb_id) already exists.
var ErrDuplicateSavedMeal = errors.New("meal already saved")

type SavedMealRepo interface {
	Create(dbc dbctx.Context, m *types.UserSavedMeal) error
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.UserSavedMeal, error)
	GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*types.UserSavedMeal, error)
	GetByMealDBID(dbc dbctx.Context, userID uuid.UUID, mealDBID string) (*types.UserSavedMeal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserSavedMeal, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type savedMealRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSavedMealRepo(db *gorm.DB, baseLog *logger.Logger) SavedMealRepo {
	return &savedMealRepo{db: db, log: baseLog.With("repo", "SavedMealRepo")}
}

func (r *savedMealRepo) Create(dbc dbctx.Context, m *types.UserSavedMeal) error {
	if m == nil {
		return nil
	}
	if err := dbc.Conn(r.db).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSavedMeal
		}
		return err
	}
	return nil
}

func (r *savedMealRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.UserSavedMeal, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var m types.UserSavedMeal
	if err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *savedMealRepo) GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*types.UserSavedMeal, error) {
	out := map[uuid.UUID]*types.UserSavedMeal{}
	if userID == uuid.Nil || len(ids) == 0 {
		return out, nil
	}
	var rows []*types.UserSavedMeal
	if err := dbc.Conn(r.db).Where("user_id = ? AND id IN ?", userID, ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

func (r *savedMealRepo) GetByMealDBID(dbc dbctx.Context, userID uuid.UUID, mealDBID string) (*types.UserSavedMeal, error) {
	if userID == uuid.Nil || mealDBID == "" {
		return nil, nil
	}
	var m types.UserSavedMeal
	if err := dbc.Conn(r.db).Where("user_id = ? AND mealdb_id = ?", userID, mealDBID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *savedMealRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserSavedMeal, error) {
	var out []*types.UserSavedMeal
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Order("saved_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *savedMealRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.UserSavedMeal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *savedMealRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.UserSavedMeal{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
