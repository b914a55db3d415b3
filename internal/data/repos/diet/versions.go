package diet

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type MealPlanVersionRepo interface {
	Create(dbc dbctx.Context, v *types.MealPlanVersion) error
	List(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.MealPlanVersion, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.MealPlanVersion, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type mealPlanVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealPlanVersionRepo(db *gorm.DB, baseLog *logger.Logger) MealPlanVersionRepo {
	return &mealPlanVersionRepo{db: db, log: baseLog.With("repo", "MealPlanVersionRepo")}
}

func (r *mealPlanVersionRepo) Create(dbc dbctx.Context, v *types.MealPlanVersion) error {
	if v == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(v).Error
}

func (r *mealPlanVersionRepo) List(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.MealPlanVersion, error) {
	var out []*types.MealPlanVersion
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mealPlanVersionRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.MealPlanVersion, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var v types.MealPlanVersion
	if err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *mealPlanVersionRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.MealPlanVersion{})
	return res.RowsAffected > 0, res.Error
}

type ShoppingListVersionRepo interface {
	Create(dbc dbctx.Context, v *types.ShoppingListVersion) error
	List(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ShoppingListVersion, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.ShoppingListVersion, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type shoppingListVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShoppingListVersionRepo(db *gorm.DB, baseLog *logger.Logger) ShoppingListVersionRepo {
	return &shoppingListVersionRepo{db: db, log: baseLog.With("repo", "ShoppingListVersionRepo")}
}

func (r *shoppingListVersionRepo) Create(dbc dbctx.Context, v *types.ShoppingListVersion) error {
	if v == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(v).Error
}

func (r *shoppingListVersionRepo) List(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ShoppingListVersion, error) {
	var out []*types.ShoppingListVersion
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *shoppingListVersionRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.ShoppingListVersion, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var v types.ShoppingListVersion
	if err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *shoppingListVersionRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.ShoppingListVersion{})
	return res.RowsAffected > 0, res.Error
}
