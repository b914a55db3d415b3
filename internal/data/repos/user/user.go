package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	ListAll(dbc dbctx.Context) ([]*types.User, error)
	First(dbc dbctx.Context) (*types.User, error)
	DeleteWithData(dbc dbctx.Context, id uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, u *types.User) error {
	if u == nil {
		return nil
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return dbc.Conn(r.db).Create(u).Error
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var u types.User
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var u types.User
	if err := dbc.Conn(r.db).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListAll(dbc dbctx.Context) ([]*types.User, error) {
	var out []*types.User
	if err := dbc.Conn(r.db).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) First(dbc dbctx.Context) (*types.User, error) {
	var out []*types.User
	if err := dbc.Conn(r.db).Order("created_at ASC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ownedTables are removed before the user row. job_run rows are keyed by
// owner_user_id and are soft deleted along with the user.
var ownedTables = []any{
	&types.HealthProfile{},
	&types.GoalPlan{},
	&types.WellnessScoreHistory{},
	&types.HistoricalMetric{},
	&types.HealthInsight{},
	&types.DailyActivitySnapshot{},
	&types.UserDietaryPreferences{},
	&types.UserSavedMeal{},
	&types.PlannedMeal{},
	&types.NutritionAdherenceSnapshot{},
	&types.MealPlanVersion{},
	&types.ShoppingListVersion{},
	&types.UserDataSnapshot{},
}

// DeleteWithData removes the user and every row they own in one transaction.
func (r *userRepo) DeleteWithData(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		for _, model := range ownedTables {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("owner_user_id = ?", id).Delete(&types.JobRun{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&types.User{}).Error
	})
}
