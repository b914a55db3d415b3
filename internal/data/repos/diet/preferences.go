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

type PreferencesRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserDietaryPreferences, error)
	Create(dbc dbctx.Context, p *types.UserDietaryPreferences) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error
}

type preferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return &preferencesRepo{db: db, log: baseLog.With("repo", "PreferencesRepo")}
}

func (r *preferencesRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserDietaryPreferences, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var p types.UserDietaryPreferences
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *preferencesRepo) Create(dbc dbctx.Context, p *types.UserDietaryPreferences) error {
	if p == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(p).Error
}

func (r *preferencesRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.Conn(r.db).
		Model(&types.UserDietaryPreferences{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *preferencesRepo) DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	return dbc.Conn(r.db).Where("user_id = ?", userID).Delete(&types.UserDietaryPreferences{}).Error
}
