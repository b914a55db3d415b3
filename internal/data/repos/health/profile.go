package health

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type HealthProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.HealthProfile, error)
	Create(dbc dbctx.Context, p *types.HealthProfile) error
	UpdateUserFields(dbc dbctx.Context, p *types.HealthProfile) error
	// UpdateAssessment writes only assessment_data.
	UpdateAssessment(dbc dbctx.Context, id uuid.UUID, assessment datatypes.JSON) error
}

type healthProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthProfileRepo(db *gorm.DB, baseLog *logger.Logger) HealthProfileRepo {
	return &healthProfileRepo{db: db, log: baseLog.With("repo", "HealthProfileRepo")}
}

func (r *healthProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.HealthProfile, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var p types.HealthProfile
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *healthProfileRepo) Create(dbc dbctx.Context, p *types.HealthProfile) error {
	if p == nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return dbc.Conn(r.db).Create(p).Error
}

func (r *healthProfileRepo) UpdateUserFields(dbc dbctx.Context, p *types.HealthProfile) error {
	if p == nil || p.ID == uuid.Nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.UpdatedAt = now
	return dbc.Conn(r.db).
		Model(&types.HealthProfile{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"height_cm":           p.HeightCM,
			"weight_kg":           p.WeightKG,
			"lifestyle":           p.Lifestyle,
			"dietary_preferences": p.DietaryPreferences,
			"fitness_goals":       p.FitnessGoals,
			"updated_at":          now,
		}).Error
}

func (r *healthProfileRepo) UpdateAssessment(dbc dbctx.Context, id uuid.UUID, assessment datatypes.JSON) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.HealthProfile{}).
		Where("id = ?", id).
		UpdateColumn("assessment_data", assessment).Error
}
