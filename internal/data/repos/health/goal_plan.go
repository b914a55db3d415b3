package health

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type GoalPlanRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.GoalPlan, error)
	Create(dbc dbctx.Context, g *types.GoalPlan) error
	UpdateTargets(dbc dbctx.Context, g *types.GoalPlan) error
	// UpdateAIFields is a targeted update of generator-owned columns; it does
	// not touch updated_at.
	UpdateAIFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// MarkProfileUpdated sets last_profile_update and reports whether a plan
	// exists for the user.
	MarkProfileUpdated(dbc dbctx.Context, userID uuid.UUID, at time.Time) (bool, error)
}

type goalPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalPlanRepo(db *gorm.DB, baseLog *logger.Logger) GoalPlanRepo {
	return &goalPlanRepo{db: db, log: baseLog.With("repo", "GoalPlanRepo")}
}

func (r *goalPlanRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.GoalPlan, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var g types.GoalPlan
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *goalPlanRepo) Create(dbc dbctx.Context, g *types.GoalPlan) error {
	if g == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(g).Error
}

func (r *goalPlanRepo) UpdateTargets(dbc dbctx.Context, g *types.GoalPlan) error {
	if g == nil || g.ID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	g.UpdatedAt = now
	return dbc.Conn(r.db).
		Model(&types.GoalPlan{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"target_weight":          g.TargetWeight,
			"weekly_activity_target": g.WeeklyActivityTarget,
			"goal_description":       g.GoalDescription,
			"updated_at":             now,
		}).Error
}

func (r *goalPlanRepo) UpdateAIFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.GoalPlan{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

func (r *goalPlanRepo) MarkProfileUpdated(dbc dbctx.Context, userID uuid.UUID, at time.Time) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	res := dbc.Conn(r.db).
		Model(&types.GoalPlan{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_profile_update", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
