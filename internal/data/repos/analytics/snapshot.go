package analytics

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

type UserDataSnapshotRepo interface {
	// UpsertSummary keeps exactly one row per (user, dataType).
	UpsertSummary(dbc dbctx.Context, userID uuid.UUID, dataType string, data datatypes.JSON) (*types.UserDataSnapshot, error)
	Append(dbc dbctx.Context, userID uuid.UUID, dataType string, data datatypes.JSON) (*types.UserDataSnapshot, error)
	Latest(dbc dbctx.Context, userID uuid.UUID, dataType string) (*types.UserDataSnapshot, error)
	Count(dbc dbctx.Context) (int64, error)
	Recent(dbc dbctx.Context, limit int) ([]*types.UserDataSnapshot, error)
}

type userDataSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserDataSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) UserDataSnapshotRepo {
	return &userDataSnapshotRepo{db: db, log: baseLog.With("repo", "UserDataSnapshotRepo")}
}

func (r *userDataSnapshotRepo) UpsertSummary(dbc dbctx.Context, userID uuid.UUID, dataType string, data datatypes.JSON) (*types.UserDataSnapshot, error) {
	if userID == uuid.Nil || dataType == "" {
		return nil, nil
	}
	existing, err := r.Latest(dbc, userID, dataType)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if existing == nil {
		return r.Append(dbc, userID, dataType, data)
	}
	err = dbc.Conn(r.db).
		Model(&types.UserDataSnapshot{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{"data_json": data, "created_at": now}).Error
	if err != nil {
		return nil, err
	}
	existing.DataJSON = data
	existing.CreatedAt = now
	return existing, nil
}

func (r *userDataSnapshotRepo) Append(dbc dbctx.Context, userID uuid.UUID, dataType string, data datatypes.JSON) (*types.UserDataSnapshot, error) {
	row := &types.UserDataSnapshot{UserID: userID, DataType: dataType, DataJSON: data}
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *userDataSnapshotRepo) Latest(dbc dbctx.Context, userID uuid.UUID, dataType string) (*types.UserDataSnapshot, error) {
	var row types.UserDataSnapshot
	err := dbc.Conn(r.db).
		Where("user_id = ? AND data_type = ?", userID, dataType).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userDataSnapshotRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.UserDataSnapshot{}).Count(&n).Error
	return n, err
}

func (r *userDataSnapshotRepo) Recent(dbc dbctx.Context, limit int) ([]*types.UserDataSnapshot, error) {
	var out []*types.UserDataSnapshot
	q := dbc.Conn(r.db).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
