package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

func requestUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return id, nil
}

// inTx runs fn on dbc's transaction, opening one when dbc has none.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

// syncDiet refreshes the diet summary snapshot. Failures are logged only.
func syncDiet(ctx context.Context, log *logger.Logger, a AnalyticsService, userID uuid.UUID) {
	if a == nil {
		return
	}
	if err := a.SyncDiet(ctx, userID); err != nil {
		log.Warn("analytics diet sync failed", "user_id", userID, "error", err)
	}
}
