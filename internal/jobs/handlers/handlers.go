// Package handlers holds the job_run handlers the worker dispatches to.
package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/modules/macros"
	"github.com/yungbote/nutribridge-backend/internal/modules/onboarding"
	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

var errMissingEntity = errors.New("job has no entity id")

// Syncer refreshes the analytics summaries after a job writes.
type Syncer interface {
	SyncHealth(ctx context.Context, userID uuid.UUID) error
	SyncDiet(ctx context.Context, userID uuid.UUID) error
}

type Deps struct {
	Repos        repos.Set
	Orchestrator *recompute.Orchestrator
	Estimator    *macros.Estimator
	Onboarder    *onboarding.Onboarder
	Syncer       Syncer
	Log          *logger.Logger
}

// RegisterAll registers every handler on reg.
func RegisterAll(reg *runtime.Registry, d Deps) error {
	for _, h := range []runtime.Handler{
		NewHealthProfileEnrich(d),
		NewGoalPlanGenerate(d),
		NewSavedMealMacros(d),
		NewMealPlanningAnalysis(d),
	} {
		if err := reg.Register(h); err != nil {
			return err
		}
	}
	return nil
}

func syncHealth(jc *runtime.Context, s Syncer, log *logger.Logger) {
	if s == nil {
		return
	}
	if err := s.SyncHealth(jc.Ctx, jc.Job.OwnerUserID); err != nil {
		log.Warn("analytics health sync failed", "error", err)
	}
}

func syncDiet(jc *runtime.Context, s Syncer, log *logger.Logger) {
	if s == nil {
		return
	}
	if err := s.SyncDiet(jc.Ctx, jc.Job.OwnerUserID); err != nil {
		log.Warn("analytics diet sync failed", "error", err)
	}
}
