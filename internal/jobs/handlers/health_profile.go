package handlers

import (
	"fmt"

	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type healthProfileEnrich struct{ Deps }

// NewHealthProfileEnrich runs the profile cascade for a saved profile.
func NewHealthProfileEnrich(d Deps) runtime.Handler {
	d.Log = d.Log.With("handler", jobs.TypeHealthProfileEnrich)
	return &healthProfileEnrich{d}
}

func (h *healthProfileEnrich) Type() string { return jobs.TypeHealthProfileEnrich }

func (h *healthProfileEnrich) Run(jc *runtime.Context) error {
	profileID, ok := jc.EntityID("profile_id")
	if !ok {
		jc.Fail("load", errMissingEntity)
		return nil
	}
	jc.Progress("load", 10, "Loading health profile")
	profile, err := h.Repos.HealthProfile.GetByUserID(jc.DBC(), jc.Job.OwnerUserID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if profile == nil || profile.ID != profileID {
		jc.Fail("load", fmt.Errorf("health profile %s not found", profileID))
		return nil
	}

	jc.Progress("classify", 30, "Classifying profile")
	out, err := h.Orchestrator.OnHealthProfileSaved(jc.Ctx, profile)
	if err != nil {
		jc.Fail("cascade", err)
		return nil
	}
	if !out.Skipped {
		jc.Emit(realtime.SSEEventWellnessScoreUpdated, map[string]any{
			"wellness_score": out.Score,
			"profile_id":     profile.ID,
		})
	}
	jc.Progress("sync", 90, "Updating analytics")
	syncHealth(jc, h.Syncer, h.Log)
	jc.Succeed("done", out)
	return nil
}
