package handlers

import (
	"fmt"

	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
)

type goalPlanGenerate struct{ Deps }

// NewGoalPlanGenerate regenerates the AI fields of a goal plan.
func NewGoalPlanGenerate(d Deps) runtime.Handler {
	d.Log = d.Log.With("handler", jobs.TypeGoalPlanGenerate)
	return &goalPlanGenerate{d}
}

func (h *goalPlanGenerate) Type() string { return jobs.TypeGoalPlanGenerate }

func (h *goalPlanGenerate) Run(jc *runtime.Context) error {
	planID, ok := jc.EntityID("goal_plan_id")
	if !ok {
		jc.Fail("load", errMissingEntity)
		return nil
	}
	jc.Progress("load", 10, "Loading goal plan")
	plan, err := h.Repos.GoalPlan.GetByUserID(jc.DBC(), jc.Job.OwnerUserID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if plan == nil || plan.ID != planID {
		jc.Fail("load", fmt.Errorf("goal plan %s not found", planID))
		return nil
	}

	jc.Progress("generate", 40, "Generating goal plan")
	// The AI columns are only written by this cascade, so the loaded row is
	// the baseline for change detection.
	out, err := h.Orchestrator.OnGoalPlanSaved(jc.Ctx, nil, plan)
	if err != nil {
		jc.Fail("generate", err)
		return nil
	}
	jc.Progress("sync", 90, "Updating analytics")
	syncHealth(jc, h.Syncer, h.Log)
	jc.Succeed("done", out)
	return nil
}
