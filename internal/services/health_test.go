package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
)

func newHealth(e *env) HealthService {
	return NewHealthService(e.db, e.log, e.set, e.jobs, e.orch)
}

func TestSaveProfileEnqueuesEnrichment(t *testing.T) {
	e := newEnv(t)
	svc := newHealth(e)

	_, err := svc.SaveProfile(e.ctx, ProfileInput{HeightCM: 0, WeightKG: 70})
	wantStatus(t, err, http.StatusBadRequest)

	first, err := svc.SaveProfile(e.ctx, ProfileInput{HeightCM: 180, WeightKG: 80, Lifestyle: " desk job "})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if first.Profile.Lifestyle != "desk job" || first.Job == nil || first.Job.JobType != jobs.TypeHealthProfileEnrich {
		t.Fatalf("write=%+v job=%+v", first.Profile, first.Job)
	}

	second, err := svc.SaveProfile(e.ctx, ProfileInput{HeightCM: 180, WeightKG: 78})
	if err != nil {
		t.Fatalf("SaveProfile update: %v", err)
	}
	if second.Profile.ID != first.Profile.ID || second.Profile.WeightKG != 78 {
		t.Fatalf("update should keep the row: %+v", second.Profile)
	}
	got, err := svc.GetProfile(e.ctx)
	if err != nil || got.WeightKG != 78 {
		t.Fatalf("GetProfile=%+v err=%v", got, err)
	}
}

func TestSaveGoalPlanSkipsUnchangedResubmit(t *testing.T) {
	e := newEnv(t)
	svc := newHealth(e)

	_, err := svc.GetGoalPlan(e.ctx)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("GetGoalPlan err=%v", err)
	}
	_, err = svc.SaveGoalPlan(e.ctx, GoalInput{TargetWeight: pointers.Ptr(-3.0)})
	wantStatus(t, err, http.StatusBadRequest)

	in := GoalInput{TargetWeight: pointers.Ptr(72.0), WeeklyActivityTarget: pointers.Ptr(4), GoalDescription: "run a 10k"}
	first, err := svc.SaveGoalPlan(e.ctx, in)
	if err != nil {
		t.Fatalf("SaveGoalPlan: %v", err)
	}
	if first.Job == nil || first.Job.JobType != jobs.TypeGoalPlanGenerate {
		t.Fatalf("first job=%+v", first.Job)
	}

	again, err := svc.SaveGoalPlan(e.ctx, in)
	if err != nil {
		t.Fatalf("SaveGoalPlan again: %v", err)
	}
	if again.Job != nil || again.GoalPlan.ID != first.GoalPlan.ID {
		t.Fatalf("unchanged resubmit should not schedule: %+v", again)
	}

	in.TargetWeight = pointers.Ptr(70.0)
	changed, err := svc.SaveGoalPlan(e.ctx, in)
	if err != nil {
		t.Fatalf("SaveGoalPlan changed: %v", err)
	}
	if changed.Job == nil || *changed.GoalPlan.TargetWeight != 70 {
		t.Fatalf("changed targets should schedule: %+v", changed)
	}
}

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	svc := newHealth(e)

	empty, err := svc.Dashboard(e.ctx)
	if err != nil {
		t.Fatalf("Dashboard without profile: %v", err)
	}
	if empty.Profile != nil || empty.BMI != nil || empty.AdherenceRatio != 1.0 {
		t.Fatalf("empty dashboard=%+v", empty)
	}

	testutil.SeedProfile(t, context.Background(), e.db, e.user.ID, 200, 80, "")
	d, err := svc.Dashboard(e.ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.BMI == nil || *d.BMI != 20 || d.BMICategory != "Normal weight" {
		t.Fatalf("bmi=%v category=%q", d.BMI, d.BMICategory)
	}
	if d.AdjustedWellnessScore != d.WellnessScore {
		t.Fatalf("default adherence should leave the score alone: %d vs %d", d.AdjustedWellnessScore, d.WellnessScore)
	}
	if d.Progress != nil {
		t.Fatalf("progress needs a goal plan, got %+v", d.Progress)
	}
}

func TestProgressSummary(t *testing.T) {
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	target := time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC)
	plan := &types.GoalPlan{TargetWeight: pointers.Ptr(70.0), AITargetDate: &target}
	weights := []*types.HistoricalMetric{
		{Value: 75, RecordedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
		{Value: 80, RecordedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
	}

	ps := progressSummary(plan, weights, now)
	if ps == nil {
		t.Fatalf("expected a summary")
	}
	if ps.StartWeight != 80 || ps.CurrentWeight != 75 || ps.TotalDays != 20 || ps.DaysLeft != 10 {
		t.Fatalf("summary=%+v", ps)
	}
	if ps.TimeProgressPct != 50 || ps.WeightProgressPct != 50 {
		t.Fatalf("progress=%v/%v", ps.TimeProgressPct, ps.WeightProgressPct)
	}
	if progressSummary(plan, nil, now) != nil {
		t.Fatalf("no weights means no summary")
	}
}

func TestRegenerateWellnessScoreAndExport(t *testing.T) {
	e := newEnv(t)
	svc := newHealth(e)
	testutil.SeedProfile(t, context.Background(), e.db, e.user.ID, 180, 80, "")
	if err := e.set.HistoricalMetric.Create(dbctx.New(context.Background()), &types.HistoricalMetric{
		UserID: e.user.ID, MetricType: types.MetricWeight, Value: 80, RecordedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed weight: %v", err)
	}

	out, err := svc.RegenerateWellnessScore(e.ctx)
	if err != nil {
		t.Fatalf("RegenerateWellnessScore: %v", err)
	}
	if out.Adherence.Ratio != 0.6 {
		t.Fatalf("no analysis means the penalty ratio, got %v", out.Adherence.Ratio)
	}

	exp, err := svc.Export(e.ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(exp.Weights) != 1 || len(exp.WellnessScores) != 1 || exp.WellnessScores[0].Score != out.BaseScore {
		t.Fatalf("export=%+v", exp)
	}
}
