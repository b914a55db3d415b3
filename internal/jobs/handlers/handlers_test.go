package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/diet"
	"github.com/yungbote/nutribridge-backend/internal/domain/health"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/jobs/worker"
	"github.com/yungbote/nutribridge-backend/internal/modules/classify"
	"github.com/yungbote/nutribridge-backend/internal/modules/goalplan"
	"github.com/yungbote/nutribridge-backend/internal/modules/macros"
	"github.com/yungbote/nutribridge-backend/internal/modules/onboarding"
	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/jsonx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/pointers"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai/openaitest"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []realtime.SSEEvent
}

func (n *recordingNotifier) add(e realtime.SSEEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) has(e realtime.SSEEvent) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, got := range n.events {
		if got == e {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) JobCreated(uuid.UUID, *types.JobRun) { n.add(realtime.SSEEventJobCreated) }
func (n *recordingNotifier) JobProgress(uuid.UUID, *types.JobRun, string, int, string) {
	n.add(realtime.SSEEventJobProgress)
}
func (n *recordingNotifier) JobFailed(uuid.UUID, *types.JobRun, string, string) {
	n.add(realtime.SSEEventJobFailed)
}
func (n *recordingNotifier) JobDone(uuid.UUID, *types.JobRun)             { n.add(realtime.SSEEventJobDone) }
func (n *recordingNotifier) Event(_ uuid.UUID, e realtime.SSEEvent, _ any) { n.add(e) }

type countingSyncer struct{ health, diet int }

func (s *countingSyncer) SyncHealth(context.Context, uuid.UUID) error { s.health++; return nil }
func (s *countingSyncer) SyncDiet(context.Context, uuid.UUID) error   { s.diet++; return nil }

type fakeClassifier struct{}

func (fakeClassifier) Classify(context.Context, classify.Input) (health.Classification, error) {
	return health.Classification{
		Lifestyle: health.LifestyleActive,
		Diet:      health.DietHealthy,
		Goal:      health.GoalWeightLoss,
	}, nil
}

type fakeInsights struct{}

func (fakeInsights) Health(context.Context, *health.HealthProfile) (string, error) {
	return "Stay consistent.", nil
}

type fakeGoals struct{ calls int }

func (f *fakeGoals) Generate(context.Context, *health.GoalPlan) (goalplan.Result, error) {
	f.calls++
	return goalplan.Result{
		Weekly:   pointers.Ptr("Walk four times."),
		Monthly:  pointers.Ptr("Lose two kilos."),
		Priority: pointers.Ptr("high"),
	}, nil
}

type harness struct {
	db     *gorm.DB
	set    repos.Set
	worker *worker.Worker
	notify *recordingNotifier
	sync   *countingSyncer
	llm    *openaitest.Fake
	goals  *fakeGoals
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	h := &harness{
		db:     db,
		set:    set,
		notify: &recordingNotifier{},
		sync:   &countingSyncer{},
		llm:    &openaitest.Fake{},
		goals:  &fakeGoals{},
	}
	orch := recompute.NewOrchestrator(db, set, log, recompute.Options{
		Classifier: fakeClassifier{},
		Insights:   fakeInsights{},
		Goals:      h.goals,
	})
	reg := runtime.NewRegistry()
	if err := RegisterAll(reg, Deps{
		Repos:        set,
		Orchestrator: orch,
		Estimator:    macros.New(h.llm),
		Onboarder:    onboarding.New(h.llm),
		Syncer:       h.sync,
		Log:          log,
	}); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	h.worker = worker.NewWorker(db, log, set.JobRun, reg, h.notify)
	return h
}

func (h *harness) enqueue(t *testing.T, owner uuid.UUID, jobType, entityType string, entityID uuid.UUID) *types.JobRun {
	t.Helper()
	now := time.Now().UTC()
	job := &types.JobRun{
		OwnerUserID: owner,
		JobType:     jobType,
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      jobs.StatusQueued,
		Stage:       jobs.StatusQueued,
		Payload:     datatypes.JSON(`{}`),
		Result:      datatypes.JSON(`{}`),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := h.set.JobRun.Create(dbctx.New(context.Background()), []*types.JobRun{job}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return job
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	if _, err := h.worker.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

func (h *harness) job(t *testing.T, owner, id uuid.UUID) *types.JobRun {
	t.Helper()
	job, err := h.set.JobRun.GetByIDForOwner(dbctx.New(context.Background()), owner, id)
	if err != nil || job == nil {
		t.Fatalf("load job: %v", err)
	}
	return job
}

func TestRegisterAllRegistersEveryType(t *testing.T) {
	reg := runtime.NewRegistry()
	if err := RegisterAll(reg, Deps{Log: testutil.Logger(t)}); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	want := []string{
		jobs.TypeGoalPlanGenerate,
		jobs.TypeHealthProfileEnrich,
		jobs.TypeMealPlanningAnalysis,
		jobs.TypeSavedMealMacros,
	}
	got := reg.Types()
	if len(got) != len(want) {
		t.Fatalf("types=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("types=%v want %v", got, want)
		}
	}
}

func TestHealthProfileEnrich(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "enrich@example.com")
	p := testutil.SeedProfile(t, ctx, h.db, u.ID, 180, 80, "")
	testutil.SeedGoalPlan(t, ctx, h.db, u.ID, 75, 3)

	job := h.enqueue(t, u.ID, jobs.TypeHealthProfileEnrich, jobs.EntityHealthProfile, p.ID)
	h.drain(t)

	got := h.job(t, u.ID, job.ID)
	if got.Status != jobs.StatusSucceeded {
		t.Fatalf("status=%s error=%s", got.Status, got.Error)
	}
	dbc := dbctx.New(ctx)
	stored, _ := h.set.HealthProfile.GetByUserID(dbc, u.ID)
	if stored.Assessment().LifestyleCategory != "Active" {
		t.Fatalf("assessment=%s", stored.AssessmentData)
	}
	scores, _ := h.set.WellnessScore.ListRecent(dbc, u.ID, 5)
	if len(scores) != 1 {
		t.Fatalf("scores=%d", len(scores))
	}
	if !h.notify.has(realtime.SSEEventWellnessScoreUpdated) || h.sync.health != 1 {
		t.Fatalf("events=%v health syncs=%d", h.notify.events, h.sync.health)
	}
}

func TestHealthProfileEnrichRejectsForeignProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "owner@example.com")
	testutil.SeedProfile(t, ctx, h.db, u.ID, 180, 80, "")

	job := h.enqueue(t, u.ID, jobs.TypeHealthProfileEnrich, jobs.EntityHealthProfile, uuid.New())
	h.drain(t)

	got := h.job(t, u.ID, job.ID)
	if got.Status != jobs.StatusFailed || got.Stage != "load" {
		t.Fatalf("job=%+v", got)
	}
}

func TestGoalPlanGenerate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "goal@example.com")
	g := testutil.SeedGoalPlan(t, ctx, h.db, u.ID, 70, 4)

	job := h.enqueue(t, u.ID, jobs.TypeGoalPlanGenerate, jobs.EntityGoalPlan, g.ID)
	h.drain(t)

	if got := h.job(t, u.ID, job.ID); got.Status != jobs.StatusSucceeded {
		t.Fatalf("status=%s error=%s", got.Status, got.Error)
	}
	plan, _ := h.set.GoalPlan.GetByUserID(dbctx.New(ctx), u.ID)
	if plan.AIWeeklyPlan == nil || *plan.AIWeeklyPlan != "Walk four times." || plan.GeneratedAt == nil {
		t.Fatalf("plan=%+v", plan)
	}
	if h.goals.calls != 1 {
		t.Fatalf("generator calls=%d", h.goals.calls)
	}
}

func TestSavedMealMacros(t *testing.T) {
	h := newHarness(t)
	h.llm.Rules = []openaitest.Rule{{
		Contains: "Recipe Name: Soup",
		Reply:    `Here you go: {"calories":420,"protein":25,"carbs":50,"fat":10,"prep_time_min":35}`,
	}}
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "macros@example.com")
	meal := &diet.UserSavedMeal{
		UserID:        u.ID,
		MealDBID:      "52000",
		MealName:      "Soup",
		RawMealDBData: datatypes.JSON(`{"strIngredient1":"Carrot","strMeasure1":"2"}`),
	}
	if err := h.db.Create(meal).Error; err != nil {
		t.Fatalf("create meal: %v", err)
	}

	job := h.enqueue(t, u.ID, jobs.TypeSavedMealMacros, jobs.EntitySavedMeal, meal.ID)
	h.drain(t)

	if got := h.job(t, u.ID, job.ID); got.Status != jobs.StatusSucceeded {
		t.Fatalf("status=%s error=%s", got.Status, got.Error)
	}
	stored, _ := h.set.SavedMeal.GetByID(dbctx.New(ctx), u.ID, meal.ID)
	m, ok := stored.Macros()
	if !ok || m.Calories != 420 {
		t.Fatalf("macros=%s", stored.MacrosJSON)
	}
	if stored.PrepTimeMin == nil || *stored.PrepTimeMin != 35 || stored.RecommendedServings == nil {
		t.Fatalf("meal=%+v", stored)
	}
	if !h.notify.has(realtime.SSEEventSavedMealUpdated) || h.sync.diet != 1 {
		t.Fatalf("events=%v diet syncs=%d", h.notify.events, h.sync.diet)
	}
}

func TestSavedMealMacrosEstimateFailure(t *testing.T) {
	h := newHarness(t)
	h.llm.Rules = []openaitest.Rule{{Contains: "Recipe Name", Err: errors.New("rate limited")}}
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "fail@example.com")
	meal := &diet.UserSavedMeal{UserID: u.ID, MealDBID: "52001", MealName: "Stew"}
	if err := h.db.Create(meal).Error; err != nil {
		t.Fatalf("create meal: %v", err)
	}

	job := h.enqueue(t, u.ID, jobs.TypeSavedMealMacros, jobs.EntitySavedMeal, meal.ID)
	h.drain(t)

	got := h.job(t, u.ID, job.ID)
	if got.Status != jobs.StatusSucceeded {
		t.Fatalf("status=%s", got.Status)
	}
	res := jsonx.Map(got.Result)
	if res["estimate_error"] != "rate limited" {
		t.Fatalf("result=%s", got.Result)
	}
	stored, _ := h.set.SavedMeal.GetByID(dbctx.New(ctx), u.ID, meal.ID)
	if !jsonx.Empty(stored.MacrosJSON) || stored.RecommendedServings == nil {
		t.Fatalf("meal=%+v", stored)
	}
}

func TestSavedMealMacrosDeletedMeal(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, context.Background(), h.db, "gone@example.com")
	job := h.enqueue(t, u.ID, jobs.TypeSavedMealMacros, jobs.EntitySavedMeal, uuid.New())
	h.drain(t)

	got := h.job(t, u.ID, job.ID)
	if got.Status != jobs.StatusSucceeded || jsonx.Map(got.Result)["skipped"] != true {
		t.Fatalf("job=%+v result=%s", got, got.Result)
	}
}

func TestMealPlanningAnalysisFallsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "plan@example.com")
	prefs := testutil.SeedPreferences(t, ctx, h.db, u.ID, "")

	job := h.enqueue(t, u.ID, jobs.TypeMealPlanningAnalysis, jobs.EntityPreferences, prefs.ID)
	h.drain(t)

	got := h.job(t, u.ID, job.ID)
	if got.Status != jobs.StatusSucceeded {
		t.Fatalf("status=%s error=%s", got.Status, got.Error)
	}
	if jsonx.Map(got.Result)["analysis_fallback"] != true {
		t.Fatalf("result=%s", got.Result)
	}
	stored, _ := h.set.Preferences.GetByUserID(dbctx.New(ctx), u.ID)
	analysis, err := jsonx.Decode[diet.MealPlanningAnalysis](stored.MealPlanningAnalysis)
	if err != nil || analysis.DailyCalories != diet.DefaultAnalysis().DailyCalories {
		t.Fatalf("analysis=%s err=%v", stored.MealPlanningAnalysis, err)
	}
	if jsonx.Empty(stored.MealBaseline) || h.sync.diet != 1 {
		t.Fatalf("baseline=%s diet syncs=%d", stored.MealBaseline, h.sync.diet)
	}
}

func TestMealPlanningAnalysisWithoutPreferences(t *testing.T) {
	h := newHarness(t)
	u := testutil.SeedUser(t, context.Background(), h.db, "noprefs@example.com")
	job := h.enqueue(t, u.ID, jobs.TypeMealPlanningAnalysis, jobs.EntityPreferences, uuid.New())
	h.drain(t)

	if got := h.job(t, u.ID, job.ID); got.Status != jobs.StatusFailed {
		t.Fatalf("status=%s", got.Status)
	}
}
