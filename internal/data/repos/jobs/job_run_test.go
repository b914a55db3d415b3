package jobs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
)

func newJob(owner uuid.UUID, status string, created time.Time) *types.JobRun {
	entityID := uuid.New()
	return &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: owner,
		JobType:     "health_profile_enrich",
		EntityType:  "health_profile",
		EntityID:    &entityID,
		Status:      status,
		Stage:       status,
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestJobRunRepoClaimOrder(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(testutil.Ctx())
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	owner := uuid.New()

	queued := newJob(owner, "queued", now.Add(-3*time.Hour))
	failed := newJob(owner, "failed", now.Add(-2*time.Hour))
	lastErr := now.Add(-2 * time.Hour)
	failed.LastErrorAt = &lastErr
	stale := newJob(owner, "running", now.Add(-1*time.Hour))
	hb := now.Add(-10 * time.Hour)
	stale.HeartbeatAt = &hb
	done := newJob(owner, "succeeded", now.Add(-4*time.Hour))

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, stale, done})
	if err != nil || len(created) != 4 {
		t.Fatalf("Create: err=%v n=%d", err, len(created))
	}

	want := []uuid.UUID{queued.ID, failed.ID, stale.ID}
	for i, id := range want {
		got, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 30*time.Minute)
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		if got == nil || got.ID != id {
			t.Fatalf("claim %d: expected %s, got %+v", i, id, got)
		}
		if got.Status != "running" || got.Attempts != 1 {
			t.Fatalf("claim %d: expected running attempt 1, got %s/%d", i, got.Status, got.Attempts)
		}
		// keep the claimed job from being reclaimed as stale
		if err := repo.Heartbeat(dbc, got.ID); err != nil {
			t.Fatalf("Heartbeat: %v", err)
		}
	}
	if got, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 30*time.Minute); err != nil || got != nil {
		t.Fatalf("expected nothing claimable, got %+v err=%v", got, err)
	}
}

func TestJobRunRepoFailedRetryRespectsAttempts(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(testutil.Ctx())
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	j := newJob(uuid.New(), "failed", now.Add(-time.Hour))
	j.Attempts = 5
	if _, err := repo.Create(dbc, []*types.JobRun{j}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, _ := repo.ClaimNextRunnable(dbc, 5, time.Second, time.Hour); got != nil {
		t.Fatalf("exhausted job should not be claimed")
	}
}

func TestJobRunRepoOwnerQueries(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(testutil.Ctx())
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	owner := uuid.New()
	a := newJob(owner, "queued", now.Add(-2*time.Minute))
	b := newJob(owner, "succeeded", now.Add(-time.Minute))
	b.EntityID = a.EntityID
	if _, err := repo.Create(dbc, []*types.JobRun{a, b}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, _ := repo.GetByIDForOwner(dbc, uuid.New(), a.ID); got != nil {
		t.Fatalf("job visible to another owner")
	}
	list, err := repo.ListByOwner(dbc, owner, 10)
	if err != nil || len(list) != 2 || list[0].ID != b.ID {
		t.Fatalf("ListByOwner: err=%v n=%d", err, len(list))
	}
	latest, err := repo.GetLatestByEntity(dbc, owner, "health_profile", *a.EntityID, "health_profile_enrich")
	if err != nil || latest == nil || latest.ID != b.ID {
		t.Fatalf("GetLatestByEntity: err=%v got=%+v", err, latest)
	}

	exists, err := repo.ExistsRunnable(dbc, owner, "health_profile_enrich", "health_profile", a.EntityID)
	if err != nil || !exists {
		t.Fatalf("ExistsRunnable: exists=%v err=%v", exists, err)
	}
	ok, err := repo.UpdateFieldsUnlessStatus(dbc, a.ID, []string{"succeeded", "failed"}, map[string]interface{}{"status": "succeeded"})
	if err != nil || !ok {
		t.Fatalf("UpdateFieldsUnlessStatus: ok=%v err=%v", ok, err)
	}
	ok, _ = repo.UpdateFieldsUnlessStatus(dbc, a.ID, []string{"succeeded", "failed"}, map[string]interface{}{"status": "failed"})
	if ok {
		t.Fatalf("terminal job should not be updated")
	}
	exists, _ = repo.ExistsRunnable(dbc, owner, "health_profile_enrich", "", nil)
	if exists {
		t.Fatalf("no runnable jobs expected")
	}
}
