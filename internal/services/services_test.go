package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/apierr"
	"github.com/yungbote/nutribridge-backend/internal/platform/openai/openaitest"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type nopNotifier struct{ created int }

func (n *nopNotifier) JobCreated(uuid.UUID, *types.JobRun)                     { n.created++ }
func (*nopNotifier) JobProgress(uuid.UUID, *types.JobRun, string, int, string) {}
func (*nopNotifier) JobFailed(uuid.UUID, *types.JobRun, string, string)        {}
func (*nopNotifier) JobDone(uuid.UUID, *types.JobRun)                          {}
func (*nopNotifier) Event(uuid.UUID, realtime.SSEEvent, any)                   {}

type env struct {
	db     *gorm.DB
	log    *logger.Logger
	set    repos.Set
	notify *nopNotifier
	jobs   JobService
	orch   *recompute.Orchestrator
	llm    *openaitest.Fake
	user   *types.User
	ctx    context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	e := &env{
		db:     db,
		log:    log,
		set:    set,
		notify: &nopNotifier{},
		llm:    &openaitest.Fake{},
		user:   testutil.SeedUser(t, context.Background(), db, "eater@example.com"),
	}
	e.jobs = NewJobService(db, log, set.JobRun, e.notify)
	e.orch = recompute.NewOrchestrator(db, set, log, recompute.Options{})
	e.ctx = asUser(e.user.ID)
	return e
}

func asUser(id uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id})
}

// day returns the planner date offset days after today.
func day(offset int) string {
	return types.DateKey(time.Now().UTC().AddDate(0, 0, offset))
}

func wantStatus(t *testing.T, err error, status int) *apierr.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", status)
	}
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected api error, got %T %v", err, err)
	}
	if ae.Status != status {
		t.Fatalf("status=%d want %d (%v)", ae.Status, status, err)
	}
	return ae
}
