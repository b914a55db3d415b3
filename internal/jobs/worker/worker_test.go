package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/domain/jobs"
	"github.com/yungbote/nutribridge-backend/internal/jobs/runtime"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) add(e string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) JobCreated(uuid.UUID, *types.JobRun) { n.add("created") }
func (n *recordingNotifier) JobProgress(uuid.UUID, *types.JobRun, string, int, string) {
	n.add("progress")
}
func (n *recordingNotifier) JobFailed(uuid.UUID, *types.JobRun, string, string) { n.add("failed") }
func (n *recordingNotifier) JobDone(uuid.UUID, *types.JobRun)                   { n.add("done") }
func (n *recordingNotifier) Event(_ uuid.UUID, e realtime.SSEEvent, _ any)       { n.add(string(e)) }

type funcHandler struct {
	typ string
	run func(jc *runtime.Context) error
}

func (h funcHandler) Type() string                 { return h.typ }
func (h funcHandler) Run(jc *runtime.Context) error { return h.run(jc) }

func enqueue(t *testing.T, set repos.Set, jobType string, payload string) *types.JobRun {
	t.Helper()
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		JobType:     jobType,
		Status:      jobs.StatusQueued,
		Stage:       jobs.StatusQueued,
		Payload:     datatypes.JSON(payload),
		Result:      datatypes.JSON(`{}`),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := set.JobRun.Create(dbctx.New(context.Background()), []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func reload(t *testing.T, set repos.Set, id uuid.UUID) *types.JobRun {
	t.Helper()
	rows, err := set.JobRun.GetByIDs(dbctx.New(context.Background()), []uuid.UUID{id})
	if err != nil || len(rows) != 1 {
		t.Fatalf("reload job: err=%v n=%d", err, len(rows))
	}
	return rows[0]
}

func newWorker(t *testing.T, handlers ...runtime.Handler) (*Worker, repos.Set, *recordingNotifier) {
	t.Helper()
	db := testutil.DB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	reg := runtime.NewRegistry()
	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	n := &recordingNotifier{}
	return NewWorker(db, testutil.Logger(t), set.JobRun, reg, n), set, n
}

func TestRunOnceSucceeds(t *testing.T) {
	var sawTrace string
	w, set, n := newWorker(t, funcHandler{typ: "echo", run: func(jc *runtime.Context) error {
		jc.Progress("work", 50, "halfway")
		sawTrace = jc.Payload()["trace_id"].(string)
		jc.Succeed("done", map[string]any{"ok": true})
		return nil
	}})
	job := enqueue(t, set, "echo", `{"trace_id":"t-1"}`)

	ran, err := w.RunOnce(context.Background())
	if err != nil || !ran {
		t.Fatalf("RunOnce: ran=%v err=%v", ran, err)
	}
	got := reload(t, set, job.ID)
	if got.Status != jobs.StatusSucceeded || got.Progress != 100 || got.Attempts != 1 {
		t.Fatalf("job=%+v", got)
	}
	if string(got.Result) != `{"ok":true}` {
		t.Fatalf("result=%s", got.Result)
	}
	if sawTrace != "t-1" {
		t.Fatalf("trace_id=%q", sawTrace)
	}
	if len(n.events) != 2 || n.events[0] != "progress" || n.events[1] != "done" {
		t.Fatalf("events=%v", n.events)
	}

	ran, err = w.RunOnce(context.Background())
	if err != nil || ran {
		t.Fatalf("empty queue: ran=%v err=%v", ran, err)
	}
}

func TestRunOnceImplicitSuccess(t *testing.T) {
	w, set, _ := newWorker(t, funcHandler{typ: "quiet", run: func(*runtime.Context) error { return nil }})
	job := enqueue(t, set, "quiet", `{}`)
	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if got := reload(t, set, job.ID); got.Status != jobs.StatusSucceeded {
		t.Fatalf("status=%s", got.Status)
	}
}

func TestRunOnceRecordsErrorsAndPanics(t *testing.T) {
	w, set, n := newWorker(t,
		funcHandler{typ: "boom", run: func(*runtime.Context) error { return errors.New("exploded") }},
		funcHandler{typ: "panic", run: func(*runtime.Context) error { panic("bad state") }},
	)
	failing := enqueue(t, set, "boom", `{}`)
	panicking := enqueue(t, set, "panic", `{}`)
	orphan := enqueue(t, set, "missing", `{}`)

	count, err := w.Drain(context.Background())
	if err != nil || count != 3 {
		t.Fatalf("Drain: n=%d err=%v", count, err)
	}
	if got := reload(t, set, failing.ID); got.Status != jobs.StatusFailed || got.Error != "exploded" || got.Stage != "run" {
		t.Fatalf("failing=%+v", got)
	}
	if got := reload(t, set, panicking.ID); got.Status != jobs.StatusFailed || got.Stage != "panic" {
		t.Fatalf("panicking=%+v", got)
	}
	if got := reload(t, set, orphan.ID); got.Status != jobs.StatusFailed || got.Stage != "dispatch" {
		t.Fatalf("orphan=%+v", got)
	}
	if len(n.events) != 3 {
		t.Fatalf("events=%v", n.events)
	}
}

func TestEntityIDFallsBackToPayload(t *testing.T) {
	id := uuid.New()
	var got uuid.UUID
	w, set, _ := newWorker(t, funcHandler{typ: "entity", run: func(jc *runtime.Context) error {
		got, _ = jc.EntityID("saved_meal_id")
		return nil
	}})
	enqueue(t, set, "entity", `{"saved_meal_id":"`+id.String()+`"}`)
	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if got != id {
		t.Fatalf("entity id=%s want %s", got, id)
	}
}
