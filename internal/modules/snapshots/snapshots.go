// Package snapshots assembles the denormalized health and diet views that the
// assistant prompt, the analytics store and the dashboards read.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/nutribridge-backend/internal/data/repos"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

var (
	ErrNoHealthProfile = errors.New("user has no health profile")
	ErrNoGoalPlan      = errors.New("user has no goal plan")
	ErrNoPreferences   = errors.New("user has no dietary preferences")
)

const (
	weightHistoryLimit   = 20
	scoreHistoryLimit    = 20
	activityHistoryLimit = 30
	recentActivityLimit  = 7
	planVersionLimit     = 10
	shoppingVersionLimit = 5

	timeLayout = time.RFC3339
)

type Collector struct {
	repos repos.Set
	log   *logger.Logger
	now   func() time.Time
}

func NewCollector(r repos.Set, log *logger.Logger) *Collector {
	return &Collector{repos: r, log: log.With("service", "SnapshotCollector"), now: time.Now}
}

// ErrorPayload is the whole-snapshot replacement when collection fails.
type ErrorPayload struct {
	Error string `json:"error"`
}

// HealthView returns the health snapshot or its error payload.
func (c *Collector) HealthView(ctx context.Context, userID uuid.UUID) any {
	h, err := c.Health(ctx, userID)
	if err != nil {
		return ErrorPayload{Error: fmt.Sprintf("Health data collection failed: %s", err)}
	}
	return h
}

// DietView returns the diet snapshot or its error payload.
func (c *Collector) DietView(ctx context.Context, userID uuid.UUID) any {
	d, err := c.Diet(ctx, userID)
	if err != nil {
		return ErrorPayload{Error: fmt.Sprintf("Diet data collection failed: %s", err)}
	}
	return d
}

// Both collects the two views concurrently.
func (c *Collector) Both(ctx context.Context, userID uuid.UUID) (health any, diet any) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health = c.HealthView(gctx, userID)
		return nil
	})
	g.Go(func() error {
		diet = c.DietView(gctx, userID)
		return nil
	})
	_ = g.Wait()
	return health, diet
}

func (c *Collector) dbc(ctx context.Context) dbctx.Context {
	return dbctx.New(ctx)
}
