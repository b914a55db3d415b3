package recompute

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const (
	EntityHealthProfile = "health_profile"
	EntityGoalPlan      = "goal_plan"
)

// EntityKey names one persisted row.
type EntityKey struct {
	Type string
	ID   uuid.UUID
}

// Processed records which rows already ran their cascade within one request
// or job, so a cascade that writes back to its own row does not re-enter.
type Processed struct {
	mu   sync.Mutex
	seen map[EntityKey]struct{}
}

func NewProcessed() *Processed {
	return &Processed{seen: map[EntityKey]struct{}{}}
}

// Claim marks key and reports whether this was the first claim.
func (p *Processed) Claim(key EntityKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[key]; ok {
		return false
	}
	p.seen[key] = struct{}{}
	return true
}

func (p *Processed) Has(key EntityKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[key]
	return ok
}

type processedKey struct{}

// WithProcessed attaches a fresh set unless ctx already carries one.
func WithProcessed(ctx context.Context) context.Context {
	if ProcessedFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, processedKey{}, NewProcessed())
}

func ProcessedFrom(ctx context.Context) *Processed {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(processedKey{}).(*Processed)
	return p
}

// claim treats a context without a set as a scope of one call.
func claim(ctx context.Context, key EntityKey) bool {
	p := ProcessedFrom(ctx)
	if p == nil {
		return true
	}
	return p.Claim(key)
}
