package bus

import (
	"context"

	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

type localBus struct {
	hub *realtime.SSEHub
}

// NewLocalBus delivers straight to an in-process hub; used when Redis is
// not configured and the worker runs inside the API process.
func NewLocalBus(hub *realtime.SSEHub) Bus {
	return &localBus{hub: hub}
}

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.hub.Broadcast(msg)
	return nil
}

func (b *localBus) StartForwarder(context.Context, func(realtime.SSEMessage)) error { return nil }

func (b *localBus) Close() error { return nil }
