package bus

import (
	"context"

	"github.com/yungbote/nutribridge-backend/internal/realtime"
)

// Bus carries SSE messages between processes so a job finished by a worker
// reaches a client connected to the API server.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
