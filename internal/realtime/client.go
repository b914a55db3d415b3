package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	closed   bool
	Logger   *logger.Logger
}
