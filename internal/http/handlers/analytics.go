package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

var errNotAuthenticated = errors.New("not authenticated")

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GET /api/analytics/snapshot?data_type=&refresh=true
func (h *AnalyticsHandler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errNotAuthenticated)
		return
	}
	if c.Query("refresh") == "true" {
		if _, err := h.analytics.SyncUser(ctx, userID); err != nil {
			response.RespondServiceError(c, err)
			return
		}
	}
	snap, err := h.analytics.Latest(ctx, userID, c.Query("data_type"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snap})
}
