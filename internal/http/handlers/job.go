package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := uuidParam(c, "id", "invalid_job_id")
	if !ok {
		return
	}
	job, err := h.jobs.GetByIDForRequestUser(dbctx.New(c.Request.Context()), jobID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs
// With entity_type and entity_id the latest job for that entity is returned,
// otherwise the caller's recent jobs.
func (h *JobHandler) ListJobs(c *gin.Context) {
	dbc := dbctx.New(c.Request.Context())
	entityType := strings.TrimSpace(c.Query("entity_type"))
	rawEntityID := strings.TrimSpace(c.Query("entity_id"))
	if entityType == "" && rawEntityID == "" {
		jobs, err := h.jobs.ListForRequestUser(dbc)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"jobs": jobs})
		return
	}
	entityID, err := uuid.Parse(rawEntityID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_entity_id", err)
		return
	}
	job, err := h.jobs.GetLatestForEntityForRequestUser(dbc, entityType, entityID, c.Query("job_type"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}
