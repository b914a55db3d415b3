package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

const exportFilename = "health_data.json"

type HealthHandler struct {
	health services.HealthService
}

func NewHealthHandler(health services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// GET /api/health/profile
func (h *HealthHandler) GetProfile(c *gin.Context) {
	p, err := h.health.GetProfile(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PUT /api/health/profile
// The profile is stored before responding; classification and the goal plan
// follow in the returned job.
func (h *HealthHandler) SaveProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.health.SaveProfile(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"profile": out.Profile, "job": out.Job})
}

// GET /api/health/goal
func (h *HealthHandler) GetGoalPlan(c *gin.Context) {
	plan, err := h.health.GetGoalPlan(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goal_plan": plan})
}

// PUT /api/health/goal
func (h *HealthHandler) SaveGoalPlan(c *gin.Context) {
	var req services.GoalInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.health.SaveGoalPlan(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if out.Job == nil {
		response.RespondOK(c, gin.H{"goal_plan": out.GoalPlan, "message": "Goal plan unchanged."})
		return
	}
	response.RespondAccepted(c, gin.H{"goal_plan": out.GoalPlan, "job": out.Job})
}

// GET /api/health/insights
func (h *HealthHandler) Insights(c *gin.Context) {
	insights, err := h.health.Insights(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"insights": insights})
}

// GET /api/health/activity
func (h *HealthHandler) Activity(c *gin.Context) {
	days, err := h.health.Activity(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activity": days})
}

// POST /api/health/wellness-score/regenerate
func (h *HealthHandler) RegenerateWellnessScore(c *gin.Context) {
	out, err := h.health.RegenerateWellnessScore(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"base_wellness_score":     out.BaseScore,
		"adjusted_wellness_score": out.AdjustedScore,
		"adherence":               out.Adherence,
	})
}

// GET /api/health/dashboard
func (h *HealthHandler) Dashboard(c *gin.Context) {
	d, err := h.health.Dashboard(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dashboard": d})
}

// GET /api/health/export
func (h *HealthHandler) Export(c *gin.Context) {
	exp, err := h.health.Export(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.IndentedJSON(http.StatusOK, exp)
}
