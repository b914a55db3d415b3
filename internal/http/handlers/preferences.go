package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type PreferencesHandler struct {
	prefs services.PreferencesService
}

func NewPreferencesHandler(prefs services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// GET /api/diet/preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	p, err := h.prefs.Get(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}

// PUT /api/diet/preferences
func (h *PreferencesHandler) Update(c *gin.Context) {
	var req services.PreferencesInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.prefs.Update(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}

// POST /api/diet/onboarding
// body: { "step": 1, "text": "..." }
func (h *PreferencesHandler) Onboard(c *gin.Context) {
	var req struct {
		Step int    `json:"step"`
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.prefs.Onboard(c.Request.Context(), req.Step, req.Text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"step":        res.Step,
		"next_step":   res.NextStep,
		"complete":    res.Complete,
		"message":     res.Message,
		"parsed":      res.Parsed,
		"preferences": res.Preferences,
		"job":         res.Job,
	})
}

// POST /api/diet/onboarding/reset
func (h *PreferencesHandler) Reset(c *gin.Context) {
	if err := h.prefs.Reset(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Preferences reset."})
}

// GET /api/diet/meal-planning
func (h *PreferencesHandler) MealPlanning(c *gin.Context) {
	v, err := h.prefs.MealPlanning(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"preferences":   v.Preferences,
		"health_goals":  v.HealthGoals,
		"meal_analysis": v.Analysis,
		"meal_baseline": v.Baseline,
		"job":           v.Job,
	})
}
