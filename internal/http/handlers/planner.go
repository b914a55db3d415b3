package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type PlannerHandler struct {
	planner services.PlannerService
}

func NewPlannerHandler(planner services.PlannerService) *PlannerHandler {
	return &PlannerHandler{planner: planner}
}

// GET /api/planner/week
func (h *PlannerHandler) Week(c *gin.Context) {
	w, err := h.planner.Week(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"week": w})
}

// POST /api/planner/meals
func (h *PlannerHandler) AddMeal(c *gin.Context) {
	var req services.AddMealInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.planner.AddMeal(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Meal added to plan.", "meal": out})
}

// POST /api/planner/meals/remove
func (h *PlannerHandler) RemoveMeal(c *gin.Context) {
	var req services.RemoveMealInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.planner.RemoveMeal(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"date":            out.Date,
		"meal_type":       out.MealType,
		"remaining_meals": out.RemainingMeals,
	})
}

// POST /api/planner/swap
func (h *PlannerHandler) Swap(c *gin.Context) {
	var req services.SwapInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.planner.SwapMeals(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"swap": out})
}

// POST /api/planner/portion
func (h *PlannerHandler) AdjustPortion(c *gin.Context) {
	var req services.AdjustPortionInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.planner.AdjustPortion(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"date":               out.Date,
		"meal_type":          out.MealType,
		"meal_id":            out.MealID,
		"meal_name":          out.MealName,
		"portion_multiplier": out.PortionMultiplier,
		"adjusted_nutrition": out.AdjustedNutrition,
	})
}

// GET /api/planner/nutrition-analysis
func (h *PlannerHandler) NutritionAnalysis(c *gin.Context) {
	out, err := h.planner.NutritionAnalysis(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"analysis":      out.Analysis,
		"daily_targets": out.Targets,
		"daily_totals":  out.DailyTotals,
	})
}
