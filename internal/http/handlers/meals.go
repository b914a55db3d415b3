package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type MealHandler struct {
	meals services.MealService
}

func NewMealHandler(meals services.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

// POST /api/meals
// body: { "meal_id": "52771" }
// SaveMealResult already has the envelope shape: status is "success" for a
// new meal and "info" for a duplicate.
func (h *MealHandler) Save(c *gin.Context) {
	var req struct {
		MealID string `json:"meal_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.meals.Save(c.Request.Context(), req.MealID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if res.Status == services.SaveStatusInfo {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// POST /api/meals/custom/interpret
// body: { "text": "2 eggs, a slice of toast" }
func (h *MealHandler) InterpretCustom(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.meals.InterpretCustom(c.Request.Context(), req.Text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": out.Message, "ingredient_choices": out.Choices})
}

// POST /api/meals/custom
func (h *MealHandler) SaveCustom(c *gin.Context) {
	var req services.CustomMealInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.meals.SaveCustom(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/meals
func (h *MealHandler) List(c *gin.Context) {
	v, err := h.meals.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"saved_meals":             v.SavedMeals,
		"total_count":             v.TotalCount,
		"week":                    v.Week,
		"meal_analysis":           v.MealAnalysis,
		"adherence":               v.Adherence,
		"adherence_ratio":         v.AdherenceRatio,
		"base_wellness_score":     v.BaseWellnessScore,
		"adjusted_wellness_score": v.AdjustedWellnessScore,
	})
}

// DELETE /api/meals/:id
func (h *MealHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_meal_id")
	if !ok {
		return
	}
	if err := h.meals.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Meal deleted."})
}

// GET /api/meals/:id/macros
func (h *MealHandler) Macros(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_meal_id")
	if !ok {
		return
	}
	m, err := h.meals.Macros(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"macros": m.Macros, "servings": m.Servings})
}

// GET /api/meals/:id/prep-time
func (h *MealHandler) PrepTime(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_meal_id")
	if !ok {
		return
	}
	minutes, err := h.meals.PrepTime(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"prep_time_min": minutes})
}

// GET /api/recipes/search?q=
func (h *MealHandler) Search(c *gin.Context) {
	recipes, err := h.meals.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipes": recipes, "count": len(recipes)})
}

// GET /api/recipes/:id
func (h *MealHandler) Recipe(c *gin.Context) {
	r, err := h.meals.Recipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipe": r})
}
