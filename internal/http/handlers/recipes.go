package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/modules/recipes"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type RecipeHandler struct {
	recipes services.RecipeService
}

func NewRecipeHandler(r services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: r}
}

func respondSaved(c *gin.Context, res *services.SaveMealResult) {
	status := http.StatusCreated
	if res.Status != services.SaveStatusSuccess {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// POST /api/recipes/generate
func (h *RecipeHandler) Generate(c *gin.Context) {
	r, err := h.recipes.Generate(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recipe": r})
}

// POST /api/recipes/generate/save
// body: the recipe returned by Generate, possibly edited.
func (h *RecipeHandler) SaveGenerated(c *gin.Context) {
	var req recipes.Recipe
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.recipes.SaveGenerated(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	respondSaved(c, res)
}

// POST /api/ingredients/substitute
// body: { "ingredient": "butter" }
func (h *RecipeHandler) SuggestSubstitute(c *gin.Context) {
	var req struct {
		Ingredient string `json:"ingredient"`
	}
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.recipes.SuggestSubstitute(c.Request.Context(), req.Ingredient)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"original": s.Original, "substitute": s.Substitute})
}

// POST /api/meals/:id/substitute
// body: { "original": "butter", "substitute": "olive oil" }
func (h *RecipeHandler) SaveSubstitute(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_meal_id")
	if !ok {
		return
	}
	var req struct {
		Original   string `json:"original"`
		Substitute string `json:"substitute"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.recipes.SaveSubstitute(c.Request.Context(), id, req.Original, req.Substitute)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	respondSaved(c, res)
}

// GET /api/recipes/library?q=&category=&area=&dietary=&vector=true
// vector defaults to true.
func (h *RecipeHandler) Library(c *gin.Context) {
	vector, err := strconv.ParseBool(c.DefaultQuery("vector", "true"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_vector", err)
		return
	}
	res, err := h.recipes.SearchLibrary(c.Request.Context(), recipes.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Area:     c.Query("area"),
		Dietary:  c.Query("dietary"),
		Vector:   vector,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"query":         res.Query,
		"results":       res.Results,
		"count":         len(res.Results),
		"categories":    res.Categories,
		"areas":         res.Areas,
		"stats":         res.Stats,
		"vector_search": res.VectorSearch,
		"rag_enabled":   res.RAGEnabled,
	})
}

// GET /api/recipes/library/recommendations
func (h *RecipeHandler) Recommendations(c *gin.Context) {
	out, err := h.recipes.Recommend(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recommendations": out.Recommendations, "query": out.Query})
}

// POST /api/recipes/library/:id/save
func (h *RecipeHandler) SaveLibraryRecipe(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_recipe_id")
	if !ok {
		return
	}
	res, err := h.recipes.SaveLibraryRecipe(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	respondSaved(c, res)
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be a positive integer", name))
		return 0, false
	}
	return n, true
}

// GET /api/foods/search?q=&page=1&page_size=25
func (h *RecipeHandler) SearchFoods(c *gin.Context) {
	page, ok := intQuery(c, "page", 1)
	if !ok {
		return
	}
	size, ok := intQuery(c, "page_size", 25)
	if !ok {
		return
	}
	res, err := h.recipes.SearchFoods(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"query":        res.Query,
		"total_hits":   res.TotalHits,
		"current_page": res.CurrentPage,
		"total_pages":  res.TotalPages,
		"foods":        res.Foods,
	})
}

// GET /api/foods/:fdc_id
func (h *RecipeHandler) Food(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("fdc_id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_fdc_id", fmt.Errorf("invalid fdc id %q", c.Param("fdc_id")))
		return
	}
	f, err := h.recipes.Food(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"food": f})
}
