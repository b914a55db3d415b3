package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nutribridge-backend/internal/http/response"
	"github.com/yungbote/nutribridge-backend/internal/services"
)

type VersionHandler struct {
	versions services.VersionService
}

func NewVersionHandler(versions services.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

// POST /api/planner/versions
func (h *VersionHandler) Create(c *gin.Context) {
	var req services.VersionInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	out, err := h.versions.CreateVersion(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondStatus(c, http.StatusCreated, gin.H{
		"version_id":   out.VersionID,
		"version_name": out.VersionName,
		"created_at":   out.CreatedAt,
	})
}

// GET /api/planner/versions
func (h *VersionHandler) List(c *gin.Context) {
	list, err := h.versions.ListVersions(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": list})
}

// POST /api/planner/versions/:id/restore
func (h *VersionHandler) Restore(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_version_id")
	if !ok {
		return
	}
	out, err := h.versions.RestoreVersion(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"version_name": out.VersionName, "restored_meals": out.RestoredMeals})
}

// DELETE /api/planner/versions/:id
func (h *VersionHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_version_id")
	if !ok {
		return
	}
	if err := h.versions.DeleteVersion(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Version deleted."})
}

// GET /api/shopping-list
func (h *VersionHandler) ShoppingList(c *gin.Context) {
	list, err := h.versions.ShoppingList(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shopping_list": list})
}

// GET /api/shopping-list/editable
func (h *VersionHandler) EditableShoppingList(c *gin.Context) {
	out, err := h.versions.EditableShoppingList(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": out.Items, "versions": out.Versions})
}

// POST /api/shopping-list/versions
func (h *VersionHandler) SaveShoppingList(c *gin.Context) {
	var req services.ShoppingListInput
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.versions.SaveShoppingList(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondStatus(c, http.StatusCreated, gin.H{"shopping_list": v})
}

// GET /api/shopping-list/versions
func (h *VersionHandler) ListShoppingLists(c *gin.Context) {
	lists, err := h.versions.ListShoppingLists(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shopping_lists": lists})
}

// GET /api/shopping-list/versions/:id
func (h *VersionHandler) GetShoppingList(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_shopping_list_id")
	if !ok {
		return
	}
	v, err := h.versions.GetShoppingList(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shopping_list": v})
}

// DELETE /api/shopping-list/versions/:id
func (h *VersionHandler) DeleteShoppingList(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_shopping_list_id")
	if !ok {
		return
	}
	if err := h.versions.DeleteShoppingList(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Shopping list deleted."})
}
