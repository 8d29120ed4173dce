package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (ch *CatalogHandler) List(c *gin.Context) {
	entries, err := ch.catalogService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entries)
}

func (ch *CatalogHandler) Create(c *gin.Context) {
	var req services.CreateModuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	module, err := ch.catalogService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, module)
}

func (ch *CatalogHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateModuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	module, err := ch.catalogService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, module)
}

func (ch *CatalogHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ch.catalogService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CatalogHandler) SetPrerequisites(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PrerequisiteIDs []uuid.UUID `json:"prerequisite_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := ch.catalogService.SetPrerequisites(c.Request.Context(), id, req.PrerequisiteIDs); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
