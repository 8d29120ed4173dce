package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/importer"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type AdminHandler struct {
	importer         importer.WorkbookImporter
	bootstrapService services.BootstrapService
}

func NewAdminHandler(workbookImporter importer.WorkbookImporter, bootstrapService services.BootstrapService) *AdminHandler {
	return &AdminHandler{importer: workbookImporter, bootstrapService: bootstrapService}
}

// ImportWorkbook loads a directory of exported sheets into the database.
func (ah *AdminHandler) ImportWorkbook(c *gin.Context) {
	var req struct {
		Dir       string `json:"dir"`
		ResetData bool   `json:"reset_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if req.Dir == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("dir is required"))
		return
	}
	summary, err := ah.importer.ImportDir(c.Request.Context(), req.Dir, importer.Options{ResetData: req.ResetData})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// BootstrapCurrentData seeds companies and catalog modules in one call.
func (ah *AdminHandler) BootstrapCurrentData(c *gin.Context) {
	var req services.BootstrapInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	summary, err := ah.bootstrapService.ApplyCurrentData(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, summary)
}
