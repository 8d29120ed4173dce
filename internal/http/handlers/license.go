package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type LicenseHandler struct {
	licenseService services.LicenseService
}

func NewLicenseHandler(licenseService services.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

func (lh *LicenseHandler) List(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
			return
		}
		companyID = &id
	}
	views, alerts, err := lh.licenseService.List(c.Request.Context(), companyID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"licenses": views, "alerts": alerts})
}

func (lh *LicenseHandler) Create(c *gin.Context) {
	var req services.CreateLicenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	license, err := lh.licenseService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, license)
}

func (lh *LicenseHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateLicenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	license, err := lh.licenseService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, license)
}

func (lh *LicenseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := lh.licenseService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (lh *LicenseHandler) Renew(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	license, err := lh.licenseService.Renew(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, license)
}

func (lh *LicenseHandler) ListPrograms(c *gin.Context) {
	programs, err := lh.licenseService.ListPrograms(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, programs)
}

func (lh *LicenseHandler) CreateProgram(c *gin.Context) {
	var req struct {
		Name  string  `json:"name"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	program, err := lh.licenseService.CreateProgram(c.Request.Context(), req.Name, req.Notes)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, program)
}

func (lh *LicenseHandler) UpdateProgram(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	program, err := lh.licenseService.UpdateProgram(c.Request.Context(), id, req.Name, req.Notes)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, program)
}

func (lh *LicenseHandler) DeleteProgram(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := lh.licenseService.DeleteProgram(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
