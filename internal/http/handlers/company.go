package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CompanyHandler struct {
	companyService  services.CompanyService
	optionalService services.OptionalService
}

func NewCompanyHandler(companyService services.CompanyService, optionalService services.OptionalService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, optionalService: optionalService}
}

// List returns the completion rollup for every company.
func (ch *CompanyHandler) List(c *gin.Context) {
	rows, err := ch.companyService.Overview(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

func (ch *CompanyHandler) Create(c *gin.Context) {
	var req services.CreateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if len(req.Name) < 2 {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("name must have at least 2 characters"))
		return
	}
	company, err := ch.companyService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, company)
}

func (ch *CompanyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := ch.companyService.Detail(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (ch *CompanyHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	company, err := ch.companyService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, company)
}

func (ch *CompanyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ch.companyService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CompanyHandler) SetPriority(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Priority int `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := ch.companyService.SetPriority(c.Request.Context(), id, req.Priority); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CompanyHandler) Journey(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := ch.companyService.Journey(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entries)
}

func (ch *CompanyHandler) SetActivation(c *gin.Context) {
	companyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "moduleId")
	if !ok {
		return
	}
	var req struct {
		IsEnabled *bool `json:"is_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if req.IsEnabled == nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("is_enabled is required"))
		return
	}
	if err := ch.companyService.SetActivation(c.Request.Context(), companyID, moduleID, *req.IsEnabled); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CompanyHandler) UpsertProgress(c *gin.Context) {
	companyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "moduleId")
	if !ok {
		return
	}
	var req struct {
		Status             types.ProgressStatus `json:"status"`
		Notes              *string              `json:"notes"`
		CompletedAt        *string              `json:"completed_at" binding:"omitempty,dateonly"`
		CustomDurationDays *int                 `json:"custom_duration_days"`
		CustomUnits        *int                 `json:"custom_units"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	input := services.UpsertProgressInput{
		ModuleID:           moduleID,
		Status:             req.Status,
		Notes:              req.Notes,
		CustomDurationDays: req.CustomDurationDays,
		CustomUnits:        req.CustomUnits,
	}
	if req.CompletedAt != nil {
		when, ok := parseDateParam(*req.CompletedAt)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("completed_at must be an ISO date"))
			return
		}
		input.CompletedAt = &when
	}
	row, err := ch.companyService.UpsertProgress(c.Request.Context(), companyID, input)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// ListOptionalProgress returns the optional-track rows of one company.
func (ch *CompanyHandler) ListOptionalProgress(c *gin.Context) {
	companyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := ch.optionalService.ListProgressByCompany(c.Request.Context(), companyID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

func (ch *CompanyHandler) UpsertOptionalProgress(c *gin.Context) {
	companyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	optionalID, ok := parseID(c, "optionalId")
	if !ok {
		return
	}
	var req struct {
		Status types.OptionalProgressStatus `json:"status"`
		Notes  *string                      `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	row, err := ch.optionalService.UpsertProgress(c.Request.Context(), services.OptionalProgressInput{
		CompanyID:        companyID,
		OptionalModuleID: optionalID,
		Status:           req.Status,
		Notes:            req.Notes,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, row)
}
