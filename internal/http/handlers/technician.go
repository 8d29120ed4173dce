package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type TechnicianHandler struct {
	technicianService services.TechnicianService
}

func NewTechnicianHandler(technicianService services.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{technicianService: technicianService}
}

func (th *TechnicianHandler) List(c *gin.Context) {
	details, err := th.technicianService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, details)
}

func (th *TechnicianHandler) Create(c *gin.Context) {
	var req services.TechnicianInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	technician, err := th.technicianService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, technician)
}

func (th *TechnicianHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := th.technicianService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (th *TechnicianHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.TechnicianInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	technician, err := th.technicianService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, technician)
}

func (th *TechnicianHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := th.technicianService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// ReplaceSkills swaps the technician's deliverable-module list in one shot.
func (th *TechnicianHandler) ReplaceSkills(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SkillModuleIDs []uuid.UUID `json:"skill_module_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if req.SkillModuleIDs == nil {
		req.SkillModuleIDs = []uuid.UUID{}
	}
	technician, err := th.technicianService.Update(c.Request.Context(), id, services.TechnicianInput{
		SkillModuleIDs: req.SkillModuleIDs,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, technician)
}

func (th *TechnicianHandler) Calendar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var from, to *time.Time
	if raw := c.Query("date_from"); raw != "" {
		t, ok := parseDateParam(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("date_from must be an ISO date"))
			return
		}
		from = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, ok := parseDateParam(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("date_to must be an ISO date"))
			return
		}
		to = &t
	}
	entries, err := th.technicianService.Calendar(c.Request.Context(), id, from, to)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entries)
}
