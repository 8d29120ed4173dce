package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/schedule"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CohortHandler struct {
	cohortService services.CohortService
}

func NewCohortHandler(cohortService services.CohortService) *CohortHandler {
	return &CohortHandler{cohortService: cohortService}
}

func (ch *CohortHandler) List(c *gin.Context) {
	var status *types.CohortStatus
	if raw := c.Query("status"); raw != "" {
		s := types.CohortStatus(raw)
		status = &s
	}
	cohorts, err := ch.cohortService.List(c.Request.Context(), status)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, cohorts)
}

func (ch *CohortHandler) Create(c *gin.Context) {
	var req services.CreateCohortInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	cohort, err := ch.cohortService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, cohort)
}

func (ch *CohortHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := ch.cohortService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (ch *CohortHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCohortInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	cohort, err := ch.cohortService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, cohort)
}

func (ch *CohortHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ch.cohortService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// CheckTechnicianConflict dry-runs the booking check for a proposed timeline.
func (ch *CohortHandler) CheckTechnicianConflict(c *gin.Context) {
	var req struct {
		TechnicianID    uuid.UUID                   `json:"technician_id"`
		StartDate       time.Time                   `json:"start_date"`
		Blocks          []services.CohortBlockInput `json:"blocks"`
		ExcludeCohortID *uuid.UUID                  `json:"exclude_cohort_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if req.TechnicianID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("technician_id is required"))
		return
	}
	spans := make([]schedule.BlockSpan, 0, len(req.Blocks))
	for _, b := range req.Blocks {
		spans = append(spans, schedule.BlockSpan{StartDayOffset: b.StartDayOffset, DurationDays: b.DurationDays})
	}
	exclude := uuid.Nil
	if req.ExcludeCohortID != nil {
		exclude = *req.ExcludeCohortID
	}
	conflict, err := ch.cohortService.FindTechnicianConflict(c.Request.Context(), nil, req.TechnicianID, req.StartDate, spans, exclude)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conflict": conflict, "has_conflict": conflict != nil})
}

// CalendarFeed returns every cohort decorated for the planning calendar.
func (ch *CohortHandler) CalendarFeed(c *gin.Context) {
	entries, err := ch.cohortService.CalendarFeed(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, entries)
}
