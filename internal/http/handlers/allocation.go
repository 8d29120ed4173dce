package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type AllocationHandler struct {
	allocationService services.AllocationService
}

func NewAllocationHandler(allocationService services.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

func (ah *AllocationHandler) ListByCohort(c *gin.Context) {
	cohortID, ok := parseID(c, "id")
	if !ok {
		return
	}
	allocations, err := ah.allocationService.ListByCohort(c.Request.Context(), cohortID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, allocations)
}

func (ah *AllocationHandler) Create(c *gin.Context) {
	var req struct {
		CohortID uuid.UUID `json:"cohort_id" binding:"required"`
		services.CreateAllocationInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	allocation, err := ah.allocationService.Create(c.Request.Context(), req.CohortID, req.CreateAllocationInput)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, allocation)
}

// AllocateCompany books a company into a cohort starting at its entry module
// and cascading over the later blocks it is cleared for.
func (ah *AllocationHandler) AllocateCompany(c *gin.Context) {
	cohortID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.GuidedAllocationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	results, err := ah.allocationService.AllocateByEntryModule(c.Request.Context(), cohortID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, results)
}

func (ah *AllocationHandler) UpdateStatus(c *gin.Context) {
	allocationID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAllocationStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	result, err := ah.allocationService.UpdateStatus(c.Request.Context(), allocationID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (ah *AllocationHandler) Suggestions(c *gin.Context) {
	cohortID, ok := parseID(c, "id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "moduleId")
	if !ok {
		return
	}
	suggestions, err := ah.allocationService.Suggestions(c.Request.Context(), cohortID, moduleID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, suggestions)
}
