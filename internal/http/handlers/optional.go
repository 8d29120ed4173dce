package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type OptionalHandler struct {
	optionalService services.OptionalService
}

func NewOptionalHandler(optionalService services.OptionalService) *OptionalHandler {
	return &OptionalHandler{optionalService: optionalService}
}

func (oh *OptionalHandler) List(c *gin.Context) {
	optionals, err := oh.optionalService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, optionals)
}

func (oh *OptionalHandler) Create(c *gin.Context) {
	var req services.OptionalModuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	optional, err := oh.optionalService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, optional)
}
