package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	result, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, result)
}
