package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohannreimer/projeto-treinamentos/internal/http/response"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
)

// parseID reads a UUID path parameter, responding 400 on garbage so the
// handlers only deal with well-formed identifiers.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return uuid.Nil, false
	}
	return id, true
}

// parseDateParam accepts a plain ISO date or a full RFC 3339 timestamp.
func parseDateParam(value string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
