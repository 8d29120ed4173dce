package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yohannreimer/projeto-treinamentos/internal/http"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,

		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,

		CompanyHandler:    handlers.Company,
		CatalogHandler:    handlers.Catalog,
		TechnicianHandler: handlers.Technician,
		CohortHandler:     handlers.Cohort,
		AllocationHandler: handlers.Allocation,
		LicenseHandler:    handlers.License,
		OptionalHandler:   handlers.Optional,
		AdminHandler:      handlers.Admin,

		HealthHandler: handlers.Health,
	})
}
