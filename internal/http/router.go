package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yohannreimer/projeto-treinamentos/internal/http/handlers"
	httpMW "github.com/yohannreimer/projeto-treinamentos/internal/http/middleware"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	CompanyHandler    *httpH.CompanyHandler
	CatalogHandler    *httpH.CatalogHandler
	TechnicianHandler *httpH.TechnicianHandler
	CohortHandler     *httpH.CohortHandler
	AllocationHandler *httpH.AllocationHandler
	LicenseHandler    *httpH.LicenseHandler
	OptionalHandler   *httpH.OptionalHandler
	AdminHandler      *httpH.AdminHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("treinamentos"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.CompanyHandler != nil {
			protected.GET("/companies", cfg.CompanyHandler.List)
			protected.POST("/companies", cfg.CompanyHandler.Create)
			protected.GET("/companies/:id", cfg.CompanyHandler.Get)
			protected.PATCH("/companies/:id", cfg.CompanyHandler.Update)
			protected.DELETE("/companies/:id", cfg.CompanyHandler.Delete)
			protected.PATCH("/companies/:id/priority", cfg.CompanyHandler.SetPriority)
			protected.GET("/companies/:id/journey", cfg.CompanyHandler.Journey)
			protected.PATCH("/companies/:id/modules/:moduleId", cfg.CompanyHandler.SetActivation)
			protected.PATCH("/companies/:id/progress/:moduleId", cfg.CompanyHandler.UpsertProgress)
			protected.GET("/companies/:id/optionals", cfg.CompanyHandler.ListOptionalProgress)
			protected.PATCH("/companies/:id/optionals/:optionalId", cfg.CompanyHandler.UpsertOptionalProgress)
		}

		if cfg.TechnicianHandler != nil {
			protected.GET("/technicians", cfg.TechnicianHandler.List)
			protected.POST("/technicians", cfg.TechnicianHandler.Create)
			protected.GET("/technicians/:id", cfg.TechnicianHandler.Get)
			protected.PATCH("/technicians/:id", cfg.TechnicianHandler.Update)
			protected.DELETE("/technicians/:id", cfg.TechnicianHandler.Delete)
			protected.PATCH("/technicians/:id/skills", cfg.TechnicianHandler.ReplaceSkills)
			protected.GET("/technicians/:id/calendar", cfg.TechnicianHandler.Calendar)
		}

		if cfg.CohortHandler != nil {
			protected.GET("/cohorts", cfg.CohortHandler.List)
			protected.POST("/cohorts", cfg.CohortHandler.Create)
			protected.POST("/cohorts/check-technician-conflict", cfg.CohortHandler.CheckTechnicianConflict)
			protected.GET("/cohorts/:id", cfg.CohortHandler.Get)
			protected.PATCH("/cohorts/:id", cfg.CohortHandler.Update)
			protected.DELETE("/cohorts/:id", cfg.CohortHandler.Delete)
			protected.GET("/calendar/cohorts", cfg.CohortHandler.CalendarFeed)
		}

		if cfg.AllocationHandler != nil {
			protected.GET("/cohorts/:id/allocations", cfg.AllocationHandler.ListByCohort)
			protected.POST("/allocations", cfg.AllocationHandler.Create)
			protected.POST("/cohorts/:id/allocate-company", cfg.AllocationHandler.AllocateCompany)
			protected.GET("/cohorts/:id/suggestions/:moduleId", cfg.AllocationHandler.Suggestions)
			protected.PATCH("/allocations/:id/status", cfg.AllocationHandler.UpdateStatus)
		}

		if cfg.LicenseHandler != nil {
			protected.GET("/licenses", cfg.LicenseHandler.List)
			protected.POST("/licenses", cfg.LicenseHandler.Create)
			protected.PATCH("/licenses/:id", cfg.LicenseHandler.Update)
			protected.DELETE("/licenses/:id", cfg.LicenseHandler.Delete)
			protected.POST("/licenses/:id/renew", cfg.LicenseHandler.Renew)
			protected.GET("/license-programs", cfg.LicenseHandler.ListPrograms)
			protected.POST("/license-programs", cfg.LicenseHandler.CreateProgram)
			protected.PATCH("/license-programs/:id", cfg.LicenseHandler.UpdateProgram)
			protected.DELETE("/license-programs/:id", cfg.LicenseHandler.DeleteProgram)
		}

		if cfg.OptionalHandler != nil {
			protected.GET("/optional-modules", cfg.OptionalHandler.List)
			protected.POST("/optional-modules", cfg.OptionalHandler.Create)
		}

		if cfg.CatalogHandler != nil {
			protected.GET("/modules", cfg.CatalogHandler.List)
			protected.GET("/admin/modules", cfg.CatalogHandler.List)
			protected.POST("/admin/modules", cfg.CatalogHandler.Create)
			protected.PATCH("/admin/modules/:id", cfg.CatalogHandler.Update)
			protected.DELETE("/admin/modules/:id", cfg.CatalogHandler.Delete)
			protected.PUT("/admin/modules/:id/prerequisites", cfg.CatalogHandler.SetPrerequisites)
		}

		if cfg.AdminHandler != nil {
			protected.POST("/admin/import-workbook", cfg.AdminHandler.ImportWorkbook)
			protected.POST("/admin/bootstrap-current-data", cfg.AdminHandler.BootstrapCurrentData)
		}
	}

	return r
}
