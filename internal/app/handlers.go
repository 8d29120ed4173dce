package app

import (
	httpH "github.com/yohannreimer/projeto-treinamentos/internal/http/handlers"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Company    *httpH.CompanyHandler
	Catalog    *httpH.CatalogHandler
	Technician *httpH.TechnicianHandler
	Cohort     *httpH.CohortHandler
	Allocation *httpH.AllocationHandler
	License    *httpH.LicenseHandler
	Optional   *httpH.OptionalHandler
	Admin      *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Auth:       httpH.NewAuthHandler(services.Auth),
		Company:    httpH.NewCompanyHandler(services.Company, services.Optional),
		Catalog:    httpH.NewCatalogHandler(services.Catalog),
		Technician: httpH.NewTechnicianHandler(services.Technician),
		Cohort:     httpH.NewCohortHandler(services.Cohort),
		Allocation: httpH.NewAllocationHandler(services.Allocation),
		License:    httpH.NewLicenseHandler(services.License),
		Optional:   httpH.NewOptionalHandler(services.Optional),
		Admin:      httpH.NewAdminHandler(services.WorkbookImporter, services.Bootstrap),
	}
}
