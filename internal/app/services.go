package app

import (
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/importer"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/services"
)

type Services struct {
	Installation services.InstallationResolver

	Auth       services.AuthService
	Catalog    services.CatalogService
	Company    services.CompanyService
	Technician services.TechnicianService
	Cohort     services.CohortService
	Allocation services.AllocationService
	Optional   services.OptionalService
	License    services.LicenseService
	Bootstrap  services.BootstrapService

	WorkbookImporter importer.WorkbookImporter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	installation := services.NewInstallationResolver(cfg.InstallationCodes, r.Module, log)
	return Services{
		Installation: installation,
		Auth:         services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.TokenTTL),
		Catalog:      services.NewCatalogService(db, log, r.Module, r.Company, r.Cohort, r.Allocation, installation),
		Company:      services.NewCompanyService(db, log, r.Company, r.Module, r.Allocation, r.Cohort, r.Optional, installation),
		Technician:   services.NewTechnicianService(db, log, r.Technician, r.Module, r.Cohort, r.Allocation),
		Cohort:       services.NewCohortService(db, log, r.Cohort, r.Module, r.Technician, r.Allocation, r.Company),
		Allocation:   services.NewAllocationService(db, log, r.Allocation, r.Cohort, r.Company, r.Module, installation),
		Optional:     services.NewOptionalService(db, log, r.Optional, r.Company),
		License:      services.NewLicenseService(db, log, r.License, r.Company),
		Bootstrap:    services.NewBootstrapService(db, log, r.Company, r.Module),
		WorkbookImporter: importer.NewWorkbookImporter(
			db, log, r.Module, r.Company, r.Technician, r.Cohort, r.Allocation, r.Optional, installation,
		),
	}
}
