package app

import (
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
)

type Repos struct {
	User       repos.UserRepo
	Module     repos.ModuleRepo
	Company    repos.CompanyRepo
	Technician repos.TechnicianRepo
	Cohort     repos.CohortRepo
	Allocation repos.AllocationRepo
	Optional   repos.OptionalRepo
	License    repos.LicenseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Module:     repos.NewModuleRepo(db, log),
		Company:    repos.NewCompanyRepo(db, log),
		Technician: repos.NewTechnicianRepo(db, log),
		Cohort:     repos.NewCohortRepo(db, log),
		Allocation: repos.NewAllocationRepo(db, log),
		Optional:   repos.NewOptionalRepo(db, log),
		License:    repos.NewLicenseRepo(db, log),
	}
}
