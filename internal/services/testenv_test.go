package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type testEnv struct {
	db             *gorm.DB
	moduleRepo     repos.ModuleRepo
	companyRepo    repos.CompanyRepo
	technicianRepo repos.TechnicianRepo
	cohortRepo     repos.CohortRepo
	allocationRepo repos.AllocationRepo
	optionalRepo   repos.OptionalRepo
	licenseRepo    repos.LicenseRepo

	cohorts     CohortService
	allocations AllocationService
	companies   CompanyService
	catalog     CatalogService
	technicians TechnicianService
	licenses    LicenseService
	bootstrap   BootstrapService
}

func newTestEnv(t *testing.T, installationCodes ...string) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.ModuleTemplate{},
		&types.ModulePrerequisite{},
		&types.Company{},
		&types.CompanyModuleProgress{},
		&types.CompanyModuleActivation{},
		&types.Technician{},
		&types.TechnicianSkill{},
		&types.Cohort{},
		&types.CohortModuleBlock{},
		&types.CohortAllocation{},
		&types.OptionalModule{},
		&types.CompanyOptionalProgress{},
		&types.LicenseProgram{},
		&types.CompanyLicense{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	baseLog, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	env := &testEnv{
		db:             db,
		moduleRepo:     repos.NewModuleRepo(db, baseLog),
		companyRepo:    repos.NewCompanyRepo(db, baseLog),
		technicianRepo: repos.NewTechnicianRepo(db, baseLog),
		cohortRepo:     repos.NewCohortRepo(db, baseLog),
		allocationRepo: repos.NewAllocationRepo(db, baseLog),
		optionalRepo:   repos.NewOptionalRepo(db, baseLog),
		licenseRepo:    repos.NewLicenseRepo(db, baseLog),
	}
	installation := NewInstallationResolver(installationCodes, env.moduleRepo, baseLog)
	env.cohorts = NewCohortService(db, baseLog, env.cohortRepo, env.moduleRepo, env.technicianRepo, env.allocationRepo, env.companyRepo)
	env.allocations = NewAllocationService(db, baseLog, env.allocationRepo, env.cohortRepo, env.companyRepo, env.moduleRepo, installation)
	env.companies = NewCompanyService(db, baseLog, env.companyRepo, env.moduleRepo, env.allocationRepo, env.cohortRepo, env.optionalRepo, installation)
	env.catalog = NewCatalogService(db, baseLog, env.moduleRepo, env.companyRepo, env.cohortRepo, env.allocationRepo, installation)
	env.technicians = NewTechnicianService(db, baseLog, env.technicianRepo, env.moduleRepo, env.cohortRepo, env.allocationRepo)
	env.licenses = NewLicenseService(db, baseLog, env.licenseRepo, env.companyRepo)
	env.bootstrap = NewBootstrapService(db, baseLog, env.companyRepo, env.moduleRepo)
	return env
}

func (e *testEnv) mustModule(t *testing.T, code string, durationDays int) *types.ModuleTemplate {
	t.Helper()
	m := &types.ModuleTemplate{Code: code, Category: "Treinamento", Name: "Modulo " + code, DurationDays: durationDays}
	if err := e.moduleRepo.Create(context.Background(), e.db, m); err != nil {
		t.Fatalf("create module %s: %v", code, err)
	}
	return m
}

func (e *testEnv) mustCompany(t *testing.T, name string) *types.Company {
	t.Helper()
	c := &types.Company{Name: name, Status: types.CompanyAtivo, PriorityLevel: "Normal", Modality: "Turma_Online"}
	if err := e.companyRepo.Create(context.Background(), e.db, c); err != nil {
		t.Fatalf("create company %s: %v", name, err)
	}
	return c
}

func (e *testEnv) mustTechnician(t *testing.T, name string) *types.Technician {
	t.Helper()
	tech := &types.Technician{Name: name}
	if err := e.technicianRepo.Create(context.Background(), e.db, tech); err != nil {
		t.Fatalf("create technician %s: %v", name, err)
	}
	return tech
}

func (e *testEnv) mustCohort(t *testing.T, code string, start time.Time, technicianID *uuid.UUID, capacity int, blocks []CohortBlockInput) *types.Cohort {
	t.Helper()
	cohort, err := e.cohorts.Create(t.Context(), CreateCohortInput{
		Code:              code,
		Name:              "Turma " + code,
		StartDate:         start,
		TechnicianID:      technicianID,
		CapacityCompanies: capacity,
		Blocks:            blocks,
	})
	if err != nil {
		t.Fatalf("create cohort %s: %v", code, err)
	}
	return cohort
}

func (e *testEnv) markProgressDone(t *testing.T, companyID, moduleID uuid.UUID, when time.Time) {
	t.Helper()
	if err := e.companyRepo.MarkProgressConcluded(context.Background(), e.db, companyID, moduleID, when); err != nil {
		t.Fatalf("mark progress: %v", err)
	}
}
