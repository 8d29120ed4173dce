package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
	"github.com/yohannreimer/projeto-treinamentos/internal/utils"
)

// Service owns the gorm handle. The default driver is an embedded sqlite
// file so a fresh checkout runs with no external services; postgres is
// opt-in through DB_DRIVER.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "sqlite", log)

	var (
		gormDB *gorm.DB
		err    error
	)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "treinamentos.db", log)
		log.Info("Opening sqlite database...", "path", path)
		gormDB, err = gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "treinamentos", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		log.Info("Connecting to Postgres...")
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
	if err != nil {
		log.Error("Failed to open database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	return &Service{db: gormDB, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
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
		&types.User{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
