package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

// ModuleSeed is one catalog row of a bootstrap payload.
type ModuleSeed struct {
	Code         string  `json:"code"`
	Category     string  `json:"category"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DurationDays int     `json:"duration_days"`
	Profile      *string `json:"profile"`
	IsMandatory  bool    `json:"is_mandatory"`
}

type BootstrapInput struct {
	Clients []string     `json:"clients"`
	Modules []ModuleSeed `json:"modules"`
}

type BootstrapSummary struct {
	ClientsUpserted     int `json:"clients_upserted"`
	ModulesUpserted     int `json:"modules_upserted"`
	ProgressRowsCreated int `json:"progress_rows_created"`
}

// BootstrapService seeds the working data set in one pass: client companies
// by name, catalog modules by code, then a default progress and activation
// row for every (company, module) pair that lacks one.
type BootstrapService interface {
	ApplyCurrentData(ctx context.Context, input BootstrapInput) (*BootstrapSummary, error)
}

type bootstrapService struct {
	db          *gorm.DB
	log         *logger.Logger
	companyRepo repos.CompanyRepo
	moduleRepo  repos.ModuleRepo
}

func NewBootstrapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	companyRepo repos.CompanyRepo,
	moduleRepo repos.ModuleRepo,
) BootstrapService {
	return &bootstrapService{
		db:          db,
		log:         baseLog.With("service", "BootstrapService"),
		companyRepo: companyRepo,
		moduleRepo:  moduleRepo,
	}
}

func (s *bootstrapService) ApplyCurrentData(ctx context.Context, input BootstrapInput) (*BootstrapSummary, error) {
	summary := &BootstrapSummary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range input.Clients {
			if name == "" {
				return apierr.Validation("client names must not be empty")
			}
			company, err := s.companyRepo.GetByName(ctx, tx, name)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				company = &types.Company{Name: name, Status: types.CompanyAtivo}
				if err := s.companyRepo.Create(ctx, tx, company); err != nil {
					return err
				}
			} else if company.Status != types.CompanyAtivo {
				company.Status = types.CompanyAtivo
				if err := s.companyRepo.Update(ctx, tx, company); err != nil {
					return err
				}
			}
			summary.ClientsUpserted++
		}

		for _, seed := range input.Modules {
			if seed.Code == "" || seed.Name == "" {
				return apierr.Validation("module seeds require code and name")
			}
			duration := seed.DurationDays
			if duration < 1 {
				duration = 1
			}
			module, err := s.moduleRepo.GetByCode(ctx, tx, seed.Code)
			existing := true
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				existing = false
				module = &types.ModuleTemplate{Code: seed.Code}
			}
			module.Category = seed.Category
			module.Name = seed.Name
			module.Description = seed.Description
			module.DurationDays = duration
			module.Profile = seed.Profile
			module.IsMandatory = seed.IsMandatory
			if module.Category == "" {
				module.Category = "Geral"
			}
			if existing {
				err = s.moduleRepo.Update(ctx, tx, module)
			} else {
				err = s.moduleRepo.Create(ctx, tx, module)
			}
			if err != nil {
				return err
			}
			summary.ModulesUpserted++
		}

		created, err := s.backfillDefaults(ctx, tx)
		if err != nil {
			return err
		}
		summary.ProgressRowsCreated = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("bootstrap applied",
		"clients_upserted", summary.ClientsUpserted,
		"modules_upserted", summary.ModulesUpserted,
		"progress_rows_created", summary.ProgressRowsCreated,
	)
	return summary, nil
}

func (s *bootstrapService) backfillDefaults(ctx context.Context, tx *gorm.DB) (int, error) {
	companies, err := s.companyRepo.List(ctx, tx, nil)
	if err != nil {
		return 0, err
	}
	modules, err := s.moduleRepo.ListAll(ctx, tx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, company := range companies {
		progress, err := s.companyRepo.ListProgressByCompany(ctx, tx, company.ID)
		if err != nil {
			return 0, err
		}
		hasProgress := make(map[uuid.UUID]bool, len(progress))
		for _, p := range progress {
			hasProgress[p.ModuleID] = true
		}
		activations, err := s.companyRepo.ListActivationsByCompany(ctx, tx, company.ID)
		if err != nil {
			return 0, err
		}
		hasActivation := make(map[uuid.UUID]bool, len(activations))
		for _, a := range activations {
			hasActivation[a.ModuleID] = true
		}
		for _, module := range modules {
			if !hasProgress[module.ID] {
				row := &types.CompanyModuleProgress{
					CompanyID: company.ID,
					ModuleID:  module.ID,
					Status:    types.ProgressNaoIniciado,
				}
				if err := s.companyRepo.UpsertProgress(ctx, tx, row); err != nil {
					return 0, err
				}
				created++
			}
			if !hasActivation[module.ID] {
				row := &types.CompanyModuleActivation{
					CompanyID: company.ID,
					ModuleID:  module.ID,
					IsEnabled: true,
				}
				if err := s.companyRepo.SetActivation(ctx, tx, row); err != nil {
					return 0, err
				}
			}
		}
	}
	return created, nil
}
