package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/schedule"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CreateModuleInput struct {
	Code         string  `json:"code"`
	Category     string  `json:"category"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	DurationDays int     `json:"duration_days"`
	Profile      *string `json:"profile"`
	IsMandatory  *bool   `json:"is_mandatory"`
}

type UpdateModuleInput struct {
	Category     *string `json:"category"`
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DurationDays *int    `json:"duration_days"`
	Profile      *string `json:"profile"`
	IsMandatory  *bool   `json:"is_mandatory"`
}

// CatalogEntry is a module with its effective prerequisite list, the
// implicit installation edge included.
type CatalogEntry struct {
	Module        *types.ModuleTemplate `json:"module"`
	Prerequisites []uuid.UUID           `json:"prerequisites"`
}

type CatalogService interface {
	List(ctx context.Context) ([]*CatalogEntry, error)
	Create(ctx context.Context, input CreateModuleInput) (*types.ModuleTemplate, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateModuleInput) (*types.ModuleTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPrerequisites(ctx context.Context, id uuid.UUID, prerequisiteIDs []uuid.UUID) error
}

type catalogService struct {
	db             *gorm.DB
	log            *logger.Logger
	moduleRepo     repos.ModuleRepo
	companyRepo    repos.CompanyRepo
	cohortRepo     repos.CohortRepo
	allocationRepo repos.AllocationRepo
	installation   InstallationResolver
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	moduleRepo repos.ModuleRepo,
	companyRepo repos.CompanyRepo,
	cohortRepo repos.CohortRepo,
	allocationRepo repos.AllocationRepo,
	installation InstallationResolver,
) CatalogService {
	return &catalogService{
		db:             db,
		log:            baseLog.With("service", "CatalogService"),
		moduleRepo:     moduleRepo,
		companyRepo:    companyRepo,
		cohortRepo:     cohortRepo,
		allocationRepo: allocationRepo,
		installation:   installation,
	}
}

func (s *catalogService) List(ctx context.Context) ([]*CatalogEntry, error) {
	modules, err := s.moduleRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	edges, err := s.moduleRepo.ListPrerequisites(ctx, nil)
	if err != nil {
		return nil, err
	}
	installation, err := s.installation.Resolve(ctx, nil)
	if err != nil {
		return nil, err
	}
	installationID := uuid.Nil
	if installation != nil {
		installationID = installation.ID
	}

	explicit := make(map[uuid.UUID][]uuid.UUID, len(modules))
	for _, e := range edges {
		explicit[e.ModuleID] = append(explicit[e.ModuleID], e.PrerequisiteModuleID)
	}

	entries := make([]*CatalogEntry, 0, len(modules))
	for _, m := range modules {
		entries = append(entries, &CatalogEntry{
			Module:        m,
			Prerequisites: schedule.EffectivePrerequisites(m.ID, explicit[m.ID], installationID),
		})
	}
	return entries, nil
}

func (s *catalogService) Create(ctx context.Context, input CreateModuleInput) (*types.ModuleTemplate, error) {
	if input.Code == "" || input.Name == "" || input.Category == "" {
		return nil, apierr.Validation("code, name and category are required")
	}
	if input.DurationDays < 1 {
		return nil, apierr.Validation("duration_days must be at least 1")
	}
	module := &types.ModuleTemplate{
		Code:         input.Code,
		Category:     input.Category,
		Name:         input.Name,
		Description:  input.Description,
		DurationDays: input.DurationDays,
		Profile:      input.Profile,
	}
	if input.IsMandatory != nil {
		module.IsMandatory = *input.IsMandatory
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.moduleRepo.GetByCode(ctx, tx, input.Code); err == nil {
			return apierr.Conflict("a module with code %q already exists", input.Code)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.moduleRepo.Create(ctx, tx, module); err != nil {
			return err
		}
		// New modules get default progress and activation rows for every
		// company, mirroring what company creation does.
		companies, err := s.companyRepo.List(ctx, tx, nil)
		if err != nil {
			return err
		}
		for _, c := range companies {
			if err := s.companyRepo.UpsertProgress(ctx, tx, &types.CompanyModuleProgress{
				CompanyID: c.ID,
				ModuleID:  module.ID,
				Status:    types.ProgressNaoIniciado,
			}); err != nil {
				return err
			}
			if err := s.companyRepo.SetActivation(ctx, tx, &types.CompanyModuleActivation{
				CompanyID: c.ID,
				ModuleID:  module.ID,
				IsEnabled: true,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, input UpdateModuleInput) (*types.ModuleTemplate, error) {
	var updated *types.ModuleTemplate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.moduleRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("module %s not found", id)
			}
			return err
		}
		if input.Category != nil {
			module.Category = *input.Category
		}
		if input.Name != nil {
			module.Name = *input.Name
		}
		if input.Description != nil {
			module.Description = input.Description
		}
		if input.DurationDays != nil {
			if *input.DurationDays < 1 {
				return apierr.Validation("duration_days must be at least 1")
			}
			module.DurationDays = *input.DurationDays
		}
		if input.Profile != nil {
			module.Profile = input.Profile
		}
		if input.IsMandatory != nil {
			module.IsMandatory = *input.IsMandatory
		}
		if err := s.moduleRepo.Update(ctx, tx, module); err != nil {
			return err
		}
		updated = module
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a catalog module. The installation module never goes away,
// and modules referenced by cohort blocks or allocations keep their history.
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := s.moduleRepo.GetByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("module %s not found", id)
			}
			return err
		}
		installation, err := s.installation.Resolve(ctx, tx)
		if err != nil {
			return err
		}
		if installation != nil && installation.ID == id {
			return apierr.Conflict("the installation module %q cannot be deleted", module.Code)
		}
		blocks, err := s.cohortRepo.CountBlocksByModule(ctx, tx, id)
		if err != nil {
			return err
		}
		if blocks > 0 {
			return apierr.Conflict("module %q is scheduled in %d cohort block(s)", module.Code, blocks)
		}
		allocations, err := s.allocationRepo.CountByModule(ctx, tx, id)
		if err != nil {
			return err
		}
		if allocations > 0 {
			return apierr.Conflict("module %q has %d allocation(s) on record", module.Code, allocations)
		}
		if err := s.moduleRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		s.log.Info("module deleted", "module_id", id, "code", module.Code)
		return nil
	})
}

func (s *catalogService) SetPrerequisites(ctx context.Context, id uuid.UUID, prerequisiteIDs []uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.moduleRepo.GetByID(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("module %s not found", id)
			}
			return err
		}
		seen := make(map[uuid.UUID]bool, len(prerequisiteIDs))
		deduped := make([]uuid.UUID, 0, len(prerequisiteIDs))
		for _, pid := range prerequisiteIDs {
			if pid == id {
				return apierr.Validation("a module cannot be its own prerequisite")
			}
			if pid == uuid.Nil || seen[pid] {
				continue
			}
			seen[pid] = true
			deduped = append(deduped, pid)
		}
		resolved, err := s.moduleRepo.GetByIDs(ctx, tx, deduped)
		if err != nil {
			return err
		}
		if len(resolved) != len(deduped) {
			return apierr.Validation("one or more prerequisite modules do not exist")
		}
		return s.moduleRepo.ReplacePrerequisites(ctx, tx, id, deduped)
	})
}
