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

type OptionalModuleInput struct {
	Code         string  `json:"code"`
	Category     *string `json:"category"`
	Name         string  `json:"name"`
	DurationDays int     `json:"duration_days"`
	Profile      *string `json:"profile"`
	Notes        *string `json:"notes"`
}

type OptionalProgressInput struct {
	CompanyID        uuid.UUID                    `json:"company_id"`
	OptionalModuleID uuid.UUID                    `json:"optional_module_id"`
	Status           types.OptionalProgressStatus `json:"status"`
	Notes            *string                      `json:"notes"`
}

type OptionalService interface {
	List(ctx context.Context) ([]*types.OptionalModule, error)
	Create(ctx context.Context, input OptionalModuleInput) (*types.OptionalModule, error)
	UpsertProgress(ctx context.Context, input OptionalProgressInput) (*types.CompanyOptionalProgress, error)
	ListProgressByCompany(ctx context.Context, companyID uuid.UUID) ([]*types.CompanyOptionalProgress, error)
}

type optionalService struct {
	db           *gorm.DB
	log          *logger.Logger
	optionalRepo repos.OptionalRepo
	companyRepo  repos.CompanyRepo
}

func NewOptionalService(
	db *gorm.DB,
	baseLog *logger.Logger,
	optionalRepo repos.OptionalRepo,
	companyRepo repos.CompanyRepo,
) OptionalService {
	return &optionalService{
		db:           db,
		log:          baseLog.With("service", "OptionalService"),
		optionalRepo: optionalRepo,
		companyRepo:  companyRepo,
	}
}

func (s *optionalService) List(ctx context.Context) ([]*types.OptionalModule, error) {
	return s.optionalRepo.ListAll(ctx, nil)
}

func (s *optionalService) Create(ctx context.Context, input OptionalModuleInput) (*types.OptionalModule, error) {
	if input.Code == "" || input.Name == "" {
		return nil, apierr.Validation("code and name are required")
	}
	if input.DurationDays < 1 {
		return nil, apierr.Validation("duration_days must be at least 1")
	}
	module := &types.OptionalModule{
		Code:         input.Code,
		Category:     input.Category,
		Name:         input.Name,
		DurationDays: input.DurationDays,
		Profile:      input.Profile,
		Notes:        input.Notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.optionalRepo.GetByCode(ctx, tx, input.Code); err == nil {
			return apierr.Conflict("an optional module with code %q already exists", input.Code)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.optionalRepo.Create(ctx, tx, module)
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (s *optionalService) UpsertProgress(ctx context.Context, input OptionalProgressInput) (*types.CompanyOptionalProgress, error) {
	if !input.Status.Valid() {
		return nil, apierr.Validation("unknown optional progress status %q", input.Status)
	}
	row := &types.CompanyOptionalProgress{
		CompanyID:        input.CompanyID,
		OptionalModuleID: input.OptionalModuleID,
		Status:           input.Status,
		Notes:            input.Notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.companyRepo.GetByID(ctx, tx, input.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", input.CompanyID)
			}
			return err
		}
		if _, err := s.optionalRepo.GetByID(ctx, tx, input.OptionalModuleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("optional module %s not found", input.OptionalModuleID)
			}
			return err
		}
		return s.optionalRepo.UpsertProgress(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *optionalService) ListProgressByCompany(ctx context.Context, companyID uuid.UUID) ([]*types.CompanyOptionalProgress, error) {
	if _, err := s.companyRepo.GetByID(ctx, nil, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("company %s not found", companyID)
		}
		return nil, err
	}
	return s.optionalRepo.ListProgressByCompany(ctx, nil, companyID)
}
