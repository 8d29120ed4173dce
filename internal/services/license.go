package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/apierr"
	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/repos"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

const (
	monthlyAlertWindowDays = 7
	annualAlertWindowDays  = 30
)

type LicenseAlertLevel string

const (
	AlertOk        LicenseAlertLevel = "Ok"
	AlertAttention LicenseAlertLevel = "Atencao"
	AlertExpired   LicenseAlertLevel = "Expirada"
)

type CreateLicenseInput struct {
	CompanyID         uuid.UUID          `json:"company_id"`
	ProgramID         uuid.UUID          `json:"program_id"`
	UserName          string             `json:"user_name"`
	ModuleList        string             `json:"module_list"`
	LicenseIdentifier string             `json:"license_identifier"`
	RenewalCycle      types.RenewalCycle `json:"renewal_cycle"`
	ExpiresAt         time.Time          `json:"expires_at"`
	Notes             *string            `json:"notes"`
}

type UpdateLicenseInput struct {
	UserName          *string             `json:"user_name"`
	ModuleList        *string             `json:"module_list"`
	LicenseIdentifier *string             `json:"license_identifier"`
	RenewalCycle      *types.RenewalCycle `json:"renewal_cycle"`
	ExpiresAt         *time.Time          `json:"expires_at"`
	Notes             *string             `json:"notes"`
}

// LicenseView is a license with its computed alert state.
type LicenseView struct {
	License             *types.CompanyLicense `json:"license"`
	DaysUntilExpiration int                   `json:"days_until_expiration"`
	AlertLevel          LicenseAlertLevel     `json:"alert_level"`
	WarningMessage      *string               `json:"warning_message,omitempty"`
}

type LicenseAlerts struct {
	Expired        []*LicenseView `json:"expired"`
	MonthlyDueSoon []*LicenseView `json:"monthly_due_soon"`
	AnnualDueSoon  []*LicenseView `json:"annual_due_soon"`
	TotalAttention int            `json:"total_attention"`
}

type LicenseService interface {
	List(ctx context.Context, companyID *uuid.UUID) ([]*LicenseView, *LicenseAlerts, error)
	Create(ctx context.Context, input CreateLicenseInput) (*types.CompanyLicense, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLicenseInput) (*types.CompanyLicense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Renew(ctx context.Context, id uuid.UUID) (*types.CompanyLicense, error)
	ListPrograms(ctx context.Context) ([]*types.LicenseProgram, error)
	CreateProgram(ctx context.Context, name string, notes *string) (*types.LicenseProgram, error)
	UpdateProgram(ctx context.Context, id uuid.UUID, name *string, notes *string) (*types.LicenseProgram, error)
	DeleteProgram(ctx context.Context, id uuid.UUID) error
}

type licenseService struct {
	db          *gorm.DB
	log         *logger.Logger
	licenseRepo repos.LicenseRepo
	companyRepo repos.CompanyRepo
	now         func() time.Time
}

func NewLicenseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	licenseRepo repos.LicenseRepo,
	companyRepo repos.CompanyRepo,
) LicenseService {
	return &licenseService{
		db:          db,
		log:         baseLog.With("service", "LicenseService"),
		licenseRepo: licenseRepo,
		companyRepo: companyRepo,
		now:         time.Now,
	}
}

func alertWindowDays(cycle types.RenewalCycle) int {
	if cycle == types.RenewalAnual {
		return annualAlertWindowDays
	}
	return monthlyAlertWindowDays
}

// nextRenewalDate advances from the later of today and the current expiry,
// so renewing an expired license starts the new period now rather than
// backdating it.
func nextRenewalDate(currentExpiry time.Time, cycle types.RenewalCycle, today time.Time) time.Time {
	base := dateOnly(currentExpiry)
	if base.Before(dateOnly(today)) {
		base = dateOnly(today)
	}
	if cycle == types.RenewalAnual {
		return base.AddDate(1, 0, 0)
	}
	return base.AddDate(0, 0, 30)
}

func (s *licenseService) view(license *types.CompanyLicense) *LicenseView {
	today := dateOnly(s.now())
	days := int(dateOnly(license.ExpiresAt).Sub(today).Hours() / 24)
	view := &LicenseView{
		License:             license,
		DaysUntilExpiration: days,
		AlertLevel:          AlertOk,
	}
	switch {
	case days < 0:
		view.AlertLevel = AlertExpired
		msg := fmt.Sprintf("Licenca expirada ha %d dia(s).", -days)
		view.WarningMessage = &msg
	case days <= alertWindowDays(license.RenewalCycle):
		view.AlertLevel = AlertAttention
		msg := fmt.Sprintf("Renovacao em %d dia(s).", days)
		view.WarningMessage = &msg
	}
	return view
}

func (s *licenseService) List(ctx context.Context, companyID *uuid.UUID) ([]*LicenseView, *LicenseAlerts, error) {
	licenses, err := s.licenseRepo.ListLicenses(ctx, nil, companyID)
	if err != nil {
		return nil, nil, err
	}
	views := make([]*LicenseView, 0, len(licenses))
	alerts := &LicenseAlerts{}
	for _, l := range licenses {
		v := s.view(l)
		views = append(views, v)
		switch {
		case v.AlertLevel == AlertExpired:
			alerts.Expired = append(alerts.Expired, v)
		case v.AlertLevel == AlertAttention && l.RenewalCycle == types.RenewalMensal:
			alerts.MonthlyDueSoon = append(alerts.MonthlyDueSoon, v)
		case v.AlertLevel == AlertAttention && l.RenewalCycle == types.RenewalAnual:
			alerts.AnnualDueSoon = append(alerts.AnnualDueSoon, v)
		}
	}
	alerts.TotalAttention = len(alerts.Expired) + len(alerts.MonthlyDueSoon) + len(alerts.AnnualDueSoon)
	return views, alerts, nil
}

func (s *licenseService) Create(ctx context.Context, input CreateLicenseInput) (*types.CompanyLicense, error) {
	if !input.RenewalCycle.Valid() {
		return nil, apierr.Validation("unknown renewal cycle %q", input.RenewalCycle)
	}
	if input.ExpiresAt.IsZero() {
		return nil, apierr.Validation("expires_at is required")
	}
	var license *types.CompanyLicense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.companyRepo.GetByID(ctx, tx, input.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("company %s not found", input.CompanyID)
			}
			return err
		}
		program, err := s.licenseRepo.GetProgramByID(ctx, tx, input.ProgramID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("license program %s not found", input.ProgramID)
			}
			return err
		}
		programID := program.ID
		license = &types.CompanyLicense{
			CompanyID:    input.CompanyID,
			Name:         program.Name,
			ProgramID:    &programID,
			RenewalCycle: input.RenewalCycle,
			ExpiresAt:    dateOnly(input.ExpiresAt),
			Notes:        input.Notes,
		}
		if input.UserName != "" {
			license.UserName = &input.UserName
		}
		if input.ModuleList != "" {
			license.ModuleList = &input.ModuleList
		}
		if input.LicenseIdentifier != "" {
			license.LicenseIdentifier = &input.LicenseIdentifier
		}
		return s.licenseRepo.CreateLicense(ctx, tx, license)
	})
	if err != nil {
		return nil, err
	}
	return license, nil
}

func (s *licenseService) Update(ctx context.Context, id uuid.UUID, input UpdateLicenseInput) (*types.CompanyLicense, error) {
	var updated *types.CompanyLicense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		license, err := s.licenseRepo.GetLicenseByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("license %s not found", id)
			}
			return err
		}
		if input.UserName != nil {
			license.UserName = input.UserName
		}
		if input.ModuleList != nil {
			license.ModuleList = input.ModuleList
		}
		if input.LicenseIdentifier != nil {
			license.LicenseIdentifier = input.LicenseIdentifier
		}
		if input.RenewalCycle != nil {
			if !input.RenewalCycle.Valid() {
				return apierr.Validation("unknown renewal cycle %q", *input.RenewalCycle)
			}
			license.RenewalCycle = *input.RenewalCycle
		}
		if input.ExpiresAt != nil {
			license.ExpiresAt = dateOnly(*input.ExpiresAt)
		}
		if input.Notes != nil {
			license.Notes = input.Notes
		}
		if err := s.licenseRepo.UpdateLicense(ctx, tx, license); err != nil {
			return err
		}
		updated = license
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *licenseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.licenseRepo.GetLicenseByID(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("license %s not found", id)
			}
			return err
		}
		return s.licenseRepo.DeleteLicense(ctx, tx, id)
	})
}

func (s *licenseService) Renew(ctx context.Context, id uuid.UUID) (*types.CompanyLicense, error) {
	var renewed *types.CompanyLicense
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		license, err := s.licenseRepo.GetLicenseByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("license %s not found", id)
			}
			return err
		}
		today := dateOnly(s.now())
		license.ExpiresAt = nextRenewalDate(license.ExpiresAt, license.RenewalCycle, today)
		license.LastRenewedAt = &today
		if err := s.licenseRepo.UpdateLicense(ctx, tx, license); err != nil {
			return err
		}
		renewed = license
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

func (s *licenseService) ListPrograms(ctx context.Context) ([]*types.LicenseProgram, error) {
	return s.licenseRepo.ListPrograms(ctx, nil)
}

func (s *licenseService) CreateProgram(ctx context.Context, name string, notes *string) (*types.LicenseProgram, error) {
	if name == "" {
		return nil, apierr.Validation("name is required")
	}
	program := &types.LicenseProgram{Name: name, Notes: notes}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.licenseRepo.GetProgramByName(ctx, tx, name); err == nil {
			return apierr.Conflict("a license program named %q already exists", name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.licenseRepo.CreateProgram(ctx, tx, program)
	})
	if err != nil {
		return nil, err
	}
	return program, nil
}

func (s *licenseService) UpdateProgram(ctx context.Context, id uuid.UUID, name *string, notes *string) (*types.LicenseProgram, error) {
	var updated *types.LicenseProgram
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		program, err := s.licenseRepo.GetProgramByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("license program %s not found", id)
			}
			return err
		}
		if name != nil {
			if *name == "" {
				return apierr.Validation("name must not be empty")
			}
			programs, err := s.licenseRepo.ListPrograms(ctx, tx)
			if err != nil {
				return err
			}
			for _, other := range programs {
				if other.ID != id && strings.EqualFold(other.Name, *name) {
					return apierr.Conflict("a license program named %q already exists", *name)
				}
			}
			program.Name = *name
		}
		if notes != nil {
			program.Notes = notes
		}
		if err := s.licenseRepo.UpdateProgram(ctx, tx, program); err != nil {
			return err
		}
		updated = program
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *licenseService) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.licenseRepo.GetProgramByID(ctx, tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("license program %s not found", id)
			}
			return err
		}
		inUse, err := s.licenseRepo.CountLicensesByProgram(ctx, tx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return apierr.Conflict("license program is referenced by %d license(s)", inUse)
		}
		return s.licenseRepo.DeleteProgram(ctx, tx, id)
	})
}
