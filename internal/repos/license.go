package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type LicenseRepo interface {
	CreateProgram(ctx context.Context, tx *gorm.DB, row *types.LicenseProgram) error
	UpdateProgram(ctx context.Context, tx *gorm.DB, row *types.LicenseProgram) error
	DeleteProgram(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountLicensesByProgram(ctx context.Context, tx *gorm.DB, programID uuid.UUID) (int64, error)
	GetProgramByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LicenseProgram, error)
	GetProgramByName(ctx context.Context, tx *gorm.DB, name string) (*types.LicenseProgram, error)
	ListPrograms(ctx context.Context, tx *gorm.DB) ([]*types.LicenseProgram, error)
	CreateLicense(ctx context.Context, tx *gorm.DB, row *types.CompanyLicense) error
	UpdateLicense(ctx context.Context, tx *gorm.DB, row *types.CompanyLicense) error
	DeleteLicense(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetLicenseByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CompanyLicense, error)
	ListLicenses(ctx context.Context, tx *gorm.DB, companyID *uuid.UUID) ([]*types.CompanyLicense, error)
}

type licenseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLicenseRepo(db *gorm.DB, baseLog *logger.Logger) LicenseRepo {
	repoLog := baseLog.With("repo", "LicenseRepo")
	return &licenseRepo{db: db, log: repoLog}
}

func (r *licenseRepo) CreateProgram(ctx context.Context, tx *gorm.DB, row *types.LicenseProgram) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *licenseRepo) UpdateProgram(ctx context.Context, tx *gorm.DB, row *types.LicenseProgram) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *licenseRepo) DeleteProgram(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.LicenseProgram{}).Error
}

func (r *licenseRepo) CountLicensesByProgram(ctx context.Context, tx *gorm.DB, programID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.CompanyLicense{}).
		Where("program_id = ?", programID).
		Count(&count).Error
	return count, err
}

func (r *licenseRepo) GetProgramByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LicenseProgram, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.LicenseProgram
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *licenseRepo) GetProgramByName(ctx context.Context, tx *gorm.DB, name string) (*types.LicenseProgram, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.LicenseProgram
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *licenseRepo) ListPrograms(ctx context.Context, tx *gorm.DB) ([]*types.LicenseProgram, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.LicenseProgram
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *licenseRepo) CreateLicense(ctx context.Context, tx *gorm.DB, row *types.CompanyLicense) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *licenseRepo) UpdateLicense(ctx context.Context, tx *gorm.DB, row *types.CompanyLicense) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *licenseRepo) DeleteLicense(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.CompanyLicense{}).Error
}

func (r *licenseRepo) GetLicenseByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CompanyLicense, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.CompanyLicense
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *licenseRepo) ListLicenses(ctx context.Context, tx *gorm.DB, companyID *uuid.UUID) ([]*types.CompanyLicense, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Order("expires_at ASC")
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	var results []*types.CompanyLicense
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
