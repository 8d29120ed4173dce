package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type OptionalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.OptionalModule) error
	Update(ctx context.Context, tx *gorm.DB, row *types.OptionalModule) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.OptionalModule, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.OptionalModule, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.OptionalModule, error)
	UpsertProgress(ctx context.Context, tx *gorm.DB, row *types.CompanyOptionalProgress) error
	ListProgressByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyOptionalProgress, error)
	ListProgressByOptional(ctx context.Context, tx *gorm.DB, optionalID uuid.UUID) ([]*types.CompanyOptionalProgress, error)
}

type optionalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOptionalRepo(db *gorm.DB, baseLog *logger.Logger) OptionalRepo {
	repoLog := baseLog.With("repo", "OptionalRepo")
	return &optionalRepo{db: db, log: repoLog}
}

func (r *optionalRepo) Create(ctx context.Context, tx *gorm.DB, row *types.OptionalModule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *optionalRepo) Update(ctx context.Context, tx *gorm.DB, row *types.OptionalModule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *optionalRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.OptionalModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.OptionalModule
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *optionalRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.OptionalModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.OptionalModule
	if err := transaction.WithContext(ctx).
		Where("code = ?", code).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *optionalRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.OptionalModule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.OptionalModule
	if err := transaction.WithContext(ctx).
		Order("code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *optionalRepo) UpsertProgress(ctx context.Context, tx *gorm.DB, row *types.CompanyOptionalProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "optional_module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "notes"}),
		}).
		Create(row).Error
}

func (r *optionalRepo) ListProgressByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyOptionalProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyOptionalProgress
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *optionalRepo) ListProgressByOptional(ctx context.Context, tx *gorm.DB, optionalID uuid.UUID) ([]*types.CompanyOptionalProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyOptionalProgress
	if err := transaction.WithContext(ctx).
		Where("optional_module_id = ?", optionalID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
