package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CompanyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Company) error
	Update(ctx context.Context, tx *gorm.DB, row *types.Company) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Company, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Company, error)
	List(ctx context.Context, tx *gorm.DB, status *types.CompanyStatus) ([]*types.Company, error)
	UpsertProgress(ctx context.Context, tx *gorm.DB, row *types.CompanyModuleProgress) error
	GetProgress(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID) (*types.CompanyModuleProgress, error)
	ListProgressByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyModuleProgress, error)
	ListProgressByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.CompanyModuleProgress, error)
	ListCompletedProgress(ctx context.Context, tx *gorm.DB) ([]*types.CompanyModuleProgress, error)
	MarkProgressConcluded(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID, completedAt time.Time) error
	SetActivation(ctx context.Context, tx *gorm.DB, row *types.CompanyModuleActivation) error
	GetActivation(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID) (*types.CompanyModuleActivation, error)
	ListActivationsByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyModuleActivation, error)
	ListActivationsByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.CompanyModuleActivation, error)
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	repoLog := baseLog.With("repo", "CompanyRepo")
	return &companyRepo{db: db, log: repoLog}
}

func (r *companyRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Company) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *companyRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Company) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *companyRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Company{}).Error
}

func (r *companyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Company
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *companyRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Company
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *companyRepo) List(ctx context.Context, tx *gorm.DB, status *types.CompanyStatus) ([]*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Order("name ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var results []*types.Company
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *companyRepo) UpsertProgress(ctx context.Context, tx *gorm.DB, row *types.CompanyModuleProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "company_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "notes", "completed_at", "custom_duration_days", "custom_units",
			}),
		}).
		Create(row).Error
}

func (r *companyRepo) GetProgress(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID) (*types.CompanyModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.CompanyModuleProgress
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND module_id = ?", companyID, moduleID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *companyRepo) ListProgressByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyModuleProgress
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *companyRepo) ListProgressByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.CompanyModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyModuleProgress
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListCompletedProgress returns every progress row with a completion date,
// across all companies. Feeds the recency ranking of suggestion lists.
func (r *companyRepo) ListCompletedProgress(ctx context.Context, tx *gorm.DB) ([]*types.CompanyModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyModuleProgress
	if err := transaction.WithContext(ctx).
		Where("completed_at IS NOT NULL").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkProgressConcluded flips a progress row to Concluido without touching
// notes or custom duration overrides.
func (r *companyRepo) MarkProgressConcluded(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID, completedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	row := &types.CompanyModuleProgress{
		CompanyID:   companyID,
		ModuleID:    moduleID,
		Status:      types.ProgressConcluido,
		CompletedAt: &completedAt,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at"}),
		}).
		Create(row).Error
}

func (r *companyRepo) SetActivation(ctx context.Context, tx *gorm.DB, row *types.CompanyModuleActivation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_enabled"}),
		}).
		Create(row).Error
}

func (r *companyRepo) GetActivation(ctx context.Context, tx *gorm.DB, companyID, moduleID uuid.UUID) (*types.CompanyModuleActivation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.CompanyModuleActivation
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND module_id = ?", companyID, moduleID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *companyRepo) ListActivationsByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CompanyModuleActivation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyModuleActivation
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *companyRepo) ListActivationsByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.CompanyModuleActivation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CompanyModuleActivation
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
