package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type CohortRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Cohort) error
	Update(ctx context.Context, tx *gorm.DB, row *types.Cohort) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Cohort, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Cohort, error)
	List(ctx context.Context, tx *gorm.DB, status *types.CohortStatus) ([]*types.Cohort, error)
	ListActiveByTechnician(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, excludeCohortID uuid.UUID) ([]*types.Cohort, error)
	ListByTechnician(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, from, to *time.Time) ([]*types.Cohort, error)
	ListBlocks(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) ([]*types.CohortModuleBlock, error)
	ListBlocksByCohorts(ctx context.Context, tx *gorm.DB, cohortIDs []uuid.UUID) ([]*types.CohortModuleBlock, error)
	ReplaceBlocks(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID, blocks []*types.CohortModuleBlock) error
	CountBlocksByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error)
}

type cohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	repoLog := baseLog.With("repo", "CohortRepo")
	return &cohortRepo{db: db, log: repoLog}
}

func (r *cohortRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Cohort) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *cohortRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Cohort) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *cohortRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Cohort{}).Error
}

func (r *cohortRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Cohort
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cohortRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Cohort
	if err := transaction.WithContext(ctx).
		Where("code = ?", code).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *cohortRepo) List(ctx context.Context, tx *gorm.DB, status *types.CohortStatus) ([]*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).Order("start_date ASC, code ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var results []*types.Cohort
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListActiveByTechnician returns the cohorts competing for a technician's
// calendar. Cancelled cohorts never conflict.
func (r *cohortRepo) ListActiveByTechnician(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, excludeCohortID uuid.UUID) ([]*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Where("technician_id = ?", technicianID).
		Where("status <> ?", types.CohortCancelada).
		Order("start_date ASC, code ASC")
	if excludeCohortID != uuid.Nil {
		query = query.Where("id <> ?", excludeCohortID)
	}
	var results []*types.Cohort
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cohortRepo) ListByTechnician(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, from, to *time.Time) ([]*types.Cohort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Where("technician_id = ?", technicianID).
		Order("start_date ASC, code ASC")
	if from != nil {
		query = query.Where("start_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_date <= ?", *to)
	}
	var results []*types.Cohort
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cohortRepo) ListBlocks(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) ([]*types.CohortModuleBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CohortModuleBlock
	if err := transaction.WithContext(ctx).
		Where("cohort_id = ?", cohortID).
		Order("order_in_cohort ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cohortRepo) ListBlocksByCohorts(ctx context.Context, tx *gorm.DB, cohortIDs []uuid.UUID) ([]*types.CohortModuleBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CohortModuleBlock
	if len(cohortIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("cohort_id IN ?", cohortIDs).
		Order("cohort_id ASC, order_in_cohort ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cohortRepo) ReplaceBlocks(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID, blocks []*types.CohortModuleBlock) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("cohort_id = ?", cohortID).
		Delete(&types.CohortModuleBlock{}).Error; err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&blocks).Error
}

func (r *cohortRepo) CountBlocksByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.CohortModuleBlock{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error
	return count, err
}
