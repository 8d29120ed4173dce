package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type AllocationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.CohortAllocation) error
	Update(ctx context.Context, tx *gorm.DB, row *types.CohortAllocation) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CohortAllocation, error)
	GetByTriple(ctx context.Context, tx *gorm.DB, cohortID, companyID, moduleID uuid.UUID) (*types.CohortAllocation, error)
	ListByCohort(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) ([]*types.CohortAllocation, error)
	ListByCohorts(ctx context.Context, tx *gorm.DB, cohortIDs []uuid.UUID) ([]*types.CohortAllocation, error)
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CohortAllocation, error)
	ListActiveByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.CohortAllocation, error)
	CountActiveByCohort(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) (int64, error)
	CountByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error)
	CountDistinctActiveCompanies(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID, excludeCompanyID uuid.UUID) (int64, error)
}

type allocationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAllocationRepo(db *gorm.DB, baseLog *logger.Logger) AllocationRepo {
	repoLog := baseLog.With("repo", "AllocationRepo")
	return &allocationRepo{db: db, log: repoLog}
}

func (r *allocationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CohortAllocation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *allocationRepo) Update(ctx context.Context, tx *gorm.DB, row *types.CohortAllocation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *allocationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CohortAllocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.CohortAllocation
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *allocationRepo) GetByTriple(ctx context.Context, tx *gorm.DB, cohortID, companyID, moduleID uuid.UUID) (*types.CohortAllocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.CohortAllocation
	if err := transaction.WithContext(ctx).
		Where("cohort_id = ? AND company_id = ? AND module_id = ?", cohortID, companyID, moduleID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *allocationRepo) ListByCohort(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) ([]*types.CohortAllocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CohortAllocation
	if err := transaction.WithContext(ctx).
		Where("cohort_id = ?", cohortID).
		Order("entry_day ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *allocationRepo) ListByCohorts(ctx context.Context, tx *gorm.DB, cohortIDs []uuid.UUID) ([]*types.CohortAllocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CohortAllocation
	if len(cohortIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("cohort_id IN ?", cohortIDs).
		Order("entry_day ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *allocationRepo) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.CohortAllocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CohortAllocation
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListActiveByModule returns non-cancelled allocations of a module across
// all cohorts. Used to keep already-scheduled companies out of suggestion
// lists.
func (r *allocationRepo) ListActiveByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.CohortAllocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CohortAllocation
	if err := transaction.WithContext(ctx).
		Where("module_id = ? AND status <> ?", moduleID, types.AllocationCancelado).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *allocationRepo) CountActiveByCohort(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.CohortAllocation{}).
		Where("cohort_id = ? AND status <> ?", cohortID, types.AllocationCancelado).
		Count(&count).Error
	return count, err
}

// CountByModule counts allocations in any status. Historical rows block
// catalog deletion.
func (r *allocationRepo) CountByModule(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.CohortAllocation{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error
	return count, err
}

// CountDistinctActiveCompanies measures occupied capacity: distinct
// companies with at least one non-cancelled allocation in the cohort.
func (r *allocationRepo) CountDistinctActiveCompanies(ctx context.Context, tx *gorm.DB, cohortID uuid.UUID, excludeCompanyID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.CohortAllocation{}).
		Where("cohort_id = ? AND status <> ?", cohortID, types.AllocationCancelado)
	if excludeCompanyID != uuid.Nil {
		query = query.Where("company_id <> ?", excludeCompanyID)
	}
	var count int64
	err := query.Distinct("company_id").Count(&count).Error
	return count, err
}
