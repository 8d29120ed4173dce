package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ModuleTemplate) error
	Update(ctx context.Context, tx *gorm.DB, row *types.ModuleTemplate) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ModuleTemplate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ModuleTemplate, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.ModuleTemplate, error)
	GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.ModuleTemplate, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ModuleTemplate, error)
	ListPrerequisites(ctx context.Context, tx *gorm.DB) ([]*types.ModulePrerequisite, error)
	ListPrerequisitesFor(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.ModulePrerequisite, error)
	ReplacePrerequisites(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, prerequisiteIDs []uuid.UUID) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	repoLog := baseLog.With("repo", "ModuleRepo")
	return &moduleRepo{db: db, log: repoLog}
}

func (r *moduleRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ModuleTemplate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *moduleRepo) Update(ctx context.Context, tx *gorm.DB, row *types.ModuleTemplate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *moduleRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ModuleTemplate{}).Error
}

func (r *moduleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ModuleTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ModuleTemplate
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *moduleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ModuleTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ModuleTemplate
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.ModuleTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.ModuleTemplate
	if err := transaction.WithContext(ctx).
		Where("code = ?", code).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *moduleRepo) GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.ModuleTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ModuleTemplate
	if len(codes) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ModuleTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ModuleTemplate
	if err := transaction.WithContext(ctx).
		Order("category ASC, code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) ListPrerequisites(ctx context.Context, tx *gorm.DB) ([]*types.ModulePrerequisite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ModulePrerequisite
	if err := transaction.WithContext(ctx).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) ListPrerequisitesFor(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID) ([]*types.ModulePrerequisite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ModulePrerequisite
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *moduleRepo) ReplacePrerequisites(ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, prerequisiteIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Delete(&types.ModulePrerequisite{}).Error; err != nil {
		return err
	}
	if len(prerequisiteIDs) == 0 {
		return nil
	}
	rows := make([]*types.ModulePrerequisite, 0, len(prerequisiteIDs))
	for _, pid := range prerequisiteIDs {
		rows = append(rows, &types.ModulePrerequisite{ModuleID: moduleID, PrerequisiteModuleID: pid})
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}
