package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yohannreimer/projeto-treinamentos/internal/platform/logger"
	"github.com/yohannreimer/projeto-treinamentos/internal/types"
)

type TechnicianRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Technician) error
	Update(ctx context.Context, tx *gorm.DB, row *types.Technician) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Technician, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Technician, error)
	ListSkills(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID) ([]*types.TechnicianSkill, error)
	ReplaceSkills(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, moduleIDs []uuid.UUID) error
}

type technicianRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTechnicianRepo(db *gorm.DB, baseLog *logger.Logger) TechnicianRepo {
	repoLog := baseLog.With("repo", "TechnicianRepo")
	return &technicianRepo{db: db, log: repoLog}
}

func (r *technicianRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Technician) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *technicianRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Technician) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *technicianRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Technician{}).Error
}

func (r *technicianRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Technician, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Technician
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *technicianRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Technician, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Technician
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *technicianRepo) ListSkills(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID) ([]*types.TechnicianSkill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TechnicianSkill
	if err := transaction.WithContext(ctx).
		Where("technician_id = ?", technicianID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *technicianRepo) ReplaceSkills(ctx context.Context, tx *gorm.DB, technicianID uuid.UUID, moduleIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Where("technician_id = ?", technicianID).
		Delete(&types.TechnicianSkill{}).Error; err != nil {
		return err
	}
	if len(moduleIDs) == 0 {
		return nil
	}
	rows := make([]*types.TechnicianSkill, 0, len(moduleIDs))
	for _, mid := range moduleIDs {
		rows = append(rows, &types.TechnicianSkill{TechnicianID: technicianID, ModuleID: mid})
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}
