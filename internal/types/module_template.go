package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModuleTemplate struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Category     string    `gorm:"column:category;not null" json:"category"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Description  *string   `gorm:"column:description" json:"description,omitempty"`
	DurationDays int       `gorm:"column:duration_days;not null" json:"duration_days"`
	Profile      *string   `gorm:"column:profile" json:"profile,omitempty"`
	IsMandatory  bool      `gorm:"column:is_mandatory;not null;default:false" json:"is_mandatory"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (ModuleTemplate) TableName() string { return "module_template" }

func (m *ModuleTemplate) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ModulePrerequisite stores the explicit DAG edges only. The implicit
// installation-module edge is injected at read time, never persisted.
type ModulePrerequisite struct {
	ModuleID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"module_id"`
	Module               *ModuleTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	PrerequisiteModuleID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"prerequisite_module_id"`
	PrerequisiteModule   *ModuleTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:PrerequisiteModuleID;references:ID" json:"prerequisite_module,omitempty"`
}

func (ModulePrerequisite) TableName() string { return "module_prerequisite" }
