package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OptionalModule is catalog content outside the mandatory curriculum; it
// never participates in cohort scheduling.
type OptionalModule struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Category     *string   `gorm:"column:category" json:"category,omitempty"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	DurationDays int       `gorm:"column:duration_days;not null" json:"duration_days"`
	Profile      *string   `gorm:"column:profile" json:"profile,omitempty"`
	Notes        *string   `gorm:"column:notes" json:"notes,omitempty"`
}

func (OptionalModule) TableName() string { return "optional_module" }

func (m *OptionalModule) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type CompanyOptionalProgress struct {
	ID               uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID              `gorm:"type:uuid;not null;index:idx_company_optional,unique" json:"company_id"`
	Company          *Company               `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	OptionalModuleID uuid.UUID              `gorm:"type:uuid;not null;index:idx_company_optional,unique" json:"optional_module_id"`
	OptionalModule   *OptionalModule        `gorm:"constraint:OnDelete:CASCADE;foreignKey:OptionalModuleID;references:ID" json:"optional_module,omitempty"`
	Status           OptionalProgressStatus `gorm:"column:status;not null;default:'Planejado'" json:"status"`
	Notes            *string                `gorm:"column:notes" json:"notes,omitempty"`
}

func (CompanyOptionalProgress) TableName() string { return "company_optional_progress" }

func (p *CompanyOptionalProgress) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
