package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Company struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Status        CompanyStatus  `gorm:"column:status;not null;default:'Ativo'" json:"status"`
	Notes         *string        `gorm:"column:notes" json:"notes,omitempty"`
	Priority      int            `gorm:"column:priority;not null;default:0" json:"priority"`
	PriorityLevel string         `gorm:"column:priority_level;not null;default:'Normal'" json:"priority_level"`
	ContactName   *string        `gorm:"column:contact_name" json:"contact_name,omitempty"`
	ContactPhone  *string        `gorm:"column:contact_phone" json:"contact_phone,omitempty"`
	ContactEmail  *string        `gorm:"column:contact_email" json:"contact_email,omitempty"`
	Modality      string         `gorm:"column:modality;not null;default:'Turma_Online'" json:"modality"`
	Metadata      datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (Company) TableName() string { return "company" }

func (c *Company) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CompanyModuleProgress tracks a company's curriculum progress for one
// module. Rows are lazily ensured so every (company, module) pair resolves.
type CompanyModuleProgress struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_company_module_progress,unique" json:"company_id"`
	Company            *Company        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	ModuleID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_company_module_progress,unique" json:"module_id"`
	Module             *ModuleTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Status             ProgressStatus  `gorm:"column:status;not null;default:'Nao_iniciado'" json:"status"`
	Notes              *string         `gorm:"column:notes" json:"notes,omitempty"`
	CompletedAt        *time.Time      `gorm:"column:completed_at;type:date" json:"completed_at,omitempty"`
	CustomDurationDays *int            `gorm:"column:custom_duration_days" json:"custom_duration_days,omitempty"`
	CustomUnits        *int            `gorm:"column:custom_units" json:"custom_units,omitempty"`
}

func (CompanyModuleProgress) TableName() string { return "company_module_progress" }

func (p *CompanyModuleProgress) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CompanyModuleActivation controls whether a module applies to a company
// at all. Missing rows resolve to enabled.
type CompanyModuleActivation struct {
	CompanyID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"company_id"`
	Company   *Company        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	ModuleID  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"module_id"`
	Module    *ModuleTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	IsEnabled bool            `gorm:"column:is_enabled;not null;default:true" json:"is_enabled"`
}

func (CompanyModuleActivation) TableName() string { return "company_module_activation" }
