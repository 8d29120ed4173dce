package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LicenseProgram struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Notes     *string   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LicenseProgram) TableName() string { return "license_program" }

func (p *LicenseProgram) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type CompanyLicense struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null" json:"company_id"`
	Company           *Company        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	Name              string          `gorm:"column:name;not null" json:"name"`
	ProgramID         *uuid.UUID      `gorm:"type:uuid;column:program_id" json:"program_id,omitempty"`
	Program           *LicenseProgram `gorm:"constraint:OnDelete:SET NULL;foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	UserName          *string         `gorm:"column:user_name" json:"user_name,omitempty"`
	ModuleList        *string         `gorm:"column:module_list" json:"module_list,omitempty"`
	LicenseIdentifier *string         `gorm:"column:license_identifier" json:"license_identifier,omitempty"`
	RenewalCycle      RenewalCycle    `gorm:"column:renewal_cycle;not null;default:'Mensal'" json:"renewal_cycle"`
	ExpiresAt         time.Time       `gorm:"column:expires_at;type:date;not null" json:"expires_at"`
	Notes             *string         `gorm:"column:notes" json:"notes,omitempty"`
	LastRenewedAt     *time.Time      `gorm:"column:last_renewed_at;type:date" json:"last_renewed_at,omitempty"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}

func (CompanyLicense) TableName() string { return "company_license" }

func (l *CompanyLicense) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
