package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CohortAllocation places a company into one module block of a cohort.
// Unique per (cohort, company, module). A cancelled allocation does not
// count toward capacity and can be revived back to Previsto.
type CohortAllocation struct {
	ID                         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CohortID                   uuid.UUID        `gorm:"type:uuid;not null;index:idx_allocation_triple,unique" json:"cohort_id"`
	Cohort                     *Cohort          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CohortID;references:ID" json:"cohort,omitempty"`
	CompanyID                  uuid.UUID        `gorm:"type:uuid;not null;index:idx_allocation_triple,unique" json:"company_id"`
	Company                    *Company         `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	ModuleID                   uuid.UUID        `gorm:"type:uuid;not null;index:idx_allocation_triple,unique" json:"module_id"`
	Module                     *ModuleTemplate  `gorm:"constraint:OnDelete:RESTRICT;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	EntryDay                   int              `gorm:"column:entry_day;not null" json:"entry_day"`
	Status                     AllocationStatus `gorm:"column:status;not null;default:'Previsto'" json:"status"`
	Notes                      *string          `gorm:"column:notes" json:"notes,omitempty"`
	OverrideInstallationPrereq bool             `gorm:"column:override_installation_prereq;not null;default:false" json:"override_installation_prereq"`
	OverrideReason             *string          `gorm:"column:override_reason" json:"override_reason,omitempty"`
	ExecutedAt                 *time.Time       `gorm:"column:executed_at;type:date" json:"executed_at,omitempty"`
	CreatedAt                  time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt                  time.Time        `gorm:"not null" json:"updated_at"`
}

func (CohortAllocation) TableName() string { return "cohort_allocation" }

func (a *CohortAllocation) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
