package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cohort is the central scheduling unit: a technician delivering an ordered
// sequence of module blocks to up to CapacityCompanies distinct companies,
// anchored to a start date that is normalized to the next business day when
// computing occupancy.
type Cohort struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code              string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name              string         `gorm:"column:name;not null" json:"name"`
	StartDate         time.Time      `gorm:"column:start_date;type:date;not null" json:"start_date"`
	TechnicianID      *uuid.UUID     `gorm:"type:uuid;column:technician_id" json:"technician_id,omitempty"`
	Technician        *Technician    `gorm:"constraint:OnDelete:SET NULL;foreignKey:TechnicianID;references:ID" json:"technician,omitempty"`
	Status            CohortStatus   `gorm:"column:status;not null;default:'Planejada'" json:"status"`
	CapacityCompanies int            `gorm:"column:capacity_companies;not null" json:"capacity_companies"`
	Period            string         `gorm:"column:period;not null;default:'Integral'" json:"period"`
	DeliveryMode      string         `gorm:"column:delivery_mode;not null;default:'Online'" json:"delivery_mode"`
	Notes             *string        `gorm:"column:notes" json:"notes,omitempty"`
	Metadata          datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (Cohort) TableName() string { return "cohort" }

func (c *Cohort) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CohortModuleBlock is one contiguous slice of a cohort's business-day
// timeline. Invariant: orders are 1..N and start offsets form a strict
// running-sum partition starting at 1.
type CohortModuleBlock struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CohortID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_cohort_block_order,unique" json:"cohort_id"`
	Cohort         *Cohort         `gorm:"constraint:OnDelete:CASCADE;foreignKey:CohortID;references:ID" json:"cohort,omitempty"`
	ModuleID       uuid.UUID       `gorm:"type:uuid;not null" json:"module_id"`
	Module         *ModuleTemplate `gorm:"constraint:OnDelete:RESTRICT;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	OrderInCohort  int             `gorm:"column:order_in_cohort;not null;index:idx_cohort_block_order,unique" json:"order_in_cohort"`
	StartDayOffset int             `gorm:"column:start_day_offset;not null" json:"start_day_offset"`
	DurationDays   int             `gorm:"column:duration_days;not null" json:"duration_days"`
}

func (CohortModuleBlock) TableName() string { return "cohort_module_block" }

func (b *CohortModuleBlock) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
