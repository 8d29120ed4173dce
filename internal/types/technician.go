package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Technician struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"column:name;not null" json:"name"`
	AvailabilityNotes *string   `gorm:"column:availability_notes" json:"availability_notes,omitempty"`
}

func (Technician) TableName() string { return "technician" }

func (t *Technician) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TechnicianSkill tags the modules a technician is qualified to deliver.
// Informational only, not a hard allocation constraint.
type TechnicianSkill struct {
	TechnicianID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"technician_id"`
	Technician   *Technician     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TechnicianID;references:ID" json:"technician,omitempty"`
	ModuleID     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"module_id"`
	Module       *ModuleTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
}

func (TechnicianSkill) TableName() string { return "technician_skill" }
