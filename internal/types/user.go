package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an internal operator account. There is no self-service signup;
// rows are created by the seed or by another operator.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
