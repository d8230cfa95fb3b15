package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthUser is a credential row owned by the local auth provider.
type AuthUser struct {
	ID             string `json:"id" gorm:"type:uuid;primaryKey"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string `json:"-" gorm:"not null"`
	EmailConfirmed bool   `json:"email_confirmed"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CreateTime     string `json:"create_time"`
	UpdateTime     string `json:"update_time"`
}

func (u *AuthUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// All returns every model managed by AutoMigrate.
func All() []any {
	return []any{
		&Profile{},
		&UserRole{},
		&Patient{},
		&Doctor{},
		&Appointment{},
		&AuthUser{},
	}
}
