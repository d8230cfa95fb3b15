package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient defines the structure for patient records.
type Patient struct {
	ID         string  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string  `json:"user_id" gorm:"type:uuid;uniqueIndex"`
	FullName   string  `json:"full_name" gorm:"index"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	CreateTime string  `json:"create_time"`
	UpdateTime string  `json:"update_time"`
	IsDeleted  bool    `json:"is_deleted,omitempty" gorm:"default:false;index"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PatientSummary is the patient projection embedded in listings.
type PatientSummary struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email,omitempty"`
	Phone    *string `json:"phone"`
}

// Summary returns the embedded listing view of p.
func (p *Patient) Summary() *PatientSummary {
	if p == nil {
		return nil
	}
	return &PatientSummary{FullName: p.FullName, Email: p.Email, Phone: p.Phone}
}

func joinName(first, last *string) string {
	var parts []string
	if first != nil {
		parts = append(parts, *first)
	}
	if last != nil {
		parts = append(parts, *last)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
