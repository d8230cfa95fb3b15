package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAvailableHours is assigned to doctors created without a schedule.
const DefaultAvailableHours = "09:00-17:00"

// Specializations lists the values accepted for Doctor.Specialization.
var Specializations = []string{
	"cardiology",
	"dermatology",
	"orthopedics",
	"pediatrics",
	"psychiatry",
	"gynecology",
	"neurology",
	"oncology",
	"ophthalmology",
}

// ValidSpecialization reports whether s is one of Specializations.
func ValidSpecialization(s string) bool {
	for _, v := range Specializations {
		if v == s {
			return true
		}
	}
	return false
}

// Doctor defines the structure for doctor records.
type Doctor struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          string     `json:"user_id" gorm:"type:uuid;uniqueIndex"`
	FullName        string     `json:"full_name" gorm:"index"`
	Email           string     `json:"email"`
	Phone           *string    `json:"phone"`
	Specialization  string     `json:"specialization" gorm:"index"`
	Qualifications  string     `json:"qualifications"`
	ExperienceYears int        `json:"experience_years"`
	ConsultationFee float64    `json:"consultation_fee"`
	AvailableDays   StringList `json:"available_days"`
	AvailableHours  string     `json:"available_hours"`
	Symptoms        StringList `json:"symptoms"`
	IsActive        bool       `json:"is_active" gorm:"index"`
	CreateTime      string     `json:"create_time"`
	UpdateTime      string     `json:"update_time"`
	IsDeleted       bool       `json:"is_deleted" gorm:"default:false;index"`
}

func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Matches reports whether term appears, case-insensitively, in the doctor's
// name, specialization, qualifications or any listed symptom.
func (d *Doctor) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.FullName), term) ||
		strings.Contains(strings.ToLower(d.Specialization), term) ||
		strings.Contains(strings.ToLower(d.Qualifications), term) {
		return true
	}
	for _, s := range d.Symptoms {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// DoctorSummary is the doctor projection embedded in listings.
type DoctorSummary struct {
	FullName       string  `json:"full_name"`
	Specialization string  `json:"specialization"`
	Email          string  `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
}

// Summary returns the embedded listing view of d.
func (d *Doctor) Summary() *DoctorSummary {
	if d == nil {
		return nil
	}
	return &DoctorSummary{FullName: d.FullName, Specialization: d.Specialization, Email: d.Email, Phone: d.Phone}
}
