package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment defines a booked visit between a patient and a doctor.
type Appointment struct {
	ID              string            `json:"id" gorm:"type:uuid;primaryKey"`
	PatientID       string            `json:"patient_id" gorm:"type:uuid;index"`
	DoctorID        string            `json:"doctor_id" gorm:"type:uuid;index"`
	AppointmentDate string            `json:"appointment_date" gorm:"index"`
	AppointmentTime string            `json:"appointment_time"`
	Symptoms        string            `json:"symptoms"`
	Status          AppointmentStatus `json:"status" gorm:"type:varchar(16);index"`
	Notes           *string           `json:"notes"`
	CreateTime      string            `json:"create_time"`
	UpdateTime      string            `json:"update_time"`

	Patient *Patient `json:"-" gorm:"foreignKey:PatientID"`
	Doctor  *Doctor  `json:"-" gorm:"foreignKey:DoctorID"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AppointmentView is an appointment with its patient and doctor summaries.
type AppointmentView struct {
	Appointment
	Patients *PatientSummary `json:"patients"`
	Doctors  *DoctorSummary  `json:"doctors"`
}

// View flattens the preloaded relations into their summaries.
func (a Appointment) View() AppointmentView {
	return AppointmentView{
		Appointment: a,
		Patients:    a.Patient.Summary(),
		Doctors:     a.Doctor.Summary(),
	}
}
