package repository

import (
	"context"
	"fmt"

	"cleverheal-api/internal/models"

	"gorm.io/gorm"
)

func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	now := s.stamp()
	a.CreateTime, a.UpdateTime = now, now
	if err := s.db.WithContext(ctx).Omit("Patient", "Doctor").Create(a).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// AppointmentByID loads an appointment with its patient and doctor.
func (s *Store) AppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.WithContext(ctx).Preload("Patient").Preload("Doctor").Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AppointmentFilter narrows appointment queries. Zero fields match everything.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Date      string
	Status    models.AppointmentStatus
	// From keeps appointments on or after this YYYY-MM-DD date.
	From string
	// FromTime additionally drops appointments on the From date that start
	// before this HH:MM.
	FromTime string
}

func (s *Store) appointmentQuery(ctx context.Context, f AppointmentFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Appointment{})
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.Date != "" {
		q = q.Where("appointment_date = ?", f.Date)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	switch {
	case f.From != "" && f.FromTime != "":
		q = q.Where("appointment_date > ? OR (appointment_date = ? AND appointment_time >= ?)", f.From, f.From, f.FromTime)
	case f.From != "":
		q = q.Where("appointment_date >= ?", f.From)
	}
	return q
}

// ListAppointments returns matching appointments with their patient and
// doctor, ordered by date then time.
func (s *Store) ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	appts := []models.Appointment{}
	err := s.appointmentQuery(ctx, f).
		Preload("Patient").Preload("Doctor").
		Order("appointment_date asc").Order("appointment_time asc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// NextAppointment returns the earliest matching appointment, or
// gorm.ErrRecordNotFound.
func (s *Store) NextAppointment(ctx context.Context, f AppointmentFilter) (*models.Appointment, error) {
	var a models.Appointment
	err := s.appointmentQuery(ctx, f).
		Preload("Patient").Preload("Doctor").
		Order("appointment_date asc").Order("appointment_time asc").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CountAppointments(ctx context.Context, f AppointmentFilter) (int64, error) {
	var n int64
	if err := s.appointmentQuery(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// UpdateAppointmentStatus sets the status of appointment id. Returns
// gorm.ErrRecordNotFound when no row matched.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "update_time": s.stamp()})
	if res.Error != nil {
		return fmt.Errorf("update appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errNotFound()
	}
	return nil
}
