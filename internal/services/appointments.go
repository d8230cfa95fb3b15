package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleverheal-api/internal/database"
	"cleverheal-api/internal/events"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/policy"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/session"
	"cleverheal-api/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BookInput struct {
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Symptoms        string `json:"symptoms"`
}

type AppointmentService struct {
	store     *repository.Store
	policy    *policy.StatusPolicy
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewAppointmentService(store *repository.Store, statusPolicy *policy.StatusPolicy, publisher events.Publisher, logger *zap.Logger) *AppointmentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &AppointmentService{store: store, policy: statusPolicy, publisher: publisher, logger: logger, now: time.Now}
}

func (s *AppointmentService) validate(in *BookInput) error {
	in.DoctorID = strings.TrimSpace(in.DoctorID)
	in.AppointmentDate = strings.TrimSpace(in.AppointmentDate)
	in.AppointmentTime = strings.TrimSpace(in.AppointmentTime)
	in.Symptoms = strings.TrimSpace(in.Symptoms)

	if in.DoctorID == "" || in.AppointmentDate == "" || in.AppointmentTime == "" || in.Symptoms == "" {
		return invalid("please fill in all fields")
	}
	day, err := time.Parse(models.DateLayout, in.AppointmentDate)
	if err != nil {
		return invalid("appointment_date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(models.ClockLayout, in.AppointmentTime); err != nil {
		return invalid("appointment_time must be HH:MM")
	}
	if day.Format(models.DateLayout) < s.now().Format(models.DateLayout) {
		return invalid("appointment date cannot be in the past")
	}
	return nil
}

// Book creates a scheduled appointment for the caller, creating their
// patient record on first use.
func (s *AppointmentService) Book(ctx context.Context, sess *session.Session, in BookInput) (*models.AppointmentView, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	doctor, err := s.store.DoctorByID(ctx, in.DoctorID)
	if err != nil {
		return nil, notFound(err, "doctor")
	}
	if !doctor.IsActive {
		return nil, invalid("doctor is not accepting appointments")
	}

	patient, err := s.patientFor(ctx, sess)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		Symptoms:        in.Symptoms,
		Status:          models.StatusScheduled,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}
	appt.Patient, appt.Doctor = patient, doctor

	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("patient_id", patient.ID),
		zap.String("doctor_id", doctor.ID),
	)
	s.publish(ctx, events.AppointmentEvent{
		Type:          events.AppointmentBooked,
		AppointmentID: appt.ID,
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		Status:        string(appt.Status),
		ActorID:       sess.UserID,
	})

	view := appt.View()
	return &view, nil
}

// patientFor returns the caller's patient record, creating it from the
// profile when missing.
func (s *AppointmentService) patientFor(ctx context.Context, sess *session.Session) (*models.Patient, error) {
	p, err := s.store.PatientByUserID(ctx, sess.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = &models.Patient{
		UserID:   sess.UserID,
		FullName: patientName(sess),
		Email:    sess.Email,
	}
	if sess.Profile != nil {
		p.Phone = sess.Profile.Phone
	}
	// Records soft-deleted by user administration are revived.
	if restored, err := s.store.RestorePatient(ctx, p); err == nil {
		s.logger.Info("patient record restored", zap.String("patient_id", restored.ID), zap.String("user_id", sess.UserID))
		return restored, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.store.CreatePatient(ctx, p); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, err
		}
		existing, ferr := s.store.PatientByUserID(ctx, sess.UserID)
		if ferr != nil {
			return nil, fmt.Errorf("%w: patient record for user %s: %v", ErrConflict, sess.UserID, err)
		}
		return existing, nil
	}
	s.logger.Info("patient record created", zap.String("patient_id", p.ID), zap.String("user_id", sess.UserID))
	return p, nil
}

func patientName(sess *session.Session) string {
	if name := sess.Profile.FullName(); name != "" {
		return name
	}
	if local := utils.EmailLocalPart(sess.Email); local != "" {
		return local
	}
	return "Patient"
}

// List returns the appointments visible to the caller: their own as a
// patient or doctor, every appointment for admins.
func (s *AppointmentService) List(ctx context.Context, sess *session.Session) ([]models.AppointmentView, error) {
	filter, ok, err := s.scope(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.AppointmentView{}, nil
	}
	appts, err := s.store.ListAppointments(ctx, filter)
	if err != nil {
		return nil, err
	}
	return views(appts), nil
}

// scope is the filter limiting sess to its own appointments. ok is false
// when the caller has no record and therefore no appointments.
func (s *AppointmentService) scope(ctx context.Context, sess *session.Session) (repository.AppointmentFilter, bool, error) {
	switch sess.Role {
	case models.RoleAdmin:
		return repository.AppointmentFilter{}, true, nil
	case models.RoleDoctor:
		d, err := s.store.DoctorByUserID(ctx, sess.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.AppointmentFilter{}, false, nil
		}
		if err != nil {
			return repository.AppointmentFilter{}, false, err
		}
		return repository.AppointmentFilter{DoctorID: d.ID}, true, nil
	default:
		p, err := s.store.PatientByUserID(ctx, sess.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.AppointmentFilter{}, false, nil
		}
		if err != nil {
			return repository.AppointmentFilter{}, false, err
		}
		return repository.AppointmentFilter{PatientID: p.ID}, true, nil
	}
}

// UpdateStatus moves an appointment to next if the status policy allows it.
func (s *AppointmentService) UpdateStatus(ctx context.Context, sess *session.Session, id string, next models.AppointmentStatus) (*models.AppointmentView, error) {
	if !next.Valid() {
		return nil, invalid("status must be one of scheduled, completed, cancelled, no_show")
	}
	appt, err := s.store.AppointmentByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "appointment")
	}

	allowed, err := s.policy.Allow(policy.StatusInput{
		Role:          sess.Role,
		Owner:         owns(sess, appt),
		CurrentStatus: appt.Status,
		NextStatus:    next,
	})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, forbidden("not allowed to change this appointment to %s", next)
	}

	previous := appt.Status
	if err := s.store.UpdateAppointmentStatus(ctx, id, next); err != nil {
		return nil, notFound(err, "appointment")
	}
	appt.Status = next

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.String("actor_id", sess.UserID),
	)
	s.publish(ctx, events.AppointmentEvent{
		Type:           events.AppointmentStatusChanged,
		AppointmentID:  appt.ID,
		PatientID:      appt.PatientID,
		DoctorID:       appt.DoctorID,
		Status:         string(next),
		PreviousStatus: string(previous),
		ActorID:        sess.UserID,
	})

	view := appt.View()
	return &view, nil
}

func (s *AppointmentService) Cancel(ctx context.Context, sess *session.Session, id string) (*models.AppointmentView, error) {
	return s.UpdateStatus(ctx, sess, id, models.StatusCancelled)
}

// owns reports whether the caller is the appointment's doctor (as a doctor)
// or its patient (as a patient).
func owns(sess *session.Session, a *models.Appointment) bool {
	switch sess.Role {
	case models.RoleDoctor:
		return a.Doctor != nil && a.Doctor.UserID == sess.UserID
	case models.RolePatient:
		return a.Patient != nil && a.Patient.UserID == sess.UserID
	}
	return false
}

func (s *AppointmentService) publish(ctx context.Context, evt events.AppointmentEvent) {
	evt.OccurredAt = s.now().UTC().Format(time.RFC3339)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("publish appointment event failed",
			zap.String("type", evt.Type),
			zap.String("appointment_id", evt.AppointmentID),
			zap.Error(err),
		)
	}
}

func views(appts []models.Appointment) []models.AppointmentView {
	out := make([]models.AppointmentView, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.View())
	}
	return out
}
