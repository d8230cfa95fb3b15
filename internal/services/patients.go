package services

import (
	"context"
	"errors"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/session"

	"gorm.io/gorm"
)

type PatientService struct {
	store *repository.Store
}

func NewPatientService(store *repository.Store) *PatientService {
	return &PatientService{store: store}
}

// List pages through patient records. Admins see every patient; doctors see
// the patients who booked with them.
func (s *PatientService) List(ctx context.Context, sess *session.Session, q repository.PatientQuery) (*repository.PatientPage, error) {
	q.DoctorID = ""
	switch sess.Role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		d, err := s.store.DoctorByUserID(ctx, sess.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			q.Normalize()
			return &repository.PatientPage{Page: q.Page, PageSize: q.PageSize, Patients: []models.Patient{}}, nil
		}
		if err != nil {
			return nil, err
		}
		q.DoctorID = d.ID
	default:
		return nil, forbidden("patient records are only available to doctors and admins")
	}
	return s.store.ListPatients(ctx, q)
}
