package services

import (
	"context"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
)

type DoctorService struct {
	store *repository.Store
}

func NewDoctorService(store *repository.Store) *DoctorService {
	return &DoctorService{store: store}
}

// List returns active doctors ordered by name, narrowed by a free-text term
// matched against name, specialization, qualifications and symptoms.
func (s *DoctorService) List(ctx context.Context, term string) ([]models.Doctor, error) {
	all, err := s.store.ListActiveDoctors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Doctor, 0, len(all))
	for i := range all {
		if all[i].Matches(term) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *DoctorService) Get(ctx context.Context, id string) (*models.Doctor, error) {
	d, err := s.store.DoctorByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "doctor")
	}
	return d, nil
}
