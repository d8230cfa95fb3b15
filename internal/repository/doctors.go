package repository

import (
	"context"
	"fmt"

	"cleverheal-api/internal/models"
)

// ListActiveDoctors returns bookable doctors ordered by name.
func (s *Store) ListActiveDoctors(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Order("full_name").
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Store) DoctorByID(ctx context.Context, id string) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) DoctorByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.db.WithContext(ctx).Where("user_id = ? AND is_deleted = ?", userID, false).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	now := s.stamp()
	d.CreateTime, d.UpdateTime = now, now
	if d.AvailableHours == "" {
		d.AvailableHours = models.DefaultAvailableHours
	}
	if d.AvailableDays == nil {
		d.AvailableDays = models.StringList{}
	}
	if d.Symptoms == nil {
		d.Symptoms = models.StringList{}
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}

// DoctorsByUserID maps user ids to their live doctor records.
func (s *Store) DoctorsByUserID(ctx context.Context) (map[string]models.Doctor, error) {
	var rows []models.Doctor
	if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	out := make(map[string]models.Doctor, len(rows))
	for _, d := range rows {
		out[d.UserID] = d
	}
	return out, nil
}

// DeleteDoctorByUserID soft-deletes and deactivates the doctor record of userID.
func (s *Store) DeleteDoctorByUserID(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Model(&models.Doctor{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Updates(map[string]any{"is_deleted": true, "is_active": false, "update_time": s.stamp()}).Error
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}
