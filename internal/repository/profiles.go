package repository

import (
	"context"
	"fmt"

	"cleverheal-api/internal/models"

	"gorm.io/gorm/clause"
)

// GetProfile returns gorm.ErrRecordNotFound when the user has no profile row.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts p, leaving an existing row for the same user untouched.
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	now := s.stamp()
	if p.CreateTime == "" {
		p.CreateTime = now
	}
	p.UpdateTime = now
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p).Error
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// UpdateProfile applies the given column values. Returns
// gorm.ErrRecordNotFound when no row matched.
func (s *Store) UpdateProfile(ctx context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["update_time"] = s.stamp()
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errNotFound()
	}
	return nil
}

// ListProfiles returns every profile, newest first.
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Order("create_time desc").Order("id").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
