package repository

import (
	"context"
	"fmt"

	"cleverheal-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func errNotFound() error { return gorm.ErrRecordNotFound }

// ListRoles returns the role values granted to userID.
func (s *Store) ListRoles(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// RolesByUser returns the roles of every user that has at least one.
func (s *Store) RolesByUser(ctx context.Context) (map[string][]models.Role, error) {
	var rows []models.UserRole
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	out := make(map[string][]models.Role)
	for _, r := range rows {
		out[r.UserID] = append(out[r.UserID], r.Role)
	}
	return out, nil
}

// AddRole grants role to userID. Granting an existing role is a no-op.
func (s *Store) AddRole(ctx context.Context, userID string, role models.Role) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: userID, Role: role}).Error
	if err != nil {
		return fmt.Errorf("add role %s: %w", role, err)
	}
	return nil
}

// ReplaceRoles deletes every role of userID and grants roles instead.
func (s *Store) ReplaceRoles(ctx context.Context, userID string, roles []models.Role) error {
	if err := s.DeleteRoles(ctx, userID); err != nil {
		return err
	}
	for _, r := range roles {
		if err := s.AddRole(ctx, userID, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteRoles(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	return nil
}

// RoleCounts is the number of role rows per role plus their total.
type RoleCounts struct {
	Total    int64
	Patients int64
	Doctors  int64
	Admins   int64
}

func (s *Store) CountRoles(ctx context.Context) (RoleCounts, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.UserRole{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return RoleCounts{}, fmt.Errorf("count roles: %w", err)
	}
	var c RoleCounts
	for _, r := range rows {
		c.Total += r.Count
		switch r.Role {
		case models.RolePatient:
			c.Patients = r.Count
		case models.RoleDoctor:
			c.Doctors = r.Count
		case models.RoleAdmin:
			c.Admins = r.Count
		}
	}
	return c, nil
}
