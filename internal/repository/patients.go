package repository

import (
	"context"
	"fmt"
	"strings"

	"cleverheal-api/internal/models"
)

// PatientByUserID returns gorm.ErrRecordNotFound when the user has no
// patient record.
func (s *Store) PatientByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	var p models.Patient
	err := s.db.WithContext(ctx).Where("user_id = ? AND is_deleted = ?", userID, false).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePatient(ctx context.Context, p *models.Patient) error {
	now := s.stamp()
	p.CreateTime, p.UpdateTime = now, now
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

// RestorePatient revives the soft-deleted patient record of p.UserID with the
// details in p. It returns gorm.ErrRecordNotFound when there is none.
func (s *Store) RestorePatient(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	res := s.db.WithContext(ctx).Model(&models.Patient{}).
		Where("user_id = ? AND is_deleted = ?", p.UserID, true).
		Updates(map[string]any{
			"is_deleted":  false,
			"full_name":   p.FullName,
			"email":       p.Email,
			"phone":       p.Phone,
			"update_time": s.stamp(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("restore patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errNotFound()
	}
	return s.PatientByUserID(ctx, p.UserID)
}

// PatientsByUserID maps user ids to their live patient records.
func (s *Store) PatientsByUserID(ctx context.Context) (map[string]models.Patient, error) {
	var rows []models.Patient
	if err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	out := make(map[string]models.Patient, len(rows))
	for _, p := range rows {
		out[p.UserID] = p
	}
	return out, nil
}

// DeletePatientByUserID soft-deletes the patient record of userID, if any.
func (s *Store) DeletePatientByUserID(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Model(&models.Patient{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Updates(map[string]any{"is_deleted": true, "update_time": s.stamp()}).Error
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// PatientQuery selects a page of patient records.
type PatientQuery struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Search    string
	// DoctorID restricts the result to patients with at least one
	// appointment with that doctor.
	DoctorID string
}

// PatientPage is one page of patient records.
type PatientPage struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Patients []models.Patient `json:"patients"`
}

var patientSortFields = map[string]string{
	"id":          "id",
	"full_name":   "full_name",
	"fullname":    "full_name",
	"email":       "email",
	"create_time": "create_time",
	"createtime":  "create_time",
	"update_time": "update_time",
	"updatetime":  "update_time",
}

// Normalize fills defaults and clamps out-of-range values.
func (q *PatientQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	if _, ok := patientSortFields[strings.ToLower(q.SortBy)]; !ok {
		q.SortBy = "id"
	}
	q.SortOrder = strings.ToLower(q.SortOrder)
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		q.SortOrder = "asc"
	}
}

func (s *Store) ListPatients(ctx context.Context, q PatientQuery) (*PatientPage, error) {
	q.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Patient{}).Where("is_deleted = ?", false)
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if q.DoctorID != "" {
		sub := s.db.Model(&models.Appointment{}).Select("patient_id").Where("doctor_id = ?", q.DoctorID)
		query = query.Where("id IN (?)", sub)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}

	order := patientSortFields[strings.ToLower(q.SortBy)] + " " + q.SortOrder
	patients := []models.Patient{}
	err := query.Order(order).Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return &PatientPage{Total: total, Page: q.Page, PageSize: q.PageSize, Patients: patients}, nil
}
