package services

import (
	"context"
	"fmt"
	"strings"

	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/session"
	"cleverheal-api/internal/utils"

	"go.uber.org/zap"
)

// UserRecord is one row of the user management screen.
type UserRecord struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	FirstName   *string                `json:"first_name"`
	LastName    *string                `json:"last_name"`
	Phone       *string                `json:"phone"`
	CreateTime  string                 `json:"create_time"`
	Roles       []models.Role          `json:"roles"`
	Role        models.Role            `json:"role"`
	DisplayName string                 `json:"display_name"`
	Patient     *models.PatientSummary `json:"patient"`
	Doctor      *models.DoctorSummary  `json:"doctor"`
}

func newUserRecord(p models.Profile, roles []models.Role, patient *models.Patient, doctor *models.Doctor) UserRecord {
	if roles == nil {
		roles = []models.Role{}
	}
	r := UserRecord{
		ID:         p.ID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Phone:      p.Phone,
		CreateTime: p.CreateTime,
		Roles:      roles,
		Role:       models.EffectiveRole(roles),
		Patient:    patient.Summary(),
		Doctor:     doctor.Summary(),
	}
	switch {
	case patient != nil && patient.FullName != "":
		r.DisplayName = patient.FullName
	case doctor != nil && doctor.FullName != "":
		r.DisplayName = doctor.FullName
	case p.FullName() != "":
		r.DisplayName = p.FullName()
	default:
		r.DisplayName = p.Email
	}
	return r
}

func (r *UserRecord) matches(term string) bool {
	if term == "" {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(utils.Deref(r.FirstName) + " " + utils.Deref(r.LastName)))
	return strings.Contains(name, term) || strings.Contains(strings.ToLower(r.Email), term)
}

type CreateUserInput struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Phone          string   `json:"phone"`
	Birthdate      string   `json:"birthdate"`
	Gender         string   `json:"gender"`
	Roles          []string `json:"roles"`
	Specialization string   `json:"specialization"`
}

type UpdateUserInput struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Phone     *string  `json:"phone"`
	Roles     []string `json:"roles"`
}

// parseRoles validates role names, dropping duplicates. An empty list
// defaults to patient.
func parseRoles(names []string) ([]models.Role, error) {
	if len(names) == 0 {
		return []models.Role{models.RolePatient}, nil
	}
	seen := map[models.Role]bool{}
	out := make([]models.Role, 0, len(names))
	for _, n := range names {
		r, ok := models.ParseRole(n)
		if !ok {
			return nil, invalid("unknown role %q", n)
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out, nil
}

func hasRole(roles []models.Role, want models.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

type UserAdminService struct {
	provider identity.Provider
	store    *repository.Store
	resolver *session.Resolver
	stats    *StatsService
	logger   *zap.Logger
}

func NewUserAdminService(provider identity.Provider, store *repository.Store, resolver *session.Resolver, stats *StatsService, logger *zap.Logger) *UserAdminService {
	return &UserAdminService{provider: provider, store: store, resolver: resolver, stats: stats, logger: logger}
}

// List returns every profile, newest first, narrowed by search.
func (s *UserAdminService) List(ctx context.Context, search string) ([]UserRecord, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.store.RolesByUser(ctx)
	if err != nil {
		return nil, err
	}
	patients, err := s.store.PatientsByUserID(ctx)
	if err != nil {
		return nil, err
	}
	doctors, err := s.store.DoctorsByUserID(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]UserRecord, 0, len(profiles))
	for _, p := range profiles {
		var patient *models.Patient
		if v, ok := patients[p.ID]; ok {
			patient = &v
		}
		var doctor *models.Doctor
		if v, ok := doctors[p.ID]; ok {
			doctor = &v
		}
		rec := newUserRecord(p, roles[p.ID], patient, doctor)
		if rec.matches(term) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get returns a single user record.
func (s *UserAdminService) Get(ctx context.Context, userID string) (*UserRecord, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	roles, err := s.store.ListRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	patient, err := optional(s.store.PatientByUserID(ctx, userID))
	if err != nil {
		return nil, err
	}
	doctor, err := optional(s.store.DoctorByUserID(ctx, userID))
	if err != nil {
		return nil, err
	}
	rec := newUserRecord(*p, roles, patient, doctor)
	return &rec, nil
}

// Create registers a confirmed account and, in one transaction, its
// profile, roles and the patient or doctor records those roles need.
func (s *UserAdminService) Create(ctx context.Context, in CreateUserInput) (*UserRecord, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, invalid("email and password are required")
	}
	if !utils.ValidEmail(in.Email) {
		return nil, invalid("please enter a valid email address")
	}
	if len(in.Password) < utils.MinPasswordLength {
		return nil, invalid("password must be at least %d characters", utils.MinPasswordLength)
	}
	roles, err := parseRoles(in.Roles)
	if err != nil {
		return nil, err
	}
	spec := strings.ToLower(strings.TrimSpace(in.Specialization))
	if hasRole(roles, models.RoleDoctor) && !models.ValidSpecialization(spec) {
		return nil, invalid("doctors need one of the known specializations")
	}

	meta := identity.UserMetadata{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Birthdate: strings.TrimSpace(in.Birthdate),
		Gender:    strings.TrimSpace(in.Gender),
	}
	user, err := s.provider.CreateUser(ctx, in.Email, in.Password, meta)
	if err != nil {
		return nil, err
	}

	profile := profileFromMetadata(user.ID, user.Email, meta)
	fullName := profile.FullName()
	if fullName == "" {
		fullName = user.Email
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.CreateProfile(ctx, profile); err != nil {
			return err
		}
		if err := tx.ReplaceRoles(ctx, user.ID, roles); err != nil {
			return err
		}
		if hasRole(roles, models.RoleDoctor) {
			doc := &models.Doctor{
				UserID:         user.ID,
				FullName:       fullName,
				Email:          user.Email,
				Phone:          profile.Phone,
				Specialization: spec,
				IsActive:       true,
			}
			if err := tx.CreateDoctor(ctx, doc); err != nil {
				return err
			}
		}
		if hasRole(roles, models.RolePatient) {
			pat := &models.Patient{UserID: user.ID, FullName: fullName, Email: user.Email, Phone: profile.Phone}
			if err := tx.CreatePatient(ctx, pat); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("user records not created", zap.String("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("create user records: %w", err)
	}

	s.logger.Info("user created by admin", zap.String("user_id", user.ID), zap.Any("roles", roles))
	s.stats.Invalidate(ctx)
	return s.Get(ctx, user.ID)
}

// Update edits the profile and, when Roles is set, replaces the role set.
func (s *UserAdminService) Update(ctx context.Context, userID string, in UpdateUserInput) (*UserRecord, error) {
	if _, err := s.store.GetProfile(ctx, userID); err != nil {
		return nil, notFound(err, "user")
	}
	var roles []models.Role
	if in.Roles != nil {
		if len(in.Roles) == 0 {
			return nil, invalid("a user needs at least one role")
		}
		var err error
		if roles, err = parseRoles(in.Roles); err != nil {
			return nil, err
		}
	}
	fields := ProfileUpdate{FirstName: in.FirstName, LastName: in.LastName, Phone: in.Phone}.fields()

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.UpdateProfile(ctx, userID, fields); err != nil {
			return err
		}
		if roles != nil {
			return tx.ReplaceRoles(ctx, userID, roles)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user")
	}

	s.resolver.Invalidate(ctx, userID)
	s.stats.Invalidate(ctx)
	s.logger.Info("user updated by admin", zap.String("user_id", userID), zap.Bool("roles_replaced", roles != nil))
	return s.Get(ctx, userID)
}

// Delete removes the user's roles, patient and doctor records and profile
// in one transaction. Admins cannot delete themselves.
func (s *UserAdminService) Delete(ctx context.Context, actor *session.Session, userID string) error {
	if actor != nil && actor.UserID == userID {
		return forbidden("you cannot delete your own account")
	}
	if _, err := s.store.GetProfile(ctx, userID); err != nil {
		return notFound(err, "user")
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.DeleteRoles(ctx, userID); err != nil {
			return err
		}
		if err := tx.DeletePatientByUserID(ctx, userID); err != nil {
			return err
		}
		if err := tx.DeleteDoctorByUserID(ctx, userID); err != nil {
			return err
		}
		return tx.DeleteProfile(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, userID)
	s.stats.Invalidate(ctx)
	s.logger.Info("user deleted by admin", zap.String("user_id", userID))
	return nil
}
