package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/session"
	"cleverheal-api/internal/utils"

	"go.uber.org/zap"
)

// MinPhoneLength is the shortest phone number accepted at sign-up.
const MinPhoneLength = 10

type SignUpInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Birthdate       string `json:"birthdate"`
	Gender          string `json:"gender"`
}

// Validate applies the sign-up form rules, reporting the first failure.
func (in *SignUpInput) Validate() error {
	switch {
	case !utils.ValidEmail(in.Email):
		return invalid("please enter a valid email address")
	case len(in.Password) < utils.MinPasswordLength:
		return invalid("password must be at least %d characters", utils.MinPasswordLength)
	case in.Password != in.ConfirmPassword:
		return invalid("passwords don't match")
	case strings.TrimSpace(in.FirstName) == "":
		return invalid("first name is required")
	case strings.TrimSpace(in.LastName) == "":
		return invalid("last name is required")
	case len(strings.TrimSpace(in.Phone)) < MinPhoneLength:
		return invalid("please enter a valid phone number")
	case strings.TrimSpace(in.Birthdate) == "":
		return invalid("please select your birthdate")
	case strings.TrimSpace(in.Gender) == "":
		return invalid("please select your gender")
	}
	return nil
}

type SignUpResult struct {
	User                *identity.User `json:"user"`
	ConfirmationPending bool           `json:"confirmation_pending"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *SignInInput) Validate() error {
	if !utils.ValidEmail(in.Email) {
		return invalid("please enter a valid email address")
	}
	if len(in.Password) < utils.MinPasswordLength {
		return invalid("password must be at least %d characters", utils.MinPasswordLength)
	}
	return nil
}

type SignInResult struct {
	AccessToken  string           `json:"access_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	Session      *session.Session `json:"session"`
}

// AdminInput is the payload of the admin bootstrap operation.
type AdminInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Birthdate string `json:"birthdate"`
	Gender    string `json:"gender"`
}

type AuthService struct {
	provider identity.Provider
	store    *repository.Store
	resolver *session.Resolver
	logger   *zap.Logger
}

func NewAuthService(provider identity.Provider, store *repository.Store, resolver *session.Resolver, logger *zap.Logger) *AuthService {
	return &AuthService{provider: provider, store: store, resolver: resolver, logger: logger}
}

// SignUp registers an account and gives it a profile and the patient role.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	meta := identity.UserMetadata{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Birthdate: strings.TrimSpace(in.Birthdate),
		Gender:    strings.TrimSpace(in.Gender),
	}
	user, err := s.provider.SignUp(ctx, strings.TrimSpace(in.Email), in.Password, meta)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.CreateProfile(ctx, profileFromMetadata(user.ID, user.Email, meta)); err != nil {
			return err
		}
		return tx.AddRole(ctx, user.ID, models.RolePatient)
	})
	if err != nil {
		return nil, fmt.Errorf("create profile for new user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.Bool("email_confirmed", user.EmailConfirmed))
	return &SignUpResult{User: user, ConfirmationPending: !user.EmailConfirmed}, nil
}

// SignIn checks credentials and resolves the session of the signed-in user.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.provider.SignIn(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolver.Resolve(ctx, sess.User.ID, sess.User.Email)
	if err != nil {
		return nil, err
	}
	return &SignInResult{
		AccessToken:  sess.AccessToken,
		TokenType:    sess.TokenType,
		ExpiresIn:    sess.ExpiresIn,
		RefreshToken: sess.RefreshToken,
		Session:      resolved,
	}, nil
}

func (s *AuthService) SignOut(ctx context.Context, userID, accessToken string) error {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, userID)
	return nil
}

func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	if !utils.ValidEmail(email) {
		return invalid("please enter a valid email address")
	}
	return s.provider.ResendConfirmation(ctx, strings.TrimSpace(email))
}

// ConfirmEmail marks the account for email confirmed. It returns
// identity.ErrNotConfigured when the provider confirms through its own links.
func (s *AuthService) ConfirmEmail(ctx context.Context, email string) error {
	if !utils.ValidEmail(email) {
		return invalid("please enter a valid email address")
	}
	confirmer, ok := s.provider.(identity.EmailConfirmer)
	if !ok {
		return identity.ErrNotConfigured
	}
	if err := confirmer.ConfirmEmail(ctx, strings.TrimSpace(email)); err != nil {
		return notFound(err, "account")
	}
	s.logger.Info("email confirmed", zap.String("email", strings.TrimSpace(email)))
	return nil
}

// BootstrapAdmin creates a confirmed account with a profile and the admin
// role. An existing address yields identity.ErrEmailExists; a failure after
// the account exists yields ErrRoleAssignment together with the account.
func (s *AuthService) BootstrapAdmin(ctx context.Context, in AdminInput) (*identity.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, invalid("missing required fields")
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

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.CreateProfile(ctx, profileFromMetadata(user.ID, user.Email, meta)); err != nil {
			return err
		}
		return tx.AddRole(ctx, user.ID, models.RoleAdmin)
	})
	if err != nil {
		s.logger.Error("admin role assignment failed", zap.String("user_id", user.ID), zap.Error(err))
		return user, fmt.Errorf("%w: %v", ErrRoleAssignment, err)
	}
	s.resolver.Invalidate(ctx, user.ID)
	s.logger.Info("admin user created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// EnsureAdmin runs BootstrapAdmin and treats an existing account as success.
func (s *AuthService) EnsureAdmin(ctx context.Context, in AdminInput) error {
	_, err := s.BootstrapAdmin(ctx, in)
	if errors.Is(err, identity.ErrEmailExists) {
		s.logger.Info("bootstrap admin already exists", zap.String("email", in.Email))
		return nil
	}
	return err
}

func profileFromMetadata(userID, email string, meta identity.UserMetadata) *models.Profile {
	return &models.Profile{
		ID:        userID,
		Email:     email,
		FirstName: utils.NilIfEmpty(meta.FirstName),
		LastName:  utils.NilIfEmpty(meta.LastName),
		Phone:     utils.NilIfEmpty(meta.Phone),
		Birthdate: utils.NilIfEmpty(meta.Birthdate),
		Gender:    utils.NilIfEmpty(meta.Gender),
	}
}
