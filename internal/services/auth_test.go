package services

import (
	"context"
	"testing"
	"time"

	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validSignUp() SignUpInput {
	return SignUpInput{
		Email:           "jane@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "Jane",
		LastName:        "Doe",
		Phone:           "5551234567",
		Birthdate:       "1990-01-01",
		Gender:          "female",
	}
}

func TestSignUpInputValidate(t *testing.T) {
	cases := map[string]func(*SignUpInput){
		"bad email":         func(in *SignUpInput) { in.Email = "jane" },
		"short password":    func(in *SignUpInput) { in.Password, in.ConfirmPassword = "12345", "12345" },
		"mismatch":          func(in *SignUpInput) { in.ConfirmPassword = "secret2" },
		"no first name":     func(in *SignUpInput) { in.FirstName = "  " },
		"no last name":      func(in *SignUpInput) { in.LastName = "" },
		"short phone":       func(in *SignUpInput) { in.Phone = "555-1234" },
		"missing birthdate": func(in *SignUpInput) { in.Birthdate = "" },
		"missing gender":    func(in *SignUpInput) { in.Gender = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validSignUp()
			mutate(&in)
			assert.ErrorIs(t, in.Validate(), ErrValidation)
		})
	}
	in := validSignUp()
	assert.NoError(t, in.Validate())
}

func TestSignUpCreatesProfileAndPatientRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	assert.False(t, res.ConfirmationPending)

	p, err := e.store.GetProfile(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.FullName())
	assert.Equal(t, "5551234567", *p.Phone)

	roles, err := e.store.ListRoles(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RolePatient}, roles)

	_, err = e.auth.SignUp(ctx, validSignUp())
	assert.ErrorIs(t, err, identity.ErrEmailExists)
}

func TestSignIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	_, err = e.auth.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.auth.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	res, err := e.auth.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RolePatient, res.Session.Role)
	assert.Equal(t, "jane@example.com", res.Session.Email)

	assert.NoError(t, e.auth.SignOut(ctx, res.Session.UserID, res.AccessToken))
	assert.ErrorIs(t, e.auth.ResendConfirmation(ctx, "nope"), ErrValidation)
	assert.NoError(t, e.auth.ResendConfirmation(ctx, "jane@example.com"))
}

func TestBootstrapAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.BootstrapAdmin(ctx, AdminInput{Email: "admin@cleverheal.com", Password: "pw123456"})
	assert.ErrorIs(t, err, ErrValidation)

	in := AdminInput{Email: "admin@cleverheal.com", Password: "pw123456", FirstName: "CleverHeal", LastName: "Admin"}
	user, err := e.auth.BootstrapAdmin(ctx, in)
	require.NoError(t, err)
	assert.True(t, user.EmailConfirmed)

	s := e.resolve(t, user.ID)
	assert.Equal(t, models.RoleAdmin, s.Role)
	assert.Equal(t, "CleverHeal Admin", s.DisplayName())

	_, err = e.auth.BootstrapAdmin(ctx, in)
	assert.ErrorIs(t, err, identity.ErrEmailExists)
	assert.NoError(t, e.auth.EnsureAdmin(ctx, in))
}

func TestConfirmEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tokens := identity.NewTokens("secret", "authenticated", time.Hour)
	provider := identity.NewLocalProvider(e.store.DB(), tokens, true, zap.NewNop())
	auth := NewAuthService(provider, e.store, e.resolver, zap.NewNop())

	res, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	assert.True(t, res.ConfirmationPending)

	_, err = auth.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, identity.ErrEmailNotConfirmed)

	assert.ErrorIs(t, auth.ConfirmEmail(ctx, "jane"), ErrValidation)
	assert.ErrorIs(t, auth.ConfirmEmail(ctx, "ghost@example.com"), ErrNotFound)
	require.NoError(t, auth.ConfirmEmail(ctx, "jane@example.com"))

	signedIn, err := auth.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, signedIn.Session.UserID)
}

// linkConfirmedProvider stands in for a platform that confirms through
// its own mail links.
type linkConfirmedProvider struct {
	identity.Provider
}

func TestConfirmEmailUnsupported(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(linkConfirmedProvider{}, e.store, e.resolver, zap.NewNop())
	assert.ErrorIs(t, auth.ConfirmEmail(context.Background(), "jane@example.com"), identity.ErrNotConfigured)
}
