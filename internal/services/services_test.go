package services

import (
	"context"
	"testing"
	"time"

	"cleverheal-api/internal/database/dbtest"
	"cleverheal-api/internal/events"
	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/policy"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/retry"
	"cleverheal-api/internal/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedNow is a Tuesday morning.
var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

type recordingPublisher struct {
	events []events.AppointmentEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.AppointmentEvent) error {
	p.events = append(p.events, evt)
	return nil
}

type env struct {
	store     *repository.Store
	provider  *identity.LocalProvider
	resolver  *session.Resolver
	auth      *AuthService
	profiles  *ProfileService
	doctors   *DoctorService
	appts     *AppointmentService
	patients  *PatientService
	stats     *StatsService
	users     *UserAdminService
	dashboard *DashboardService
	published *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)
	log := zap.NewNop()
	store := repository.New(db)
	tokens := identity.NewTokens("secret", "authenticated", time.Hour)
	provider := identity.NewLocalProvider(db, tokens, false, log)
	resolver := session.NewResolver(store, nil, time.Minute, retry.Policy{Attempts: 3, Delay: time.Millisecond}, log)
	statusPolicy, err := policy.NewStatusPolicy("")
	require.NoError(t, err)
	pub := &recordingPublisher{}

	stats := NewStatsService(store, nil, time.Minute, log)
	stats.now = func() time.Time { return fixedNow }
	appts := NewAppointmentService(store, statusPolicy, pub, log)
	appts.now = func() time.Time { return fixedNow }
	dash := NewDashboardService(store, stats)
	dash.now = func() time.Time { return fixedNow }

	return &env{
		store:     store,
		provider:  provider,
		resolver:  resolver,
		auth:      NewAuthService(provider, store, resolver, log),
		profiles:  NewProfileService(store, resolver),
		doctors:   NewDoctorService(store),
		appts:     appts,
		patients:  NewPatientService(store),
		stats:     stats,
		users:     NewUserAdminService(provider, store, resolver, stats, log),
		dashboard: dash,
		published: pub,
	}
}

// signUp registers a patient through the auth service and returns their session.
func (e *env) signUp(t *testing.T, email, first, last string) *session.Session {
	t.Helper()
	res, err := e.auth.SignUp(context.Background(), SignUpInput{
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       first,
		LastName:        last,
		Phone:           "5551234567",
		Birthdate:       "1990-01-01",
		Gender:          "female",
	})
	require.NoError(t, err)
	return e.resolve(t, res.User.ID)
}

// createUser registers an account through user administration.
func (e *env) createUser(t *testing.T, email, first, last, spec string, roles ...string) *session.Session {
	t.Helper()
	rec, err := e.users.Create(context.Background(), CreateUserInput{
		Email:          email,
		Password:       "secret1",
		FirstName:      first,
		LastName:       last,
		Roles:          roles,
		Specialization: spec,
	})
	require.NoError(t, err)
	return e.resolve(t, rec.ID)
}

func (e *env) resolve(t *testing.T, userID string) *session.Session {
	t.Helper()
	s, err := e.resolver.Resolve(context.Background(), userID, "")
	require.NoError(t, err)
	return s
}

func (e *env) doctorRecord(t *testing.T, userID string) *models.Doctor {
	t.Helper()
	d, err := e.store.DoctorByUserID(context.Background(), userID)
	require.NoError(t, err)
	return d
}

func strPtr(s string) *string { return &s }

func identityMeta() identity.UserMetadata { return identity.UserMetadata{} }
