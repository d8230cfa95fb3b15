package session

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"cleverheal-api/internal/cache"
	"cleverheal-api/internal/database/dbtest"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/retry"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fastRetry = retry.Policy{Attempts: 3, Delay: time.Millisecond}

func strPtr(s string) *string { return &s }

func TestResolve_PicksHighestRole(t *testing.T) {
	store := repository.New(dbtest.New(t))
	ctx := context.Background()
	require.NoError(t, store.CreateProfile(ctx, &models.Profile{ID: "u1", Email: "doc@example.com", FirstName: strPtr("Gregory"), LastName: strPtr("House")}))
	require.NoError(t, store.AddRole(ctx, "u1", models.RolePatient))
	require.NoError(t, store.AddRole(ctx, "u1", models.RoleDoctor))

	r := NewResolver(store, nil, time.Minute, fastRetry, zap.NewNop())
	s, err := r.Resolve(ctx, "u1", "token@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, s.Role)
	assert.Equal(t, "doc@example.com", s.Email)
	assert.Equal(t, "Gregory House", s.DisplayName())
	assert.ElementsMatch(t, []models.Role{models.RolePatient, models.RoleDoctor}, s.Roles)
}

func TestResolve_NoProfileNoRoles(t *testing.T) {
	store := repository.New(dbtest.New(t))
	r := NewResolver(store, nil, time.Minute, fastRetry, zap.NewNop())

	s, err := r.Resolve(context.Background(), "ghost", "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, s.Profile)
	assert.Equal(t, models.RolePatient, s.Role)
	assert.Equal(t, "ghost@example.com", s.Email)
	assert.Equal(t, "User", s.DisplayName())
	assert.NotNil(t, s.Roles)
}

type flakyStore struct {
	profileFails int
	roleErr      error
	calls        int
}

func (f *flakyStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	f.calls++
	if f.calls <= f.profileFails {
		return nil, driver.ErrBadConn
	}
	return &models.Profile{ID: userID, Email: "p@example.com"}, nil
}

func (f *flakyStore) ListRoles(ctx context.Context, userID string) ([]models.Role, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	return []models.Role{models.RoleAdmin}, nil
}

func TestResolve_RetriesTransientFailures(t *testing.T) {
	store := &flakyStore{profileFails: 2}
	r := NewResolver(store, nil, time.Minute, fastRetry, zap.NewNop())

	s, err := r.Resolve(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
	assert.Equal(t, models.RoleAdmin, s.Role)
}

func TestResolve_GivesUpAfterThreeAttempts(t *testing.T) {
	store := &flakyStore{profileFails: 5}
	r := NewResolver(store, nil, time.Minute, fastRetry, zap.NewNop())

	_, err := r.Resolve(context.Background(), "u1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 3, store.calls)
}

func TestResolve_DoesNotRetryQueryErrors(t *testing.T) {
	boom := errors.New("no such table: user_roles")
	store := &flakyStore{roleErr: boom}
	r := NewResolver(store, nil, time.Minute, fastRetry, zap.NewNop())

	_, err := r.Resolve(context.Background(), "u1", "")
	assert.ErrorIs(t, err, boom)
}

func TestResolve_CachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := cache.NewRedisKV(cache.NewRedisClient(mr.Addr(), "", 0))
	store := &flakyStore{}
	r := NewResolver(store, kv, time.Minute, fastRetry, zap.NewNop())
	ctx := context.Background()

	_, err := r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.True(t, mr.Exists(Key("u1")))
	assert.Equal(t, time.Minute, mr.TTL(Key("u1")))

	r.Invalidate(ctx, "u1")
	assert.False(t, mr.Exists(Key("u1")))
	_, err = r.Resolve(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}
