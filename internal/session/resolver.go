// Package session resolves the profile and effective role of an
// authenticated user.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleverheal-api/internal/cache"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/retry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session is the resolved view of the signed-in user.
type Session struct {
	UserID  string          `json:"user_id"`
	Email   string          `json:"email"`
	Profile *models.Profile `json:"profile"`
	Roles   []models.Role   `json:"roles"`
	Role    models.Role     `json:"role"`
}

// DisplayName is the profile's full name, falling back to "User".
func (s *Session) DisplayName() string {
	if name := s.Profile.FullName(); name != "" {
		return name
	}
	return "User"
}

// Store is the data the resolver reads.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListRoles(ctx context.Context, userID string) ([]models.Role, error)
}

type Resolver struct {
	store  Store
	kv     cache.KV
	ttl    time.Duration
	policy retry.Policy
	logger *zap.Logger
}

func NewResolver(store Store, kv cache.KV, ttl time.Duration, policy retry.Policy, logger *zap.Logger) *Resolver {
	if kv == nil {
		kv = cache.Nop{}
	}
	r := &Resolver{store: store, kv: kv, ttl: ttl, policy: policy, logger: logger}
	if r.policy.Notify == nil {
		r.policy.Notify = func(err error, wait time.Duration) {
			logger.Warn("session lookup failed, retrying", zap.Error(err), zap.Duration("wait", wait))
		}
	}
	return r
}

// Key is the cache key of a user's session.
func Key(userID string) string { return "session:" + userID }

// Resolve loads the profile and roles of userID and picks the effective
// role. A missing profile is not an error. email is used when the profile
// carries none.
func (r *Resolver) Resolve(ctx context.Context, userID, email string) (*Session, error) {
	var cached Session
	if err := cache.GetJSON(ctx, r.kv, Key(userID), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		r.logger.Warn("session cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	profile, err := retry.Do(ctx, r.policy, func(ctx context.Context) (*models.Profile, error) {
		p, err := r.store.GetProfile(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	roles, err := retry.Do(ctx, r.policy, func(ctx context.Context) ([]models.Role, error) {
		return r.store.ListRoles(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if roles == nil {
		roles = []models.Role{}
	}

	s := &Session{
		UserID:  userID,
		Email:   email,
		Profile: profile,
		Roles:   roles,
		Role:    models.EffectiveRole(roles),
	}
	if profile != nil && profile.Email != "" {
		s.Email = profile.Email
	}

	if err := cache.SetJSON(ctx, r.kv, Key(userID), s, r.ttl); err != nil {
		r.logger.Warn("session cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return s, nil
}

// Invalidate drops the cached session of each user.
func (r *Resolver) Invalidate(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, Key(id))
	}
	if err := r.kv.Delete(ctx, keys...); err != nil {
		r.logger.Warn("session cache invalidation failed", zap.Strings("user_ids", userIDs), zap.Error(err))
	}
}
