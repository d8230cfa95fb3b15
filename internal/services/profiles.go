package services

import (
	"context"
	"strings"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/session"
)

// ProfileUpdate carries the editable profile fields. Nil fields are left as
// they are; empty strings clear the column.
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

func (u ProfileUpdate) fields() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v == nil {
			return
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			out[col] = trimmed
		} else {
			out[col] = nil
		}
	}
	set("first_name", u.FirstName)
	set("last_name", u.LastName)
	set("phone", u.Phone)
	set("avatar_url", u.AvatarURL)
	return out
}

type ProfileService struct {
	store    *repository.Store
	resolver *session.Resolver
}

func NewProfileService(store *repository.Store, resolver *session.Resolver) *ProfileService {
	return &ProfileService{store: store, resolver: resolver}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, u ProfileUpdate) (*models.Profile, error) {
	if u.Phone != nil {
		if phone := strings.TrimSpace(*u.Phone); phone != "" && len(phone) < MinPhoneLength {
			return nil, invalid("please enter a valid phone number")
		}
	}
	if err := s.store.UpdateProfile(ctx, userID, u.fields()); err != nil {
		return nil, notFound(err, "profile")
	}
	s.resolver.Invalidate(ctx, userID)
	return s.Get(ctx, userID)
}
