// Package identity talks to the authentication platform: account creation,
// password sign-in and access token verification.
package identity

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmailExists        = errors.New("a user with this email address already exists")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrTokenExpired       = errors.New("access token expired")
	ErrNotConfigured      = errors.New("auth platform operation not configured")
)

// UserMetadata is the profile data attached to an account at sign-up.
type UserMetadata struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// User is an account as reported by the platform.
type User struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	EmailConfirmed bool         `json:"email_confirmed"`
	Metadata       UserMetadata `json:"user_metadata"`
}

// Session is the result of a successful password sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// Provider is the authentication platform.
type Provider interface {
	SignUp(ctx context.Context, email, password string, meta UserMetadata) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	// CreateUser creates an account with the email already confirmed.
	CreateUser(ctx context.Context, email, password string, meta UserMetadata) (*User, error)
	ResendConfirmation(ctx context.Context, email string) error
}

// EmailConfirmer is implemented by providers whose confirmations are
// performed by this service rather than by a platform mail link.
type EmailConfirmer interface {
	ConfirmEmail(ctx context.Context, email string) error
}

// PlatformError is a platform failure that maps to no sentinel.
type PlatformError struct {
	Status  int
	Code    string
	Message string
}

func (e *PlatformError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth platform %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth platform %d: %s", e.Status, e.Message)
}
