package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteProvider is a client for a GoTrue-compatible hosted auth platform.
type RemoteProvider struct {
	http       *resty.Client
	serviceKey string
	logger     *zap.Logger
}

// NewRemoteProvider creates the platform client. anonKey is sent with every
// call; serviceKey is only used for admin user creation.
func NewRemoteProvider(baseURL, anonKey, serviceKey string, logger *zap.Logger) *RemoteProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", anonKey)

	return &RemoteProvider{http: client, serviceKey: serviceKey, logger: logger}
}

type platformUser struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	EmailConfirmedAt *string      `json:"email_confirmed_at"`
	UserMetadata     UserMetadata `json:"user_metadata"`
}

func (u *platformUser) toUser() *User {
	return &User{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil && *u.EmailConfirmedAt != "",
		Metadata:       u.UserMetadata,
	}
}

type platformSession struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"`
	RefreshToken string        `json:"refresh_token"`
	User         *platformUser `json:"user"`
}

// signUpResponse is either a bare user (confirmation pending) or a session
// wrapping the user (auto-confirmed projects).
type signUpResponse struct {
	platformUser
	AccessToken string        `json:"access_token"`
	User        *platformUser `json:"user"`
}

type platformError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Err              string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *platformError) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message, e.Err} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (p *RemoteProvider) SignUp(ctx context.Context, email, password string, meta UserMetadata) (*User, error) {
	var out signUpResponse
	var perr platformError
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"email": email, "password": password, "data": meta}).
		SetResult(&out).
		SetError(&perr).
		Post("/auth/v1/signup")
	if err := p.check("signup", resp, err, &perr); err != nil {
		return nil, err
	}
	if out.User != nil {
		return out.User.toUser(), nil
	}
	if out.ID == "" {
		return nil, &PlatformError{Status: resp.StatusCode(), Message: "no user data returned"}
	}
	return out.platformUser.toUser(), nil
}

func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out platformSession
	var perr platformError
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]any{"email": email, "password": password}).
		SetResult(&out).
		SetError(&perr).
		Post("/auth/v1/token")
	if err := p.check("signin", resp, err, &perr); err != nil {
		return nil, err
	}
	if out.User == nil || out.AccessToken == "" {
		return nil, &PlatformError{Status: resp.StatusCode(), Message: "no session returned"}
	}
	return &Session{
		AccessToken:  out.AccessToken,
		TokenType:    out.TokenType,
		ExpiresIn:    out.ExpiresIn,
		RefreshToken: out.RefreshToken,
		User:         *out.User.toUser(),
	}, nil
}

func (p *RemoteProvider) SignOut(ctx context.Context, accessToken string) error {
	var perr platformError
	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(&perr).
		Post("/auth/v1/logout")
	return p.check("signout", resp, err, &perr)
}

func (p *RemoteProvider) CreateUser(ctx context.Context, email, password string, meta UserMetadata) (*User, error) {
	if p.serviceKey == "" {
		return nil, fmt.Errorf("create user: %w", ErrNotConfigured)
	}
	var out platformUser
	var perr platformError
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("apikey", p.serviceKey).
		SetAuthToken(p.serviceKey).
		SetBody(map[string]any{
			"email":         email,
			"password":      password,
			"user_metadata": meta,
			"email_confirm": true,
		}).
		SetResult(&out).
		SetError(&perr).
		Post("/auth/v1/admin/users")
	if err := p.check("admin create user", resp, err, &perr); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &PlatformError{Status: resp.StatusCode(), Message: "no user data returned"}
	}
	return out.toUser(), nil
}

func (p *RemoteProvider) ResendConfirmation(ctx context.Context, email string) error {
	var perr platformError
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"type": "signup", "email": email}).
		SetError(&perr).
		Post("/auth/v1/resend")
	return p.check("resend", resp, err, &perr)
}

func (p *RemoteProvider) check(op string, resp *resty.Response, err error, perr *platformError) error {
	if err != nil {
		p.logger.Error("auth platform call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("auth platform %s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}
	p.logger.Warn("auth platform rejected call",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode()),
		zap.String("msg", perr.text()),
	)
	return mapPlatformError(resp.StatusCode(), perr)
}

func mapPlatformError(status int, perr *platformError) error {
	msg := perr.text()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "already been registered"),
		strings.Contains(lower, "already registered"),
		strings.Contains(lower, "already exists"):
		return ErrEmailExists
	case strings.Contains(lower, "email not confirmed"):
		return ErrEmailNotConfirmed
	case strings.Contains(lower, "invalid login credentials"):
		return ErrInvalidCredentials
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &PlatformError{Status: status, Code: perr.ErrorCode, Message: msg}
}
