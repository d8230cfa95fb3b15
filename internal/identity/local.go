package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleverheal-api/internal/database"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LocalProvider keeps credentials in the auth_users table and issues its own
// tokens. It stands in for the hosted platform in development and tests.
type LocalProvider struct {
	db                  *gorm.DB
	tokens              *Tokens
	requireConfirmation bool
	logger              *zap.Logger
}

func NewLocalProvider(db *gorm.DB, tokens *Tokens, requireConfirmation bool, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{db: db, tokens: tokens, requireConfirmation: requireConfirmation, logger: logger}
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, meta UserMetadata) (*User, error) {
	return p.create(ctx, email, password, meta, !p.requireConfirmation)
}

func (p *LocalProvider) CreateUser(ctx context.Context, email, password string, meta UserMetadata) (*User, error) {
	return p.create(ctx, email, password, meta, true)
}

func (p *LocalProvider) create(ctx context.Context, email, password string, meta UserMetadata, confirmed bool) (*User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := models.Timestamp(time.Now())
	row := models.AuthUser{
		Email:          utils.NormalizeEmail(email),
		PasswordHash:   hash,
		EmailConfirmed: confirmed,
		FirstName:      meta.FirstName,
		LastName:       meta.LastName,
		CreateTime:     now,
		UpdateTime:     now,
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create auth user: %w", err)
	}
	p.logger.Info("auth user created", zap.String("user_id", row.ID), zap.Bool("email_confirmed", confirmed))
	return &User{ID: row.ID, Email: row.Email, EmailConfirmed: confirmed, Metadata: meta}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var row models.AuthUser
	err := p.db.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(email)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find auth user: %w", err)
	}
	if !utils.CheckPassword(password, row.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !row.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	token, _, err := p.tokens.Issue(row.ID, row.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(p.tokens.TTL().Seconds()),
		User: User{
			ID:             row.ID,
			Email:          row.Email,
			EmailConfirmed: row.EmailConfirmed,
			Metadata:       UserMetadata{FirstName: row.FirstName, LastName: row.LastName},
		},
	}, nil
}

// SignOut is a no-op: local tokens are stateless and expire on their own.
func (p *LocalProvider) SignOut(context.Context, string) error { return nil }

// ResendConfirmation has no mailer to hand off to; it only records the request.
func (p *LocalProvider) ResendConfirmation(ctx context.Context, email string) error {
	var row models.AuthUser
	err := p.db.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(email)).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find auth user: %w", err)
	}
	p.logger.Info("confirmation resend requested",
		zap.Bool("known_account", err == nil),
		zap.Bool("already_confirmed", row.EmailConfirmed),
	)
	return nil
}

// ConfirmEmail marks an account confirmed.
func (p *LocalProvider) ConfirmEmail(ctx context.Context, email string) error {
	res := p.db.WithContext(ctx).Model(&models.AuthUser{}).
		Where("email = ?", utils.NormalizeEmail(email)).
		Updates(map[string]any{"email_confirmed": true, "update_time": models.Timestamp(time.Now())})
	if res.Error != nil {
		return fmt.Errorf("confirm email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
