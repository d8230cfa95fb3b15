// Package handlers exposes the services over HTTP with gin.
package handlers

import (
	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/services"
	"cleverheal-api/internal/session"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (*identity.Claims, error)
}

// Deps are the collaborators of Handler. Redis may be nil.
type Deps struct {
	Auth         *services.AuthService
	Profiles     *services.ProfileService
	Doctors      *services.DoctorService
	Appointments *services.AppointmentService
	Patients     *services.PatientService
	Users        *services.UserAdminService
	Stats        *services.StatsService
	Dashboard    *services.DashboardService
	Tokens       TokenVerifier
	Resolver     *session.Resolver
	DB           *gorm.DB
	Redis        *redis.Client
	ServiceKey   string
	Logger       *zap.Logger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Handler{Deps: d}
}
