package handlers

import (
	"errors"
	"net/http"

	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// statusFor maps service and identity errors to HTTP status codes.
func statusFor(err error) int {
	var perr *identity.PlatformError
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden), errors.Is(err, identity.ErrEmailNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict), errors.Is(err, identity.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &perr):
		if perr.Status >= 400 && perr.Status < 500 {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes {"message", "details"} with the mapped status.
func (h *Handler) respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"message": message, "details": err.Error()})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
