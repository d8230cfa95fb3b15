package handlers

import (
	"net/http"
	"strings"
	"time"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionKey     = "session"
	accessTokenKey = "access_token"
)

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if s, ok := c.Get(sessionKey); ok {
			fields = append(fields, zap.String("user_id", s.(*session.Session).UserID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Authenticate verifies the bearer token and resolves the caller's session.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}
		claims, err := h.Tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token", "details": err.Error()})
			return
		}
		sess, err := h.Resolver.Resolve(c.Request.Context(), claims.UserID, claims.Email)
		if err != nil {
			h.Logger.Error("session resolution failed", zap.String("user_id", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Failed to load session", "details": err.Error()})
			return
		}
		c.Set(sessionKey, sess)
		c.Set(accessTokenKey, raw)
		c.Next()
	}
}

// RequireRole rejects callers whose effective role is not one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		for _, r := range roles {
			if sess != nil && sess.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have permission to access this resource"})
	}
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
