package handlers

import (
	"context"
	"net/http"
	"time"

	"cleverheal-api/internal/database"

	"github.com/gin-gonic/gin"
)

// Health reports whether the database (and Redis, when configured) answer.
func (h *Handler) Health(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	sqlDB, err := h.DB.DB()
	if err == nil {
		err = database.Ping(c.Request.Context(), sqlDB)
	}
	if err != nil {
		healthy = false
		checks["database"] = err.Error()
	} else {
		checks["database"] = "ok"
	}

	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			healthy = false
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status, label := http.StatusOK, "ok"
	if !healthy {
		status, label = http.StatusServiceUnavailable, "unavailable"
	}
	c.JSON(status, gin.H{"status": label, "checks": checks})
}
