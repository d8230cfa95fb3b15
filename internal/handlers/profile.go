package handlers

import (
	"net/http"

	"cleverheal-api/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		h.respondError(c, err, "Profile not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Profiles.Update(c.Request.Context(), currentSession(c).UserID, req)
	if err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.Dashboard.Build(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}
