package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.Doctors.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err, "Database error fetching doctors")
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	d, err := h.Doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Doctor not found")
		return
	}
	c.JSON(http.StatusOK, d)
}
