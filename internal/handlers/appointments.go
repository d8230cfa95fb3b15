package handlers

import (
	"net/http"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/services"

	"github.com/gin-gonic/gin"
)

type bookAppointmentRequest struct {
	DoctorID        string `json:"doctor_id" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	Symptoms        string `json:"symptoms" binding:"required"`
}

type updateStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.Appointments.Book(c.Request.Context(), currentSession(c), services.BookInput{
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Symptoms:        req.Symptoms,
	})
	if err != nil {
		h.respondError(c, err, "Failed to book appointment")
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appts, err := h.Appointments.List(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err, "Database error fetching appointments")
		return
	}
	c.JSON(http.StatusOK, appts)
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.Appointments.UpdateStatus(c.Request.Context(), currentSession(c), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err, "Failed to update appointment status")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	v, err := h.Appointments.Cancel(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to cancel appointment")
		return
	}
	c.JSON(http.StatusOK, v)
}
