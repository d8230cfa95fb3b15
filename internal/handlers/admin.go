package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cleverheal-api/internal/export"
	"cleverheal-api/internal/services"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Email          string   `json:"email" binding:"required"`
	Password       string   `json:"password" binding:"required"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Phone          string   `json:"phone"`
	Birthdate      string   `json:"birthdate"`
	Gender         string   `json:"gender"`
	Roles          []string `json:"roles"`
	Specialization string   `json:"specialization"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err, "Database error fetching users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rec, err := h.Users.Create(c.Request.Context(), services.CreateUserInput(req))
	if err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rec, err := h.Users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.Stats.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching statistics")
		return
	}
	c.JSON(http.StatusOK, st)
}

func sendWorkbook(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, data)
}

func (h *Handler) ExportUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err, "Database error fetching users")
		return
	}
	data, err := export.Users(users)
	if err != nil {
		h.respondError(c, err, "Failed to generate workbook")
		return
	}
	sendWorkbook(c, "users", data)
}

func (h *Handler) ExportAppointments(c *gin.Context) {
	appts, err := h.Appointments.List(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err, "Database error fetching appointments")
		return
	}
	data, err := export.Appointments(appts)
	if err != nil {
		h.respondError(c, err, "Failed to generate workbook")
		return
	}
	sendWorkbook(c, "appointments", data)
}
