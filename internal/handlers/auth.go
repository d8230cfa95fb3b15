package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) SignUp(c *gin.Context) {
	var req services.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Auth.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Sign up failed")
		return
	}
	message := "Account created successfully"
	if res.ConfirmationPending {
		message = "Please check your email to confirm your account"
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "user": res.User, "confirmation_pending": res.ConfirmationPending})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req services.SignInInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.Auth.SignIn(c.Request.Context(), req)
	if err != nil {
		message := "Sign in failed"
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			message = "Invalid email or password"
		case errors.Is(err, identity.ErrEmailNotConfirmed):
			message = "Please check your email and click the confirmation link"
		}
		h.respondError(c, err, message)
		return
	}
	c.JSON(http.StatusOK, res)
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) ResendConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Auth.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err, "Failed to resend confirmation email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation email sent"})
}

// ConfirmEmail confirms an account on behalf of an operator holding the
// service key.
func (h *Handler) ConfirmEmail(c *gin.Context) {
	if !h.authorizedService(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid service key"})
		return
	}
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Auth.ConfirmEmail(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err, "Failed to confirm email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

func (h *Handler) SignOut(c *gin.Context) {
	sess := currentSession(c)
	if err := h.Auth.SignOut(c.Request.Context(), sess.UserID, c.GetString(accessTokenKey)); err != nil {
		h.respondError(c, err, "Sign out failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c))
}

func bootstrapError(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// authorizedService reports whether the request carries the service key as a
// bearer token or apikey header.
func (h *Handler) authorizedService(c *gin.Context) bool {
	if h.ServiceKey == "" {
		return false
	}
	for _, presented := range []string{bearerToken(c), c.GetHeader("apikey")} {
		if presented != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(h.ServiceKey)) == 1 {
			return true
		}
	}
	return false
}

// BootstrapAdmin creates an administrator account. It is guarded by the
// service key and answers with {"error", "code"} bodies.
func (h *Handler) BootstrapAdmin(c *gin.Context) {
	if !h.authorizedService(c) {
		bootstrapError(c, http.StatusUnauthorized, "Missing or invalid service key", "unauthorized")
		return
	}
	var req services.AdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bootstrapError(c, http.StatusBadRequest, "Invalid request format", "invalid_json")
		return
	}

	user, err := h.Auth.BootstrapAdmin(c.Request.Context(), req)
	var perr *identity.PlatformError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Admin user created successfully", "user": user})
	case errors.Is(err, services.ErrValidation):
		bootstrapError(c, http.StatusBadRequest, "Missing required fields: email, password, firstName, lastName", "missing_required_fields")
	case errors.Is(err, identity.ErrEmailExists):
		bootstrapError(c, http.StatusConflict, identity.ErrEmailExists.Error(), "email_exists")
	case errors.Is(err, services.ErrRoleAssignment):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "User created but failed to set admin role",
			"code":  "role_assignment_failed",
			"user":  user,
		})
	case errors.As(err, &perr):
		code := perr.Code
		if code == "" {
			code = "unknown_error"
		}
		bootstrapError(c, http.StatusBadRequest, perr.Message, code)
	default:
		h.Logger.Error("admin bootstrap failed", zap.Error(err))
		bootstrapError(c, http.StatusInternalServerError, err.Error(), "internal_error")
	}
}
