// Package router assembles the gin engine.
package router

import (
	"time"

	"cleverheal-api/internal/handlers"
	"cleverheal-api/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New returns the engine with every route registered.
func New(h *handlers.Handler, allowOrigins []string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(logger))
	r.Use(cors.New(corsConfig(allowOrigins)))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/resend", h.ResendConfirmation)
		authGroup.POST("/confirm", h.ConfirmEmail)
		authGroup.POST("/signout", h.Authenticate(), h.SignOut)

		api.POST("/admin/bootstrap", h.BootstrapAdmin)
	}

	authed := api.Group("", h.Authenticate())
	{
		authed.GET("/session", h.GetSession)
		authed.GET("/profile", h.GetProfile)
		authed.PATCH("/profile", h.UpdateProfile)
		authed.GET("/dashboard", h.GetDashboard)

		authed.GET("/doctors", h.ListDoctors)
		authed.GET("/doctors/:id", h.GetDoctor)

		authed.POST("/appointments", h.BookAppointment)
		authed.GET("/appointments", h.ListAppointments)
		authed.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus)
		authed.POST("/appointments/:id/cancel", h.CancelAppointment)

		authed.GET("/patients", handlers.RequireRole(models.RoleDoctor, models.RoleAdmin), h.GetPatientsWithPage)
	}

	admin := authed.Group("/admin", handlers.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.PUT("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/stats", h.GetStats)
		admin.GET("/export/users.xlsx", h.ExportUsers)
		admin.GET("/export/appointments.xlsx", h.ExportAppointments)
	}

	return r
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowOrigins
		cfg.AllowCredentials = true
	}
	return cfg
}
