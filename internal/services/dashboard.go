package services

import (
	"context"
	"time"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/session"
)

type QuickLink struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

type Notification struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

var quickLinks = map[models.Role][]QuickLink{
	models.RolePatient: {
		{"Appointments", "Book and manage your appointments", "/appointments"},
		{"Medical Records", "View your health history", "/medical-records"},
		{"My Doctors", "See the doctors caring for you", "/profile"},
		{"Messages", "Talk to your care team", "/messaging"},
	},
	models.RoleDoctor: {
		{"Today's Appointments", "Review your schedule", "/appointments"},
		{"Search Patients", "Find patient records", "/patients"},
		{"Messages", "Reply to your patients", "/messaging"},
		{"Profile", "Update your details", "/profile"},
	},
	models.RoleAdmin: {
		{"User Management", "Manage users and roles", "/user-management"},
		{"All Appointments", "Oversee every booking", "/appointments"},
		{"Patient Records", "Browse patient records", "/patient-records"},
		{"System Analytics", "Usage and activity", "/admin-panel"},
	},
}

// notifications are fixed sample messages per role, the same ones the web
// client's notifications card shows. No notification store backs them yet.
var notifications = map[models.Role][]Notification{
	models.RolePatient: {
		{"Lab report ready to download", "info"},
		{"Appointment approved for tomorrow", "success"},
	},
	models.RoleDoctor: {
		{"3 new patients assigned today", "info"},
		{"New message from patient", "message"},
	},
	models.RoleAdmin: {
		{"User account created: Susan", "info"},
		{"Critical system update required", "warning"},
	},
}

// Greeting picks the salutation for the given local time.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning"
	case h < 18:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

type DashboardSummary struct {
	NextAppointment   *models.AppointmentView `json:"next_appointment,omitempty"`
	TodayAppointments *int64                  `json:"today_appointments,omitempty"`
	Stats             *Stats                  `json:"stats,omitempty"`
}

type Dashboard struct {
	Greeting      string           `json:"greeting"`
	DisplayName   string           `json:"display_name"`
	Role          string           `json:"role"`
	QuickLinks    []QuickLink      `json:"quick_links"`
	Notifications []Notification   `json:"notifications"`
	Summary       DashboardSummary `json:"summary"`
}

type DashboardService struct {
	store *repository.Store
	stats *StatsService
	now   func() time.Time
}

func NewDashboardService(store *repository.Store, stats *StatsService) *DashboardService {
	return &DashboardService{store: store, stats: stats, now: time.Now}
}

func (s *DashboardService) Build(ctx context.Context, sess *session.Session) (*Dashboard, error) {
	now := s.now()
	name := sess.DisplayName()
	if sess.Role == models.RoleDoctor {
		name = "Dr. " + name
	}
	d := &Dashboard{
		Greeting:      Greeting(now),
		DisplayName:   name,
		Role:          sess.Role.Display(),
		QuickLinks:    quickLinks[sess.Role],
		Notifications: notifications[sess.Role],
	}

	today, clock := now.Format(models.DateLayout), now.Format(models.ClockLayout)
	switch sess.Role {
	case models.RoleAdmin:
		st, err := s.stats.Get(ctx)
		if err != nil {
			return nil, err
		}
		d.Summary.Stats = st
	case models.RoleDoctor:
		doc, err := optional(s.store.DoctorByUserID(ctx, sess.UserID))
		if err != nil || doc == nil {
			return d, err
		}
		filter := repository.AppointmentFilter{DoctorID: doc.ID, Status: models.StatusScheduled, From: today, FromTime: clock}
		if d.Summary.NextAppointment, err = s.next(ctx, filter); err != nil {
			return nil, err
		}
		n, err := s.store.CountAppointments(ctx, repository.AppointmentFilter{DoctorID: doc.ID, Date: today})
		if err != nil {
			return nil, err
		}
		d.Summary.TodayAppointments = &n
	default:
		pat, err := optional(s.store.PatientByUserID(ctx, sess.UserID))
		if err != nil || pat == nil {
			return d, err
		}
		filter := repository.AppointmentFilter{PatientID: pat.ID, Status: models.StatusScheduled, From: today, FromTime: clock}
		if d.Summary.NextAppointment, err = s.next(ctx, filter); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *DashboardService) next(ctx context.Context, f repository.AppointmentFilter) (*models.AppointmentView, error) {
	a, err := optional(s.store.NextAppointment(ctx, f))
	if err != nil || a == nil {
		return nil, err
	}
	v := a.View()
	return &v, nil
}
