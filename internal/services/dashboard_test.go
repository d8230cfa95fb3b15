package services

import (
	"context"
	"testing"
	"time"

	"cleverheal-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreeting(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 3, 10, h, 0, 0, 0, time.Local) }
	assert.Equal(t, "Good Morning", Greeting(at(0)))
	assert.Equal(t, "Good Morning", Greeting(at(11)))
	assert.Equal(t, "Good Afternoon", Greeting(at(12)))
	assert.Equal(t, "Good Afternoon", Greeting(at(17)))
	assert.Equal(t, "Good Evening", Greeting(at(18)))
	assert.Equal(t, "Good Evening", Greeting(at(23)))
}

func TestDashboardPerRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor")
	admin := e.createUser(t, "root@example.com", "Root", "Admin", "", "admin")
	jane := e.signUp(t, "jane@example.com", "Jane", "Doe")
	docID := e.doctorRecord(t, doc.UserID).ID

	book(t, e, jane, docID, "2026-03-12", "09:00")
	next := book(t, e, jane, docID, "2026-03-10", "16:00")

	d, err := e.dashboard.Build(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, "Good Morning", d.Greeting)
	assert.Equal(t, "Jane Doe", d.DisplayName)
	assert.Equal(t, "Patient", d.Role)
	require.Len(t, d.QuickLinks, 4)
	assert.Equal(t, "/medical-records", d.QuickLinks[1].Path)
	assert.Len(t, d.Notifications, 2)
	require.NotNil(t, d.Summary.NextAppointment)
	assert.Equal(t, next.ID, d.Summary.NextAppointment.ID)
	assert.Nil(t, d.Summary.Stats)

	d, err = e.dashboard.Build(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Johnson", d.DisplayName)
	assert.Equal(t, "Doctor", d.Role)
	assert.Equal(t, "Today's Appointments", d.QuickLinks[0].Title)
	require.NotNil(t, d.Summary.TodayAppointments)
	assert.Equal(t, int64(1), *d.Summary.TodayAppointments)
	require.NotNil(t, d.Summary.NextAppointment)
	assert.Equal(t, next.ID, d.Summary.NextAppointment.ID)

	d, err = e.dashboard.Build(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "Admin", d.Role)
	assert.Equal(t, "/user-management", d.QuickLinks[0].Path)
	require.NotNil(t, d.Summary.Stats)
	assert.Equal(t, int64(3), d.Summary.Stats.TotalUsers)
	assert.Equal(t, int64(2), d.Summary.Stats.TotalAppointments)
	assert.Equal(t, int64(1), d.Summary.Stats.TodayAppointments)
}

func TestDashboardNextSkipsEarlierSlotsToday(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor")
	jane := e.signUp(t, "jane@example.com", "Jane", "Doe")
	docID := e.doctorRecord(t, doc.UserID).ID

	// fixedNow is 09:30.
	book(t, e, jane, docID, "2026-03-10", "08:00")
	next := book(t, e, jane, docID, "2026-03-10", "09:30")

	d, err := e.dashboard.Build(ctx, jane)
	require.NoError(t, err)
	require.NotNil(t, d.Summary.NextAppointment)
	assert.Equal(t, next.ID, d.Summary.NextAppointment.ID)

	d, err = e.dashboard.Build(ctx, doc)
	require.NoError(t, err)
	require.NotNil(t, d.Summary.NextAppointment)
	assert.Equal(t, next.ID, d.Summary.NextAppointment.ID)
	assert.Equal(t, int64(2), *d.Summary.TodayAppointments)
}

func TestDashboardWithoutRecords(t *testing.T) {
	e := newEnv(t)
	s := e.resolve(t, "nobody")

	d, err := e.dashboard.Build(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "User", d.DisplayName)
	assert.Equal(t, models.RolePatient.Display(), d.Role)
	assert.Nil(t, d.Summary.NextAppointment)
}

func TestStatsCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor", "patient")
	e.createUser(t, "root@example.com", "Root", "Admin", "", "admin")
	e.signUp(t, "jane@example.com", "Jane", "Doe")

	st, err := e.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalUsers: 4, TotalPatients: 2, TotalDoctors: 1, TotalAdmins: 1}, *st)
}
