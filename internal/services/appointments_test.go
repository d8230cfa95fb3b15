package services

import (
	"context"
	"testing"

	"cleverheal-api/internal/events"
	"cleverheal-api/internal/models"
	"cleverheal-api/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(t *testing.T, e *env, sess *session.Session, doctorID, date, clock string) *models.AppointmentView {
	t.Helper()
	v, err := e.appts.Book(context.Background(), sess, BookInput{
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Symptoms:        "persistent cough",
	})
	require.NoError(t, err)
	return v
}

func TestBookValidation(t *testing.T) {
	e := newEnv(t)
	doc := e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor")
	pat := e.signUp(t, "jane@example.com", "Jane", "Doe")
	docID := e.doctorRecord(t, doc.UserID).ID
	ctx := context.Background()

	cases := map[string]BookInput{
		"missing doctor": {AppointmentDate: "2026-03-11", AppointmentTime: "10:00", Symptoms: "cough"},
		"blank symptoms": {DoctorID: docID, AppointmentDate: "2026-03-11", AppointmentTime: "10:00", Symptoms: "   "},
		"bad date":       {DoctorID: docID, AppointmentDate: "11/03/2026", AppointmentTime: "10:00", Symptoms: "cough"},
		"bad time":       {DoctorID: docID, AppointmentDate: "2026-03-11", AppointmentTime: "10am", Symptoms: "cough"},
		"date in past":   {DoctorID: docID, AppointmentDate: "2026-03-09", AppointmentTime: "10:00", Symptoms: "cough"},
		"missing date":   {DoctorID: docID, AppointmentTime: "10:00", Symptoms: "cough"},
		"missing time":   {DoctorID: docID, AppointmentDate: "2026-03-11", Symptoms: "cough"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.appts.Book(ctx, pat, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := e.appts.Book(ctx, pat, BookInput{DoctorID: "missing", AppointmentDate: "2026-03-11", AppointmentTime: "10:00", Symptoms: "cough"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookCreatesPatientRecordOnce(t *testing.T) {
	e := newEnv(t)
	doc := e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor")
	docID := e.doctorRecord(t, doc.UserID).ID

	// Signed up directly with the local provider: no profile row.
	u, err := e.provider.SignUp(context.Background(), "walk.in@example.com", "secret1", identityMeta())
	require.NoError(t, err)
	pat := e.resolve(t, u.ID)
	pat.Email = "walk.in@example.com"

	first := book(t, e, pat, docID, "2026-03-10", "15:00")
	second := book(t, e, pat, docID, "2026-03-12", "09:00")

	assert.Equal(t, models.StatusScheduled, first.Status)
	assert.Equal(t, "walk.in", first.Patients.FullName)
	assert.Equal(t, "Sarah Johnson", first.Doctors.FullName)
	assert.Equal(t, first.PatientID, second.PatientID)

	require.Len(t, e.published.events, 2)
	assert.Equal(t, events.AppointmentBooked, e.published.events[0].Type)
	assert.Equal(t, pat.UserID, e.published.events[0].ActorID)
	assert.NotEmpty(t, e.published.events[0].OccurredAt)
}

func TestBookReportsUnresolvedPatientConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor")
	docID := e.doctorRecord(t, doc.UserID).ID
	pat := e.signUp(t, "jane@example.com", "Jane", "Doe")

	// Every insert collides, yet no live record ever shows up.
	require.NoError(t, e.store.DB().Exec(`CREATE TRIGGER reject_patients BEFORE INSERT ON patients
		BEGIN SELECT RAISE(ABORT, 'UNIQUE constraint failed: patients.user_id'); END`).Error)

	_, err := e.appts.Book(ctx, pat, BookInput{DoctorID: docID, AppointmentDate: "2026-03-11", AppointmentTime: "10:00", Symptoms: "cough"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, e.published.events)
}

func TestPatientName(t *testing.T) {
	assert.Equal(t, "Jane Doe", patientName(&session.Session{Profile: &models.Profile{FirstName: strPtr("Jane"), LastName: strPtr("Doe")}}))
	assert.Equal(t, "jdoe", patientName(&session.Session{Email: "jdoe@example.com"}))
	assert.Equal(t, "Patient", patientName(&session.Session{}))
}

func TestBookRejectsInactiveDoctor(t *testing.T) {
	e := newEnv(t)
	pat := e.signUp(t, "jane@example.com", "Jane", "Doe")
	d := &models.Doctor{UserID: "retired", FullName: "Old Timer", Specialization: "oncology"}
	require.NoError(t, e.store.CreateDoctor(context.Background(), d))

	_, err := e.appts.Book(context.Background(), pat, BookInput{DoctorID: d.ID, AppointmentDate: "2026-03-11", AppointmentTime: "10:00", Symptoms: "cough"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListAppointmentsByRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	docA := e.createUser(t, "a@example.com", "Ann", "Able", "cardiology", "doctor")
	docB := e.createUser(t, "b@example.com", "Ben", "Baker", "neurology", "doctor")
	lonelyDoc := e.createUser(t, "c@example.com", "Cal", "Cole", "oncology", "doctor")
	admin := e.createUser(t, "root@example.com", "Root", "Admin", "", "admin")
	jane := e.signUp(t, "jane@example.com", "Jane", "Doe")
	john := e.signUp(t, "john@example.com", "John", "Roe")
	newbie := e.signUp(t, "new@example.com", "New", "Bie")

	idA := e.doctorRecord(t, docA.UserID).ID
	idB := e.doctorRecord(t, docB.UserID).ID
	late := book(t, e, jane, idA, "2026-03-12", "14:00")
	early := book(t, e, jane, idB, "2026-03-11", "09:00")
	book(t, e, john, idA, "2026-03-11", "10:00")

	mine, err := e.appts.List(ctx, jane)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, early.ID, mine[0].ID)
	assert.Equal(t, late.ID, mine[1].ID)
	assert.Equal(t, "neurology", mine[0].Doctors.Specialization)

	forA, err := e.appts.List(ctx, docA)
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	all, err := e.appts.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := e.appts.List(ctx, newbie)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	none, err = e.appts.List(ctx, lonelyDoc)
	require.NoError(t, err)
	assert.Empty(t, none)

	noRecord := &session.Session{UserID: "ghost", Role: models.RoleDoctor}
	none, err = e.appts.List(ctx, noRecord)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStatusPolicy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc := e.createUser(t, "doc@example.com", "Sarah", "Johnson", "cardiology", "doctor")
	other := e.createUser(t, "other@example.com", "Mike", "Chen", "neurology", "doctor")
	admin := e.createUser(t, "root@example.com", "Root", "Admin", "", "admin")
	jane := e.signUp(t, "jane@example.com", "Jane", "Doe")
	john := e.signUp(t, "john@example.com", "John", "Roe")
	docID := e.doctorRecord(t, doc.UserID).ID

	a := book(t, e, jane, docID, "2026-03-11", "10:00")

	_, err := e.appts.UpdateStatus(ctx, jane, a.ID, "pending")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.appts.UpdateStatus(ctx, jane, "missing", models.StatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.appts.UpdateStatus(ctx, jane, a.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.appts.Cancel(ctx, john, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.appts.UpdateStatus(ctx, other, a.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrForbidden)

	v, err := e.appts.UpdateStatus(ctx, doc, a.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, v.Status)

	_, err = e.appts.Cancel(ctx, jane, a.ID)
	assert.ErrorIs(t, err, ErrForbidden, "completed appointments cannot be cancelled by the patient")

	v, err = e.appts.UpdateStatus(ctx, admin, a.ID, models.StatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, v.Status)

	v, err = e.appts.Cancel(ctx, jane, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, v.Status)

	last := e.published.events[len(e.published.events)-1]
	assert.Equal(t, events.AppointmentStatusChanged, last.Type)
	assert.Equal(t, "scheduled", last.PreviousStatus)
	assert.Equal(t, "cancelled", last.Status)
}
