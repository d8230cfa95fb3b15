package export

import (
	"bytes"
	"testing"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func open(t *testing.T, data []byte) *excelize.File {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestUsersWorkbook(t *testing.T) {
	phone := "5551234567"
	data, err := Users([]services.UserRecord{{
		ID:          "u1",
		Email:       "sarah@example.com",
		Phone:       &phone,
		Roles:       []models.Role{models.RoleDoctor, models.RolePatient},
		Role:        models.RoleDoctor,
		DisplayName: "Sarah Johnson",
		Doctor:      &models.DoctorSummary{FullName: "Sarah Johnson", Specialization: "cardiology"},
		CreateTime:  "2026-03-10 09:30:00",
	}})
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Users"}, f.GetSheetList())
	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, UserHeader, rows[0])
	assert.Equal(t, []string{"u1", "sarah@example.com", "Sarah Johnson", "5551234567", "Doctor", "doctor, patient", "cardiology", "2026-03-10 09:30:00"}, rows[1])
}

func TestAppointmentsWorkbook(t *testing.T) {
	v := models.Appointment{
		ID:              "a1",
		AppointmentDate: "2026-03-11",
		AppointmentTime: "10:00",
		Symptoms:        "cough",
		Status:          models.StatusScheduled,
		Patient:         &models.Patient{FullName: "Jane Doe", Email: "jane@example.com"},
		Doctor:          &models.Doctor{FullName: "Sarah Johnson", Specialization: "cardiology"},
	}.View()

	data, err := Appointments([]models.AppointmentView{v, models.Appointment{ID: "a2", Status: models.StatusNoShow}.View()})
	require.NoError(t, err)

	rows, err := open(t, data).GetRows("Appointments")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, AppointmentHeader, rows[0])
	assert.Equal(t, []string{"a1", "2026-03-11", "10:00", "Jane Doe", "jane@example.com", "Sarah Johnson", "cardiology", "scheduled", "cough"}, rows[1])
	assert.Equal(t, "a2", rows[2][0])
	assert.Contains(t, rows[2], "no_show")
}

func TestEmptyWorkbookHasHeader(t *testing.T) {
	data, err := Users(nil)
	require.NoError(t, err)
	rows, err := open(t, data).GetRows("Users")
	require.NoError(t, err)
	assert.Equal(t, [][]string{UserHeader}, rows)
}
