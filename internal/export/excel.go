// Package export renders admin data as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"cleverheal-api/internal/models"
	"cleverheal-api/internal/services"
	"cleverheal-api/internal/utils"

	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var UserHeader = []string{"User ID", "Email", "Name", "Phone", "Role", "All Roles", "Specialization", "Created"}

var AppointmentHeader = []string{"Appointment ID", "Date", "Time", "Patient", "Patient Email", "Doctor", "Specialization", "Status", "Symptoms"}

// Users renders the user management list.
func Users(records []services.UserRecord) ([]byte, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		roles := make([]string, 0, len(r.Roles))
		for _, role := range r.Roles {
			roles = append(roles, string(role))
		}
		spec := ""
		if r.Doctor != nil {
			spec = r.Doctor.Specialization
		}
		rows = append(rows, []any{
			r.ID,
			r.Email,
			r.DisplayName,
			utils.Deref(r.Phone),
			r.Role.Display(),
			strings.Join(roles, ", "),
			spec,
			r.CreateTime,
		})
	}
	return workbook("Users", UserHeader, []float64{38, 30, 25, 16, 10, 22, 16, 20}, rows)
}

// Appointments renders appointment listings.
func Appointments(views []models.AppointmentView) ([]byte, error) {
	rows := make([][]any, 0, len(views))
	for _, v := range views {
		var patient, patientEmail, doctor, spec string
		if v.Patients != nil {
			patient, patientEmail = v.Patients.FullName, v.Patients.Email
		}
		if v.Doctors != nil {
			doctor, spec = v.Doctors.FullName, v.Doctors.Specialization
		}
		rows = append(rows, []any{
			v.ID,
			v.AppointmentDate,
			v.AppointmentTime,
			patient,
			patientEmail,
			doctor,
			spec,
			string(v.Status),
			v.Symptoms,
		})
	}
	return workbook("Appointments", AppointmentHeader, []float64{38, 12, 8, 25, 30, 25, 16, 12, 40}, rows)
}

func workbook(sheet string, headers []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
