package models

import "time"

// TimeLayout is the format of every create_time/update_time column.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the format of appointment_date.
const DateLayout = "2006-01-02"

// ClockLayout is the format of appointment_time.
const ClockLayout = "15:04"

// Timestamp formats t for create_time/update_time columns.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}
