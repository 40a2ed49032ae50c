package models

import (
	"time"

	"appointment/internal/workinghours"
)

// Doctor is a directory entry whose working hours bound appointment timeslots.
type Doctor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Specialty    string    `json:"specialty,omitempty"`
	WorkingHours string    `json:"working_hours"` // "07:00-18:00"
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Window parses the doctor's working hours.
func (d *Doctor) Window() (workinghours.Window, error) {
	return workinghours.ParseWindow(d.WorkingHours)
}

// ValidationRecord is an audit entry for a single timeslot check.
type ValidationRecord struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	DoctorID   string    `json:"doctor_id"`
	Timeslot   string    `json:"timeslot"`
	Normalized string    `json:"normalized"`
	Outcome    string    `json:"outcome"` // valid, malformed_window, out_of_range
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// OutcomeValid is stored for accepted timeslots.
const OutcomeValid = "valid"

// OutcomeLabel maps a validation outcome to its audit label.
func OutcomeLabel(o workinghours.Outcome) string {
	if o.Valid() {
		return OutcomeValid
	}
	return o.Reason.String()
}
