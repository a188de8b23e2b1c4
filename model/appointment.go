package model

import "gorm.io/gorm"

// Appointment statuses. An appointment is created PENDING and is moved by the
// assigned doctor to any of the three target statuses; the workflow places no
// restriction on the source status.
const (
	AppointmentPending   = "PENDING"
	AppointmentApproved  = "APPROVE"
	AppointmentCancelled = "CANCELLED"
	AppointmentCompleted = "COMPLETED"
)

// Appointment assigns a patient to a doctor at a date/time slot
// @Description Appointment information
type Appointment struct {
	gorm.Model
	PatientID uint   `json:"patient_id" gorm:"column:patient_id;not null" example:"1"`
	DoctorID  uint   `json:"doctor_id" gorm:"column:doctor_id;not null;index:idx_appointments_slot" example:"1"`
	Date      string `json:"date" gorm:"column:date;not null;index:idx_appointments_slot" example:"2025-01-15"`
	Time      string `json:"time" gorm:"column:time;not null;index:idx_appointments_slot" example:"09:30"`
	Status    string `json:"status" gorm:"column:status;type:varchar(20);default:PENDING" example:"PENDING"`
	Notes     string `json:"notes" gorm:"column:notes;type:text" example:"Follow-up check"`
}

// IsTransitionTarget reports whether status is a value the assigned doctor may
// move an appointment to. PENDING is the creation state only, never a target.
func IsTransitionTarget(status string) bool {
	switch status {
	case AppointmentApproved, AppointmentCancelled, AppointmentCompleted:
		return true
	}
	return false
}
