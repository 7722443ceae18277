package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// ValidAppointmentStatus reports whether s is one of the known statuses.
func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID          string            `gorm:"size:36;index" json:"patientId"`
	DoctorID           string            `gorm:"size:36;index" json:"doctorId"`
	StartTime          time.Time         `gorm:"index" json:"startTime"`
	EndTime            time.Time         `json:"endTime"`
	Status             AppointmentStatus `gorm:"size:20;default:'scheduled';index" json:"status"`
	Reason             string            `gorm:"size:500" json:"reason"`
	Notes              string            `gorm:"type:text" json:"notes"`
	CancelledAt        *time.Time        `json:"cancelledAt,omitempty"`
	CancellationReason string            `gorm:"size:500" json:"cancellationReason,omitempty"`
	ReminderSent       bool              `gorm:"default:false" json:"reminderSent"`

	// Relations
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// IsFuture reports whether the appointment has not started yet.
func (a *Appointment) IsFuture() bool {
	return a.StartTime.After(time.Now())
}

// DurationMinutes returns the booked length of the appointment.
func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime).Round(time.Minute) / time.Minute)
}

// Blocking reports whether the appointment occupies its slot for
// conflict-detection purposes. Cancelled, completed and no-show
// appointments free the slot.
func (a *Appointment) Blocking() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// Cancel moves the appointment into the cancelled state. Calling it on
// an already cancelled appointment leaves the original cancellation
// timestamp untouched.
func (a *Appointment) Cancel(reason string, now time.Time) {
	if a.Status == StatusCancelled {
		return
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	if reason != "" {
		a.CancellationReason = reason
	}
}
