package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition marks a status change the transition table forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// Appointment statuses. Only "scheduled" is ever assigned automatically;
// all other transitions are driven by external events.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

// statusTransitions is the allowed status graph. Terminal states
// (cancelled, completed, no_show) have no outgoing edges.
var statusTransitions = map[string][]string{
	StatusScheduled: {StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// CanTransition returns nil when moving from current to next is allowed.
func CanTransition(current, next string) error {
	if !ValidStatus(next) {
		return fmt.Errorf("%w: unknown appointment status %q", ErrInvalidTransition, next)
	}
	for _, allowed := range statusTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot move appointment from %q to %q", ErrInvalidTransition, current, next)
}

// Appointment is a confirmed, conflict-checked booking record.
type Appointment struct {
	ID              string    `bson:"id" json:"id"`
	CallerID        string    `bson:"caller_id,omitempty" json:"callerId,omitempty"`
	CallerName      string    `bson:"caller_name" json:"callerName"`
	CallerPhone     string    `bson:"caller_phone" json:"callerPhone"`
	ServiceName     string    `bson:"service_name" json:"serviceName"`
	AppointmentDate string    `bson:"appointment_date" json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string    `bson:"appointment_time" json:"appointmentTime"` // HH:MM, 24-hour
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	Status          string    `bson:"status" json:"status"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	ReminderSent    bool      `bson:"reminder_sent" json:"reminderSent"`
}

// AppointmentInput carries the fields needed to create an appointment,
// whether the request came from the voice flow or the chat/API path.
type AppointmentInput struct {
	CallerName  string `json:"caller_name" binding:"required"`
	CallerPhone string `json:"caller_phone" binding:"required"`
	ServiceName string `json:"service_name" binding:"required"`
	Date        string `json:"appointment_date" binding:"required"`
	Time        string `json:"appointment_time" binding:"required"`
	Notes       string `json:"notes,omitempty"`
}
