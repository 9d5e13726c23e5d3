package appointmentRepo

import (
	"context"
	"errors"

	"receptionist/models"
)

var (
	// ErrSlotTaken is returned when the requested interval overlaps an
	// existing non-cancelled appointment.
	ErrSlotTaken = errors.New("requested time slot is already booked")
	// ErrNotFound is returned when no appointment matches the given ID.
	ErrNotFound = errors.New("appointment not found")
)

// Repository defines methods for appointment ledger data access.
type Repository interface {
	// Create inserts a new appointment at "scheduled" status. The conflict
	// check and the caller's appointment-counter increment happen atomically
	// with the insert; an overlapping slot yields ErrSlotTaken.
	Create(ctx context.Context, appt *models.Appointment) (string, error)
	// GetByID retrieves an appointment by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// GetForDate retrieves non-cancelled appointments for a date, ordered by
	// time ascending.
	GetForDate(ctx context.Context, date string) ([]models.Appointment, error)
	// GetAll retrieves the most recent appointments up to limit.
	GetAll(ctx context.Context, limit int64) ([]models.Appointment, error)
	// GetByCallerPhone retrieves a caller's appointments, newest first.
	GetByCallerPhone(ctx context.Context, phone string) ([]models.Appointment, error)
	// UpdateStatus moves an appointment to a new status, enforcing the
	// status transition table.
	UpdateStatus(ctx context.Context, id string, status string) error
}
