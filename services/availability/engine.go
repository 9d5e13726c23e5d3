// File: services/availability/engine.go
package availability

import (
	"context"
	"fmt"

	"receptionist/config"
	appointmentRepo "receptionist/database/repository/appointment"
	"receptionist/models"
	"receptionist/utils"

	"go.uber.org/zap"
)

// SlotGridMinutes is the spacing of candidate start times within a day.
const SlotGridMinutes = 30

// Engine answers availability questions by walking the slot grid for a date
// against the booked appointments on the ledger.
type Engine struct {
	Ledger appointmentRepo.Repository
	Logger *zap.Logger
}

func NewEngine(ledger appointmentRepo.Repository, logger *zap.Logger) *Engine {
	return &Engine{Ledger: ledger, Logger: logger}
}

// ListAvailableSlots returns the open start times ("HH:MM", 24-hour) for a
// date and duration. A closed or malformed working-hours entry yields an
// empty list, never an error.
func (e *Engine) ListAvailableSlots(ctx context.Context, date string, durationMinutes int) ([]string, error) {
	if durationMinutes <= 0 {
		durationMinutes = SlotGridMinutes
	}
	openMin, closeMin, ok := parseHours(config.Business.HoursForDate(date))
	if !ok {
		return []string{}, nil
	}

	booked, err := e.Ledger.GetForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments for %s: %w", date, err)
	}

	var slots []string
	for start := openMin; start+durationMinutes <= closeMin; start += SlotGridMinutes {
		if !e.overlapsAny(booked, start, start+durationMinutes) {
			slots = append(slots, utils.ClockOfDay(start))
		}
	}
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

// IsSlotAvailable reports whether a specific start time fits: inside working
// hours, ending by close, and clear of every non-cancelled appointment.
func (e *Engine) IsSlotAvailable(ctx context.Context, date, timeOfDay string, durationMinutes int) (bool, error) {
	if durationMinutes <= 0 {
		durationMinutes = SlotGridMinutes
	}
	openMin, closeMin, ok := parseHours(config.Business.HoursForDate(date))
	if !ok {
		return false, nil
	}
	start, err := utils.MinutesOfDay(timeOfDay)
	if err != nil {
		return false, nil
	}
	if start < openMin || start+durationMinutes > closeMin {
		return false, nil
	}

	booked, err := e.Ledger.GetForDate(ctx, date)
	if err != nil {
		return false, fmt.Errorf("failed to load appointments for %s: %w", date, err)
	}
	return !e.overlapsAny(booked, start, start+durationMinutes), nil
}

// SlotsForDate builds the full availability answer for one date, resolving
// the service's duration when a known service name is given.
func (e *Engine) SlotsForDate(ctx context.Context, date, serviceName string) (*models.AvailabilityResult, error) {
	duration := SlotGridMinutes
	if svc := config.Business.FindService(serviceName); svc != nil {
		duration = svc.DurationMinutes
	}

	hours := config.Business.HoursForDate(date)
	if _, _, ok := parseHours(hours); !ok {
		return &models.AvailabilityResult{
			Date:         date,
			Available:    false,
			Slots:        []string{},
			WorkingHours: hours,
			Message:      "We are closed on that day.",
		}, nil
	}

	slots, err := e.ListAvailableSlots(ctx, date, duration)
	if err != nil {
		return nil, err
	}
	result := &models.AvailabilityResult{
		Date:         date,
		Available:    len(slots) > 0,
		Slots:        slots,
		WorkingHours: hours,
	}
	if len(slots) == 0 {
		result.Message = "That day is fully booked."
	}
	return result, nil
}

func (e *Engine) overlapsAny(booked []models.Appointment, startMin, endMin int) bool {
	for _, appt := range booked {
		existingStart, err := utils.MinutesOfDay(appt.AppointmentTime)
		if err != nil {
			e.Logger.Warn("Skipping appointment with unparseable time",
				zap.String("id", appt.ID), zap.String("time", appt.AppointmentTime))
			return true
		}
		existingEnd := existingStart + appt.DurationMinutes
		if endMin > existingStart && startMin < existingEnd {
			return true
		}
	}
	return false
}
