// File: services/voice/booking.go
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"receptionist/config"
	appointmentRepo "receptionist/database/repository/appointment"
	"receptionist/models"

	"go.uber.org/zap"
)

const maxAlternatives = 3

// attemptBooking tries to finalize the appointment the context describes and
// returns a system note telling the model how to relay the outcome. Every
// failure path produces a BOOKING ISSUE note; nothing here ends the call.
func (s *Service) attemptBooking(ctx context.Context, cc *models.CallContext) string {
	svc := config.Business.FindService(cc.RequestedService)
	if svc == nil {
		return fmt.Sprintf("BOOKING ISSUE: Service %q is not offered. Inform the caller and list the available services.",
			cc.RequestedService)
	}

	ok, err := s.Availability.IsSlotAvailable(ctx, cc.RequestedDate, cc.RequestedTime, svc.DurationMinutes)
	if err != nil {
		s.Logger.Error("Availability check failed during booking",
			zap.String("callId", cc.CallID), zap.Error(err))
		return "BOOKING ISSUE: Could not verify the time slot. Apologize and ask the caller to try again."
	}
	if !ok {
		return s.slotTakenNote(ctx, cc, svc.DurationMinutes)
	}

	appt := &models.Appointment{
		CallerName:      cc.CallerName,
		CallerPhone:     cc.CallerPhone,
		ServiceName:     svc.Name,
		AppointmentDate: cc.RequestedDate,
		AppointmentTime: cc.RequestedTime,
		DurationMinutes: svc.DurationMinutes,
	}
	if caller, err := s.Callers.GetByPhone(ctx, cc.CallerPhone); err == nil && caller != nil {
		appt.CallerID = caller.ID
	}

	id, err := s.Ledger.Create(ctx, appt)
	if errors.Is(err, appointmentRepo.ErrSlotTaken) {
		// Someone else took the slot between the check and the insert.
		return s.slotTakenNote(ctx, cc, svc.DurationMinutes)
	}
	if err != nil {
		s.Logger.Error("Booking insert failed",
			zap.String("callId", cc.CallID), zap.Error(err))
		return "BOOKING ISSUE: The booking could not be saved. Apologize and offer to try again."
	}

	s.Logger.Info("Appointment booked",
		zap.String("appointmentId", id),
		zap.String("service", svc.Name),
		zap.String("date", cc.RequestedDate),
		zap.String("time", cc.RequestedTime))
	return fmt.Sprintf("BOOKING CONFIRMED: Appointment booked for %s: %s on %s at %s. Thank the caller warmly and confirm the details.",
		cc.CallerName, svc.Name, cc.RequestedDate, cc.RequestedTime)
}

func (s *Service) slotTakenNote(ctx context.Context, cc *models.CallContext, duration int) string {
	alternatives, err := s.Availability.ListAvailableSlots(ctx, cc.RequestedDate, duration)
	if err != nil {
		s.Logger.Warn("Could not list alternatives",
			zap.String("date", cc.RequestedDate), zap.Error(err))
	}
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	if len(alternatives) == 0 {
		return "BOOKING ISSUE: That time is not available and the day has no other openings. Suggest another day."
	}
	return fmt.Sprintf("BOOKING ISSUE: That time is not available. Alternatives: %s. Inform the caller and suggest one.",
		strings.Join(alternatives, ", "))
}
