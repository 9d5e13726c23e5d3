// File: services/voice/prompt.go
package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"receptionist/config"
	"receptionist/models"

	"go.uber.org/zap"
)

// maxSlotsInPrompt caps how many open slots get quoted to the model so the
// prompt stays small on empty days.
const maxSlotsInPrompt = 5

// systemPrompt is the receptionist persona the model speaks as, rebuilt each
// turn so config changes take effect immediately.
func (s *Service) systemPrompt() string {
	biz := config.Business

	var services strings.Builder
	for _, svc := range biz.Services {
		fmt.Fprintf(&services, "- %s: Rs.%.0f (%d minutes)\n", svc.Name, svc.Price, svc.DurationMinutes)
	}

	var hours strings.Builder
	for _, day := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		fmt.Fprintf(&hours, "- %s: %s\n", day, biz.WorkingHours.For(day))
	}

	return fmt.Sprintf(`You are a professional, friendly receptionist for %s.
Your role is to answer phone calls, provide information, and help callers book appointments.

BUSINESS INFORMATION:
- Business Name: %s
- Phone: %s
- Email: %s
- Address: %s

SERVICES OFFERED:
%s
WORKING HOURS:
%s
CONVERSATION GUIDELINES:
1. Be warm, professional, and conversational, like a real receptionist
2. Keep responses concise (1-3 sentences max) because this is a phone call
3. When booking appointments, collect: name, service, preferred date, and time
4. Always confirm details before finalizing a booking
5. If a time slot is unavailable, suggest alternatives
6. Use Pakistani Rupees (Rs.) for prices
7. Today's date is %s

IMPORTANT:
- Never mention you are an AI
- Don't use emojis or special characters (this is voice)
- If you don't understand something, politely ask for clarification`,
		biz.BusinessName,
		biz.BusinessName,
		biz.ContactInfo.Phone,
		biz.ContactInfo.Email,
		biz.ContactInfo.Address,
		services.String(),
		hours.String(),
		s.Now().Format("Monday, January 2, 2006"),
	)
}

// bookingContextNote summarizes the known slots and, when a date is known,
// the live availability for it. Empty when nothing is known yet.
func (s *Service) bookingContextNote(ctx context.Context, cc *models.CallContext) string {
	var parts []string
	if cc.CallerName != "" {
		parts = append(parts, "Caller name: "+cc.CallerName)
	}
	if cc.RequestedService != "" {
		parts = append(parts, "Requested service: "+cc.RequestedService)
	}
	if cc.RequestedDate != "" {
		parts = append(parts, "Requested date: "+cc.RequestedDate)
	}
	if cc.RequestedTime != "" {
		parts = append(parts, "Requested time: "+cc.RequestedTime)
	}

	if cc.RequestedDate != "" {
		parts = append(parts, s.availabilityNote(ctx, cc.RequestedDate, cc.RequestedService)...)
	}

	if len(parts) == 0 {
		return ""
	}
	return "Current booking context:\n" + strings.Join(parts, "\n")
}

func (s *Service) availabilityNote(ctx context.Context, date, serviceName string) []string {
	hours := config.Business.HoursForDate(date)
	if strings.EqualFold(strings.TrimSpace(hours), "closed") {
		day := date
		if d, err := time.Parse("2006-01-02", date); err == nil {
			day = d.Weekday().String()
		}
		return []string{"Note: Business is closed on " + day}
	}

	duration := 30
	if svc := config.Business.FindService(serviceName); svc != nil {
		duration = svc.DurationMinutes
	}
	slots, err := s.Availability.ListAvailableSlots(ctx, date, duration)
	if err != nil {
		s.Logger.Warn("Could not fetch availability for prompt",
			zap.String("date", date), zap.Error(err))
		return nil
	}
	if len(slots) == 0 {
		return nil
	}
	if len(slots) > maxSlotsInPrompt {
		slots = slots[:maxSlotsInPrompt]
	}
	return []string{"Available times: " + strings.Join(slots, ", ")}
}
