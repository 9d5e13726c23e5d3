// File: services/voice/service.go
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"receptionist/config"
	appointmentRepo "receptionist/database/repository/appointment"
	callerRepo "receptionist/database/repository/caller"
	"receptionist/database/repository/callstate"
	"receptionist/models"
	"receptionist/services/ai"
	"receptionist/services/availability"
	"receptionist/services/extractor"

	"go.uber.org/zap"
)

// historyWindow is how many trailing transcript messages go to the model.
const historyWindow = 10

// apologyReply is spoken when the model cannot produce a turn. The call
// continues; only a mutual farewell ends it.
const apologyReply = "I apologize, I'm having a bit of trouble. Could you please repeat that?"

// ErrSlotUnavailable marks a booking request for a time the business cannot
// serve: a closed day, a time outside working hours, or a conflicting slot.
var ErrSlotUnavailable = errors.New("requested time slot is not available")

// Service orchestrates one phone conversation turn at a time: slot
// extraction, availability context, booking, and the spoken reply.
type Service struct {
	Provider     ai.ChatProvider
	Extractor    *extractor.Extractor
	Store        callstate.Store
	Callers      callerRepo.Repository
	Ledger       appointmentRepo.Repository
	Availability *availability.Engine
	Logger       *zap.Logger
	Now          func() time.Time
}

// GetGreeting opens a call: it creates the conversation context and returns
// the first thing the receptionist says. Returning callers with a known name
// get a personalized greeting.
func (s *Service) GetGreeting(ctx context.Context, callerPhone, callID string) (string, error) {
	caller, err := s.Callers.GetOrCreate(ctx, callerPhone)
	if err != nil {
		return "", fmt.Errorf("failed to load caller %s: %w", callerPhone, err)
	}

	cc := models.NewCallContext(callID, callerPhone)
	cc.CallerName = caller.Name

	var greeting string
	if caller.Name != "" && caller.TotalCalls > 1 {
		greeting = fmt.Sprintf("Hello %s, welcome back to %s! How can I help you today?",
			caller.Name, config.Business.BusinessName)
	} else {
		greeting = fmt.Sprintf("Thank you for calling %s. My name is Sarah, how may I assist you today?",
			config.Business.BusinessName)
	}

	cc.AppendMessage(models.RoleAssistant, greeting)
	if err := s.Store.Put(ctx, cc); err != nil {
		s.Logger.Warn("Failed to persist greeting context",
			zap.String("callId", callID), zap.Error(err))
	}
	return greeting, nil
}

// HandleUtterance runs one conversation turn and returns the reply to speak.
// Extraction, booking, and persistence failures degrade the turn but never
// abort the call.
func (s *Service) HandleUtterance(ctx context.Context, callID, callerPhone, text string) (models.VoiceReply, error) {
	cc, err := s.Store.Get(ctx, callID)
	if err != nil {
		s.Logger.Warn("Failed to load call context, starting fresh",
			zap.String("callId", callID), zap.Error(err))
	}
	if cc == nil {
		cc = models.NewCallContext(callID, callerPhone)
		if caller, err := s.Callers.GetByPhone(ctx, callerPhone); err == nil && caller != nil {
			cc.CallerName = caller.Name
		}
	}
	cc.AppendMessage(models.RoleUser, text)

	extracted := s.Extractor.Extract(ctx, text, cc.Slots())
	if nameChanged := cc.ApplyExtraction(extracted); nameChanged {
		if err := s.Callers.UpdateName(ctx, callerPhone, cc.CallerName); err != nil {
			s.Logger.Warn("Failed to propagate caller name",
				zap.String("phone", callerPhone), zap.Error(err))
		}
	}

	// Booking happens before the context note is built, so the note reflects
	// the ledger state the model is actually replying about.
	var bookingNote string
	if s.readyToBook(cc, extracted) {
		bookingNote = s.attemptBooking(ctx, cc)
	}

	msgs := []models.ChatMessage{{Role: models.RoleSystem, Content: s.systemPrompt()}}
	if note := s.bookingContextNote(ctx, cc); note != "" {
		msgs = append(msgs, models.ChatMessage{Role: models.RoleSystem, Content: note})
	}
	msgs = append(msgs, cc.RecentMessages(historyWindow)...)
	if bookingNote != "" {
		msgs = append(msgs, models.ChatMessage{Role: models.RoleSystem, Content: bookingNote})
	}

	reply, err := s.Provider.Chat(ctx, msgs, 0.7, 150)
	if err != nil {
		s.Logger.Error("Chat provider failed, apologizing",
			zap.String("callId", callID), zap.Error(err))
		return models.VoiceReply{Text: apologyReply, EndCall: false}, nil
	}

	cc.AppendMessage(models.RoleAssistant, reply)
	if err := s.Store.Put(ctx, cc); err != nil {
		s.Logger.Warn("Failed to persist call context",
			zap.String("callId", callID), zap.Error(err))
	}

	return models.VoiceReply{
		Text:    reply,
		EndCall: shouldEndCall(text, reply),
	}, nil
}

// readyToBook gates the booking attempt: all four slots known and the caller
// confirmed in this very utterance.
func (s *Service) readyToBook(cc *models.CallContext, extracted models.Extraction) bool {
	return cc.CallerName != "" &&
		cc.RequestedService != "" &&
		cc.RequestedDate != "" &&
		cc.RequestedTime != "" &&
		extracted.IsConfirming
}

// CheckAvailability answers an availability query for a date and service.
func (s *Service) CheckAvailability(ctx context.Context, date, serviceName string) (*models.AvailabilityResult, error) {
	return s.Availability.SlotsForDate(ctx, date, serviceName)
}

// CreateAppointmentDirect books an appointment outside the voice flow, with
// the same service validation and conflict handling as a spoken booking.
func (s *Service) CreateAppointmentDirect(ctx context.Context, input models.AppointmentInput) (string, error) {
	svc := config.Business.FindService(input.ServiceName)
	if svc == nil {
		return "", fmt.Errorf("unknown service %q", input.ServiceName)
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return "", fmt.Errorf("invalid appointment date %q", input.Date)
	}

	ok, err := s.Availability.IsSlotAvailable(ctx, input.Date, input.Time, svc.DurationMinutes)
	if err != nil {
		return "", fmt.Errorf("availability check failed: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, input.Time, input.Date)
	}

	appt := &models.Appointment{
		CallerName:      input.CallerName,
		CallerPhone:     input.CallerPhone,
		ServiceName:     svc.Name,
		AppointmentDate: input.Date,
		AppointmentTime: input.Time,
		DurationMinutes: svc.DurationMinutes,
		Notes:           input.Notes,
	}
	if caller, err := s.Callers.GetByPhone(ctx, input.CallerPhone); err == nil && caller != nil {
		appt.CallerID = caller.ID
	}
	return s.Ledger.Create(ctx, appt)
}

// EndCall discards the conversation context once the call is over.
func (s *Service) EndCall(ctx context.Context, callID string) error {
	return s.Store.Delete(ctx, callID)
}

// Farewell markers. The call ends only when the caller AND the receptionist
// both sound like they are wrapping up in the same turn.
var (
	userFarewells = []string{
		"goodbye", "bye", "thank you", "thanks", "that's all",
		"have a good", "take care", "see you", "nothing else",
	}
	assistantFarewells = []string{
		"goodbye", "bye", "take care", "have a great",
	}
)

func shouldEndCall(userInput, reply string) bool {
	return containsAny(strings.ToLower(userInput), userFarewells) &&
		containsAny(strings.ToLower(reply), assistantFarewells)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
