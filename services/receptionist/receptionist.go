// File: services/receptionist/receptionist.go
package receptionist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"receptionist/config"
	"receptionist/models"
	"receptionist/services/ai"

	"go.uber.org/zap"
)

// Chat intents. Inquiry intents get deterministic answers straight from
// config; the rest go through the model.
const (
	IntentGreeting       = "greeting"
	IntentServiceInquiry = "service_inquiry"
	IntentPricingInquiry = "pricing_inquiry"
	IntentWorkingHours   = "working_hours"
	IntentBookingRequest = "booking_request"
	IntentContactInfo    = "contact_info"
	IntentFallback       = "fallback"
)

const chatHistoryWindow = 5

const troubleReply = "I apologize, but I'm having trouble processing that right now. Could you please rephrase your question?"

// intentKeywords is checked in order; the first intent with a matching
// keyword wins.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{IntentServiceInquiry, []string{"service", "services", "what do you offer", "what can you do", "what's available"}},
	{IntentPricingInquiry, []string{"price", "cost", "how much", "pricing", "fee", "charge"}},
	{IntentWorkingHours, []string{"hours", "when are you open", "open", "closed", "availability", "time"}},
	{IntentBookingRequest, []string{"book", "appointment", "schedule", "reserve", "booking", "available time"}},
	{IntentContactInfo, []string{"contact", "phone", "email", "address", "location", "reach"}},
}

// Service answers text-chat messages on behalf of the business.
type Service struct {
	Provider ai.ChatProvider
	Logger   *zap.Logger
}

// DetectIntent classifies a message by keyword matching.
func (s *Service) DetectIntent(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent
			}
		}
	}
	return IntentFallback
}

// HandleMessage classifies the message and produces a reply together with
// the detected intent.
func (s *Service) HandleMessage(ctx context.Context, message string, history []models.ChatMessage) models.ChatResponse {
	intent := s.DetectIntent(message)
	return models.ChatResponse{
		Message: s.respond(ctx, message, intent, history),
		Intent:  intent,
	}
}

func (s *Service) respond(ctx context.Context, message, intent string, history []models.ChatMessage) string {
	switch intent {
	case IntentServiceInquiry:
		return servicesReply()
	case IntentPricingInquiry:
		return pricingReply()
	case IntentWorkingHours:
		return hoursReply()
	case IntentContactInfo:
		return contactReply()
	}

	msgs := []models.ChatMessage{{Role: models.RoleSystem, Content: contextPrompt(intent)}}
	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, models.ChatMessage{Role: models.RoleUser, Content: message})

	reply, err := s.Provider.Chat(ctx, msgs, 0.7, 200)
	if err != nil {
		s.Logger.Warn("Chat provider failed for text chat",
			zap.String("intent", intent), zap.Error(err))
		return troubleReply
	}
	if reply == "" {
		return "I'm here to help! How can I assist you today?"
	}
	return reply
}

func servicesReply() string {
	var sb strings.Builder
	sb.WriteString("Here are our services:\n")
	for _, svc := range config.Business.Services {
		fmt.Fprintf(&sb, "- %s: Rs.%.0f (%d minutes)\n", svc.Name, svc.Price, svc.DurationMinutes)
	}
	sb.WriteString("\nWould you like to book one of these services?")
	return sb.String()
}

func pricingReply() string {
	var sb strings.Builder
	sb.WriteString("Our pricing:\n")
	for _, svc := range config.Business.Services {
		fmt.Fprintf(&sb, "- %s: Rs.%.0f\n", svc.Name, svc.Price)
	}
	sb.WriteString("\nWould you like to schedule an appointment?")
	return sb.String()
}

func hoursReply() string {
	var sb strings.Builder
	sb.WriteString("Our working hours:\n")
	for _, day := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		fmt.Fprintf(&sb, "- %s: %s\n", day, config.Business.WorkingHours.For(day))
	}
	sb.WriteString("\nWhen would you like to book?")
	return sb.String()
}

func contactReply() string {
	contact := config.Business.ContactInfo
	return fmt.Sprintf("Here's how to reach us:\nPhone: %s\nEmail: %s\nAddress: %s\n\nWould you like to book an appointment?",
		contact.Phone, contact.Email, contact.Address)
}

// contextPrompt scopes the system prompt to the detected intent so booking
// chats get booking guidance without dumping the entire config every turn.
func contextPrompt(intent string) string {
	biz := config.Business
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional receptionist for %s.\n\n", biz.BusinessName)

	if intent == IntentBookingRequest {
		sb.WriteString("Available services:\n")
		for _, svc := range biz.Services {
			fmt.Fprintf(&sb, "- %s: Rs.%.0f (%d minutes)\n", svc.Name, svc.Price, svc.DurationMinutes)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`You should be:
- Polite and professional
- Friendly but concise
- Always business-focused
- Never mention AI, models, or technical systems
- Speak as a real receptionist would

Keep responses brief and natural. If the user wants to book, guide them on what information you need (date, time, service, name).`)
	return sb.String()
}
