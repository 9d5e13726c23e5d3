package models

import "time"

// Conversation phases. The phase is derived from the slots filled so far and
// is informational only; booking is gated on slot completeness, never on the
// phase value.
const (
	StateGreeting             = "greeting"
	StateGatheringInfo        = "gathering_info"
	StateCheckingAvailability = "checking_availability"
	StateConfirmingBooking    = "confirming_booking"
	StateProvidingInfo        = "providing_info"
	StateFarewell             = "farewell"
)

// CallContext is the accumulated state of one in-progress call, keyed by the
// telephony provider's call identifier. It lives in the call-state store for
// the duration of the call and is deleted when the call ends.
type CallContext struct {
	CallID           string        `json:"callId"`
	CallerPhone      string        `json:"callerPhone"`
	State            string        `json:"state"`
	CallerName       string        `json:"callerName,omitempty"`
	RequestedService string        `json:"requestedService,omitempty"`
	RequestedDate    string        `json:"requestedDate,omitempty"`
	RequestedTime    string        `json:"requestedTime,omitempty"`
	Messages         []ChatMessage `json:"messages"`
	ExtractedInfo    *Extraction   `json:"extractedInfo,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// NewCallContext initializes the context for a fresh call.
func NewCallContext(callID, callerPhone string) *CallContext {
	now := time.Now()
	return &CallContext{
		CallID:      callID,
		CallerPhone: callerPhone,
		State:       StateGreeting,
		Messages:    []ChatMessage{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AppendMessage adds a message to the running transcript.
func (c *CallContext) AppendMessage(role, content string) {
	c.Messages = append(c.Messages, ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// RecentMessages returns the trailing n messages of the transcript.
func (c *CallContext) RecentMessages(n int) []ChatMessage {
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}

// Slots returns the booking fields known so far.
func (c *CallContext) Slots() BookingSlots {
	return BookingSlots{
		Name:    c.CallerName,
		Service: c.RequestedService,
		Date:    c.RequestedDate,
		Time:    c.RequestedTime,
	}
}

// ApplyExtraction merges non-empty extracted fields into the context. Known
// values are only ever replaced by new non-empty values, never cleared.
// Returns true when the caller name changed, so it can be propagated to the
// caller record.
func (c *CallContext) ApplyExtraction(ex Extraction) (nameChanged bool) {
	if ex.Name != "" && ex.Name != c.CallerName {
		c.CallerName = ex.Name
		nameChanged = true
	}
	if ex.Service != "" {
		c.RequestedService = ex.Service
	}
	if ex.Date != "" {
		c.RequestedDate = ex.Date
	}
	if ex.Time != "" {
		c.RequestedTime = ex.Time
	}
	c.ExtractedInfo = &ex
	c.State = c.deriveState(ex.IsConfirming)
	return nameChanged
}

// deriveState recomputes the informational phase from the filled slots.
func (c *CallContext) deriveState(confirming bool) string {
	filled := 0
	for _, v := range []string{c.CallerName, c.RequestedService, c.RequestedDate, c.RequestedTime} {
		if v != "" {
			filled++
		}
	}
	switch {
	case filled == 4 && confirming:
		return StateConfirmingBooking
	case filled == 4:
		return StateCheckingAvailability
	case filled > 0:
		return StateGatheringInfo
	case len(c.Messages) <= 1:
		return StateGreeting
	default:
		return StateProvidingInfo
	}
}
