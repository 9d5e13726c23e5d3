package models

import "time"

// Chat roles understood by the conversation engine and the LLM providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single role-tagged message in a conversation.
type ChatMessage struct {
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// BookingSlots holds the four booking fields known so far for a call.
// Empty string means "not yet provided".
type BookingSlots struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Date    string `json:"date"` // YYYY-MM-DD
	Time    string `json:"time"` // HH:MM, 24-hour
}

// Extraction is the structured result parsed from the model's reply to an
// extraction prompt. A zero value means the model gave us nothing usable
// this turn.
type Extraction struct {
	Name         string `json:"name"`
	Service      string `json:"service"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	IsConfirming bool   `json:"is_confirming"`
}

// Empty reports whether the extraction carries no new information.
func (e Extraction) Empty() bool {
	return e.Name == "" && e.Service == "" && e.Date == "" && e.Time == "" && !e.IsConfirming
}
