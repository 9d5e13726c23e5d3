package models

// ChatRequest is an inbound web-chat message with optional prior history.
type ChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ChatMessage `json:"conversation_history,omitempty"`
}

// ChatResponse is the receptionist's answer plus the detected intent.
type ChatResponse struct {
	Message string `json:"message"`
	Intent  string `json:"intent"`
}
