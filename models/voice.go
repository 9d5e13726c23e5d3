package models

// VoiceReply is the outcome of one conversation turn.
type VoiceReply struct {
	Text    string `json:"text"`
	EndCall bool   `json:"shouldEndCall"`
}

// AvailabilityResult is the answer to an availability query for one date.
type AvailabilityResult struct {
	Date         string   `json:"date"`
	Available    bool     `json:"available"`
	Slots        []string `json:"slots"`
	WorkingHours string   `json:"workingHours,omitempty"`
	Message      string   `json:"message,omitempty"`
}
