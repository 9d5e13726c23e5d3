package models

import "time"

// Call statuses as reported by the telephony provider's status webhook.
const (
	CallInProgress = "in-progress"
	CallCompleted  = "completed"
	CallFailed     = "failed"
	CallNoAnswer   = "no-answer"
)

// CallLog records one phone call handled by the receptionist.
type CallLog struct {
	ID          string    `bson:"id" json:"id"`
	CallSID     string    `bson:"call_sid" json:"callSid"`
	CallerPhone string    `bson:"caller_phone" json:"callerPhone"`
	Status      string    `bson:"status" json:"status"`
	Turns       int       `bson:"turns" json:"turns"`
	StartedAt   time.Time `bson:"started_at" json:"startedAt"`
	EndedAt     time.Time `bson:"ended_at,omitempty" json:"endedAt,omitempty"`
}
