package models

import "time"

// Caller is the per-phone-number customer record. Created on first contact,
// its call counter is bumped each time the number calls in and its name may
// be filled in once the conversation reveals it.
type Caller struct {
	ID                string    `bson:"id" json:"id"`
	PhoneNumber       string    `bson:"phone_number" json:"phoneNumber"`
	Name              string    `bson:"name,omitempty" json:"name,omitempty"`
	Email             string    `bson:"email,omitempty" json:"email,omitempty"`
	Notes             string    `bson:"notes,omitempty" json:"notes,omitempty"`
	TotalCalls        int       `bson:"total_calls" json:"totalCalls"`
	TotalAppointments int       `bson:"total_appointments" json:"totalAppointments"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	LastCallAt        time.Time `bson:"last_call_at" json:"lastCallAt"`
}
