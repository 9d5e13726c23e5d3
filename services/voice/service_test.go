// File: services/voice/service_test.go
package voice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"receptionist/config"
	appointmentRepo "receptionist/database/repository/appointment"
	callerRepo "receptionist/database/repository/caller"
	"receptionist/database/repository/callstate"
	"receptionist/models"
	"receptionist/services/availability"
	"receptionist/services/extractor"

	"go.uber.org/zap"
)

const (
	testMonday = "2025-03-10"
	testPhone  = "+923001112233"
	testCall   = "CA-test-1"
)

type scriptedProvider struct {
	reply        string
	err          error
	lastMessages []models.ChatMessage
}

func (p *scriptedProvider) Chat(ctx context.Context, msgs []models.ChatMessage, temperature float32, maxTokens int) (string, error) {
	p.lastMessages = msgs
	return p.reply, p.err
}

type fixture struct {
	svc       *Service
	chat      *scriptedProvider
	extractAI *scriptedProvider
	store     *callstate.MemoryStore
	callers   *callerRepo.MemoryRepo
	ledger    *appointmentRepo.MemoryRepo
}

func newFixture(chatReply, extractReply string) *fixture {
	config.Business = config.BusinessConfig{
		BusinessName: "Bella Salon",
		ContactInfo:  config.ContactInfo{Phone: "+92 300 0000000"},
		WorkingHours: config.WorkingHours{
			Monday: "9:00 AM - 5:00 PM", Tuesday: "9:00 AM - 5:00 PM",
			Wednesday: "9:00 AM - 5:00 PM", Thursday: "9:00 AM - 5:00 PM",
			Friday: "9:00 AM - 5:00 PM", Saturday: "10:00 AM - 2:00 PM",
			Sunday: "Closed",
		},
		Services: []config.Service{
			{Name: "Haircut", Price: 1500, DurationMinutes: 30},
			{Name: "Facial", Price: 2500, DurationMinutes: 60},
		},
	}

	logger := zap.NewNop()
	chat := &scriptedProvider{reply: chatReply}
	extractAI := &scriptedProvider{reply: extractReply}
	store := callstate.NewMemoryStore()
	callers := callerRepo.NewMemoryRepo()
	ledger := appointmentRepo.NewMemoryRepo()
	engine := availability.NewEngine(ledger, logger)

	ex := extractor.New(extractAI, logger)
	ex.Now = func() time.Time { return time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC) }

	svc := &Service{
		Provider:     chat,
		Extractor:    ex,
		Store:        store,
		Callers:      callers,
		Ledger:       ledger,
		Availability: engine,
		Logger:       logger,
		Now:          func() time.Time { return time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC) },
	}
	return &fixture{svc: svc, chat: chat, extractAI: extractAI, store: store, callers: callers, ledger: ledger}
}

const emptyExtraction = `{"name": null, "service": null, "date": null, "time": null, "is_confirming": false}`

func seedContext(t *testing.T, f *fixture, cc *models.CallContext) {
	t.Helper()
	if err := f.store.Put(context.Background(), cc); err != nil {
		t.Fatalf("seed context: %v", err)
	}
}

func TestGetGreetingFirstCall(t *testing.T) {
	f := newFixture("", emptyExtraction)

	greeting, err := f.svc.GetGreeting(context.Background(), testPhone, testCall)
	if err != nil {
		t.Fatalf("GetGreeting: %v", err)
	}
	if !strings.Contains(greeting, "Thank you for calling Bella Salon") {
		t.Errorf("greeting = %q", greeting)
	}

	cc, err := f.store.Get(context.Background(), testCall)
	if err != nil || cc == nil {
		t.Fatalf("context not stored: %v", err)
	}
	if len(cc.Messages) != 1 || cc.Messages[0].Role != models.RoleAssistant {
		t.Errorf("greeting not on transcript: %+v", cc.Messages)
	}
}

func TestGetGreetingReturningCaller(t *testing.T) {
	f := newFixture("", emptyExtraction)
	// First call establishes the record and the name.
	if _, err := f.callers.GetOrCreate(context.Background(), testPhone); err != nil {
		t.Fatal(err)
	}
	if err := f.callers.UpdateName(context.Background(), testPhone, "Amina"); err != nil {
		t.Fatal(err)
	}

	greeting, err := f.svc.GetGreeting(context.Background(), testPhone, testCall)
	if err != nil {
		t.Fatalf("GetGreeting: %v", err)
	}
	if !strings.Contains(greeting, "Hello Amina, welcome back") {
		t.Errorf("expected personalized greeting, got %q", greeting)
	}
}

func TestGetGreetingNamedButFirstCallIsGeneric(t *testing.T) {
	f := newFixture("", emptyExtraction)
	// A name alone is not enough; the caller must have called before.
	greeting, err := f.svc.GetGreeting(context.Background(), testPhone, testCall)
	if err != nil {
		t.Fatalf("GetGreeting: %v", err)
	}
	if strings.Contains(greeting, "welcome back") {
		t.Errorf("first call should get the generic greeting, got %q", greeting)
	}
}

func TestHandleUtteranceBooksWhenConfirmed(t *testing.T) {
	f := newFixture("Wonderful, you're all set for Monday at two!",
		`{"name": null, "service": null, "date": null, "time": "14:00", "is_confirming": true}`)

	cc := models.NewCallContext(testCall, testPhone)
	cc.CallerName = "Amina"
	cc.RequestedService = "Haircut"
	cc.RequestedDate = testMonday
	seedContext(t, f, cc)

	reply, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "yes, two pm works, book it")
	if err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	if reply.EndCall {
		t.Error("booking turn should not end the call")
	}

	appts, err := f.ledger.GetForDate(context.Background(), testMonday)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected one appointment, got %d", len(appts))
	}
	got := appts[0]
	if got.ServiceName != "Haircut" || got.AppointmentTime != "14:00" || got.CallerName != "Amina" {
		t.Errorf("booked appointment = %+v", got)
	}
	if got.Status != models.StatusScheduled {
		t.Errorf("status = %q, want scheduled", got.Status)
	}

	note := f.chat.lastMessages[len(f.chat.lastMessages)-1]
	if note.Role != models.RoleSystem || !strings.Contains(note.Content, "BOOKING CONFIRMED") {
		t.Errorf("expected BOOKING CONFIRMED system note, got %+v", note)
	}
}

func TestHandleUtteranceBookingTurnSeesFreshAvailability(t *testing.T) {
	f := newFixture("You're booked for nine!",
		`{"name": null, "service": null, "date": null, "time": "09:00", "is_confirming": true}`)

	cc := models.NewCallContext(testCall, testPhone)
	cc.CallerName = "Amina"
	cc.RequestedService = "Haircut"
	cc.RequestedDate = testMonday
	seedContext(t, f, cc)

	if _, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "yes, nine works, book it"); err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}

	// The availability line must reflect the booking made this turn: the
	// just-booked 09:00 slot may no longer be offered as open.
	var availLine string
	for _, m := range f.chat.lastMessages {
		if m.Role != models.RoleSystem {
			continue
		}
		for _, line := range strings.Split(m.Content, "\n") {
			if strings.HasPrefix(line, "Available times:") {
				availLine = line
			}
		}
	}
	if availLine == "" {
		t.Fatalf("no availability note in prompt: %+v", f.chat.lastMessages)
	}
	if strings.Contains(availLine, "09:00") {
		t.Errorf("booked slot still offered as available: %q", availLine)
	}
	if !strings.Contains(availLine, "09:30") {
		t.Errorf("next open slot missing from note: %q", availLine)
	}
}

func TestHandleUtteranceNoBookingWithoutConfirmation(t *testing.T) {
	f := newFixture("Shall I book that for you?",
		`{"name": null, "service": null, "date": null, "time": "14:00", "is_confirming": false}`)

	cc := models.NewCallContext(testCall, testPhone)
	cc.CallerName = "Amina"
	cc.RequestedService = "Haircut"
	cc.RequestedDate = testMonday
	seedContext(t, f, cc)

	if _, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "maybe two pm"); err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	appts, _ := f.ledger.GetForDate(context.Background(), testMonday)
	if len(appts) != 0 {
		t.Errorf("nothing should be booked without confirmation, got %d", len(appts))
	}
	for _, m := range f.chat.lastMessages {
		if strings.Contains(m.Content, "BOOKING") {
			t.Errorf("no booking note expected, got %q", m.Content)
		}
	}
}

func TestHandleUtteranceConflictSuggestsAlternatives(t *testing.T) {
	f := newFixture("I'm sorry, that time is taken.",
		`{"name": null, "service": null, "date": null, "time": null, "is_confirming": true}`)

	if _, err := f.ledger.Create(context.Background(), &models.Appointment{
		CallerName: "Omar", CallerPhone: "+920000000009",
		ServiceName: "Haircut", AppointmentDate: testMonday,
		AppointmentTime: "14:00", DurationMinutes: 30,
	}); err != nil {
		t.Fatal(err)
	}

	cc := models.NewCallContext(testCall, testPhone)
	cc.CallerName = "Amina"
	cc.RequestedService = "Haircut"
	cc.RequestedDate = testMonday
	cc.RequestedTime = "14:00"
	seedContext(t, f, cc)

	if _, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "yes book it please"); err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}

	appts, _ := f.ledger.GetForDate(context.Background(), testMonday)
	if len(appts) != 1 {
		t.Fatalf("conflicting booking must not be created, have %d", len(appts))
	}
	note := f.chat.lastMessages[len(f.chat.lastMessages)-1]
	if !strings.Contains(note.Content, "BOOKING ISSUE") {
		t.Errorf("expected BOOKING ISSUE note, got %q", note.Content)
	}
	if !strings.Contains(note.Content, "Alternatives: 09:00") {
		t.Errorf("expected alternatives in note, got %q", note.Content)
	}
}

func TestHandleUtteranceUnknownServiceIsAnIssue(t *testing.T) {
	f := newFixture("We don't offer that, I'm afraid.",
		`{"name": null, "service": null, "date": null, "time": null, "is_confirming": true}`)

	cc := models.NewCallContext(testCall, testPhone)
	cc.CallerName = "Amina"
	cc.RequestedService = "Tattoo"
	cc.RequestedDate = testMonday
	cc.RequestedTime = "14:00"
	seedContext(t, f, cc)

	if _, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "yes go ahead"); err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}
	note := f.chat.lastMessages[len(f.chat.lastMessages)-1]
	if !strings.Contains(note.Content, "BOOKING ISSUE") || !strings.Contains(note.Content, "Tattoo") {
		t.Errorf("expected unknown-service issue note, got %q", note.Content)
	}
}

func TestHandleUtteranceProviderFailureApologizes(t *testing.T) {
	f := newFixture("", emptyExtraction)
	f.chat.err = errors.New("upstream 500")

	reply, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "hello?")
	if err != nil {
		t.Fatalf("provider failure must not surface: %v", err)
	}
	if reply.Text != apologyReply {
		t.Errorf("reply = %q", reply.Text)
	}
	if reply.EndCall {
		t.Error("a failed turn must not end the call")
	}
}

func TestHandleUtterancePropagatesName(t *testing.T) {
	f := newFixture("Nice to meet you, Sara!",
		`{"name": "Sara", "service": null, "date": null, "time": null, "is_confirming": false}`)

	if _, err := f.callers.GetOrCreate(context.Background(), testPhone); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.HandleUtterance(context.Background(), testCall, testPhone, "hi, I'm Sara"); err != nil {
		t.Fatalf("HandleUtterance: %v", err)
	}

	caller, err := f.callers.GetByPhone(context.Background(), testPhone)
	if err != nil || caller == nil {
		t.Fatalf("caller lookup: %v", err)
	}
	if caller.Name != "Sara" {
		t.Errorf("caller name = %q, want Sara", caller.Name)
	}

	cc, _ := f.store.Get(context.Background(), testCall)
	if cc == nil || cc.CallerName != "Sara" {
		t.Errorf("context name not merged: %+v", cc)
	}
}

func TestShouldEndCall(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		reply string
		want  bool
	}{
		{"mutual goodbye", "okay goodbye!", "Goodbye, take care!", true},
		{"thanks plus farewell reply", "thanks, that's all", "You're welcome, have a great day!", true},
		{"user only", "bye now", "Would you like to book anything else?", false},
		{"assistant only", "what time are you open?", "We open at nine. Goodbye!", false},
		{"neither", "book me a haircut", "Certainly, what day suits you?", false},
		{"case insensitive", "THANK YOU, BYE", "GOODBYE!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldEndCall(tt.user, tt.reply); got != tt.want {
				t.Errorf("shouldEndCall(%q, %q) = %v, want %v", tt.user, tt.reply, got, tt.want)
			}
		})
	}
}

func TestEndCallDeletesContext(t *testing.T) {
	f := newFixture("", emptyExtraction)
	seedContext(t, f, models.NewCallContext(testCall, testPhone))

	if err := f.svc.EndCall(context.Background(), testCall); err != nil {
		t.Fatalf("EndCall: %v", err)
	}
	cc, err := f.store.Get(context.Background(), testCall)
	if err != nil {
		t.Fatal(err)
	}
	if cc != nil {
		t.Error("context should be gone after EndCall")
	}
	// Deleting again is not an error.
	if err := f.svc.EndCall(context.Background(), testCall); err != nil {
		t.Errorf("repeated EndCall: %v", err)
	}
}

func TestCreateAppointmentDirect(t *testing.T) {
	f := newFixture("", emptyExtraction)

	id, err := f.svc.CreateAppointmentDirect(context.Background(), models.AppointmentInput{
		CallerName:  "Omar",
		CallerPhone: "+920000000009",
		ServiceName: "facial",
		Date:        testMonday,
		Time:        "11:00",
	})
	if err != nil {
		t.Fatalf("CreateAppointmentDirect: %v", err)
	}
	appt, err := f.ledger.GetByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if appt.ServiceName != "Facial" || appt.DurationMinutes != 60 {
		t.Errorf("service not canonicalized: %+v", appt)
	}

	if _, err := f.svc.CreateAppointmentDirect(context.Background(), models.AppointmentInput{
		CallerName:  "Zara",
		CallerPhone: "+920000000010",
		ServiceName: "Tattoo",
		Date:        testMonday,
		Time:        "12:00",
	}); err == nil {
		t.Error("unknown service must be rejected")
	}

	if _, err := f.svc.CreateAppointmentDirect(context.Background(), models.AppointmentInput{
		CallerName:  "Zara",
		CallerPhone: "+920000000010",
		ServiceName: "Facial",
		Date:        testMonday,
		Time:        "11:30",
	}); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable for overlap, got %v", err)
	}
}

func TestCreateAppointmentDirectRejectsClosedDay(t *testing.T) {
	f := newFixture("", emptyExtraction)
	sunday := "2025-03-09"

	cases := []struct {
		name string
		date string
		time string
	}{
		{"closed day", sunday, "11:00"},
		{"before opening", testMonday, "08:00"},
		{"runs past closing", testMonday, "16:45"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateAppointmentDirect(context.Background(), models.AppointmentInput{
				CallerName:  "Omar",
				CallerPhone: "+920000000009",
				ServiceName: "Haircut",
				Date:        tt.date,
				Time:        tt.time,
			})
			if !errors.Is(err, ErrSlotUnavailable) {
				t.Errorf("expected ErrSlotUnavailable, got %v", err)
			}
			appts, _ := f.ledger.GetForDate(context.Background(), tt.date)
			if len(appts) != 0 {
				t.Errorf("nothing should be persisted, got %d", len(appts))
			}
		})
	}
}
