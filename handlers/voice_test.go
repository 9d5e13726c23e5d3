// File: handlers/voice_test.go
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"receptionist/config"
	appointmentRepo "receptionist/database/repository/appointment"
	callerRepo "receptionist/database/repository/caller"
	calllogRepo "receptionist/database/repository/calllog"
	"receptionist/database/repository/callstate"
	"receptionist/models"
	"receptionist/services/availability"
	"receptionist/services/extractor"
	"receptionist/services/voice"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubProvider struct {
	reply string
}

func (p *stubProvider) Chat(ctx context.Context, msgs []models.ChatMessage, temperature float32, maxTokens int) (string, error) {
	return p.reply, nil
}

func newVoiceTestRouter(t *testing.T, chatReply string) (*gin.Engine, *calllogRepo.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Business = config.BusinessConfig{
		BusinessName: "Bella Salon",
		WorkingHours: config.WorkingHours{
			Monday: "9:00 AM - 5:00 PM", Tuesday: "9:00 AM - 5:00 PM",
			Wednesday: "9:00 AM - 5:00 PM", Thursday: "9:00 AM - 5:00 PM",
			Friday: "9:00 AM - 5:00 PM", Saturday: "10:00 AM - 2:00 PM",
			Sunday: "Closed",
		},
		Services: []config.Service{{Name: "Haircut", Price: 1500, DurationMinutes: 30}},
	}

	logger := zap.NewNop()
	ledger := appointmentRepo.NewMemoryRepo()
	callLogs := calllogRepo.NewMemoryRepo()

	chatAI := &stubProvider{reply: chatReply}
	extractAI := &stubProvider{reply: `{"name": null, "service": null, "date": null, "time": null, "is_confirming": false}`}

	svc := &voice.Service{
		Provider:     chatAI,
		Extractor:    extractor.New(extractAI, logger),
		Store:        callstate.NewMemoryStore(),
		Callers:      callerRepo.NewMemoryRepo(),
		Ledger:       ledger,
		Availability: availability.NewEngine(ledger, logger),
		Logger:       logger,
		Now:          time.Now,
	}

	router := gin.New()
	h := NewVoiceHandler(svc, callLogs, logger)
	router.POST("/voice/incoming", h.IncomingCallHandler)
	router.POST("/voice/respond", h.SpeechHandler)
	router.POST("/voice/no-input", h.NoInputHandler)
	router.POST("/voice/status", h.StatusHandler)
	return router, callLogs
}

func postForm(t *testing.T, router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIncomingCallAnswersWithGreetingTwiML(t *testing.T) {
	router, callLogs := newVoiceTestRouter(t, "")

	w := postForm(t, router, "/voice/incoming", url.Values{
		"CallSid": {"CA100"},
		"From":    {"+923001112233"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "<Gather") || !strings.Contains(body, "Thank you for calling Bella Salon") {
		t.Errorf("unexpected TwiML:\n%s", body)
	}
	if !strings.Contains(body, `action="/voice/respond"`) {
		t.Errorf("gather must post back to /voice/respond:\n%s", body)
	}

	logs, err := callLogs.GetRecent(context.Background(), 10)
	if err != nil || len(logs) != 1 {
		t.Fatalf("call log not started: %v %d", err, len(logs))
	}
	if logs[0].Status != models.CallInProgress {
		t.Errorf("call status = %q", logs[0].Status)
	}
}

func TestIncomingCallWithoutSIDIsRejected(t *testing.T) {
	router, _ := newVoiceTestRouter(t, "")
	w := postForm(t, router, "/voice/incoming", url.Values{"From": {"+923001112233"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSpeechTurnGathersAgain(t *testing.T) {
	router, callLogs := newVoiceTestRouter(t, "Certainly, what day would suit you?")
	if err := callLogs.Start(context.Background(), "CA100", "+923001112233"); err != nil {
		t.Fatal(err)
	}

	w := postForm(t, router, "/voice/respond", url.Values{
		"CallSid":      {"CA100"},
		"From":         {"+923001112233"},
		"SpeechResult": {"I'd like a haircut"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Certainly, what day would suit you?") || !strings.Contains(body, "<Gather") {
		t.Errorf("unexpected TwiML:\n%s", body)
	}

	logs, _ := callLogs.GetRecent(context.Background(), 1)
	if logs[0].Turns != 1 {
		t.Errorf("turns = %d, want 1", logs[0].Turns)
	}
}

func TestMutualFarewellHangsUp(t *testing.T) {
	router, _ := newVoiceTestRouter(t, "Goodbye, take care!")

	w := postForm(t, router, "/voice/respond", url.Values{
		"CallSid":      {"CA100"},
		"From":         {"+923001112233"},
		"SpeechResult": {"thanks, goodbye"},
	})
	body := w.Body.String()
	if !strings.Contains(body, "<Hangup") {
		t.Errorf("expected hangup TwiML:\n%s", body)
	}
	if strings.Contains(body, "<Gather") {
		t.Errorf("ended call must not gather:\n%s", body)
	}
}

func TestEmptySpeechReprompts(t *testing.T) {
	router, _ := newVoiceTestRouter(t, "")
	w := postForm(t, router, "/voice/respond", url.Values{
		"CallSid": {"CA100"},
		"From":    {"+923001112233"},
	})
	// The TwiML encoder escapes the apostrophe in the reprompt text.
	if !strings.Contains(w.Body.String(), "didn&#39;t catch that") {
		t.Errorf("expected reprompt:\n%s", w.Body.String())
	}
}

func TestStatusWebhookClosesCall(t *testing.T) {
	router, callLogs := newVoiceTestRouter(t, "")
	if err := callLogs.Start(context.Background(), "CA100", "+923001112233"); err != nil {
		t.Fatal(err)
	}

	w := postForm(t, router, "/voice/status", url.Values{
		"CallSid":    {"CA100"},
		"CallStatus": {"completed"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	logs, _ := callLogs.GetRecent(context.Background(), 1)
	if logs[0].Status != models.CallCompleted {
		t.Errorf("call status = %q", logs[0].Status)
	}
	if logs[0].EndedAt.IsZero() {
		t.Error("ended_at not stamped")
	}
}
