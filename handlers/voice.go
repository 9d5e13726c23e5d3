// File: handlers/voice.go
package handlers

import (
	"net/http"
	"strings"

	calllogRepo "receptionist/database/repository/calllog"
	"receptionist/models"
	"receptionist/services/voice"
	"receptionist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VoiceHandler adapts Twilio-style voice webhooks onto the conversation
// service. Every response body is TwiML.
type VoiceHandler struct {
	Voice    *voice.Service
	CallLogs calllogRepo.Repository
	Logger   *zap.Logger
}

func NewVoiceHandler(svc *voice.Service, callLogs calllogRepo.Repository, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{Voice: svc, CallLogs: callLogs, Logger: logger}
}

const (
	repeatPrompt   = "I'm sorry, I didn't catch that. Could you please repeat?"
	troubleGoodbye = "We're sorry, we're experiencing technical difficulties. Please try again later."
)

// IncomingCallHandler answers a new call with the greeting and starts
// listening for speech.
func (h *VoiceHandler) IncomingCallHandler(c *gin.Context) {
	callSID := c.PostForm("CallSid")
	from := c.PostForm("From")
	if callSID == "" {
		utils.JSONError(c, http.StatusBadRequest, "CallSid is required", "")
		return
	}

	if err := h.CallLogs.Start(c.Request.Context(), callSID, from); err != nil {
		h.Logger.Warn("Failed to record call start",
			zap.String("callSid", callSID), zap.Error(err))
	}

	greeting, err := h.Voice.GetGreeting(c.Request.Context(), from, callSID)
	if err != nil {
		h.Logger.Error("Greeting failed", zap.String("callSid", callSID), zap.Error(err))
		h.respondTwiML(c, sayAndHangup(troubleGoodbye))
		return
	}
	h.respondTwiML(c, gatherSpeech(greeting, "/voice/respond"))
}

// SpeechHandler runs one conversation turn on the transcribed utterance.
func (h *VoiceHandler) SpeechHandler(c *gin.Context) {
	callSID := c.PostForm("CallSid")
	from := c.PostForm("From")
	speech := strings.TrimSpace(c.PostForm("SpeechResult"))
	if callSID == "" {
		utils.JSONError(c, http.StatusBadRequest, "CallSid is required", "")
		return
	}
	if speech == "" {
		h.respondTwiML(c, gatherSpeech(repeatPrompt, "/voice/respond"))
		return
	}

	if err := h.CallLogs.IncrementTurns(c.Request.Context(), callSID); err != nil {
		h.Logger.Warn("Failed to count turn", zap.String("callSid", callSID), zap.Error(err))
	}

	reply, err := h.Voice.HandleUtterance(c.Request.Context(), callSID, from, speech)
	if err != nil {
		h.Logger.Error("Turn failed", zap.String("callSid", callSID), zap.Error(err))
		h.respondTwiML(c, gatherSpeech(repeatPrompt, "/voice/respond"))
		return
	}

	if reply.EndCall {
		if err := h.Voice.EndCall(c.Request.Context(), callSID); err != nil {
			h.Logger.Warn("Failed to clear call context",
				zap.String("callSid", callSID), zap.Error(err))
		}
		h.respondTwiML(c, sayAndHangup(reply.Text))
		return
	}
	h.respondTwiML(c, gatherSpeech(reply.Text, "/voice/respond"))
}

// NoInputHandler re-prompts once after silence, then hangs up on the next
// timeout via the trailing farewell.
func (h *VoiceHandler) NoInputHandler(c *gin.Context) {
	resp := gatherSpeech(repeatPrompt, "/voice/respond")
	resp.Verbs = append(resp.Verbs,
		twimlSay{Voice: "alice", Text: "I'm sorry, I'm having trouble hearing you. Please call back when you're ready. Goodbye!"},
		twimlHangup{},
	)
	h.respondTwiML(c, resp)
}

// twilioStatusMap translates Twilio lifecycle statuses onto call log statuses.
var twilioStatusMap = map[string]string{
	"completed": models.CallCompleted,
	"busy":      models.CallNoAnswer,
	"no-answer": models.CallNoAnswer,
	"canceled":  models.CallNoAnswer,
	"failed":    models.CallFailed,
}

// StatusHandler records the final call status and discards the conversation
// context.
func (h *VoiceHandler) StatusHandler(c *gin.Context) {
	callSID := c.PostForm("CallSid")
	callStatus := strings.ToLower(c.PostForm("CallStatus"))
	if callSID == "" {
		utils.JSONError(c, http.StatusBadRequest, "CallSid is required", "")
		return
	}

	status, ok := twilioStatusMap[callStatus]
	if !ok {
		status = models.CallCompleted
	}
	if err := h.CallLogs.SetStatus(c.Request.Context(), callSID, status); err != nil {
		h.Logger.Warn("Failed to record call status",
			zap.String("callSid", callSID), zap.String("status", status), zap.Error(err))
	}
	if err := h.Voice.EndCall(c.Request.Context(), callSID); err != nil {
		h.Logger.Warn("Failed to clear call context",
			zap.String("callSid", callSID), zap.Error(err))
	}
	c.Status(http.StatusOK)
}

func (h *VoiceHandler) respondTwiML(c *gin.Context, resp twimlResponse) {
	xml, err := renderTwiML(resp)
	if err != nil {
		h.Logger.Error("TwiML render failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml", []byte(xml))
}
