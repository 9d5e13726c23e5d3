// File: services/extractor/extractor.go
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"receptionist/config"
	"receptionist/models"
	"receptionist/services/ai"
	"receptionist/utils"

	"go.uber.org/zap"
)

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*?\}`)

// Extractor pulls structured booking fields out of a caller's utterance with
// one low-temperature LLM call. It never fails a turn: any provider or parse
// problem yields an empty extraction and the conversation carries on.
type Extractor struct {
	Provider ai.ChatProvider
	Logger   *zap.Logger
	Now      func() time.Time
}

func New(provider ai.ChatProvider, logger *zap.Logger) *Extractor {
	return &Extractor{Provider: provider, Logger: logger, Now: time.Now}
}

// Extract analyzes one utterance in the context of the slots already known.
func (e *Extractor) Extract(ctx context.Context, utterance string, known models.BookingSlots) models.Extraction {
	prompt := e.buildPrompt(utterance, known)
	msgs := []models.ChatMessage{{Role: models.RoleUser, Content: prompt}}

	raw, err := e.Provider.Chat(ctx, msgs, 0.1, 200)
	if err != nil {
		e.Logger.Warn("Extraction call failed, continuing without new info", zap.Error(err))
		return models.Extraction{}
	}

	ex, err := parseExtraction(raw)
	if err != nil {
		e.Logger.Warn("Could not parse extraction reply",
			zap.String("reply", raw), zap.Error(err))
		return models.Extraction{}
	}
	return e.normalize(ex)
}

func (e *Extractor) buildPrompt(utterance string, known models.BookingSlots) string {
	now := e.Now()
	var sb strings.Builder
	sb.WriteString("Extract appointment booking information from the customer's message.\n\n")
	fmt.Fprintf(&sb, "Today is %s (%s).\n", now.Format("2006-01-02"), now.Weekday())
	fmt.Fprintf(&sb, "Available services: %s.\n\n", strings.Join(config.Business.ServiceNames(), ", "))
	sb.WriteString("Information already known:\n")
	fmt.Fprintf(&sb, "- name: %s\n", orNotSpecified(known.Name))
	fmt.Fprintf(&sb, "- service: %s\n", orNotSpecified(known.Service))
	fmt.Fprintf(&sb, "- date: %s\n", orNotSpecified(known.Date))
	fmt.Fprintf(&sb, "- time: %s\n\n", orNotSpecified(known.Time))
	fmt.Fprintf(&sb, "Customer's message: %q\n\n", utterance)
	sb.WriteString("Respond with ONLY a JSON object, no other text:\n")
	sb.WriteString(`{"name": null, "service": null, "date": null, "time": null, "is_confirming": false}` + "\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Only include fields the customer actually mentioned in this message; use null otherwise.\n")
	sb.WriteString("- date must be YYYY-MM-DD, resolving relative dates like \"tomorrow\" or \"next Friday\" from today's date.\n")
	sb.WriteString("- time must be HH:MM in 24-hour format.\n")
	sb.WriteString("- service must be one of the available services if the customer's wording matches one.\n")
	sb.WriteString("- is_confirming is true only when the customer is agreeing to book the appointment as discussed.\n")
	return sb.String()
}

func orNotSpecified(v string) string {
	if v == "" {
		return "not specified"
	}
	return v
}

// parseExtraction tolerates code fences and prose around the JSON object.
func parseExtraction(raw string) (models.Extraction, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return models.Extraction{}, fmt.Errorf("no JSON object in reply")
	}

	var ex models.Extraction
	if err := json.Unmarshal([]byte(match), &ex); err != nil {
		return models.Extraction{}, fmt.Errorf("invalid extraction JSON: %w", err)
	}
	return ex, nil
}

// normalize drops values that fail format validation and canonicalizes the
// service name against the configured list.
func (e *Extractor) normalize(ex models.Extraction) models.Extraction {
	ex.Name = strings.TrimSpace(ex.Name)
	ex.Service = strings.TrimSpace(ex.Service)
	ex.Date = strings.TrimSpace(ex.Date)
	ex.Time = strings.TrimSpace(ex.Time)

	if ex.Date != "" {
		if _, err := time.Parse("2006-01-02", ex.Date); err != nil {
			e.Logger.Debug("Dropping malformed extracted date", zap.String("date", ex.Date))
			ex.Date = ""
		}
	}
	if ex.Time != "" {
		if _, err := utils.MinutesOfDay(ex.Time); err != nil {
			e.Logger.Debug("Dropping malformed extracted time", zap.String("time", ex.Time))
			ex.Time = ""
		}
	}
	if ex.Service != "" {
		if svc := config.Business.FindService(ex.Service); svc != nil {
			ex.Service = svc.Name
		}
	}
	return ex
}
