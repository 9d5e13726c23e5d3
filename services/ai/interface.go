// File: services/ai/interface.go
package ai

import (
	"context"
	"strings"

	"receptionist/config"
	"receptionist/models"

	"go.uber.org/zap"
)

// ChatProvider is the black-box language-model capability: given role-tagged
// messages, return reply text. Calls may fail or time out; callers treat any
// error as a degraded turn, never as fatal.
type ChatProvider interface {
	Chat(ctx context.Context, messages []models.ChatMessage, temperature float32, maxTokens int) (string, error)
}

// NewFromConfig selects a provider from AppConfig.AIProvider. Unknown values
// fall back to Gemini with a warning.
func NewFromConfig(logger *zap.Logger) ChatProvider {
	cfg := config.AppConfig
	switch strings.ToLower(cfg.AIProvider) {
	case "gemini":
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "groq":
		return NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "ollama":
		return NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel)
	default:
		logger.Warn("Unknown AI provider, defaulting to gemini",
			zap.String("provider", cfg.AIProvider))
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
}
