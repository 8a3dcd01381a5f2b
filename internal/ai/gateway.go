package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IDINaXI/Nutrio/internal/config"
	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/planner"
)

// ErrUnavailable covers transport errors, bad statuses and empty model replies.
var ErrUnavailable = planner.ErrAIUnavailable

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// Closer is implemented by gateways that hold network resources.
type Closer interface {
	Close() error
}

// NewGateway builds the gateway selected by AI_MODE.
func NewGateway(ctx context.Context, cfg *config.Config, log *logger.Logger) (planner.Gateway, error) {
	log = logger.OrNop(log).Named("ai")
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))

	switch mode {
	case config.AIModeGemini:
		gw, err := NewGeminiGateway(ctx, GeminiOptions{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			Temperature:     cfg.AITemperature,
			MaxOutputTokens: cfg.AIMaxOutputTokens,
		})
		if err != nil {
			return nil, err
		}
		log.Infow("ai gateway ready", "mode", mode, "model", cfg.GeminiModel)
		return gw, nil
	case config.AIModeGeminiHTTP:
		log.Infow("ai gateway ready", "mode", mode, "model", cfg.GeminiModel, "base_url", cfg.GeminiBaseURL)
		return NewGeminiHTTPGateway(GeminiOptions{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			BaseURL:         cfg.GeminiBaseURL,
			Temperature:     cfg.AITemperature,
			MaxOutputTokens: cfg.AIMaxOutputTokens,
			Timeout:         time.Duration(cfg.AITimeoutSeconds) * time.Second,
		}), nil
	case config.AIModeOpenAI:
		log.Infow("ai gateway ready", "mode", mode, "model", cfg.OpenAIModel, "base_url", cfg.OpenAIBaseURL)
		return NewOpenAIGateway(OpenAIOptions{
			APIKey:          cfg.OpenAIAPIKey,
			Model:           cfg.OpenAIModel,
			BaseURL:         cfg.OpenAIBaseURL,
			Temperature:     cfg.AITemperature,
			MaxOutputTokens: cfg.AIMaxOutputTokens,
		}), nil
	default:
		log.Infow("ai gateway ready", "mode", config.AIModeMock)
		return NewMockGateway(), nil
	}
}
