package ai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIOptions struct {
	APIKey          string
	Model           string
	BaseURL         string // пусто: api.openai.com; OpenRouter и прочие совместимые API
	Temperature     float64
	MaxOutputTokens int
}

// OpenAIGateway sends chat completions through go-openai.
type OpenAIGateway struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIGateway(opts OpenAIOptions) *OpenAIGateway {
	cfg := openai.DefaultConfig(opts.APIKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &OpenAIGateway{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   opts.MaxOutputTokens,
	}
}

func (g *OpenAIGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Ты профессиональный диетолог. Отвечай только валидным JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", unavailable("openai: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", unavailable("openai response does not contain choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", unavailable("openai response is empty")
	}
	return content, nil
}
