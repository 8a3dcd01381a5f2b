package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiOptions struct {
	APIKey          string
	Model           string
	BaseURL         string // только для gemini_http
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration // только для gemini_http
}

// GeminiGateway talks to Gemini through the official SDK.
type GeminiGateway struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGateway(ctx context.Context, opts GeminiOptions) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxOutputTokens))
	}
	model.ResponseMIMEType = "application/json"

	return &GeminiGateway{client: client, model: model}, nil
}

func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", unavailable("gemini: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", unavailable("gemini: no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", unavailable("gemini: generated content is not text")
	}
	return b.String(), nil
}

func (g *GeminiGateway) Close() error {
	return g.client.Close()
}
