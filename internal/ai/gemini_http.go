package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiHTTPGateway calls the generateContent REST endpoint directly.
type GeminiHTTPGateway struct {
	apiKey          string
	model           string
	baseURL         string
	temperature     float64
	maxOutputTokens int
	httpClient      *http.Client
}

func NewGeminiHTTPGateway(opts GeminiOptions) *GeminiHTTPGateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiHTTPGateway{
		apiKey:          opts.APIKey,
		model:           opts.Model,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		temperature:     opts.Temperature,
		maxOutputTokens: opts.MaxOutputTokens,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

func (g *GeminiHTTPGateway) Generate(ctx context.Context, prompt string) (string, error) {
	payload := generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if g.temperature > 0 || g.maxOutputTokens > 0 {
		payload.GenerationConfig = &generationConfig{
			Temperature:     g.temperature,
			MaxOutputTokens: g.maxOutputTokens,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", unavailable("gemini request failed: %v", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("failed to read gemini response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", unavailable("gemini request failed with status %d", resp.StatusCode)
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", unavailable("failed to decode gemini response: %v", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", unavailable("gemini response does not contain candidates")
	}

	var b strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", unavailable("gemini response is empty")
	}
	return b.String(), nil
}

type generateContentRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
