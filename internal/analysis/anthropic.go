package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsCrawler/internal/config"
	"NewsCrawler/internal/domain"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	providerTimeout     = 30 * time.Second
	providerTemperature = 0.2
	providerMaxTokens   = 1024
)

// AnthropicStrategy calls an Anthropic-compatible messages endpoint.
type AnthropicStrategy struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

var _ Strategy = (*AnthropicStrategy)(nil)

// NewAnthropicStrategy builds the strategy; a nil client gets the default
// 30s-timeout client.
func NewAnthropicStrategy(cfg config.ProviderConfig, client *http.Client) *AnthropicStrategy {
	if client == nil {
		client = &http.Client{Timeout: providerTimeout}
	}
	return &AnthropicStrategy{
		endpoint: anthropicEndpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   client,
	}
}

// WithEndpoint overrides the messages endpoint, used by tests.
func (a *AnthropicStrategy) WithEndpoint(endpoint string) *AnthropicStrategy {
	a.endpoint = endpoint
	return a
}

// Name identifies the strategy in logs.
func (a *AnthropicStrategy) Name() string {
	return "anthropic"
}

// Analyze posts the prompt as a single user message and parses the
// concatenated text blocks of the response as Analysis JSON.
func (a *AnthropicStrategy) Analyze(ctx context.Context, in Input) (domain.Analysis, error) {
	if a.apiKey == "" {
		return domain.Analysis{}, fmt.Errorf("anthropic api key not configured")
	}

	body, err := json.Marshal(map[string]any{
		"model":       a.model,
		"max_tokens":  providerMaxTokens,
		"temperature": providerTemperature,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(in)},
		},
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("call anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Analysis{}, fmt.Errorf("anthropic error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return decodeAnalysis(text.String())
}
