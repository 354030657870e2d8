package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"NewsCrawler/internal/config"
	"NewsCrawler/internal/domain"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiStrategy calls a Gemini-compatible generateContent endpoint with the
// API key passed as a query parameter.
type GeminiStrategy struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ Strategy = (*GeminiStrategy)(nil)

// NewGeminiStrategy builds the strategy; a nil client gets the default
// 30s-timeout client.
func NewGeminiStrategy(cfg config.ProviderConfig, client *http.Client) *GeminiStrategy {
	if client == nil {
		client = &http.Client{Timeout: providerTimeout}
	}
	return &GeminiStrategy{
		baseURL: geminiBaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  client,
	}
}

// WithBaseURL overrides the API base, used by tests.
func (g *GeminiStrategy) WithBaseURL(base string) *GeminiStrategy {
	g.baseURL = strings.TrimRight(base, "/")
	return g
}

// Name identifies the strategy in logs.
func (g *GeminiStrategy) Name() string {
	return "gemini"
}

// Analyze posts a single-part prompt and parses the first candidate's
// concatenated parts as Analysis JSON.
func (g *GeminiStrategy) Analyze(ctx context.Context, in Input) (domain.Analysis, error) {
	if g.apiKey == "" {
		return domain.Analysis{}, fmt.Errorf("gemini api key not configured")
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": buildPrompt(in)}}},
		},
		"generationConfig": map[string]any{
			"temperature":     providerTemperature,
			"maxOutputTokens": providerMaxTokens,
		},
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Analysis{}, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return domain.Analysis{}, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return decodeAnalysis(text.String())
}
