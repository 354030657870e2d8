package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsCrawler/internal/config"
	"NewsCrawler/internal/domain"
)

type failingStrategy struct{ calls int }

func (f *failingStrategy) Name() string { return "failing" }

func (f *failingStrategy) Analyze(context.Context, Input) (domain.Analysis, error) {
	f.calls++
	return domain.Analysis{}, errors.New("provider down")
}

func TestEngineFallsThroughToHeuristic(t *testing.T) {
	t.Parallel()

	failing := &failingStrategy{}
	engine := NewEngineWithStrategies(nil, failing, NewHeuristicStrategy())

	result := engine.Analyze(context.Background(), Input{
		Title:   "Anthropic unveils Claude update",
		Content: "body",
	})

	if failing.calls != 1 {
		t.Fatalf("expected failing strategy to be tried once, got %d", failing.calls)
	}
	if result.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected heuristic result, got sentiment %s", result.Sentiment)
	}
	if result.Language != domain.LanguageEnglish {
		t.Fatalf("unexpected language %s", result.Language)
	}
}

func TestEngineClampsProviderImportance(t *testing.T) {
	t.Parallel()

	oversold := strategyFunc(func(context.Context, Input) (domain.Analysis, error) {
		return domain.Analysis{
			Importance: 400,
			Sentiment:  domain.SentimentPositive,
			Language:   domain.LanguageEnglish,
		}, nil
	})

	engine := NewEngineWithStrategies(nil, oversold, NewHeuristicStrategy())
	result := engine.Analyze(context.Background(), Input{Title: "t"})

	if result.Importance != 100 {
		t.Fatalf("expected importance clamped to 100, got %d", result.Importance)
	}
	if result.Sentiment != domain.SentimentPositive {
		t.Fatal("expected provider result to win over heuristic")
	}
}

type strategyFunc func(ctx context.Context, in Input) (domain.Analysis, error)

func (strategyFunc) Name() string { return "func" }

func (f strategyFunc) Analyze(ctx context.Context, in Input) (domain.Analysis, error) {
	return f(ctx, in)
}

const analysisJSON = `{
	"summary": "A short summary.",
	"oneLine": "One line.",
	"category": "release",
	"tags": ["claude", "anthropic", "launch"],
	"importance": 72,
	"sentiment": "positive",
	"language": "en"
}`

func TestAnthropicStrategyParsesTextBlocks(t *testing.T) {
	t.Parallel()

	// The Analysis JSON arrives split across two text blocks; the strategy
	// must concatenate them before parsing.
	half := len(analysisJSON) / 2
	var gotKey, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[` +
			`{"type":"text","text":` + jsonString(analysisJSON[:half]) + `},` +
			`{"type":"text","text":` + jsonString(analysisJSON[half:]) + `}]}`))
	}))
	defer server.Close()

	strategy := NewAnthropicStrategy(config.ProviderConfig{APIKey: "ak", Model: "claude-test"}, server.Client()).
		WithEndpoint(server.URL)

	result, err := strategy.Analyze(context.Background(), Input{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if gotKey != "ak" || gotVersion == "" {
		t.Fatalf("missing auth headers: key=%q version=%q", gotKey, gotVersion)
	}
	if result.Importance != 72 || result.Sentiment != domain.SentimentPositive {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Category == nil || *result.Category != "release" {
		t.Fatalf("unexpected category: %v", result.Category)
	}
}

func TestAnthropicStrategyFailsOnBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	strategy := NewAnthropicStrategy(config.ProviderConfig{APIKey: "ak", Model: "m"}, server.Client()).
		WithEndpoint(server.URL)

	if _, err := strategy.Analyze(context.Background(), Input{Title: "t"}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestGeminiStrategyParsesCandidateParts(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + jsonString(analysisJSON) + `}]}}]}`))
	}))
	defer server.Close()

	strategy := NewGeminiStrategy(config.ProviderConfig{APIKey: "gk", Model: "gemini-test"}, server.Client()).
		WithBaseURL(server.URL)

	result, err := strategy.Analyze(context.Background(), Input{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if gotPath != "/models/gemini-test:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "gk" {
		t.Fatalf("api key not passed as query parameter, got %q", gotKey)
	}
	if result.Importance != 72 {
		t.Fatalf("unexpected importance: %d", result.Importance)
	}
}

func TestDecodeAnalysisRejectsBadEnums(t *testing.T) {
	t.Parallel()

	if _, err := decodeAnalysis(`{"sentiment":"ecstatic","language":"en"}`); err == nil {
		t.Fatal("expected error for invalid sentiment")
	}
	if _, err := decodeAnalysis(`{"sentiment":"neutral","language":"fr"}`); err == nil {
		t.Fatal("expected error for invalid language")
	}
	if _, err := decodeAnalysis("not json"); err == nil {
		t.Fatal("expected error for unparsable output")
	}
}

func TestDecodeAnalysisStripsCodeFence(t *testing.T) {
	t.Parallel()

	fenced := "```json\n" + analysisJSON + "\n```"
	result, err := decodeAnalysis(fenced)
	if err != nil {
		t.Fatalf("decodeAnalysis returned error: %v", err)
	}
	if result.Importance != 72 {
		t.Fatalf("unexpected importance: %d", result.Importance)
	}
}

// jsonString quotes s as a JSON string literal for response fixtures.
func jsonString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
