// Package analysis enriches crawled items with a classification and summary.
// Providers are tried in strict priority order; the heuristic strategy closes
// the chain and cannot fail, so Analyze always returns a value.
package analysis

import (
	"context"
	"log/slog"

	"NewsCrawler/internal/config"
	"NewsCrawler/internal/domain"
)

// languageProbeLimit bounds how much text the language detector inspects.
const languageProbeLimit = 4000

// Input carries everything a strategy may consider for one item.
type Input struct {
	Title          string
	Content        string
	SourceName     string
	SourceCategory string
}

// Strategy produces an Analysis or signals no-result via an error. Provider
// errors never escape the engine.
type Strategy interface {
	Name() string
	Analyze(ctx context.Context, in Input) (domain.Analysis, error)
}

// Engine evaluates strategies left-to-right until one succeeds.
type Engine struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewEngine builds the provider chain from configuration: Anthropic first,
// then Gemini, then the deterministic heuristic.
func NewEngine(cfg config.CrawlerConfig, logger *slog.Logger) *Engine {
	var strategies []Strategy
	if cfg.Anthropic.Configured() {
		strategies = append(strategies, NewAnthropicStrategy(cfg.Anthropic, nil))
	}
	if cfg.Gemini.Configured() {
		strategies = append(strategies, NewGeminiStrategy(cfg.Gemini, nil))
	}
	strategies = append(strategies, NewHeuristicStrategy())

	return &Engine{strategies: strategies, logger: logger}
}

// NewEngineWithStrategies wires an explicit chain; the last entry must be
// infallible.
func NewEngineWithStrategies(logger *slog.Logger, strategies ...Strategy) *Engine {
	return &Engine{strategies: strategies, logger: logger}
}

// Analyze runs the chain and returns the first successful result with its
// importance clamped into [0,100]. It never returns an error: when every
// provider fails the heuristic result is used.
func (e *Engine) Analyze(ctx context.Context, in Input) domain.Analysis {
	detected := DetectLanguage(in.Title + in.Content)

	for _, strategy := range e.strategies {
		result, err := strategy.Analyze(ctx, in)
		if err != nil {
			if e.logger != nil {
				e.logger.Debug("analysis strategy failed",
					"strategy", strategy.Name(), "error", err)
			}
			continue
		}
		result.ClampImportance()
		return result
	}

	// Unreachable with a properly closed chain, but a bare heuristic pass
	// keeps the no-error contract even for an empty engine.
	fallback := heuristicAnalysis(in, detected)
	fallback.ClampImportance()
	return fallback
}

// DetectLanguage reports zh when the first 4000 characters contain any CJK
// Unified Ideograph, en otherwise. The result is authoritative only for the
// heuristic path; providers report their own detected language.
func DetectLanguage(text string) string {
	inspected := 0
	for _, r := range text {
		if inspected >= languageProbeLimit {
			break
		}
		inspected++
		if r >= 0x4E00 && r <= 0x9FFF {
			return domain.LanguageChinese
		}
	}
	return domain.LanguageEnglish
}
