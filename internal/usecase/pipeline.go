package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsCrawler/internal/analysis"
	"NewsCrawler/internal/config"
	"NewsCrawler/internal/domain"
	"NewsCrawler/internal/ports"
)

// Analyzer produces an enrichment for one item. It never fails; the engine's
// fallback chain guarantees a value.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) domain.Analysis
}

// PipelineDeps wires all driven adapters into the batch orchestrator.
type PipelineDeps struct {
	Registry ports.SourceRegistry
	Items    ports.ItemSource
	Analyzer Analyzer
	Ingestor ports.Ingestor
	Journal  ports.Journal
	Logger   *slog.Logger
}

// Pipeline drives concurrent crawl, analyze, ingest cycles across one batch
// of due sources.
type Pipeline struct {
	cfg      config.CrawlerConfig
	registry ports.SourceRegistry
	items    ports.ItemSource
	analyzer Analyzer
	ingestor ports.Ingestor
	journal  ports.Journal
	logger   *slog.Logger
}

// NewPipeline constructs the orchestrator.
func NewPipeline(cfg config.CrawlerConfig, deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		registry: deps.Registry,
		items:    deps.Items,
		analyzer: deps.Analyzer,
		ingestor: deps.Ingestor,
		journal:  deps.Journal,
		logger:   deps.Logger,
	}
}

// RunBatch crawls every due source under the configured concurrency bound
// and returns aggregate counts. A source-list fetch failure aborts the batch;
// any failure inside one source worker only marks that source failed.
func (p *Pipeline) RunBatch(ctx context.Context) (domain.BatchSummary, error) {
	sources, err := p.registry.FetchDueSources(ctx, p.cfg.SourcesLimit)
	if err != nil {
		return domain.BatchSummary{}, fmt.Errorf("fetch due sources: %w", err)
	}

	due := make([]domain.Source, 0, len(sources))
	for _, src := range sources {
		if src.NeedCrawl {
			due = append(due, src)
		}
	}

	summary := domain.BatchSummary{Total: len(due)}
	if len(due) == 0 {
		p.logger.Info("no due sources")
		return summary, nil
	}

	concurrency := p.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	outcomes := make(chan domain.SourceOutcome)

	for _, src := range due {
		go func(src domain.Source) {
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes <- p.crawlSource(ctx, src)
		}(src)
	}

	// Single aggregation point: counters are only touched here.
	for range due {
		outcome := <-outcomes
		switch outcome.Outcome {
		case domain.OutcomeOK:
			summary.OK++
		case domain.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		p.finishSource(ctx, outcome)
	}

	p.logger.Info("batch complete",
		"ok", summary.OK, "skipped", summary.Skipped,
		"failed", summary.Failed, "total", summary.Total)

	return summary, nil
}

// crawlSource runs one source worker. Every error path becomes a failed
// outcome; a panic inside an adapter is confined the same way so the slot is
// always released and the batch always drains.
func (p *Pipeline) crawlSource(ctx context.Context, src domain.Source) (outcome domain.SourceOutcome) {
	outcome = domain.SourceOutcome{SourceID: src.ID, CrawledAt: time.Now().UTC()}

	defer func() {
		if r := recover(); r != nil {
			outcome.Outcome = domain.OutcomeFailed
			outcome.Err = fmt.Errorf("source worker panic: %v", r)
		}
	}()

	items, err := p.items.FetchItems(ctx, src, p.cfg.ItemsPerSource)
	if err != nil {
		outcome.Outcome = domain.OutcomeFailed
		outcome.Err = err
		return outcome
	}

	if len(items) == 0 {
		outcome.Outcome = domain.OutcomeSkipped
		return outcome
	}

	for _, item := range items {
		result := p.analyzer.Analyze(ctx, analysis.Input{
			Title:          item.Title,
			Content:        item.Content,
			SourceName:     src.Name,
			SourceCategory: src.Category,
		})

		if err := p.ingestor.Ingest(ctx, buildPayload(src, item, result, outcome.CrawledAt)); err != nil {
			outcome.Outcome = domain.OutcomeFailed
			outcome.Err = fmt.Errorf("ingest %s: %w", item.URL, err)
			return outcome
		}
		outcome.Ingested++
	}

	outcome.Outcome = domain.OutcomeOK
	return outcome
}

// finishSource reports the outcome to the registry and the journal. Both are
// advisory: neither can fail the batch.
func (p *Pipeline) finishSource(ctx context.Context, outcome domain.SourceOutcome) {
	if outcome.Err != nil {
		p.logger.Warn("source failed", "source", outcome.SourceID, "error", outcome.Err)
	} else {
		p.logger.Debug("source done",
			"source", outcome.SourceID, "outcome", string(outcome.Outcome),
			"ingested", outcome.Ingested)
	}

	report := domain.StatusReport{
		SourceID:  outcome.SourceID,
		CrawledAt: outcome.CrawledAt,
		Success:   outcome.Outcome != domain.OutcomeFailed,
	}
	if outcome.Outcome == domain.OutcomeFailed {
		delta := 1
		report.ErrorCountDelta = &delta
	}
	if err := p.registry.ReportStatus(ctx, report); err != nil {
		p.logger.Warn("status report failed", "source", outcome.SourceID, "error", err)
	}

	if p.journal != nil {
		if err := p.journal.SaveOutcome(ctx, outcome); err != nil {
			p.logger.Warn("journal write failed", "source", outcome.SourceID, "error", err)
		}
	}
}

func buildPayload(src domain.Source, item domain.Item, result domain.Analysis, crawledAt time.Time) domain.IngestPayload {
	return domain.IngestPayload{
		URL:           item.URL,
		Title:         item.Title,
		SourceID:      src.ID,
		PublishedAt:   item.PublishedAt,
		CrawledAt:     &crawledAt,
		Content:       item.Content,
		ContentFormat: item.ContentFormat,
		Summary:       result.Summary,
		OneLine:       result.OneLine,
		Category:      result.Category,
		Tags:          result.Tags,
		Importance:    result.Importance,
		Sentiment:     result.Sentiment,
		Language:      result.Language,
	}
}
