package ports

import (
	"context"
	"time"

	"NewsCrawler/internal/domain"
)

// SourceRegistry reads due sources from the remote admin API and writes
// advisory crawl outcomes back to it.
type SourceRegistry interface {
	FetchDueSources(ctx context.Context, limit int) ([]domain.Source, error)
	ReportStatus(ctx context.Context, report domain.StatusReport) error
}

// Ingestor posts a fully analyzed item to the content store.
type Ingestor interface {
	Ingest(ctx context.Context, payload domain.IngestPayload) error
}

// ItemSource discovers a source's current items and fetches their bodies.
type ItemSource interface {
	FetchItems(ctx context.Context, source domain.Source, limit int) ([]domain.Item, error)
}

// Journal persists per-source crawl outcomes for audit. Implementations are
// advisory: callers swallow journal errors.
type Journal interface {
	SaveOutcome(ctx context.Context, outcome domain.SourceOutcome) error
}

// Scheduler controls when batches execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
