package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"NewsCrawler/internal/analysis"
	"NewsCrawler/internal/config"
	"NewsCrawler/internal/infrastructure/ingest"
	"NewsCrawler/internal/infrastructure/reader"
	"NewsCrawler/internal/infrastructure/registry"
	"NewsCrawler/internal/infrastructure/scheduler"
	"NewsCrawler/internal/infrastructure/storage"
	"NewsCrawler/internal/logging"
	"NewsCrawler/internal/ports"
	"NewsCrawler/internal/usecase"
)

// drainTimeout bounds how long shutdown waits for an in-flight batch.
const drainTimeout = 5 * time.Minute

// Application wires configuration to adapters and lifecycle orchestration.
type Application struct {
	cfg      config.CrawlerConfig
	pipeline *usecase.Pipeline
	logger   *slog.Logger
	db       *sql.DB
}

// New builds a runnable application instance. A journal database failure is
// downgraded to a warning: the journal is advisory and must not block crawling.
func New(ctx context.Context, cfg config.CrawlerConfig, logger *slog.Logger) *Application {
	reg := registry.NewClient(cfg.BaseURL, cfg.IngestSecret, nil, logging.Component(logger, "registry"))
	sink := ingest.NewClient(cfg.BaseURL, cfg.IngestSecret, nil)
	items := reader.NewSource(cfg.ReaderPrefix, nil, logging.Component(logger, "reader"))
	engine := analysis.NewEngine(cfg, logging.Component(logger, "analysis"))

	var (
		journal ports.Journal
		db      *sql.DB
	)
	if cfg.DatabaseDSN != "" {
		opened, err := storage.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Warn("crawl journal disabled", "error", err)
		} else {
			db = opened
			journal = storage.NewJournalRepository(db)
		}
	}

	pipeline := usecase.NewPipeline(cfg, usecase.PipelineDeps{
		Registry: reg,
		Items:    items,
		Analyzer: engine,
		Ingestor: sink,
		Journal:  journal,
		Logger:   logging.Component(logger, "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, logger: logger, db: db}
}

// Run executes one batch, or keeps the loop alive until the context is
// canceled when LOOP is enabled. An in-flight batch always drains before Run
// returns.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if !a.cfg.Loop {
		_, err := a.pipeline.RunBatch(ctx)
		return err
	}

	loop := usecase.NewLoop(
		scheduler.NewInterval(a.cfg.LoopInterval),
		a.pipeline,
		logging.Component(a.logger, "loop"),
	)
	if err := loop.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutdown requested, draining")

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return loop.Stop(drainCtx)
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
