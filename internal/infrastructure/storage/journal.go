// Package storage persists advisory crawl outcomes to Postgres.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"NewsCrawler/internal/domain"
	"NewsCrawler/internal/ports"
)

// JournalRepository records per-source crawl outcomes for audit. It is never
// consulted for deduplication; item idempotency belongs to the ingest server.
type JournalRepository struct {
	db *sql.DB
}

var _ ports.Journal = (*JournalRepository)(nil)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewJournalRepository wires a sql.DB implementation.
func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// SaveOutcome upserts the latest crawl outcome for one source.
func (r *JournalRepository) SaveOutcome(ctx context.Context, outcome domain.SourceOutcome) error {
	if r.db == nil {
		return nil
	}

	var errText sql.NullString
	if outcome.Err != nil {
		errText = sql.NullString{String: outcome.Err.Error(), Valid: true}
	}

	query := `INSERT INTO crawl_journal (source_id, outcome, ingested, error, crawled_at)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (source_id) DO UPDATE
              SET outcome = EXCLUDED.outcome,
                  ingested = EXCLUDED.ingested,
                  error = EXCLUDED.error,
                  crawled_at = EXCLUDED.crawled_at`

	_, err := r.db.ExecContext(ctx, query,
		outcome.SourceID,
		string(outcome.Outcome),
		outcome.Ingested,
		errText,
		outcome.CrawledAt,
	)
	if err != nil {
		return fmt.Errorf("upsert crawl outcome: %w", err)
	}

	return nil
}
