package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"NewsCrawler/internal/domain"
)

func TestSaveOutcomeUpserts(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	crawledAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO crawl_journal").
		WithArgs("src-1", "ok", 4, nil, crawledAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewJournalRepository(db)
	err = repo.SaveOutcome(context.Background(), domain.SourceOutcome{
		SourceID:  "src-1",
		Outcome:   domain.OutcomeOK,
		Ingested:  4,
		CrawledAt: crawledAt,
	})
	if err != nil {
		t.Fatalf("SaveOutcome returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveOutcomeRecordsFailureText(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	crawledAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO crawl_journal").
		WithArgs("src-2", "failed", 0, "fetch listing: timeout", crawledAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewJournalRepository(db)
	err = repo.SaveOutcome(context.Background(), domain.SourceOutcome{
		SourceID:  "src-2",
		Outcome:   domain.OutcomeFailed,
		Err:       errors.New("fetch listing: timeout"),
		CrawledAt: crawledAt,
	})
	if err != nil {
		t.Fatalf("SaveOutcome returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveOutcomeWrapsExecError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO crawl_journal").
		WillReturnError(errors.New("connection reset"))

	repo := NewJournalRepository(db)
	err = repo.SaveOutcome(context.Background(), domain.SourceOutcome{
		SourceID:  "src-3",
		Outcome:   domain.OutcomeSkipped,
		CrawledAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected wrapped exec error")
	}
}

func TestSaveOutcomeNilDBIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewJournalRepository(nil)
	if err := repo.SaveOutcome(context.Background(), domain.SourceOutcome{SourceID: "src-4"}); err != nil {
		t.Fatalf("nil-db SaveOutcome returned error: %v", err)
	}
}
