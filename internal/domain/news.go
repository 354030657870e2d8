package domain

import "time"

// Source is a registered crawl target owned by the remote registry. The
// crawler only ever holds a per-batch read-only snapshot.
type Source struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Type          string     `json:"type"`
	Category      string     `json:"category,omitempty"`
	Language      string     `json:"language,omitempty"`
	IntervalHours int        `json:"intervalHours,omitempty"`
	NeedCrawl     bool       `json:"needCrawl"`
	LastCrawledAt *time.Time `json:"lastCrawledAt,omitempty"`
	ErrorCount    int        `json:"errorCount,omitempty"`
	ItemSelector  string     `json:"itemSelector,omitempty"`
}

// Item is one crawled entry from a source before analysis.
type Item struct {
	URL           string
	Title         string
	Content       string
	ContentFormat string
	PublishedAt   time.Time
}

// Sentiment values the analysis pipeline may emit.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Language codes the analysis pipeline may emit.
const (
	LanguageEnglish = "en"
	LanguageChinese = "zh"
)

// Analysis is the enrichment result for one item.
type Analysis struct {
	Summary    *string  `json:"summary"`
	OneLine    *string  `json:"oneLine"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	Importance int      `json:"importance"`
	Sentiment  string   `json:"sentiment"`
	Language   string   `json:"language"`
}

// ClampImportance forces the score into [0,100] regardless of which
// analysis path produced it.
func (a *Analysis) ClampImportance() {
	if a.Importance < 0 {
		a.Importance = 0
	}
	if a.Importance > 100 {
		a.Importance = 100
	}
}

// IngestPayload is the wire record posted to the content store. It is built
// fresh per crawled item and never persisted locally; the optional ID field
// lets the server upsert idempotently.
type IngestPayload struct {
	ID            string     `json:"id,omitempty"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	SourceID      string     `json:"sourceId"`
	PublishedAt   time.Time  `json:"publishedAt"`
	CrawledAt     *time.Time `json:"crawledAt,omitempty"`
	Content       string     `json:"content,omitempty"`
	ContentFormat string     `json:"contentFormat,omitempty"`
	Summary       *string    `json:"summary,omitempty"`
	OneLine       *string    `json:"oneLine,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Importance    int        `json:"importance"`
	Sentiment     string     `json:"sentiment,omitempty"`
	Language      string     `json:"language,omitempty"`
}

// Outcome classifies how one source fared inside a batch.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// SourceOutcome records the result of one source worker.
type SourceOutcome struct {
	SourceID  string
	Outcome   Outcome
	Ingested  int
	Err       error
	CrawledAt time.Time
}

// BatchSummary aggregates one orchestrator run.
type BatchSummary struct {
	OK      int
	Skipped int
	Failed  int
	Total   int
}

// StatusReport is the advisory crawl-outcome write-back for one source.
type StatusReport struct {
	SourceID        string
	CrawledAt       time.Time
	Success         bool
	ErrorCountDelta *int
}
