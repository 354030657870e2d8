// Package registry talks to the remote admin API that owns crawl sources.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NewsCrawler/internal/domain"
	"NewsCrawler/internal/retry"
)

const (
	sourcesPath = "/api/admin/sources"
	authHeader  = "x-ingest-secret"

	callTimeout = 30 * time.Second
)

// Client reads due sources and writes advisory crawl outcomes.
type Client struct {
	baseURL string
	secret  string
	client  *http.Client
	policy  retry.Policy
	logger  *slog.Logger
}

// NewClient wires the admin API client. A nil http.Client gets a default
// one; per-call deadlines are enforced via context regardless.
func NewClient(baseURL, secret string, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		client:  client,
		policy:  retry.Default(),
		logger:  logger,
	}
}

// WithPolicy overrides the retry policy, used by tests.
func (c *Client) WithPolicy(policy retry.Policy) *Client {
	c.policy = policy
	return c
}

// FetchDueSources returns sources the registry marked due for crawling.
// Non-2xx responses and schema mismatches are retried; exhausting retries
// surfaces the last error, which aborts the whole batch.
func (c *Client) FetchDueSources(ctx context.Context, limit int) ([]domain.Source, error) {
	endpoint := c.baseURL + sourcesPath + "?limit=" + strconv.Itoa(limit)

	var sources []domain.Source
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		req.Header.Set(authHeader, c.secret)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch sources: %w", err)
		}
		defer resp.Body.Close()

		if !is2xx(resp.StatusCode) {
			return statusError("registry", resp)
		}

		var decoded struct {
			Sources []domain.Source `json:"sources"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode sources: %w", err)
		}
		if decoded.Sources == nil {
			return fmt.Errorf("decode sources: missing sources field")
		}
		for i, src := range decoded.Sources {
			if src.ID == "" || src.URL == "" {
				return fmt.Errorf("decode sources: entry %d missing id or url", i)
			}
		}

		sources = decoded.Sources
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sources, nil
}

// ReportStatus posts the per-source crawl outcome. Failures are retried like
// any other call, but an exhausted retry budget is logged and swallowed:
// status reporting is advisory telemetry and never aborts a batch.
func (c *Client) ReportStatus(ctx context.Context, report domain.StatusReport) error {
	payload := map[string]any{
		"id":        report.SourceID,
		"crawledAt": report.CrawledAt.UTC().Format(time.RFC3339),
		"success":   report.Success,
	}
	if report.ErrorCountDelta != nil {
		payload["errorCountDelta"] = *report.ErrorCountDelta
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal status report: %w", err)
	}

	err = c.policy.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+sourcesPath, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		req.Header.Set(authHeader, c.secret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("report status: %w", err)
		}
		defer resp.Body.Close()

		// Response body is ignored, only the status code matters.
		if !is2xx(resp.StatusCode) {
			return statusError("registry", resp)
		}
		return nil
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("status report dropped",
			"source", report.SourceID, "error", err)
	}

	return nil
}

func is2xx(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func statusError(api string, resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if trimmed := strings.TrimSpace(string(detail)); trimmed != "" {
		return fmt.Errorf("%s error %s: %s", api, resp.Status, trimmed)
	}
	return fmt.Errorf("%s error %s", api, resp.Status)
}
