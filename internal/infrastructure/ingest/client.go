// Package ingest posts analyzed items to the content store.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsCrawler/internal/domain"
	"NewsCrawler/internal/retry"
)

const (
	ingestPath = "/api/ingest"
	authHeader = "x-ingest-secret"

	callTimeout = 30 * time.Second
)

// Client submits IngestPayload records. The server upserts by id/url, so
// repeated ingestion of the same article is safe to retry; no local
// deduplication happens here.
type Client struct {
	baseURL string
	secret  string
	client  *http.Client
	policy  retry.Policy
}

// NewClient wires the content-store client.
func NewClient(baseURL, secret string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		client:  client,
		policy:  retry.Default(),
	}
}

// WithPolicy overrides the retry policy, used by tests.
func (c *Client) WithPolicy(policy retry.Policy) *Client {
	c.policy = policy
	return c
}

// Ingest posts one payload. Unlike status reporting, an exhausted retry
// budget here propagates: the per-source worker records the source failed.
func (c *Client) Ingest(ctx context.Context, payload domain.IngestPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ingest payload: %w", err)
	}

	return c.policy.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+ingestPath, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		req.Header.Set(authHeader, c.secret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("post ingest: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("ingest error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
		}
		return nil
	})
}
