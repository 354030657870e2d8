// Package reader discovers a source's current items and pulls their bodies
// through a content-reader proxy.
package reader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"NewsCrawler/internal/domain"
	"NewsCrawler/internal/ports"
)

const (
	fetchTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a listing or article body is read.
	maxBodyBytes = 1 << 20

	userAgent = "NewsCrawler/1.0"
)

// Source discovers items per source type: RSS feeds via gofeed, HTML listing
// pages via goquery. Item bodies are fetched through the reader prefix;
// a failed body fetch keeps the item with empty content so analysis can
// degrade instead of dropping the article.
type Source struct {
	prefix string
	client *http.Client
	logger *slog.Logger
}

var _ ports.ItemSource = (*Source)(nil)

// NewSource wires the item source. prefix is the reader-proxy URL prepended
// to article URLs; a nil client gets a default one.
func NewSource(prefix string, client *http.Client, logger *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{}
	}
	return &Source{prefix: prefix, client: client, logger: logger}
}

// FetchItems returns up to limit current items for the source, in listing
// order. Listing fetch/parse errors fail the source for this round; there is
// no retry here.
func (s *Source) FetchItems(ctx context.Context, source domain.Source, limit int) ([]domain.Item, error) {
	body, err := s.fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing for %s: %w", source.ID, err)
	}

	items, err := discoverItems(source, body, limit)
	if err != nil {
		return nil, fmt.Errorf("discover items for %s: %w", source.ID, err)
	}

	for i := range items {
		content, err := s.fetch(ctx, s.prefix+items[i].URL)
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("reader fetch failed, keeping item without content",
					"source", source.ID, "url", items[i].URL, "error", err)
			}
			continue
		}
		items[i].Content = content
		items[i].ContentFormat = "markdown"
	}

	return items, nil
}

// discoverItems picks the parse strategy from the source type. Unknown types
// are treated as RSS first with an HTML fallback, since most registered
// sources are feeds.
func discoverItems(source domain.Source, body string, limit int) ([]domain.Item, error) {
	switch source.Type {
	case "rss", "atom", "feed":
		return itemsFromFeed(body, limit)
	case "html", "website":
		return itemsFromListing(source, body, limit)
	default:
		items, err := itemsFromFeed(body, limit)
		if err != nil {
			return itemsFromListing(source, body, limit)
		}
		return items, nil
	}
}

func (s *Source) fetch(ctx context.Context, rawURL string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("get %s: %s", rawURL, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}

	return strings.TrimSpace(string(raw)), nil
}
