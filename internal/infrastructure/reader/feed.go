package reader

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsCrawler/internal/domain"
)

// itemsFromFeed parses an RSS or Atom body and returns the newest entries in
// feed order. Entries without a usable link are skipped.
func itemsFromFeed(body string, limit int) ([]domain.Item, error) {
	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.Item, 0, min(limit, len(parsed.Items)))
	for _, entry := range parsed.Items {
		link := strings.TrimSpace(entry.Link)
		if link == "" && strings.HasPrefix(entry.GUID, "http") {
			link = entry.GUID
		}
		if link == "" {
			continue
		}

		publishedAt := time.Now().UTC()
		if entry.PublishedParsed != nil {
			publishedAt = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			publishedAt = entry.UpdatedParsed.UTC()
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = link
		}

		items = append(items, domain.Item{
			URL:         link,
			Title:       title,
			PublishedAt: publishedAt,
		})
		if len(items) == limit {
			break
		}
	}

	return items, nil
}
