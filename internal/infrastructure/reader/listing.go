package reader

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsCrawler/internal/domain"
)

// defaultItemSelector finds article links on listing pages when the source
// carries no selector hint of its own.
const defaultItemSelector = "article a, h2 a, h3 a"

// itemsFromListing extracts article links from an HTML listing page,
// deduplicated by absolute URL and capped at limit.
func itemsFromListing(source domain.Source, body string, limit int) ([]domain.Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	selector := source.ItemSelector
	if selector == "" {
		selector = defaultItemSelector
	}

	now := time.Now().UTC()
	items := make([]domain.Item, 0, limit)
	seen := map[string]struct{}{}

	doc.Find(selector).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, exists := link.Attr("href")
		if !exists {
			return true
		}

		absolute := resolveLink(base, href)
		if absolute == "" {
			return true
		}
		if _, ok := seen[absolute]; ok {
			return true
		}
		seen[absolute] = struct{}{}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = absolute
		}

		items = append(items, domain.Item{
			URL:         absolute,
			Title:       title,
			PublishedAt: now,
		})

		return len(items) < limit
	})

	return items, nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
