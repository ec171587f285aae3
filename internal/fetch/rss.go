package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// humorHints are feed category values that mark an item as a candidate for
// the Antistic bucket.
var humorHints = []string{"humor", "humour", "funny", "satire", "ciekawostki", "absurd"}

// RSSAdapter fetches candidate items from RSS and Atom feeds.
type RSSAdapter struct {
	client  *http.Client
	limiter *Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewRSSAdapter creates an RSS adapter sharing the given client and limiter.
func NewRSSAdapter(client *http.Client, limiter *Limiter, timeout time.Duration, logger *slog.Logger) *RSSAdapter {
	return &RSSAdapter{
		client:  client,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// Name returns the adapter identifier.
func (a *RSSAdapter) Name() string {
	return "rss"
}

// CanHandle reports true for RSS sources.
func (a *RSSAdapter) CanHandle(sourceType models.SourceType) bool {
	return sourceType == models.SourceTypeRSS
}

// Fetch downloads and parses the feed, converting entries to SourceItems.
// A non-success HTTP status does not abort the fetch when the body still
// parses; the status is stamped onto every item so validation can reject
// untrustworthy citations.
func (a *RSSAdapter) Fetch(ctx context.Context, source models.ContentSource) ([]models.SourceItem, error) {
	body, status, err := get(ctx, a.client, a.limiter, a.timeout, source.Endpoint)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", source.Endpoint, err)
	}

	items := make([]models.SourceItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			a.logger.Debug("skipping feed entry without title or link",
				"source_id", source.ID, "title", entry.Title)
			continue
		}

		published := time.Now()
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		item := models.SourceItem{
			SourceID:      source.ID,
			SourceName:    source.Name,
			Title:         title,
			Summary:       cleanText(entry.Description),
			SourceURL:     link,
			PublishedAt:   published,
			PolandFocus:   source.PolandFocus,
			HumorFriendly: hasHumorHint(entry.Categories),
		}
		if status < 200 || status >= 300 {
			item.StatusCode = status
		}

		items = append(items, item)
	}

	a.logger.Info("fetched rss feed", "source_id", source.ID, "items", len(items))
	return items, nil
}

func hasHumorHint(categories []string) bool {
	for _, cat := range categories {
		lower := strings.ToLower(strings.TrimSpace(cat))
		for _, hint := range humorHints {
			if lower == hint {
				return true
			}
		}
	}
	return false
}

// cleanText strips HTML tags and collapses whitespace in feed descriptions.
func cleanText(text string) string {
	for {
		start := strings.Index(text, "<")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end == -1 {
			break
		}
		text = text[:start] + " " + text[start+end+1:]
	}

	return strings.Join(strings.Fields(text), " ")
}
