package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// APIAdapter fetches candidate items from generic JSON APIs. The endpoint is
// expected to answer with an array of item objects; unknown fields are
// ignored.
type APIAdapter struct {
	client  *http.Client
	limiter *Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// apiItem is the wire shape expected from API sources.
type apiItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	Link          string `json:"link"`
	PublishedAt   string `json:"publishedAt"`
	HumorFriendly bool   `json:"humorFriendly"`
}

// NewAPIAdapter creates an API adapter sharing the given client and limiter.
func NewAPIAdapter(client *http.Client, limiter *Limiter, timeout time.Duration, logger *slog.Logger) *APIAdapter {
	return &APIAdapter{
		client:  client,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// Name returns the adapter identifier.
func (a *APIAdapter) Name() string {
	return "api"
}

// CanHandle reports true for API sources.
func (a *APIAdapter) CanHandle(sourceType models.SourceType) bool {
	return sourceType == models.SourceTypeAPI
}

// Fetch downloads and decodes the endpoint's JSON item array.
func (a *APIAdapter) Fetch(ctx context.Context, source models.ContentSource) ([]models.SourceItem, error) {
	body, status, err := get(ctx, a.client, a.limiter, a.timeout, source.Endpoint)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var raw []apiItem
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode api response %s: %w", source.Endpoint, err)
	}

	items := make([]models.SourceItem, 0, len(raw))
	for _, entry := range raw {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.URL)
		if link == "" {
			link = strings.TrimSpace(entry.Link)
		}
		if title == "" || link == "" {
			continue
		}

		summary := entry.Summary
		if summary == "" {
			summary = entry.Description
		}

		item := models.SourceItem{
			SourceID:      source.ID,
			SourceName:    source.Name,
			Title:         title,
			Summary:       strings.TrimSpace(summary),
			SourceURL:     link,
			PublishedAt:   parsePublishedAt(entry.PublishedAt),
			PolandFocus:   source.PolandFocus,
			HumorFriendly: entry.HumorFriendly,
		}
		if status < 200 || status >= 300 {
			item.StatusCode = status
		}

		items = append(items, item)
	}

	a.logger.Info("fetched api source", "source_id", source.ID, "items", len(items))
	return items, nil
}

// parsePublishedAt tries the timestamp formats API sources use in the wild.
func parsePublishedAt(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}

	return time.Now()
}

// get performs a rate-limited GET with a per-request deadline and returns the
// response body and status. Transport failures are fetch errors; non-success
// statuses are not, because some sources serve usable bodies with odd codes
// and the status taint is handled downstream.
func get(ctx context.Context, client *http.Client, limiter *Limiter, timeout time.Duration, url string) (io.ReadCloser, int, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx, url); err != nil {
			return nil, 0, fmt.Errorf("rate limit wait for %s: %w", url, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, 0, fmt.Errorf("create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "statforge/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/json, */*")

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, 0, fmt.Errorf("fetch %s: %w", url, err)
	}

	return &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}, resp.StatusCode, nil
}

// cancelReadCloser ties the request context's lifetime to the body.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
