package health

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// Checker reports whether a content source is reachable. Implementations
// never return an error; any probe failure resolves to false and the
// orchestrator records it as a non-fatal source failure.
type Checker interface {
	IsHealthy(ctx context.Context, source models.ContentSource) bool
}

// HTTPChecker probes the source's health URL with a bounded GET. Verdicts are
// cached briefly so a scheduled run and an operator run seconds apart do not
// double-probe the same host.
type HTTPChecker struct {
	client  *http.Client
	timeout time.Duration
	cache   *gocache.Cache
	logger  *slog.Logger
}

const verdictTTL = 30 * time.Second

// NewHTTPChecker creates a checker with the given per-probe timeout.
func NewHTTPChecker(timeout time.Duration, logger *slog.Logger) *HTTPChecker {
	return &HTTPChecker{
		client:  &http.Client{},
		timeout: timeout,
		cache:   gocache.New(verdictTTL, 2*verdictTTL),
		logger:  logger,
	}
}

// IsHealthy probes the source within the configured timeout. The probe
// carries its own deadline so one slow source cannot delay the others.
func (c *HTTPChecker) IsHealthy(ctx context.Context, source models.ContentSource) bool {
	url := source.ProbeURL()
	if url == "" {
		return false
	}

	if verdict, found := c.cache.Get(url); found {
		return verdict.(bool)
	}

	healthy := c.probe(ctx, url)
	c.cache.SetDefault(url, healthy)

	if !healthy {
		c.logger.Warn("source health check failed", "source_id", source.ID, "url", url)
	}

	return healthy
}

func (c *HTTPChecker) probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "statforge/1.0 (+health-check)")

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
