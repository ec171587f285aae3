package models

import (
	"time"
)

// ContentSource is one configured external content origin (RSS feed or API
// endpoint). Sources are loaded from the manifest once per run and are
// immutable for the duration of that run. Identity is the ID.
type ContentSource struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Type           SourceType `json:"type" yaml:"type"`
	Endpoint       string     `json:"endpoint" yaml:"endpoint"`
	HealthCheckURL string     `json:"healthCheckUrl,omitempty" yaml:"healthCheckUrl"`
	PolandFocus    bool       `json:"polandFocus" yaml:"polandFocus"`
}

// SourceType categorizes how a source is fetched.
type SourceType string

const (
	SourceTypeRSS SourceType = "Rss"
	SourceTypeAPI SourceType = "Api"
)

// ProbeURL returns the URL used for reachability checks, falling back to the
// fetch endpoint when no dedicated health check URL is configured.
func (s *ContentSource) ProbeURL() string {
	if s.HealthCheckURL != "" {
		return s.HealthCheckURL
	}
	return s.Endpoint
}

// SourceItem is a raw candidate surfaced by a fetcher. It exists only within
// one generation run.
type SourceItem struct {
	SourceID      string    `json:"sourceId"`
	SourceName    string    `json:"sourceName"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	SourceURL     string    `json:"sourceUrl"`
	PublishedAt   time.Time `json:"publishedAt"`
	PolandFocus   bool      `json:"polandFocus"`
	HumorFriendly bool      `json:"humorFriendly"`

	// StatusCode is the HTTP status the source answered with at fetch time.
	// A non-success status taints every item from that response: an
	// unreachable citation cannot be trusted even when its text parses.
	StatusCode int `json:"sourceStatusCode,omitempty"`

	// Extracted claim fields, populated by validation for items that pass.
	PercentageValue *float64 `json:"percentageValue,omitempty"`
	Ratio           string   `json:"ratio,omitempty"`
	Timeframe       string   `json:"timeframe,omitempty"`
}

// IsRecent returns true if the item was published within the given window.
func (i *SourceItem) IsRecent(window time.Duration) bool {
	return time.Since(i.PublishedAt) <= window
}

// ValidationIssue records why a candidate was rejected during claim
// validation. Issues never enter the content corpus; they are surfaced in the
// run result for operator review.
type ValidationIssue struct {
	SourceID         string   `json:"sourceId"`
	SourceName       string   `json:"sourceName"`
	Title            string   `json:"title"`
	Reason           string   `json:"reason"`
	SourceURL        string   `json:"sourceUrl,omitempty"`
	SourceStatusCode int      `json:"sourceStatusCode,omitempty"`
	PercentageValue  *float64 `json:"percentageValue,omitempty"`
	Ratio            string   `json:"ratio,omitempty"`
	Timeframe        string   `json:"timeframe,omitempty"`
	ContextSentence  string   `json:"contextSentence,omitempty"`
}
