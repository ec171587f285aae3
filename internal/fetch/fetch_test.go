package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/statforge/statforge/internal/models"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>GUS News</title>
    <item>
      <title>78% of Poles read news online</title>
      <description>&lt;p&gt;A new survey shows that 78% of Poles read news online daily.&lt;/p&gt;</description>
      <link>https://stat.gov.pl/articles/online-news</link>
      <pubDate>Mon, 02 Jun 2025 10:00:00 +0000</pubDate>
      <category>media</category>
    </item>
    <item>
      <title>Cats outnumber dogs 3 in 5 households</title>
      <description>Feline dominance confirmed.</description>
      <link>https://stat.gov.pl/articles/cats</link>
      <pubDate>Tue, 03 Jun 2025 09:00:00 +0000</pubDate>
      <category>humor</category>
    </item>
    <item>
      <title></title>
      <link>https://stat.gov.pl/articles/untitled</link>
    </item>
  </channel>
</rss>`

const sampleAPIResponse = `[
  {"title": "45% of commuters cycle", "summary": "Bike counts rose.", "url": "https://api.example.com/items/1", "publishedAt": "2025-06-01T08:00:00Z"},
  {"title": "1 in 4 remote workers", "description": "Remote work share.", "link": "https://api.example.com/items/2", "publishedAt": "2025-06-02", "humorFriendly": true},
  {"title": "", "url": "https://api.example.com/items/3"}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRSS(t *testing.T) *RSSAdapter {
	t.Helper()
	return NewRSSAdapter(&http.Client{}, nil, 5*time.Second, testLogger())
}

func newAPI(t *testing.T) *APIAdapter {
	t.Helper()
	return NewAPIAdapter(&http.Client{}, nil, 5*time.Second, testLogger())
}

func TestRSSAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	source := models.ContentSource{
		ID:          "gus",
		Name:        "GUS News",
		Type:        models.SourceTypeRSS,
		Endpoint:    srv.URL,
		PolandFocus: true,
	}

	items, err := newRSS(t).Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	// Third entry has no title and is dropped.
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "78% of Poles read news online" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Summary != "A new survey shows that 78% of Poles read news online daily." {
		t.Errorf("expected HTML-stripped summary, got %q", first.Summary)
	}
	if !first.PolandFocus {
		t.Error("expected source Poland focus to propagate")
	}
	if first.HumorFriendly {
		t.Error("media category must not mark humor friendly")
	}
	if first.StatusCode != 0 {
		t.Errorf("expected no status taint for 200 response, got %d", first.StatusCode)
	}

	if !items[1].HumorFriendly {
		t.Error("humor category should mark item humor friendly")
	}
}

func TestRSSAdapterStampsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	source := models.ContentSource{ID: "flaky", Name: "Flaky", Type: models.SourceTypeRSS, Endpoint: srv.URL}

	items, err := newRSS(t).Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	for _, item := range items {
		if item.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected status taint 503, got %d", item.StatusCode)
		}
	}
}

func TestRSSAdapterUnparsableFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "this is not a feed")
	}))
	defer srv.Close()

	source := models.ContentSource{ID: "junk", Type: models.SourceTypeRSS, Endpoint: srv.URL}

	if _, err := newRSS(t).Fetch(context.Background(), source); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRSSAdapterTransportError(t *testing.T) {
	source := models.ContentSource{ID: "down", Type: models.SourceTypeRSS, Endpoint: "http://127.0.0.1:1/feed"}

	if _, err := newRSS(t).Fetch(context.Background(), source); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestAPIAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleAPIResponse)
	}))
	defer srv.Close()

	source := models.ContentSource{ID: "api", Name: "Example API", Type: models.SourceTypeAPI, Endpoint: srv.URL}

	items, err := newAPI(t).Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].SourceURL != "https://api.example.com/items/1" {
		t.Errorf("unexpected url %s", items[0].SourceURL)
	}
	if items[1].Summary != "Remote work share." {
		t.Errorf("expected description fallback, got %q", items[1].Summary)
	}
	if !items[1].HumorFriendly {
		t.Error("expected humorFriendly flag to propagate")
	}
	if items[0].PublishedAt.IsZero() {
		t.Error("expected parsed publishedAt")
	}
}

func TestAPIAdapterBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"not": "an array"}`)
	}))
	defer srv.Close()

	source := models.ContentSource{ID: "bad", Type: models.SourceTypeAPI, Endpoint: srv.URL}

	if _, err := newAPI(t).Fetch(context.Background(), source); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRegistryDispatchOrder(t *testing.T) {
	registry := NewRegistry(newRSS(t), newAPI(t))

	rssSource := models.ContentSource{Type: models.SourceTypeRSS}
	adapter, err := registry.ForSource(rssSource)
	if err != nil {
		t.Fatalf("ForSource returned error: %v", err)
	}
	if adapter.Name() != "rss" {
		t.Errorf("expected rss adapter, got %s", adapter.Name())
	}

	apiSource := models.ContentSource{Type: models.SourceTypeAPI}
	adapter, err = registry.ForSource(apiSource)
	if err != nil {
		t.Fatalf("ForSource returned error: %v", err)
	}
	if adapter.Name() != "api" {
		t.Errorf("expected api adapter, got %s", adapter.Name())
	}
}

func TestRegistryNoAdapter(t *testing.T) {
	registry := NewRegistry(newRSS(t))

	_, err := registry.ForSource(models.ContentSource{Type: models.SourceType("Soap")})
	if err == nil {
		t.Fatal("expected no-adapter error")
	}

	noAdapter, ok := err.(*NoAdapterError)
	if !ok {
		t.Fatalf("expected *NoAdapterError, got %T", err)
	}
	if noAdapter.SourceType != "Soap" {
		t.Errorf("unexpected source type in error: %s", noAdapter.SourceType)
	}
}

func TestLimiterThrottlesSameDomain(t *testing.T) {
	limiter := NewLimiter(10, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "https://example.com/feed"); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	elapsed := time.Since(start)

	// Burst of 1 at 10 rps: two of the three calls must wait ~100ms each.
	if elapsed < 150*time.Millisecond {
		t.Errorf("expected rate limiting to delay requests, took %v", elapsed)
	}
}

func TestLimiterCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	if err := limiter.Wait(ctx, "https://example.com/"); err != nil {
		t.Fatalf("first Wait should pass burst: %v", err)
	}

	cancel()
	if err := limiter.Wait(ctx, "https://example.com/"); err == nil {
		t.Fatal("expected error after cancellation")
	}
}
