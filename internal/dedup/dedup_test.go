package dedup

import (
	"context"
	"io"
	"testing"

	"log/slog"

	"github.com/statforge/statforge/internal/models"
)

type fakeCorpus struct {
	titles map[string]bool
	urls   map[string]bool
}

func (f *fakeCorpus) ExistsByNormalizedTitle(ctx context.Context, title string) (bool, error) {
	return f.titles[title], nil
}

func (f *fakeCorpus) ExistsByNormalizedURL(ctx context.Context, url string) (bool, error) {
	return f.urls[url], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "case folding", input: "78% Of Poles READ Online", expected: "78% of poles read online"},
		{name: "whitespace collapse", input: "  spaced \t out\ntitle ", expected: "spaced out title"},
		{name: "punctuation stripped", input: "Cats, dogs... and birds!", expected: "cats dogs and birds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	if got := NormalizeURL("  HTTPS://Example.com/Article/ "); got != "https://example.com/article" {
		t.Errorf("unexpected normalized url %q", got)
	}
}

func TestSameRunDuplicateGuard(t *testing.T) {
	d := New(nil, testLogger())
	ctx := context.Background()

	item := models.SourceItem{Title: "60% of students commute", SourceURL: "https://example.com/a"}

	dup, _, err := d.IsDuplicate(ctx, item)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if dup {
		t.Fatal("fresh item flagged as duplicate")
	}
	d.Mark(item)

	// Same title, different URL, shouting case.
	restyled := models.SourceItem{Title: "60% OF STUDENTS COMMUTE!", SourceURL: "https://other.example.com/b"}
	dup, label, err := d.IsDuplicate(ctx, restyled)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if !dup {
		t.Fatal("restyled duplicate not detected")
	}
	if label != restyled.Title {
		t.Errorf("expected duplicate label to be the title, got %q", label)
	}

	// Same URL, different title.
	sameURL := models.SourceItem{Title: "A different headline", SourceURL: "https://example.com/a/"}
	dup, _, err = d.IsDuplicate(ctx, sameURL)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if !dup {
		t.Fatal("same-URL duplicate not detected")
	}
}

func TestCorpusDuplicate(t *testing.T) {
	corpus := &fakeCorpus{
		titles: map[string]bool{"already persisted statistic": true},
		urls:   map[string]bool{"https://example.com/known": true},
	}
	d := New(corpus, testLogger())
	ctx := context.Background()

	byTitle := models.SourceItem{Title: "Already persisted statistic.", SourceURL: "https://example.com/new"}
	dup, _, err := d.IsDuplicate(ctx, byTitle)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if !dup {
		t.Error("corpus title duplicate not detected")
	}

	byURL := models.SourceItem{Title: "Fresh headline", SourceURL: "https://example.com/known/"}
	dup, _, err = d.IsDuplicate(ctx, byURL)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if !dup {
		t.Error("corpus URL duplicate not detected")
	}

	fresh := models.SourceItem{Title: "Brand new", SourceURL: "https://example.com/brand-new"}
	dup, _, err = d.IsDuplicate(ctx, fresh)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if dup {
		t.Error("fresh item flagged as corpus duplicate")
	}
}

func TestDuplicateLabelFallsBackToURL(t *testing.T) {
	d := New(nil, testLogger())
	ctx := context.Background()

	item := models.SourceItem{SourceURL: "https://example.com/untitled"}
	d.Mark(item)

	dup, label, err := d.IsDuplicate(ctx, item)
	if err != nil {
		t.Fatalf("IsDuplicate returned error: %v", err)
	}
	if !dup {
		t.Fatal("expected duplicate")
	}
	if label != item.SourceURL {
		t.Errorf("expected URL label for untitled item, got %q", label)
	}
}
