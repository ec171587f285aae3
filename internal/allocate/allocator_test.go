package allocate

import (
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func opts(minS, maxS, minA, maxA int) config.GenerationOptions {
	return config.GenerationOptions{
		MinStatistics: minS,
		MaxStatistics: maxS,
		MinAntystics:  minA,
		MaxAntystics:  maxA,
	}
}

func candidate(title string, humor bool, published time.Time) models.SourceItem {
	return models.SourceItem{
		SourceID:      "src",
		SourceName:    "Source Name",
		Title:         title,
		Summary:       "summary",
		SourceURL:     "https://example.com/" + title,
		PublishedAt:   published,
		HumorFriendly: humor,
	}
}

func TestAllocateFillsBothBuckets(t *testing.T) {
	a := New(opts(0, 2, 0, 1), nil, testLogger())
	now := time.Now()

	candidates := []models.SourceItem{
		candidate("serious-1", false, now.Add(-1*time.Hour)),
		candidate("funny-1", true, now.Add(-2*time.Hour)),
		candidate("serious-2", false, now.Add(-3*time.Hour)),
	}

	stats, antys := a.Allocate(candidates, 2, 1, now)

	if len(stats) != 2 {
		t.Fatalf("expected 2 statistics, got %d", len(stats))
	}
	if len(antys) != 1 {
		t.Fatalf("expected 1 antistic, got %d", len(antys))
	}

	for _, d := range append(stats, antys...) {
		if d.ID == "" {
			t.Error("draft missing identity")
		}
		if d.Status != models.ModerationStatusPending {
			t.Errorf("draft status %s, want Pending", d.Status)
		}
		if d.SourceCitation != "Source Name" {
			t.Errorf("citation %q not derived from source name", d.SourceCitation)
		}
		if !d.CreatedAt.Equal(now) {
			t.Error("draft should carry the run's execution time")
		}
	}

	if antys[0].Kind != models.DraftKindAntistic {
		t.Errorf("antistic bucket holds kind %s", antys[0].Kind)
	}
}

func TestAllocateClampsTargets(t *testing.T) {
	a := New(opts(1, 3, 0, 2), nil, testLogger())
	now := time.Now()

	var candidates []models.SourceItem
	for i := 0; i < 10; i++ {
		candidates = append(candidates, candidate(string(rune('a'+i)), false, now))
	}

	stats, _ := a.Allocate(candidates, 99, 0, now)
	if len(stats) != 3 {
		t.Errorf("target above max should clamp to 3, got %d", len(stats))
	}

	stats, _ = a.Allocate(candidates, 0, 0, now)
	if len(stats) != 1 {
		t.Errorf("target below min should clamp to 1, got %d", len(stats))
	}
}

func TestAllocatePrefersRecent(t *testing.T) {
	a := New(opts(0, 1, 0, 0), nil, testLogger())
	now := time.Now()

	candidates := []models.SourceItem{
		candidate("old", false, now.Add(-48*time.Hour)),
		candidate("new", false, now.Add(-1*time.Hour)),
		candidate("middle", false, now.Add(-24*time.Hour)),
	}

	stats, _ := a.Allocate(candidates, 1, 0, now)
	if len(stats) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(stats))
	}
	if stats[0].Title != "new" {
		t.Errorf("expected most recent candidate, got %s", stats[0].Title)
	}
}

func TestAllocateSpillsToOtherBucket(t *testing.T) {
	a := New(opts(0, 1, 0, 2), nil, testLogger())
	now := time.Now()

	// All humor-friendly: first fills the antistic bucket, then spill.
	candidates := []models.SourceItem{
		candidate("funny-1", true, now),
		candidate("funny-2", true, now.Add(-time.Minute)),
		candidate("funny-3", true, now.Add(-2*time.Minute)),
	}

	stats, antys := a.Allocate(candidates, 1, 2, now)
	if len(antys) != 2 {
		t.Errorf("expected antistic bucket filled first, got %d", len(antys))
	}
	if len(stats) != 1 {
		t.Errorf("expected spill into statistics, got %d", len(stats))
	}
	if stats[0].Kind != models.DraftKindStatistic {
		t.Errorf("spilled draft carries kind %s", stats[0].Kind)
	}
}

func TestAllocateLeavesSurplusUnused(t *testing.T) {
	a := New(opts(0, 1, 0, 1), nil, testLogger())
	now := time.Now()

	candidates := []models.SourceItem{
		candidate("a", false, now),
		candidate("b", false, now),
		candidate("c", true, now),
		candidate("d", true, now),
	}

	stats, antys := a.Allocate(candidates, 1, 1, now)
	if len(stats)+len(antys) != 2 {
		t.Errorf("expected exactly 2 drafts with quotas 1/1, got %d", len(stats)+len(antys))
	}
}

type alwaysAntistic struct{}

func (alwaysAntistic) Preferred(models.SourceItem) models.DraftKind {
	return models.DraftKindAntistic
}

func TestAllocateCustomPolicy(t *testing.T) {
	a := New(opts(0, 5, 0, 5), alwaysAntistic{}, testLogger())
	now := time.Now()

	candidates := []models.SourceItem{
		candidate("x", false, now),
		candidate("y", false, now),
	}

	stats, antys := a.Allocate(candidates, 5, 5, now)
	if len(stats) != 0 || len(antys) != 2 {
		t.Errorf("custom policy ignored: %d statistics, %d antystics", len(stats), len(antys))
	}
}
