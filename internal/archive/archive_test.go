package archive

import (
	"path/filepath"
	"testing"
	"time"
)

func testArchive(t *testing.T) *Archive {
	t.Helper()
	dir := t.TempDir()
	a, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleRecords() []Record {
	now := time.Now()
	return []Record{
		{Key: "nanollm", Name: "NanoLLM", Source: "producthunt", URL: "https://nanollm.dev", Description: "Tiny models", Category: "chat-assistants", Tags: []string{"llm", "local"}, Popularity: 512, TrendScore: 1062.4, Freshness: "today", DiscoveredAt: now.Add(-1 * time.Hour)},
		{Key: "pixelgen", Name: "PixelGen", Source: "github", Description: "Images from words", Category: "image-generation", Popularity: 4200, TrendScore: 583.5, Freshness: "today", DiscoveredAt: now.Add(-2 * time.Hour)},
		{Key: "voiceforge", Name: "VoiceForge", Source: "producthunt", Description: "Cloned voices", Category: "audio-speech", Popularity: 80, TrendScore: 1043.9, Freshness: "this-week", DiscoveredAt: now.Add(-100 * 24 * time.Hour)},
	}
}

func TestUpsertAndQuery(t *testing.T) {
	a := testArchive(t)
	if err := a.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := a.Query(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Newest discovery first.
	if got[0].Key != "nanollm" {
		t.Errorf("expected newest first, got %s", got[0].Key)
	}
	if len(got[0].Tags) != 2 || got[0].Tags[0] != "llm" {
		t.Errorf("tags did not round-trip: %v", got[0].Tags)
	}
}

func TestUpsertRefreshesScoreKeepsDiscovery(t *testing.T) {
	a := testArchive(t)
	records := sampleRecords()
	if err := a.Upsert(records); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	records[0].TrendScore = 2000
	records[0].DiscoveredAt = time.Now()
	if err := a.Upsert(records[:1]); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := a.Query(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("upsert must not duplicate, got %d records", len(got))
	}
	for _, r := range got {
		if r.Key == "nanollm" && r.TrendScore != 2000 {
			t.Errorf("score not refreshed: %v", r.TrendScore)
		}
	}
}

func TestQueryFilters(t *testing.T) {
	a := testArchive(t)
	if err := a.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	bySource, err := a.Query(QueryOpts{Source: "producthunt"})
	if err != nil {
		t.Fatalf("query by source: %v", err)
	}
	if len(bySource) != 2 {
		t.Errorf("expected 2 producthunt records, got %d", len(bySource))
	}

	byCategory, err := a.Query(QueryOpts{Category: "image-generation"})
	if err != nil {
		t.Fatalf("query by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Key != "pixelgen" {
		t.Errorf("unexpected category result: %v", byCategory)
	}

	bySearch, err := a.Query(QueryOpts{Search: "voices"})
	if err != nil {
		t.Fatalf("query by search: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Key != "voiceforge" {
		t.Errorf("unexpected search result: %v", bySearch)
	}

	since, err := a.Query(QueryOpts{Since: time.Now().Add(-24 * time.Hour)})
	if err != nil {
		t.Fatalf("query since: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("expected 2 recent records, got %d", len(since))
	}
}

func TestQueryLimit(t *testing.T) {
	a := testArchive(t)
	if err := a.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := a.Query(QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected limit respected, got %d", len(got))
	}
}

func TestKnownKeys(t *testing.T) {
	a := testArchive(t)
	if err := a.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	keys, err := a.KnownKeys()
	if err != nil {
		t.Fatalf("known keys: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("expected 3 keys, got %v", keys)
	}
}

func TestPrune(t *testing.T) {
	a := testArchive(t)
	if err := a.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := a.Prune(90 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned record, got %d", deleted)
	}

	got, err := a.Query(QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 records after prune, got %d", len(got))
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	a, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	if err := a.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	count, size, err := a.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 records, got %d", count)
	}
	if size <= 0 {
		t.Errorf("expected positive file size, got %d", size)
	}
}
