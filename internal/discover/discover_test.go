package discover

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ciroautuori/trendscout/internal/normalize"
	"github.com/ciroautuori/trendscout/internal/source"
	"github.com/ciroautuori/trendscout/internal/store"
)

type stubSource struct {
	name       string
	candidates []source.Candidate
	err        error
	panics     bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Discover(ctx context.Context, limit int) ([]source.Candidate, error) {
	if s.panics {
		panic("adapter exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func cand(name, src string, score float64) source.Candidate {
	return source.Candidate{
		Name:       name,
		Source:     src,
		URL:        "https://example.com/" + normalize.Key(name),
		Category:   normalize.Other,
		TrendScore: score,
	}
}

func testEngine(t *testing.T, blacklist []string, sources ...source.Source) *Engine {
	t.Helper()
	cache := store.Open(filepath.Join(t.TempDir(), "cache.json"))
	return New(sources, blacklist, cache)
}

func names(candidates []source.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Name
	}
	return out
}

func TestScenarioBlacklistAndRoundRobin(t *testing.T) {
	srcA := &stubSource{name: "a", candidates: []source.Candidate{
		cand("Ollama Pro", "a", 900),
		cand("NanoLLM", "a", 50),
	}}
	srcB := &stubSource{name: "b", candidates: []source.Candidate{
		cand("PixelGen", "b", 80),
	}}

	e := testEngine(t, []string{"ollama"}, srcA, srcB)
	got := e.Discover(context.Background(), Options{TargetCount: 2})

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %v", len(got), names(got))
	}
	if got[0].Name != "NanoLLM" || got[1].Name != "PixelGen" {
		t.Errorf("expected [NanoLLM PixelGen], got %v", names(got))
	}
	for _, c := range got {
		if normalize.Blacklisted(c.Key(), []string{"ollama"}) {
			t.Errorf("blacklisted candidate %q leaked through", c.Name)
		}
	}
}

func TestFairness(t *testing.T) {
	var sources []source.Source
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("src%d", i)
		var cands []source.Candidate
		for j := 0; j < 10; j++ {
			cands = append(cands, cand(fmt.Sprintf("tool-%d-%d", i, j), name, float64(1000-j)))
		}
		sources = append(sources, &stubSource{name: name, candidates: cands})
	}

	e := testEngine(t, nil, sources...)

	for target := 1; target <= 5; target++ {
		got := e.Discover(context.Background(), Options{TargetCount: target})
		if len(got) != target {
			t.Fatalf("target %d: got %d candidates", target, len(got))
		}
		distinct := map[string]bool{}
		for _, c := range got {
			distinct[c.Source] = true
		}
		if len(distinct) != target {
			t.Errorf("target %d: expected %d distinct sources, got %d", target, target, len(distinct))
		}
	}
}

func TestRoundRobinOrderAndSecondPass(t *testing.T) {
	srcA := &stubSource{name: "a", candidates: []source.Candidate{
		cand("A-low", "a", 10),
		cand("A-high", "a", 99),
	}}
	srcB := &stubSource{name: "b", candidates: []source.Candidate{
		cand("B-high", "b", 77),
		cand("B-low", "b", 5),
	}}

	e := testEngine(t, nil, srcA, srcB)
	got := e.Discover(context.Background(), Options{TargetCount: 4})

	want := []string{"A-high", "B-high", "A-low", "B-low"}
	if len(got) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(got))
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Fatalf("position %d: expected %s, got %v", i, w, names(got))
		}
	}
}

func TestDedupAcrossSources(t *testing.T) {
	srcA := &stubSource{name: "a", candidates: []source.Candidate{
		cand("Pixel-Gen", "a", 90),
		cand("AlphaTool", "a", 50),
	}}
	srcB := &stubSource{name: "b", candidates: []source.Candidate{
		cand("PixelGen", "b", 80), // same normalized key as Pixel-Gen
		cand("BetaTool", "b", 40),
	}}

	e := testEngine(t, nil, srcA, srcB)
	got := e.Discover(context.Background(), Options{TargetCount: 10})

	seen := map[string]bool{}
	for _, c := range got {
		key := c.Key()
		if seen[key] {
			t.Fatalf("duplicate key %q in output %v", key, names(got))
		}
		seen[key] = true
	}
	if len(got) != 3 {
		t.Errorf("expected 3 after dedup, got %v", names(got))
	}
	// First accepted wins: Pixel-Gen from the higher-priority bucket.
	if got[0].Name != "Pixel-Gen" || got[0].Source != "a" {
		t.Errorf("expected first-accepted Pixel-Gen from a, got %s from %s", got[0].Name, got[0].Source)
	}
}

func TestPartialFailureTolerance(t *testing.T) {
	sources := []source.Source{
		&stubSource{name: "dead1", err: errors.New("boom")},
		&stubSource{name: "dead2", err: errors.New("boom")},
		&stubSource{name: "dead3", panics: true},
		&stubSource{name: "dead4", err: errors.New("boom")},
		&stubSource{name: "dead5", err: errors.New("boom")},
		&stubSource{name: "dead6", panics: true},
		&stubSource{name: "dead7", err: errors.New("boom")},
		&stubSource{name: "dead8", err: errors.New("boom")},
		&stubSource{name: "alive", candidates: []source.Candidate{
			cand("Survivor", "alive", 42),
		}},
	}

	e := testEngine(t, nil, sources...)
	got := e.Discover(context.Background(), Options{TargetCount: 5})

	if len(got) != 1 || got[0].Name != "Survivor" {
		t.Errorf("expected the surviving adapter's candidate, got %v", names(got))
	}
}

func TestAllSourcesFailReturnsEmpty(t *testing.T) {
	e := testEngine(t, nil,
		&stubSource{name: "a", err: errors.New("down")},
		&stubSource{name: "b", panics: true},
	)
	got := e.Discover(context.Background(), Options{TargetCount: 3})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", names(got))
	}
}

func TestExcludedNames(t *testing.T) {
	srcA := &stubSource{name: "a", candidates: []source.Candidate{
		cand("KnownTool", "a", 90),
		cand("FreshTool", "a", 10),
	}}

	e := testEngine(t, nil, srcA)
	got := e.Discover(context.Background(), Options{
		TargetCount:   5,
		ExcludedNames: []string{"Known Tool"}, // normalized before matching
	})

	if len(got) != 1 || got[0].Name != "FreshTool" {
		t.Errorf("expected only FreshTool, got %v", names(got))
	}
}

func TestCategoryFilter(t *testing.T) {
	a := cand("ImgThing", "a", 90)
	a.Category = normalize.ImageGeneration
	b := cand("ChatThing", "a", 80)
	b.Category = normalize.ChatAssistants

	e := testEngine(t, nil, &stubSource{name: "a", candidates: []source.Candidate{a, b}})
	got := e.Discover(context.Background(), Options{
		TargetCount: 5,
		Categories:  []normalize.Category{normalize.ChatAssistants},
	})

	if len(got) != 1 || got[0].Name != "ChatThing" {
		t.Errorf("expected only ChatThing, got %v", names(got))
	}
}

func TestSourceSubset(t *testing.T) {
	e := testEngine(t, nil,
		&stubSource{name: "a", candidates: []source.Candidate{cand("FromA", "a", 1)}},
		&stubSource{name: "b", candidates: []source.Candidate{cand("FromB", "b", 1)}},
	)
	got := e.Discover(context.Background(), Options{TargetCount: 5, Sources: []string{"b"}})

	if len(got) != 1 || got[0].Name != "FromB" {
		t.Errorf("expected only source b, got %v", names(got))
	}
}

func TestShortKeysDropped(t *testing.T) {
	e := testEngine(t, nil, &stubSource{name: "a", candidates: []source.Candidate{
		cand("AI", "a", 999), // key "ai" is below the minimum length
		cand("RealTool", "a", 1),
	}})
	got := e.Discover(context.Background(), Options{TargetCount: 5})

	if len(got) != 1 || got[0].Name != "RealTool" {
		t.Errorf("expected short-key candidate dropped, got %v", names(got))
	}
}

func TestTargetCountClamped(t *testing.T) {
	var cands []source.Candidate
	for i := 0; i < 200; i++ {
		cands = append(cands, cand(fmt.Sprintf("tool-%03d", i), "a", float64(i)))
	}
	e := testEngine(t, nil, &stubSource{name: "a", candidates: cands})

	got := e.Discover(context.Background(), Options{TargetCount: 500})
	if len(got) != 100 {
		t.Errorf("expected clamp to 100, got %d", len(got))
	}

	got = e.Discover(context.Background(), Options{TargetCount: -1})
	if len(got) != 1 {
		t.Errorf("expected clamp to 1, got %d", len(got))
	}
}

func TestBucketSortStable(t *testing.T) {
	// Equal scores keep discovery order.
	e := testEngine(t, nil, &stubSource{name: "a", candidates: []source.Candidate{
		cand("First", "a", 50),
		cand("Second", "a", 50),
	}})
	got := e.Discover(context.Background(), Options{TargetCount: 2})

	if len(got) != 2 || got[0].Name != "First" || got[1].Name != "Second" {
		t.Errorf("tie must keep discovery order, got %v", names(got))
	}
}

func TestSeenSet(t *testing.T) {
	s := newSeenSet([]string{"ollama"}, []string{"Taken Name"})

	if !s.blacklisted("myollama") {
		t.Error("expected blacklist substring hit")
	}
	if !s.excluded("takenname") {
		t.Error("expected exclusion to be normalized")
	}
	if !s.add("fresh") {
		t.Error("first add should succeed")
	}
	if s.add("fresh") {
		t.Error("second add of same key should fail")
	}
	if s.add("takenname") {
		t.Error("excluded key must never be accepted")
	}
}
