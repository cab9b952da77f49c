// Package discover runs every source adapter concurrently and merges
// their ranked buckets into one deduplicated, source-diverse list.
package discover

import (
	"context"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/ciroautuori/trendscout/internal/normalize"
	"github.com/ciroautuori/trendscout/internal/source"
	"github.com/ciroautuori/trendscout/internal/store"
)

// Options narrows one discovery call.
type Options struct {
	// TargetCount is clamped to [1, 100].
	TargetCount int

	// Categories, when non-empty, keeps only candidates in these
	// taxonomy buckets.
	Categories []normalize.Category

	// Sources, when non-empty, keeps only these adapters.
	Sources []string

	// ExcludedNames seeds the dedup set with caller-known items so
	// they can never be returned again.
	ExcludedNames []string
}

const maxTargetCount = 100

// Engine owns the adapter list, the shared blacklist, and the fetch
// cache it persists after every run.
type Engine struct {
	sources   []source.Source
	blacklist []string
	cache     *store.Store
}

func New(sources []source.Source, blacklist []string, cache *store.Store) *Engine {
	return &Engine{
		sources:   sources,
		blacklist: blacklist,
		cache:     cache,
	}
}

// Discover runs the whole pipeline and never fails: adapter errors and
// panics degrade result richness, and an empty list is a valid outcome.
// The result is in acceptance order, at most TargetCount long.
func (e *Engine) Discover(ctx context.Context, opts Options) []source.Candidate {
	target := opts.TargetCount
	if target < 1 {
		target = 1
	}
	if target > maxTargetCount {
		target = maxTargetCount
	}

	runLog := log.WithField("run_id", uuid.NewString())

	sources := e.selectSources(opts.Sources)

	// One slot per adapter: all of them run at once, and the fetch
	// client's semaphore is what actually limits outbound load.
	results := make([][]source.Candidate, len(sources))
	p := pool.New().WithMaxGoroutines(len(sources) + 1)
	for i, src := range sources {
		i, src := i, src
		p.Go(func() {
			results[i] = e.runAdapter(ctx, runLog, src, target)
		})
	}
	p.Wait()

	// Persist whatever the run added to the fetch cache, success and
	// partial failure alike.
	defer func() {
		if e.cache == nil {
			return
		}
		if err := e.cache.Save(); err != nil {
			runLog.WithError(err).Warn("saving fetch cache")
		}
	}()

	seen := newSeenSet(e.blacklist, opts.ExcludedNames)
	buckets := e.bucket(sources, results, opts.Categories, seen)

	merged := roundRobin(sources, buckets, target, seen)

	runLog.WithFields(log.Fields{
		"target":   target,
		"accepted": len(merged),
	}).Info("discovery run complete")

	return merged
}

func (e *Engine) selectSources(names []string) []source.Source {
	if len(names) == 0 {
		return e.sources
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []source.Source
	for _, s := range e.sources {
		if wanted[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

// runAdapter isolates one adapter call: errors and panics are logged and
// yield an empty bucket, never propagate.
func (e *Engine) runAdapter(ctx context.Context, runLog *log.Entry, src source.Source, limit int) (out []source.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			runLog.WithFields(log.Fields{"source": src.Name(), "panic": r}).Error("adapter panicked")
			out = nil
		}
	}()

	candidates, err := src.Discover(ctx, limit)
	if err != nil {
		runLog.WithFields(log.Fields{"source": src.Name(), "error": err}).Warn("adapter failed")
		return nil
	}
	runLog.WithFields(log.Fields{"source": src.Name(), "candidates": len(candidates)}).Debug("adapter done")
	return candidates
}

// bucket filters each adapter's results and sorts every bucket by trend
// score, ties broken by discovery order.
func (e *Engine) bucket(sources []source.Source, results [][]source.Candidate, categories []normalize.Category, seen *seenSet) map[string][]source.Candidate {
	catFilter := make(map[normalize.Category]bool, len(categories))
	for _, c := range categories {
		catFilter[c] = true
	}

	buckets := make(map[string][]source.Candidate, len(sources))
	for i, src := range sources {
		var kept []source.Candidate
		for _, c := range results[i] {
			key := c.Key()
			if len(key) < normalize.MinKeyLen {
				continue
			}
			if seen.blacklisted(key) || seen.excluded(key) {
				continue
			}
			if len(catFilter) > 0 && !catFilter[c.Category] {
				continue
			}
			kept = append(kept, c)
		}
		sort.SliceStable(kept, func(a, b int) bool {
			return kept[a].TrendScore > kept[b].TrendScore
		})
		buckets[src.Name()] = kept
	}
	return buckets
}

// roundRobin takes the best unconsumed candidate from each bucket in the
// fixed source order, one per bucket per pass, skipping exhausted
// buckets, until target items are accepted or nothing is left. A pure
// global score sort would let one high-bias source fill the whole list;
// visiting every bucket each pass guarantees that any target up to the
// number of non-empty sources draws from that many distinct sources.
func roundRobin(sources []source.Source, buckets map[string][]source.Candidate, target int, seen *seenSet) []source.Candidate {
	accepted := make([]source.Candidate, 0, target)
	cursors := make(map[string]int, len(sources))

	for len(accepted) < target {
		progressed := false
		for _, src := range sources {
			if len(accepted) >= target {
				break
			}
			name := src.Name()
			bucket := buckets[name]

			// Advance past duplicates to this bucket's best unconsumed
			// candidate, taking at most one per pass.
			for cursors[name] < len(bucket) {
				c := bucket[cursors[name]]
				cursors[name]++
				if !seen.add(c.Key()) {
					continue
				}
				accepted = append(accepted, c)
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}
	}
	return accepted
}
