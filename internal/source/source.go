// Package source defines the common Candidate shape and the adapters that
// query each external system.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/ciroautuori/trendscout/internal/normalize"
)

// Candidate is a normalized discovered item ready for ranking and merging.
type Candidate struct {
	Name         string
	Source       string
	URL          string
	Descriptions map[string]string // language code -> description
	Category     normalize.Category
	Tags         []string

	// Popularity is the source's native signal (votes, stars, likes).
	Popularity float64

	// TrendScore is Popularity passed through the source's scoring
	// formula plus its curation bias. Only comparable across sources
	// because every adapter applies its bias.
	TrendScore float64

	Freshness string
}

// Key returns the candidate's canonical dedup key.
func (c Candidate) Key() string {
	return normalize.Key(c.Name)
}

// Source is one external system the pipeline can discover candidates
// from. Implementations are fault-isolated by the orchestrator: returning
// an error (or panicking) costs only that source's bucket.
type Source interface {
	Name() string
	Discover(ctx context.Context, limit int) ([]Candidate, error)
}

// Freshness buckets.
const (
	FreshToday    = "today"
	FreshThisWeek = "this-week"
	FreshOlder    = "older"
)

func freshness(t time.Time) string {
	if t.IsZero() {
		return FreshOlder
	}
	age := time.Since(t)
	switch {
	case age < 24*time.Hour:
		return FreshToday
	case age < 7*24*time.Hour:
		return FreshThisWeek
	default:
		return FreshOlder
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// description builds the localized description map every adapter fills.
// Adapters only ever see English payloads; translation happens downstream.
func description(text string) map[string]string {
	text = truncate(stripHTML(text), 300)
	if text == "" {
		return nil
	}
	return map[string]string{"en": text}
}
