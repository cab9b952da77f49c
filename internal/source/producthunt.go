package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
)

const phFeedURL = "https://www.producthunt.com/feed"

// ProductHunt discovers official launches from the Product Hunt feed.
// Launches are the strongest trend signal the pipeline has, so this
// source carries the largest bias. The feed exposes no vote counts; feed
// position stands in as the popularity signal.
type ProductHunt struct {
	client  *fetch.Client
	parser  *gofeed.Parser
	feedURL string
}

func NewProductHunt(client *fetch.Client) *ProductHunt {
	return &ProductHunt{client: client, parser: gofeed.NewParser(), feedURL: phFeedURL}
}

func (s *ProductHunt) Name() string { return "producthunt" }

func (s *ProductHunt) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.feedURL,
		CacheKey: "producthunt:feed",
	})
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseString(payload.Text())
	if err != nil {
		return nil, fmt.Errorf("parsing producthunt feed: %w", err)
	}

	total := len(feed.Items)
	var candidates []Candidate
	for i, item := range feed.Items {
		name := launchName(item.Title)
		if name == "" {
			continue
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		published := itemTime(item)

		signal := rankSignal(i, total)
		candidates = append(candidates, Candidate{
			Name:         name,
			Source:       s.Name(),
			URL:          item.Link,
			Descriptions: description(desc),
			Category:     normalize.Categorize(name, desc, item.Categories),
			Tags:         item.Categories,
			Popularity:   signal,
			TrendScore:   trendScore(biasProductHunt, signal),
			Freshness:    freshness(published),
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}

// launchName strips the tagline Product Hunt appends to feed titles,
// e.g. "NanoLLM - Tiny local models for everyone" -> "NanoLLM".
func launchName(title string) string {
	for _, sep := range []string{" — ", " – ", " - ", ": "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return strings.TrimSpace(title)
}
