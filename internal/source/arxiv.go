package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
)

const (
	arxivEndpoint = "http://export.arxiv.org/api/query"
	arxivQuery    = "cat:cs.AI OR cat:cs.LG"
	arxivWindow   = 48 * time.Hour
)

// Arxiv discovers newly submitted AI papers through the arXiv Atom API.
// Papers have no popularity counter; feed position (newest first) is the
// signal, and only submissions inside the freshness window survive.
type Arxiv struct {
	client   *fetch.Client
	parser   *gofeed.Parser
	endpoint string
}

func NewArxiv(client *fetch.Client) *Arxiv {
	return &Arxiv{client: client, parser: gofeed.NewParser(), endpoint: arxivEndpoint}
}

func (s *Arxiv) Name() string { return "arxiv" }

func (s *Arxiv) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("search_query", arxivQuery)
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	params.Set("max_results", strconv.Itoa(limit))

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		CacheKey: "arxiv:" + arxivQuery,
	})
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseString(payload.Text())
	if err != nil {
		return nil, fmt.Errorf("parsing arxiv feed: %w", err)
	}

	cutoff := time.Now().Add(-arxivWindow)
	total := len(feed.Items)
	var candidates []Candidate
	for i, item := range feed.Items {
		if item.Title == "" {
			continue
		}
		published := itemTime(item)
		if published.Before(cutoff) {
			continue
		}

		signal := rankSignal(i, total)
		candidates = append(candidates, Candidate{
			Name:         item.Title,
			Source:       s.Name(),
			URL:          item.Link,
			Descriptions: description(item.Description),
			Category:     normalize.Categorize(item.Title, item.Description, item.Categories),
			Tags:         item.Categories,
			Popularity:   signal,
			TrendScore:   trendScore(biasArxiv, signal),
			Freshness:    freshness(published),
		})
	}
	return candidates, nil
}

// itemTime picks the best timestamp a feed item offers.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
