package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
)

const (
	devtoEndpoint = "https://dev.to/api/articles"
	devtoTag      = "ai"
	devtoTopDays  = 2
)

// DevTo discovers tools announced or reviewed on dev.to, ranked by
// positive reactions over the last couple of days.
type DevTo struct {
	client   *fetch.Client
	endpoint string
}

func NewDevTo(client *fetch.Client) *DevTo {
	return &DevTo{client: client, endpoint: devtoEndpoint}
}

func (s *DevTo) Name() string { return "devto" }

type devtoArticle struct {
	Title             string   `json:"title"`
	URL               string   `json:"url"`
	Description       string   `json:"description"`
	PositiveReactions float64  `json:"positive_reactions_count"`
	PublishedAt       string   `json:"published_at"`
	TagList           []string `json:"tag_list"`
}

func (s *DevTo) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("tag", devtoTag)
	params.Set("top", strconv.Itoa(devtoTopDays))
	params.Set("per_page", strconv.Itoa(limit))

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		CacheKey: "devto:" + devtoTag,
	})
	if err != nil {
		return nil, err
	}

	var articles []devtoArticle
	if err := payload.JSON(&articles); err != nil {
		return nil, fmt.Errorf("decoding devto response: %w", err)
	}

	candidates := make([]Candidate, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)

		candidates = append(candidates, Candidate{
			Name:         a.Title,
			Source:       s.Name(),
			URL:          a.URL,
			Descriptions: description(a.Description),
			Category:     normalize.Categorize(a.Title, a.Description, a.TagList),
			Tags:         a.TagList,
			Popularity:   a.PositiveReactions,
			TrendScore:   trendScore(biasDevTo, a.PositiveReactions),
			Freshness:    freshness(published),
		})
	}
	return candidates, nil
}
