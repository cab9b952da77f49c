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
	hnEndpoint  = "https://hn.algolia.com/api/v1/search"
	hnQuery     = "AI tool"
	hnMinPoints = 50
	hnWindow    = 48 * time.Hour
)

// HackerNews discovers tools from Hacker News front-page discussion via
// the Algolia search API. Community chatter, so it carries the smallest
// bias.
type HackerNews struct {
	client   *fetch.Client
	endpoint string
}

func NewHackerNews(client *fetch.Client) *HackerNews {
	return &HackerNews{client: client, endpoint: hnEndpoint}
}

func (s *HackerNews) Name() string { return "hackernews" }

type hnResponse struct {
	Hits []struct {
		Title      string `json:"title"`
		URL        string `json:"url"`
		ObjectID   string `json:"objectID"`
		Points     int    `json:"points"`
		CreatedAtI int64  `json:"created_at_i"`
		StoryText  string `json:"story_text"`
	} `json:"hits"`
}

func (s *HackerNews) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	cutoff := time.Now().Add(-hnWindow).Unix()
	params := url.Values{}
	params.Set("query", hnQuery)
	params.Set("tags", "story")
	params.Set("hitsPerPage", strconv.Itoa(limit))
	params.Set("numericFilters", fmt.Sprintf("created_at_i>%d,points>%d", cutoff, hnMinPoints))

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		CacheKey: "hackernews:" + hnQuery,
	})
	if err != nil {
		return nil, err
	}

	var res hnResponse
	if err := payload.JSON(&res); err != nil {
		return nil, fmt.Errorf("decoding hackernews response: %w", err)
	}

	candidates := make([]Candidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if hit.Title == "" {
			continue
		}
		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		published := time.Unix(hit.CreatedAtI, 0)

		candidates = append(candidates, Candidate{
			Name:         hit.Title,
			Source:       s.Name(),
			URL:          link,
			Descriptions: description(hit.StoryText),
			Category:     normalize.Categorize(hit.Title, hit.StoryText, nil),
			Popularity:   float64(hit.Points),
			TrendScore:   trendScore(biasHackerNews, float64(hit.Points)),
			Freshness:    freshness(published),
		})
	}
	return candidates, nil
}
