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
	redditSubs   = "ArtificialInteligence+artificial+SideProject"
	redditMinUps = 20
)

// Reddit discovers tools surfacing in AI-adjacent subreddits via the
// public top.json endpoint. Upvoted chatter, low bias.
type Reddit struct {
	client   *fetch.Client
	endpoint string
}

func NewReddit(client *fetch.Client) *Reddit {
	return &Reddit{
		client:   client,
		endpoint: fmt.Sprintf("https://www.reddit.com/r/%s/top.json", redditSubs),
	}
}

func (s *Reddit) Name() string { return "reddit" }

type redditResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				Ups        float64 `json:"ups"`
				CreatedUTC float64 `json:"created_utc"`
				FlairText  string  `json:"link_flair_text"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *Reddit) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("t", "day")
	params.Set("limit", strconv.Itoa(limit))

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		CacheKey: "reddit:" + redditSubs,
	})
	if err != nil {
		return nil, err
	}

	var res redditResponse
	if err := payload.JSON(&res); err != nil {
		return nil, fmt.Errorf("decoding reddit response: %w", err)
	}

	candidates := make([]Candidate, 0, len(res.Data.Children))
	for _, child := range res.Data.Children {
		post := child.Data
		if post.Title == "" || post.Ups < redditMinUps {
			continue
		}
		link := post.URL
		if link == "" && post.Permalink != "" {
			link = "https://www.reddit.com" + post.Permalink
		}
		var tags []string
		if post.FlairText != "" {
			tags = []string{post.FlairText}
		}
		created := time.Unix(int64(post.CreatedUTC), 0)

		candidates = append(candidates, Candidate{
			Name:         post.Title,
			Source:       s.Name(),
			URL:          link,
			Descriptions: description(post.SelfText),
			Category:     normalize.Categorize(post.Title, post.SelfText, tags),
			Tags:         tags,
			Popularity:   post.Ups,
			TrendScore:   trendScore(biasReddit, post.Ups),
			Freshness:    freshness(created),
		})
	}
	return candidates, nil
}
