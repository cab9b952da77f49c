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
	npmEndpoint = "https://registry.npmjs.org/-/v1/search"
	npmQuery    = "keywords:ai"
)

// Npm discovers packages from the npm registry search, ranked by the
// registry's own popularity score.
type Npm struct {
	client   *fetch.Client
	endpoint string
}

func NewNpm(client *fetch.Client) *Npm {
	return &Npm{client: client, endpoint: npmEndpoint}
}

func (s *Npm) Name() string { return "npmjs" }

type npmResponse struct {
	Objects []struct {
		Package struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Keywords    []string `json:"keywords"`
			Date        string   `json:"date"`
			Links       struct {
				Npm      string `json:"npm"`
				Homepage string `json:"homepage"`
			} `json:"links"`
		} `json:"package"`
		Score struct {
			Detail struct {
				Popularity float64 `json:"popularity"`
			} `json:"detail"`
		} `json:"score"`
	} `json:"objects"`
}

func (s *Npm) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("text", npmQuery)
	params.Set("size", strconv.Itoa(limit))
	params.Set("popularity", "1.0")

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		CacheKey: "npm:" + npmQuery,
	})
	if err != nil {
		return nil, err
	}

	var res npmResponse
	if err := payload.JSON(&res); err != nil {
		return nil, fmt.Errorf("decoding npm response: %w", err)
	}

	candidates := make([]Candidate, 0, len(res.Objects))
	for _, obj := range res.Objects {
		pkg := obj.Package
		if pkg.Name == "" {
			continue
		}
		link := pkg.Links.Homepage
		if link == "" {
			link = pkg.Links.Npm
		}
		published, _ := time.Parse(time.RFC3339, pkg.Date)

		// The registry popularity score is 0..1; scale it so the log
		// compression in trendScore still differentiates packages.
		signal := obj.Score.Detail.Popularity * 100

		candidates = append(candidates, Candidate{
			Name:         pkg.Name,
			Source:       s.Name(),
			URL:          link,
			Descriptions: description(pkg.Description),
			Category:     normalize.Categorize(pkg.Name, pkg.Description, pkg.Keywords),
			Tags:         pkg.Keywords,
			Popularity:   signal,
			TrendScore:   trendScore(biasNpm, signal),
			Freshness:    freshness(published),
		})
	}
	return candidates, nil
}
