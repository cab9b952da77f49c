package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
)

const (
	ghEndpoint = "https://api.github.com/search/repositories"
	ghTopic    = "artificial-intelligence"
	ghWindow   = 14 * 24 * time.Hour
	ghMinStars = 30
)

// GitHub discovers freshly created repositories trending by stars. When an
// elevated-rate-limit token is configured it is sent as a bearer header;
// anonymous search works too, just with tighter quotas.
type GitHub struct {
	client   *fetch.Client
	token    string
	endpoint string
}

func NewGitHub(client *fetch.Client, token string) *GitHub {
	return &GitHub{client: client, token: token, endpoint: ghEndpoint}
}

func (s *GitHub) Name() string { return "github" }

type ghResponse struct {
	Items []struct {
		Name        string   `json:"name"`
		FullName    string   `json:"full_name"`
		HTMLURL     string   `json:"html_url"`
		Description string   `json:"description"`
		Stars       float64  `json:"stargazers_count"`
		Topics      []string `json:"topics"`
		CreatedAt   string   `json:"created_at"`
		PushedAt    string   `json:"pushed_at"`
	} `json:"items"`
}

func (s *GitHub) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	since := time.Now().Add(-ghWindow).Format("2006-01-02")
	query := fmt.Sprintf("topic:%s created:>%s stars:>%d", ghTopic, since, ghMinStars)

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(limit))

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		Header:   header,
		CacheKey: "github:" + query,
	})
	if err != nil {
		return nil, err
	}

	var res ghResponse
	if err := payload.JSON(&res); err != nil {
		return nil, fmt.Errorf("decoding github response: %w", err)
	}

	candidates := make([]Candidate, 0, len(res.Items))
	for _, repo := range res.Items {
		if repo.Name == "" || repo.HTMLURL == "" {
			continue
		}
		created, _ := time.Parse(time.RFC3339, repo.CreatedAt)

		candidates = append(candidates, Candidate{
			Name:         repo.Name,
			Source:       s.Name(),
			URL:          repo.HTMLURL,
			Descriptions: description(repo.Description),
			Category:     normalize.Categorize(repo.Name, repo.Description, repo.Topics),
			Tags:         repo.Topics,
			Popularity:   repo.Stars,
			TrendScore:   trendScore(biasGitHub, repo.Stars),
			Freshness:    freshness(created),
		})
	}
	return candidates, nil
}
