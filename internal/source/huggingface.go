package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
)

const (
	hfEndpoint = "https://huggingface.co/api/models"
	hfWindow   = 48 * time.Hour
)

// HuggingFace discovers models trending by likes, keeping only those
// modified within the freshness window.
type HuggingFace struct {
	client   *fetch.Client
	endpoint string
}

func NewHuggingFace(client *fetch.Client) *HuggingFace {
	return &HuggingFace{client: client, endpoint: hfEndpoint}
}

func (s *HuggingFace) Name() string { return "huggingface" }

type hfModel struct {
	ID           string   `json:"id"`
	Likes        float64  `json:"likes"`
	Downloads    float64  `json:"downloads"`
	LastModified string   `json:"lastModified"`
	PipelineTag  string   `json:"pipeline_tag"`
	Tags         []string `json:"tags"`
}

func (s *HuggingFace) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("sort", "likes")
	params.Set("direction", "-1")
	// Over-fetch: the freshness filter below discards stale entries.
	params.Set("limit", strconv.Itoa(limit * 3))

	payload, err := s.client.Do(ctx, fetch.Request{
		URL:      s.endpoint,
		Params:   params,
		CacheKey: "huggingface:models",
	})
	if err != nil {
		return nil, err
	}

	var models []hfModel
	if err := payload.JSON(&models); err != nil {
		return nil, fmt.Errorf("decoding huggingface response: %w", err)
	}

	cutoff := time.Now().Add(-hfWindow)
	var candidates []Candidate
	for _, m := range models {
		if m.ID == "" {
			continue
		}
		modified, err := time.Parse(time.RFC3339, m.LastModified)
		if err != nil || modified.Before(cutoff) {
			continue
		}

		// "org/model-name" -> "model-name"
		name := m.ID
		if i := strings.LastIndex(name, "/"); i >= 0 && i < len(name)-1 {
			name = name[i+1:]
		}

		desc := m.PipelineTag
		candidates = append(candidates, Candidate{
			Name:         name,
			Source:       s.Name(),
			URL:          "https://huggingface.co/" + m.ID,
			Descriptions: description(desc),
			Category:     normalize.Categorize(name, desc, m.Tags),
			Tags:         m.Tags,
			Popularity:   m.Likes,
			TrendScore:   trendScore(biasHuggingFace, m.Likes),
			Freshness:    freshness(modified),
		})
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}
