package source

import (
	"context"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"

	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
)

const newsWindow = 48 * time.Hour

// newsFeedURLs are the AI desks the news tier follows. Every feed host
// must also appear in newsAllowedHosts.
var newsFeedURLs = []string{
	"https://techcrunch.com/category/artificial-intelligence/feed/",
	"https://venturebeat.com/category/ai/feed/",
	"https://www.theverge.com/rss/ai-artificial-intelligence/index.xml",
}

// newsAllowedHosts is the fixed allow-list for the news tier: items whose
// link resolves outside these hosts are dropped, whatever the feed says.
var newsAllowedHosts = map[string]bool{
	"techcrunch.com":     true,
	"venturebeat.com":    true,
	"www.theverge.com":   true,
	"theverge.com":       true,
	"www.techcrunch.com": true,
}

// NewsFeeds discovers launch coverage from a fixed set of tech-news AI
// feeds. Editorial coverage sits just below official launches in bias.
// One broken feed costs only that feed's items.
type NewsFeeds struct {
	client       *fetch.Client
	parser       *gofeed.Parser
	feedURLs     []string
	allowedHosts map[string]bool
}

func NewNewsFeeds(client *fetch.Client) *NewsFeeds {
	return &NewsFeeds{
		client:       client,
		parser:       gofeed.NewParser(),
		feedURLs:     newsFeedURLs,
		allowedHosts: newsAllowedHosts,
	}
}

func (s *NewsFeeds) Name() string { return "newsfeeds" }

func (s *NewsFeeds) Discover(ctx context.Context, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	cutoff := time.Now().Add(-newsWindow)
	var candidates []Candidate

	for _, feedURL := range s.feedURLs {
		host := hostOf(feedURL)

		payload, err := s.client.Do(ctx, fetch.Request{
			URL:      feedURL,
			CacheKey: "newsfeeds:" + host,
		})
		if err != nil {
			continue
		}

		feed, err := s.parser.ParseString(payload.Text())
		if err != nil {
			log.WithFields(log.Fields{"feed": feedURL, "error": err}).Warn("news feed unparseable, skipping")
			continue
		}

		total := len(feed.Items)
		for i, item := range feed.Items {
			if item.Title == "" {
				continue
			}
			if !s.allowedHosts[hostOf(item.Link)] {
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
				TrendScore:   trendScore(biasNewsFeeds, signal),
				Freshness:    freshness(published),
			})
		}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
