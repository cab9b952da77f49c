package source

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newsFeed(now time.Time) string {
	fresh := now.Format(time.RFC1123Z)
	stale := now.Add(-80 * time.Hour).Format(time.RFC1123Z)
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>AI Desk</title>
    <item>
      <title>Startup launches NanoLLM</title>
      <link>https://techcrunch.com/nanollm-launch</link>
      <description>A tiny model with big ambitions.</description>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Off-network syndicated piece</title>
      <link>https://random-blog.example/clickbait</link>
      <description>Should be dropped by the allow-list.</description>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Old coverage</title>
      <link>https://techcrunch.com/old-news</link>
      <description>Past the freshness window.</description>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`, fresh, fresh, stale)
}

func TestNewsFeedsDiscover(t *testing.T) {
	srv := xmlServer(t, newsFeed(time.Now()))

	s := NewNewsFeeds(testFetcher(t))
	s.feedURLs = []string{srv.URL}
	s.allowedHosts = map[string]bool{"techcrunch.com": true}

	got, err := s.Discover(context.Background(), 10)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected only the fresh allow-listed item, got %d: %v", len(got), got)
	}
	c := got[0]
	if c.Name != "Startup launches NanoLLM" {
		t.Errorf("unexpected name %q", c.Name)
	}
	if c.Source != "newsfeeds" {
		t.Errorf("unexpected source %q", c.Source)
	}
	if c.Freshness != FreshToday {
		t.Errorf("expected fresh item, got %q", c.Freshness)
	}
}

func TestNewsFeedsBrokenFeedSkipped(t *testing.T) {
	good := xmlServer(t, newsFeed(time.Now()))
	bad := xmlServer(t, "garbage")

	s := NewNewsFeeds(testFetcher(t))
	s.feedURLs = []string{bad.URL, good.URL}
	s.allowedHosts = map[string]bool{"techcrunch.com": true}

	got, err := s.Discover(context.Background(), 10)
	if err != nil {
		t.Fatalf("one broken feed must not fail the adapter: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected the good feed's item, got %d", len(got))
	}
}

func TestNewsFeedsDefaultAllowListCoversFeeds(t *testing.T) {
	for _, feedURL := range newsFeedURLs {
		if !newsAllowedHosts[hostOf(feedURL)] {
			t.Errorf("feed host %q missing from the allow-list", hostOf(feedURL))
		}
	}
}
