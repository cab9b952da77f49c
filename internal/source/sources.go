package source

import (
	"github.com/ciroautuori/trendscout/internal/config"
	"github.com/ciroautuori/trendscout/internal/fetch"
)

// All returns every enabled adapter in the pipeline's fixed merge order:
// highest-bias sources first. This order is also the round-robin bucket
// order downstream, so it must stay deterministic.
func All(client *fetch.Client, cfg *config.Config) []Source {
	registry := []Source{
		NewProductHunt(client),
		NewNewsFeeds(client),
		NewArxiv(client),
		NewGitHub(client, cfg.GitHubToken()),
		NewHuggingFace(client),
		NewNpm(client),
		NewDevTo(client),
		NewReddit(client),
		NewHackerNews(client),
	}

	var enabled []Source
	for _, s := range registry {
		if cfg.SourceEnabled(s.Name()) {
			enabled = append(enabled, s)
		}
	}
	return enabled
}
