package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ciroautuori/trendscout/internal/archive"
	"github.com/ciroautuori/trendscout/internal/config"
	"github.com/ciroautuori/trendscout/internal/discover"
	"github.com/ciroautuori/trendscout/internal/fetch"
	"github.com/ciroautuori/trendscout/internal/normalize"
	"github.com/ciroautuori/trendscout/internal/source"
	"github.com/ciroautuori/trendscout/internal/store"
)

var (
	flagCount      int
	flagCategories []string
	flagSources    []string
	flagExclude    []string
	flagSkipKnown  bool
	flagNoArchive  bool
)

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cache := store.Open(cfg.ResolvedCachePath())
	client := fetch.New(cache, fetch.Options{
		UserAgent:      cfg.UserAgent,
		MaxConcurrent:  cfg.Concurrency(),
		CacheTTL:       cfg.CacheTTLDuration(),
		ConnectTimeout: cfg.ConnectTimeoutDuration(),
		ReadTimeout:    cfg.ReadTimeoutDuration(),
	})

	db, err := archive.Open(config.ArchivePath())
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	excluded := flagExclude
	if flagSkipKnown {
		known, err := db.KnownKeys()
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}
		excluded = append(excluded, known...)
	}

	var categories []normalize.Category
	for _, c := range flagCategories {
		categories = append(categories, normalize.Category(c))
	}

	engine := discover.New(source.All(client, cfg), cfg.Blacklist, cache)

	// The overall deadline lives here: individual fetches are not
	// interruptible once started, the run as a whole is.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	candidates := engine.Discover(ctx, discover.Options{
		TargetCount:   flagCount,
		Categories:    categories,
		Sources:       flagSources,
		ExcludedNames: excluded,
	})

	if !flagNoArchive && len(candidates) > 0 {
		now := time.Now()
		records := make([]archive.Record, 0, len(candidates))
		for _, c := range candidates {
			records = append(records, archive.Record{
				Key:          c.Key(),
				Name:         c.Name,
				Source:       c.Source,
				URL:          c.URL,
				Description:  c.Descriptions["en"],
				Category:     string(c.Category),
				Tags:         c.Tags,
				Popularity:   c.Popularity,
				TrendScore:   c.TrendScore,
				Freshness:    c.Freshness,
				DiscoveredAt: now,
			})
		}
		if err := db.Upsert(records); err != nil {
			return fmt.Errorf("archiving candidates: %w", err)
		}
	}

	if len(candidates) == 0 {
		fmt.Println("Nothing discovered.")
		return nil
	}

	for i, c := range candidates {
		fmt.Printf("%2d. %-40s %-12s %7.1f  %-16s %s\n",
			i+1, truncateName(c.Name, 40), c.Source, c.TrendScore, c.Category, c.Freshness)
		if c.URL != "" {
			fmt.Printf("    %s\n", c.URL)
		}
	}
	return nil
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources and their enabled state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		for _, s := range cfg.Sources {
			state := "disabled"
			if s.Enabled {
				state = "enabled"
			}
			fmt.Printf("%-14s %s\n", s.Name, state)
		}
		return nil
	},
}

func truncateName(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
