package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "trendscout",
	Short: "Multi-source trending AI tool discovery",
	Long:  "trendscout queries nine public sources concurrently and merges their ranked results into one deduplicated, source-diverse list of trending AI tools.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(log.WarnLevel)
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	RunE: runDiscover,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every fetch and adapter outcome")

	rootCmd.Flags().IntVar(&flagCount, "count", 10, "how many candidates to return (1-100)")
	rootCmd.Flags().StringSliceVar(&flagCategories, "category", nil, "only return candidates in these categories")
	rootCmd.Flags().StringSliceVar(&flagSources, "source", nil, "only query these sources")
	rootCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "names to exclude from the result")
	rootCmd.Flags().BoolVar(&flagSkipKnown, "skip-known", false, "exclude everything already in the archive")
	rootCmd.Flags().BoolVar(&flagNoArchive, "no-archive", false, "do not record accepted candidates in the archive")

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trendscout %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
