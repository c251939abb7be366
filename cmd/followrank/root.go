package main

import (
	"fmt"
	"os"
	"runtime"

	"followrank/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	notify     bool

	// Run flags
	skipCrawl    bool
	skipRank     bool
	fresh        bool
	followersDir string
	outputFile   string
)

// rootCmd crawls the follower graph and ranks it
var rootCmd = &cobra.Command{
	Use:   "followrank [max-level]",
	Short: "Crawl a follower graph breadth-first and rank accounts with PageRank",
	Long: `followrank crawls the follower graph of a seed set of accounts level by
level, stores one adjacency file per crawled account and then ranks every
discovered account with PageRank.

The crawl survives rate limits and remote failures: the pending frontier is
checkpointed and the crawl restarts from it after a cooldown. Accounts that
already have an adjacency file are never fetched again, so an interrupted
crawl can simply be started again.

max-level defaults to crawl.max_level when absent, unparseable or negative.`,
	Example: `  # Crawl the seeds and their followers, then rank
  followrank 1

  # Rank the existing followers folder only
  followrank --skip-crawl`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
		ui.SetNoColor(noColor)

		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
	RunE: runRoot,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("followrank failed", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.followrank.yaml or $HOME/.config/followrank/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the crawl or ranking ends")

	rootCmd.Flags().BoolVar(&skipCrawl, "skip-crawl", false, "rank the existing followers folder without crawling")
	rootCmd.Flags().BoolVar(&skipRank, "skip-rank", false, "crawl without ranking")
	rootCmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the checkpoint and start from the seed file")
	rootCmd.Flags().StringVar(&followersDir, "followers-dir", "", "adjacency folder (overrides crawl.followers_dir)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "ranking CSV path (overrides pagerank.output_file)")

	rootCmd.SetVersionTemplate(`followrank {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
