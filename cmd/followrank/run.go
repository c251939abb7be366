package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"followrank/pkg/checkpoint"
	"followrank/pkg/config"
	"followrank/pkg/crawler"
	"followrank/pkg/logger"
	"followrank/pkg/metrics"
	"followrank/pkg/pagerank"
	"followrank/pkg/storage"
	"followrank/pkg/twitter"
	"followrank/pkg/ui"

	"github.com/spf13/cobra"
)

func runRoot(cmd *cobra.Command, args []string) error {
	if skipCrawl && skipRank {
		return errors.New("--skip-crawl and --skip-rank leave nothing to do")
	}

	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if followersDir != "" {
		flags["followers-dir"] = followersDir
	}
	if outputFile != "" {
		flags["output"] = outputFile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	maxLevel := parseMaxLevel(args, cfg.Crawl.MaxLevel, log)
	log.WithFields(map[string]interface{}{
		"version":   version,
		"max_level": maxLevel,
	}).Info("followrank starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.ListenAddr != "" {
		srv, err := metrics.NewServer(cfg.Metrics.ListenAddr, m, log)
		if err != nil {
			return err
		}
		log.WithField("addr", srv.Addr()).Info("Serving metrics")
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Close(shutdownCtx)
		}()
	}
	defer func() {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.WithError(err).Warn("Failed to write metrics textfile")
		}
	}()

	store, err := storage.NewManager(cfg.Crawl.FollowersDir)
	if err != nil {
		return err
	}

	notifier := ui.NewNotifier(notify)
	if !skipCrawl {
		if err := crawl(ctx, cfg, store, m, notifier, maxLevel, log); err != nil {
			return err
		}
	}
	if !skipRank {
		return rank(ctx, cfg, store, m, notifier, log)
	}
	return nil
}

// parseMaxLevel reads the optional positional level. Absent, unparseable or
// negative values fall back to the configured default.
func parseMaxLevel(args []string, fallback int, log logger.Logger) int {
	if len(args) == 0 {
		return fallback
	}

	level, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || level < 0 {
		log.WithField("value", args[0]).Warn("Invalid max level, using default")
		return fallback
	}
	return level
}

func crawl(ctx context.Context, cfg *config.Config, store *storage.Manager, m *metrics.Metrics, notifier *ui.Notifier, maxLevel int, log logger.Logger) error {
	token, err := resolveToken(cfg.Credentials.Account)
	if err != nil {
		return err
	}

	checkpoints := checkpoint.NewManager(cfg.Crawl.CheckpointFile, cfg.Crawl.SeedFile, log)
	if fresh {
		if err := checkpoints.Delete(); err != nil {
			return err
		}
	}

	client := twitter.NewClient(&cfg.Twitter, &cfg.Retry, token, log)
	c := crawler.New(client, store, checkpoints,
		crawler.WithLogger(log),
		crawler.WithMetrics(m),
		crawler.WithConfig(crawler.ConfigFromCrawl(&cfg.Crawl)),
	)

	tracker := ui.NewStatusTracker(store.CrawledCount())
	ui.PrintCrawlStart(maxLevel, cfg.Crawl.SeedFile, cfg.Crawl.CheckpointFile, checkpoints.Exists())

	if err := crawler.NewDriver(c).Crawl(ctx, maxLevel); err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Crawl interrupted", "checkpoint saved to "+cfg.Crawl.CheckpointFile)
		}
		err = fmt.Errorf("crawl failed: %w", err)
		notifier.CrawlStopped(err)
		return err
	}

	notifier.CrawlFinished(tracker.Summary(store.CrawledCount()))
	return nil
}

func rank(ctx context.Context, cfg *config.Config, store *storage.Manager, m *metrics.Metrics, notifier *ui.Notifier, log logger.Logger) error {
	started := time.Now()
	spin := ui.StartSpinner("Ranking accounts")

	g, err := pagerank.BuildGraph(store, log)
	if err != nil {
		spin.Stop("")
		return err
	}

	engine := pagerank.NewEngine(pagerank.ConfigFromPageRank(&cfg.PageRank),
		pagerank.WithLogger(log),
		pagerank.WithMetrics(m),
	)
	result, err := engine.Rank(ctx, g)
	spin.Stop("")
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	ui.PrintRankSummary(g.Len(), g.Edges(), result.Convergence, time.Since(started))
	ui.PrintRanking(result.Top(cfg.PageRank.Top))

	if cfg.PageRank.OutputFile != "" {
		if err := result.WriteCSV(cfg.PageRank.OutputFile); err != nil {
			return err
		}
		ui.PrintSuccess("Ranking written to " + cfg.PageRank.OutputFile)
		notifier.RankFinished(cfg.PageRank.OutputFile)
	}
	return nil
}
