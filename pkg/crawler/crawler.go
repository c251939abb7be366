package crawler

import (
	"context"
	"time"

	"followrank/pkg/config"
	errs "followrank/pkg/errors"
	"followrank/pkg/frontier"
	"followrank/pkg/logger"
	"followrank/pkg/metrics"
	"followrank/pkg/ratelimit"
	"followrank/pkg/retry"
	"followrank/pkg/twitter"

	"github.com/google/uuid"
)

// Outcome is how a single crawl run ended
type Outcome int

const (
	// OutcomeSuccess means the frontier drained or the level cutoff was reached
	OutcomeSuccess Outcome = iota
	// OutcomeFailed means a remote error halted the run after checkpointing
	OutcomeFailed
	// OutcomeCanceled means the context was cancelled after checkpointing
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Config holds the crawl policy knobs
type Config struct {
	// MaxFollowersPerAccount caps the ids collected per account, 0 means unlimited
	MaxFollowersPerAccount int
	// ShortCooldown follows a dropped account
	ShortCooldown time.Duration
	// LongCooldown follows a failed run and doubles on consecutive failures
	LongCooldown time.Duration
	// MaxLongCooldown caps the growth of LongCooldown
	MaxLongCooldown time.Duration
}

// DefaultConfig mirrors the defaults of config.DefaultConfig
func DefaultConfig() Config {
	return ConfigFromCrawl(&config.DefaultConfig().Crawl)
}

// ConfigFromCrawl extracts the crawler policy from the crawl config section
func ConfigFromCrawl(c *config.CrawlConfig) Config {
	return Config{
		MaxFollowersPerAccount: c.MaxFollowersPerAccount,
		ShortCooldown:          c.ShortCooldown,
		LongCooldown:           c.LongCooldown,
		MaxLongCooldown:        c.MaxLongCooldown,
	}
}

// Crawler runs the breadth-first follower crawl
type Crawler struct {
	source      FollowerSource
	store       AdjacencyStore
	checkpoints Checkpointer

	config   Config
	clock    ratelimit.Clock
	pacer    *ratelimit.Pacer
	cooldown retry.BackoffStrategy
	failures int

	logger  logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Crawler
type Option func(*Crawler)

// WithClock sets the clock every pause goes through
func WithClock(clock ratelimit.Clock) Option {
	return func(c *Crawler) {
		c.clock = clock
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Crawler) {
		c.logger = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

func WithConfig(cfg Config) Option {
	return func(c *Crawler) {
		c.config = cfg
	}
}

// New creates a crawler
func New(source FollowerSource, store AdjacencyStore, checkpoints Checkpointer, opts ...Option) *Crawler {
	c := &Crawler{
		source:      source,
		store:       store,
		checkpoints: checkpoints,
		config:      DefaultConfig(),
		clock:       ratelimit.RealClock{},
		logger:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.WithField("component", "crawler")
	c.pacer = ratelimit.NewPacer(c.clock)

	maxCooldown := c.config.MaxLongCooldown
	if maxCooldown < c.config.LongCooldown {
		maxCooldown = c.config.LongCooldown
	}
	c.cooldown = &retry.ExponentialBackoff{
		BaseDelay:  c.config.LongCooldown,
		MaxDelay:   maxCooldown,
		Multiplier: 2,
	}
	return c
}

// Run consumes f until it drains, an entry at maxLevel or deeper is reached,
// a non-droppable remote error occurs, or ctx is cancelled. On the last two
// the unfinished entry goes back to the front and the frontier is saved.
func (c *Crawler) Run(ctx context.Context, f *frontier.Frontier, maxLevel int) Outcome {
	log := c.logger.WithFields(map[string]interface{}{
		"run_id":    uuid.NewString(),
		"max_level": maxLevel,
	})
	log.WithField("frontier", f.Len()).Info("Crawl run started")

	outcome := c.run(ctx, log, f, maxLevel)

	c.metrics.RunFinished(outcome)
	c.metrics.SetFrontierSize(f.Len())
	log.WithFields(map[string]interface{}{
		"outcome":  outcome.String(),
		"frontier": f.Len(),
	}).Info("Crawl run finished")
	return outcome
}

func (c *Crawler) run(ctx context.Context, log logger.Logger, f *frontier.Frontier, maxLevel int) Outcome {
	user, err := c.source.VerifyCredentials(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return c.cancel(log, f, nil)
		}
		c.metrics.FetchError(string(errs.KindOf(err)))
		log.WithError(err).Error("Credential verification failed")
		return c.fail(ctx, log, f, nil)
	}
	log.WithField("screen_name", user.ScreenName).Debug("Credentials verified")

	for {
		if ctx.Err() != nil {
			return c.cancel(log, f, nil)
		}

		entry, ok := f.PopFront()
		if !ok {
			log.Info("Frontier drained")
			return OutcomeSuccess
		}
		if entry.Level >= maxLevel {
			log.WithField("level", entry.Level).Info("Reached maximum level")
			return OutcomeSuccess
		}
		c.metrics.SetFrontierSize(f.Len())

		entryLog := log.WithFields(map[string]interface{}{
			"account_id": entry.AccountID,
			"level":      entry.Level,
		})

		if c.store.Exists(entry.AccountID) {
			c.metrics.AccountSkipped(metrics.ReasonAlreadyCrawled)
			entryLog.Debug("Account already crawled")
			continue
		}

		followers, err := c.fetchFollowers(ctx, entryLog, entry.AccountID)
		if err != nil {
			if ctx.Err() != nil {
				return c.cancel(log, f, &entry)
			}

			kind := errs.KindOf(err)
			c.metrics.FetchError(string(kind))
			if errs.IsDroppable(kind) {
				c.metrics.AccountSkipped(string(kind))
				entryLog.WithError(err).Warn("Dropping account")
				if err := c.pause(ctx, "short", c.config.ShortCooldown); err != nil {
					return c.cancel(log, f, nil)
				}
				continue
			}

			entryLog.WithError(err).Error("Follower fetch failed")
			return c.fail(ctx, log, f, &entry)
		}
		c.failures = 0

		if err := c.store.SaveFollowers(entry.AccountID, followers); err != nil {
			c.metrics.AccountSkipped(metrics.ReasonWriteFailed)
			entryLog.WithError(err).Error("Failed to save follower list")
			continue
		}
		c.metrics.AccountFetched(len(followers))
		entryLog.WithField("followers", len(followers)).Info("Account crawled")

		children := make([]frontier.Entry, len(followers))
		for i, id := range followers {
			children[i] = entry.Child(id)
		}
		f.PushBack(children...)
	}
}

// fetchFollowers pages through an account's follower ids, pausing whenever
// the reported budget runs out
func (c *Crawler) fetchFollowers(ctx context.Context, log logger.Logger, accountID int64) ([]int64, error) {
	var followers []int64
	cursor := twitter.FirstCursor
	limit := c.config.MaxFollowersPerAccount

	for {
		page, err := c.source.FollowerIDs(ctx, accountID, cursor)
		if err != nil {
			return nil, err
		}
		c.metrics.PageFetched()
		followers = append(followers, page.IDs...)

		c.pacer.Observe(page.RateLimit)
		if page.RateLimit.Exhausted() {
			logger.LogRateLimitSleep(log, accountID, page.RateLimit.Pause())
		}
		waited, err := c.pacer.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if waited > 0 {
			c.metrics.RateLimitSleep(waited)
		}

		if page.Done() {
			break
		}
		if limit > 0 && len(followers) >= limit {
			log.WithField("limit", limit).Debug("Follower cap reached")
			break
		}
		cursor = page.NextCursor
	}

	if limit > 0 && len(followers) > limit {
		followers = followers[:limit]
	}
	return followers, nil
}

// fail requeues entry, saves the frontier and waits out the long cooldown
func (c *Crawler) fail(ctx context.Context, log logger.Logger, f *frontier.Frontier, entry *frontier.Entry) Outcome {
	c.checkpoint(log, f, entry)

	c.failures++
	wait := c.cooldown.NextDelay(c.failures)
	log.WithFields(map[string]interface{}{
		"cooldown": wait,
		"failures": c.failures,
	}).Warn("Cooling down before restart")

	if err := c.pause(ctx, "long", wait); err != nil {
		return OutcomeCanceled
	}
	return OutcomeFailed
}

// cancel requeues entry and saves the frontier
func (c *Crawler) cancel(log logger.Logger, f *frontier.Frontier, entry *frontier.Entry) Outcome {
	log.Warn("Crawl cancelled, saving checkpoint")
	c.checkpoint(log, f, entry)
	return OutcomeCanceled
}

func (c *Crawler) checkpoint(log logger.Logger, f *frontier.Frontier, entry *frontier.Entry) {
	if entry != nil {
		f.PushFront(*entry)
	}
	if err := c.checkpoints.Save(f); err != nil {
		log.WithError(err).Error("Failed to save checkpoint")
		return
	}
	log.WithField("entries", f.Len()).Info("Checkpoint saved")
}

func (c *Crawler) pause(ctx context.Context, kind string, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if err := c.clock.Sleep(ctx, d); err != nil {
		return err
	}
	c.metrics.Cooldown(kind, d)
	return nil
}
