package crawler

import (
	"context"
	"fmt"
)

// Driver restarts the crawler from the latest checkpoint until a run succeeds
type Driver struct {
	crawler *Crawler
}

// NewDriver creates a driver around c, reusing its checkpointer
func NewDriver(c *Crawler) *Driver {
	return &Driver{crawler: c}
}

// Crawl loads the starting set and runs the crawler, looping on failed runs.
// It returns nil on success, the context error on cancellation and any
// starting-set read error as is.
func (d *Driver) Crawl(ctx context.Context, maxLevel int) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, source, err := d.crawler.checkpoints.StartingSet()
		if err != nil {
			return fmt.Errorf("failed to load starting set: %w", err)
		}
		d.crawler.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"source":  string(source),
			"entries": f.Len(),
		}).Debug("Starting crawl run")

		switch d.crawler.Run(ctx, f, maxLevel) {
		case OutcomeSuccess:
			return nil
		case OutcomeCanceled:
			if err := ctx.Err(); err != nil {
				return err
			}
			return context.Canceled
		}
	}
}
