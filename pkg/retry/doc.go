// Package retry provides exponential backoff and retry logic for transient
// failures in calls to the follower API.
//
// Only network failures and gateway errors are retried by default; access
// denied, not found and rate-limit responses return immediately so the
// crawler can apply its own policy to them.
//
// Basic usage:
//
//	ids, err := retry.DoWithResult(func() (*twitter.IDsPage, error) {
//		return client.fetchPage(ctx, id, cursor)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		Context:     ctx,
//		Sleep:       clock.Sleep,
//		Logger:      log,
//	})
//
// ExponentialBackoff is also used on its own to grow the crawler's long
// cooldown across consecutive failed runs.
package retry
