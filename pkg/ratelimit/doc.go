// Package ratelimit tracks the remote API's rate-limit budget and owns the
// clock that every pause in the crawler goes through.
//
// The remote service reports its budget on each response through the
// x-rate-limit-remaining and x-rate-limit-reset headers. A Pacer observes
// those budgets and, once the remaining count hits zero, blocks until the
// window resets plus a one second margin.
//
// Usage:
//
//	pacer := ratelimit.NewPacer(ratelimit.RealClock{})
//
//	page, err := client.FollowerIDs(ctx, id, cursor)
//	...
//	pacer.Observe(page.RateLimit)
//	if _, err := pacer.Wait(ctx); err != nil {
//	    return err // cancelled
//	}
//
// Tests substitute a ManualClock, which records every requested sleep and
// advances virtual time instead of blocking.
package ratelimit
