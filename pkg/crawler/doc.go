// Package crawler implements the breadth-first follower crawl.
//
// A Crawler consumes a frontier of (level, account) entries. Each account
// not yet present in the adjacency store has its follower ids fetched page
// by page and saved, and every follower is enqueued one level deeper. The
// run stops successfully once the frontier drains or an entry at the
// maximum level is popped.
//
// Remote errors are handled by kind:
//
//	access_denied, not_found  drop the account, short cooldown, continue
//	anything else             requeue, checkpoint, long cooldown, fail the run
//
// The Driver reloads the checkpoint and starts a new run after every failed
// one, so a crawl survives indefinite operation against a rate-limited API.
// All pauses go through a ratelimit.Clock.
package crawler
