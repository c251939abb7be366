package crawler

import (
	"context"

	"followrank/pkg/checkpoint"
	"followrank/pkg/frontier"
	"followrank/pkg/twitter"
)

// FollowerSource defines the remote operations the crawler needs
type FollowerSource interface {
	VerifyCredentials(ctx context.Context) (*twitter.User, error)
	FollowerIDs(ctx context.Context, accountID, cursor int64) (*twitter.IDsPage, error)
}

// AdjacencyStore persists follower lists, one per crawled account
type AdjacencyStore interface {
	Exists(accountID int64) bool
	SaveFollowers(accountID int64, followers []int64) error
}

// Checkpointer provides the starting set of a run and persists the frontier on halt
type Checkpointer interface {
	StartingSet() (*frontier.Frontier, checkpoint.Source, error)
	Save(f *frontier.Frontier) error
}
