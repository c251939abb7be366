package pagerank

import (
	"fmt"
	"slices"

	"followrank/pkg/logger"
)

// AdjacencySource enumerates crawled accounts and their follower lists
type AdjacencySource interface {
	Accounts() ([]int64, error)
	LoadFollowers(accountID int64) ([]int64, error)
}

// Graph is an immutable snapshot of the follower graph with a dense index.
// Ids are indexed 0..n-1 in ascending order.
type Graph struct {
	ids       []int64
	index     map[int64]int
	accounts  []int64
	followers map[int64][]int64
	edges     int
}

// BuildGraph reads every adjacency file of src once. Files that cannot be
// read or parsed are logged and left out.
func BuildGraph(src AdjacencySource, log logger.Logger) (*Graph, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	accounts, err := src.Accounts()
	if err != nil {
		return nil, fmt.Errorf("failed to list adjacency files: %w", err)
	}

	adjacency := make(map[int64][]int64, len(accounts))
	skipped := 0
	for _, id := range accounts {
		followers, err := src.LoadFollowers(id)
		if err != nil {
			skipped++
			log.WithError(err).WithField("account_id", id).Warn("Skipping unreadable adjacency file")
			continue
		}
		adjacency[id] = followers
	}

	g := NewGraph(adjacency)
	log.WithFields(map[string]interface{}{
		"accounts": len(g.accounts),
		"nodes":    g.Len(),
		"edges":    g.edges,
		"skipped":  skipped,
	}).Info("Follower graph built")
	return g, nil
}

// NewGraph builds a graph from account -> followers lists. Every id that is
// a key or appears in a list becomes a node; repeated followers count once.
func NewGraph(adjacency map[int64][]int64) *Graph {
	g := &Graph{
		index:     make(map[int64]int),
		accounts:  make([]int64, 0, len(adjacency)),
		followers: make(map[int64][]int64, len(adjacency)),
	}

	seen := make(map[int64]struct{})
	for account, followers := range adjacency {
		g.accounts = append(g.accounts, account)
		seen[account] = struct{}{}

		distinct := make([]int64, 0, len(followers))
		dup := make(map[int64]struct{}, len(followers))
		for _, id := range followers {
			if _, ok := dup[id]; ok {
				continue
			}
			dup[id] = struct{}{}
			distinct = append(distinct, id)
			seen[id] = struct{}{}
		}
		g.followers[account] = distinct
		g.edges += len(distinct)
	}
	slices.Sort(g.accounts)

	g.ids = make([]int64, 0, len(seen))
	for id := range seen {
		g.ids = append(g.ids, id)
	}
	slices.Sort(g.ids)
	for i, id := range g.ids {
		g.index[id] = i
	}
	return g
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.ids)
}

// Edges returns the number of distinct follow links
func (g *Graph) Edges() int {
	return g.edges
}

// IDs returns the node ids in index order
func (g *Graph) IDs() []int64 {
	return slices.Clone(g.ids)
}

func (g *Graph) ID(i int) int64 {
	return g.ids[i]
}

// Index returns the dense index of id
func (g *Graph) Index(id int64) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Accounts returns the ids that had an adjacency file, ascending
func (g *Graph) Accounts() []int64 {
	return slices.Clone(g.accounts)
}

// Followers returns the distinct followers of account
func (g *Graph) Followers(account int64) []int64 {
	return g.followers[account]
}
