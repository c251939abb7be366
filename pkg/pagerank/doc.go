// Package pagerank ranks crawled accounts by power iteration on a
// teleporting random walk over the follower graph.
//
// A follower's links point at the accounts it follows. Each row of the
// sparse transition matrix with at least one link is normalized to
// 1 - teleportationRate, and teleportationRate/n is added to every cell when
// it is read, so the stored map only holds real links.
//
//	g, err := pagerank.BuildGraph(store, log)
//	result, err := pagerank.NewEngine(pagerank.DefaultConfig()).Rank(ctx, g)
//	for _, r := range result.Top(10) { ... }
package pagerank
