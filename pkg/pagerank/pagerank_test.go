package pagerank

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"followrank/pkg/logger"
	"followrank/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioB(t *testing.T) {
	// 100 follows both 200 and 300
	g := NewGraph(map[int64][]int64{
		200: {100},
		300: {100},
	})
	require.Equal(t, []int64{100, 200, 300}, g.IDs())

	m := NewTransitionMatrix(g, 0.1)
	assert.Equal(t, 2, m.RowCount(0))
	assert.InDelta(t, 0.45, m.Cell(0, 1), 1e-12)
	assert.InDelta(t, 0.45, m.Cell(0, 2), 1e-12)
	assert.InDelta(t, 0.48333333333, m.At(0, 1), 1e-9)
	assert.InDelta(t, 0.1/3, m.At(0, 0), 1e-12)
	assert.InDelta(t, 0.1/3, m.Teleport(), 1e-12)
}

func TestNewGraph(t *testing.T) {
	g := NewGraph(map[int64][]int64{
		5: {9, 1, 9},
		1: {},
	})

	assert.Equal(t, []int64{1, 5, 9}, g.IDs())
	assert.Equal(t, []int64{1, 5}, g.Accounts())
	assert.Equal(t, []int64{9, 1}, g.Followers(5))
	assert.Equal(t, 2, g.Edges())

	i, ok := g.Index(9)
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, int64(5), g.ID(1))

	_, ok = g.Index(42)
	assert.False(t, ok)
}

func TestBuildGraphSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveFollowers(1, []int64{2, 3}))
	require.NoError(t, store.SaveFollowers(2, nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "7.txt"), []byte("8\nnot-a-number\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	log := logger.NewTestLogger()
	g, err := BuildGraph(store, log)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, g.IDs())
	assert.Equal(t, []int64{1, 2}, g.Accounts())
	assert.True(t, log.HasMessage("Skipping unreadable adjacency file"))
}

func TestRowNormalization(t *testing.T) {
	g := NewGraph(map[int64][]int64{
		1: {2, 3, 4},
		2: {3, 4},
		3: {4},
		4: {1},
		5: {1, 2, 3, 4},
	})

	for _, rate := range []float64{0.1, 0.15, 0.5, 0.85} {
		m := NewTransitionMatrix(g, rate)
		dangling := 0
		for row := 0; row < m.Len(); row++ {
			if m.RowCount(row) == 0 {
				// account 5 follows nobody: teleportation is its only mass
				dangling++
				assert.Zero(t, m.RowLinkSum(row))
				assert.InDelta(t, rate, m.RowSum(row), 1e-9)
				continue
			}
			assert.InDelta(t, 1-rate, m.RowLinkSum(row), 1e-9)
			// augmented rows with links form a probability distribution
			assert.InDelta(t, 1.0, m.RowSum(row), 1e-9)
		}
		assert.Equal(t, 1, dangling)
	}
}

func TestDuplicateLinksCountOnce(t *testing.T) {
	m := NewTransitionMatrix(NewGraph(map[int64][]int64{2: {1, 1, 1}}), 0.2)

	assert.Equal(t, 1, m.Links())
	assert.Equal(t, 1, m.RowCount(0))
	assert.InDelta(t, 0.8, m.Cell(0, 1), 1e-12)
}

func TestClampTeleportationRate(t *testing.T) {
	assert.Equal(t, 0.25, ClampTeleportationRate(0.25))
	for _, bad := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		assert.Equal(t, DefaultTeleportationRate, ClampTeleportationRate(bad))
	}

	m := NewTransitionMatrix(NewGraph(map[int64][]int64{1: {2}}), 3)
	assert.Equal(t, 0.1, m.TeleportationRate())
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.Zero(t, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
}

func TestConvergence(t *testing.T) {
	var c Convergence
	assert.False(t, c.Done(0.9999, 75))

	c = c.Advance(0.5)
	assert.Equal(t, 1, c.Iterations)
	assert.False(t, c.Done(0.9999, 75))
	assert.True(t, c.Advance(0.9999).Done(0.9999, 75))
	assert.True(t, Convergence{Similarity: 0.1, Iterations: 75}.Done(0.9999, 75))
}

func TestRankStopsAtIterationCap(t *testing.T) {
	// a two-cycle with little teleportation oscillates between the nodes
	g := NewGraph(map[int64][]int64{1: {2}, 2: {1}})
	engine := NewEngine(Config{TeleportationRate: 0.001, SimilarityThreshold: 0.9999, MaxIterations: 75}, WithLogger(logger.NewNopLogger()))

	result, err := engine.Rank(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, 75, result.Convergence.Iterations)
	assert.Less(t, result.Convergence.Similarity, 0.9999)
}

func TestRankStopsEarlyOnceConverged(t *testing.T) {
	g := NewGraph(map[int64][]int64{
		1: {2, 3},
		2: {1, 3},
		3: {1, 2},
	})
	engine := NewEngine(Config{TeleportationRate: 0.5, SimilarityThreshold: 0.9999, MaxIterations: 75}, WithLogger(logger.NewNopLogger()))

	result, err := engine.Rank(context.Background(), g)
	require.NoError(t, err)
	assert.Less(t, result.Convergence.Iterations, 75)
	assert.GreaterOrEqual(t, result.Convergence.Similarity, 0.9999)
}

func TestRankFavorsFollowedAccount(t *testing.T) {
	g := NewGraph(map[int64][]int64{
		1: {2, 3, 4, 5},
		2: {3},
	})
	engine := NewEngine(DefaultConfig(), WithLogger(logger.NewNopLogger()))

	result, err := engine.Rank(context.Background(), g)
	require.NoError(t, err)

	top := result.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1), top[0].AccountID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, int64(2), top[1].AccountID)

	score, ok := result.Score(1)
	require.True(t, ok)
	assert.Equal(t, top[0].Score, score)
	_, ok = result.Score(99)
	assert.False(t, ok)

	var shares float64
	for _, r := range result.Ranking() {
		shares += r.Share
	}
	assert.InDelta(t, 1.0, shares, 1e-9)
}

func TestRankIsDeterministicAcrossWorkers(t *testing.T) {
	adjacency := make(map[int64][]int64)
	for i := int64(0); i < 200; i++ {
		adjacency[i] = []int64{(i * 7) % 200, (i*13 + 5) % 200, (i + 1) % 200}
	}
	g := NewGraph(adjacency)

	rank := func(workers int) *Result {
		cfg := DefaultConfig()
		cfg.Workers = workers
		result, err := NewEngine(cfg, WithLogger(logger.NewNopLogger())).Rank(context.Background(), g)
		require.NoError(t, err)
		return result
	}

	single := rank(1)
	assert.Equal(t, single.Vector, rank(4).Vector)
	assert.Equal(t, single.Vector, rank(64).Vector)
}

func TestRankEmptyGraph(t *testing.T) {
	result, err := NewEngine(DefaultConfig(), WithLogger(logger.NewNopLogger())).Rank(context.Background(), NewGraph(nil))
	require.NoError(t, err)
	assert.Empty(t, result.Ranking())
}

func TestRankCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGraph(map[int64][]int64{1: {2}})
	_, err := NewEngine(DefaultConfig(), WithLogger(logger.NewNopLogger())).Rank(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngineDefaults(t *testing.T) {
	cfg := NewEngine(Config{TeleportationRate: 2}).Config()

	assert.Equal(t, 0.1, cfg.TeleportationRate)
	assert.Equal(t, 0.9999, cfg.SimilarityThreshold)
	assert.Equal(t, 75, cfg.MaxIterations)
	assert.Positive(t, cfg.Workers)
}

func TestWriteCSV(t *testing.T) {
	result := &Result{
		IDs:    []int64{10, 20, 30},
		Vector: []float64{0.2, 0.5, 0.3},
	}

	path := filepath.Join(t.TempDir(), "out", "pagerank.csv")
	require.NoError(t, result.WriteCSV(path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"rank", "account_id", "score", "share"}, records[0])
	assert.Equal(t, []string{"1", "20", "0.5", "0.500000"}, records[1])
	assert.Equal(t, "30", records[2][1])
	assert.Equal(t, "10", records[3][1])
	assert.NoFileExists(t, path+".tmp")
}
