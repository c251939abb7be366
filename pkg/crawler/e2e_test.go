package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"followrank/pkg/checkpoint"
	"followrank/pkg/config"
	"followrank/pkg/logger"
	"followrank/pkg/metrics"
	"followrank/pkg/pagerank"
	"followrank/pkg/ratelimit"
	"followrank/pkg/storage"
	"followrank/pkg/twitter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// followerAPI serves followers/ids.json from an in-memory graph, one id per
// page. The first request for account 30 is rate limited and account 40
// does not exist.
func followerAPI(t *testing.T, graph map[int64][]int64, clock ratelimit.Clock) *httptest.Server {
	t.Helper()
	var limited atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/account/verify_credentials.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer e2e-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "screen_name": "crawler"})
	})
	mux.HandleFunc("/1.1/followers/ids.json", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		cursor, _ := strconv.ParseInt(r.URL.Query().Get("cursor"), 10, 64)

		switch {
		case id == 40:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"code":34,"message":"Sorry, that page does not exist."}]}`))
			return
		case id == 30 && !limited.Swap(true):
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`))
			return
		}

		followers := graph[id]
		idx := 0
		if cursor != twitter.FirstCursor {
			idx = int(cursor)
		}
		resp := map[string]interface{}{"ids": []int64{}, "next_cursor": 0}
		if idx < len(followers) {
			resp["ids"] = []int64{followers[idx]}
			if idx+1 < len(followers) {
				resp["next_cursor"] = idx + 1
			}
		}

		w.Header().Set(ratelimit.HeaderRemaining, "1")
		if idx == 1 {
			w.Header().Set(ratelimit.HeaderRemaining, "0")
		}
		w.Header().Set(ratelimit.HeaderReset, strconv.FormatInt(clock.Now().Add(30*time.Second).Unix(), 10))
		_ = json.NewEncoder(w).Encode(resp)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCrawlAndRankEndToEnd(t *testing.T) {
	graph := map[int64][]int64{
		10: {20, 30, 40},
		20: {30},
		30: {10, 20},
	}

	dir := t.TempDir()
	seedPath := filepath.Join(dir, "SeedSet.txt")
	require.NoError(t, os.WriteFile(seedPath, []byte("10\n"), 0644))

	clock := ratelimit.NewManualClock(time.Unix(1_700_000_000, 0))
	server := followerAPI(t, graph, clock)
	log := logger.NewNopLogger()
	m := metrics.New()

	client := twitter.NewClient(
		&config.TwitterConfig{BaseURL: server.URL + "/1.1", Timeout: 5 * time.Second, PageSize: 1},
		&config.RetryConfig{MaxAttempts: 2, BaseDelay: time.Second, MaxDelay: time.Second},
		"e2e-token",
		log,
		twitter.WithClock(clock),
	)
	store, err := storage.NewManager(filepath.Join(dir, "followers"))
	require.NoError(t, err)
	checkpoints := checkpoint.NewManager(filepath.Join(dir, "RestartStatusFile.txt"), seedPath, log)

	c := New(client, store, checkpoints,
		WithClock(clock),
		WithLogger(log),
		WithMetrics(m),
		WithConfig(testConfig()),
	)
	require.NoError(t, NewDriver(c).Crawl(context.Background(), 2))

	followers, err := store.LoadFollowers(10)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30, 40}, followers)
	assert.True(t, store.Exists(20))
	assert.True(t, store.Exists(30))
	assert.False(t, store.Exists(40))
	assert.True(t, checkpoints.Exists())

	sleeps := clock.Sleeps()
	assert.Contains(t, sleeps, 10*time.Minute)
	assert.Contains(t, sleeps, 2*time.Second)
	assert.Contains(t, sleeps, 31*time.Second)

	g, err := pagerank.BuildGraph(store, log)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 40}, g.IDs())

	result, err := pagerank.NewEngine(pagerank.DefaultConfig(), pagerank.WithLogger(log), pagerank.WithMetrics(m)).Rank(context.Background(), g)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Convergence.Iterations, 75)
	assert.Len(t, result.Ranking(), 4)

	require.NoError(t, m.WriteTextfile(filepath.Join(dir, "followrank.prom")))
}
