// Package metrics exposes crawl and ranking counters as Prometheus collectors.
//
// All recorder methods are safe to call on a nil *Metrics, so components can
// take an optional recorder without guarding every call.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "followrank"

// Skip reasons
const (
	ReasonAlreadyCrawled = "already_crawled"
	ReasonAccessDenied   = "access_denied"
	ReasonNotFound       = "not_found"
	ReasonWriteFailed    = "write_failed"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	accountsFetched     prometheus.Counter
	followersDiscovered prometheus.Counter
	accountsSkipped     *prometheus.CounterVec
	fetchErrors         *prometheus.CounterVec
	pages               prometheus.Counter
	rateLimitSleeps     prometheus.Counter
	rateLimitSeconds    prometheus.Counter
	cooldownSeconds     *prometheus.CounterVec
	runs                *prometheus.CounterVec
	frontierSize        prometheus.Gauge

	graphNodes         prometheus.Gauge
	graphEdges         prometheus.Gauge
	rankIterations     prometheus.Gauge
	rankSimilarity     prometheus.Gauge
	rankDuration       prometheus.Gauge
	rankLastCompletion prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		accountsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "accounts_fetched_total",
			Help: "Accounts whose follower list was fetched and saved.",
		}),
		followersDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "followers_discovered_total",
			Help: "Follower ids written to adjacency files.",
		}),
		accountsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "accounts_skipped_total",
			Help: "Frontier entries dropped without saving a follower list, by reason.",
		}, []string{"reason"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "fetch_errors_total",
			Help: "Follower fetch failures by error kind.",
		}, []string{"kind"}),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "pages_fetched_total",
			Help: "Follower id pages fetched.",
		}),
		rateLimitSleeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "rate_limit_sleeps_total",
			Help: "Pauses taken because the rate-limit budget was exhausted.",
		}),
		rateLimitSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "rate_limit_sleep_seconds_total",
			Help: "Time spent waiting for the rate-limit window to reset.",
		}),
		cooldownSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "cooldown_seconds_total",
			Help: "Time spent in cooldowns after fetch errors, by cooldown type.",
		}, []string{"type"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "runs_total",
			Help: "Crawl runs by outcome.",
		}, []string{"outcome"}),
		frontierSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "crawl", Name: "frontier_entries",
			Help: "Entries pending in the crawl frontier.",
		}),

		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pagerank", Name: "graph_nodes",
			Help: "Accounts in the ranked graph.",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pagerank", Name: "graph_edges",
			Help: "Distinct follow links in the ranked graph.",
		}),
		rankIterations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pagerank", Name: "iterations",
			Help: "Power iterations run by the last ranking.",
		}),
		rankSimilarity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pagerank", Name: "final_similarity",
			Help: "Cosine similarity between the last two vectors of the last ranking.",
		}),
		rankDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pagerank", Name: "duration_seconds",
			Help: "Wall time of the last ranking.",
		}),
		rankLastCompletion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pagerank", Name: "last_completion_timestamp_seconds",
			Help: "Unix time the last ranking finished.",
		}),
	}

	m.registry.MustRegister(
		m.accountsFetched, m.followersDiscovered, m.accountsSkipped, m.fetchErrors,
		m.pages, m.rateLimitSleeps, m.rateLimitSeconds, m.cooldownSeconds, m.runs,
		m.frontierSize, m.graphNodes, m.graphEdges, m.rankIterations,
		m.rankSimilarity, m.rankDuration, m.rankLastCompletion,
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) AccountFetched(followers int) {
	if m == nil {
		return
	}
	m.accountsFetched.Inc()
	m.followersDiscovered.Add(float64(followers))
}

func (m *Metrics) AccountSkipped(reason string) {
	if m == nil {
		return
	}
	m.accountsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) FetchError(kind string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) PageFetched() {
	if m == nil {
		return
	}
	m.pages.Inc()
}

func (m *Metrics) RateLimitSleep(d time.Duration) {
	if m == nil {
		return
	}
	m.rateLimitSleeps.Inc()
	m.rateLimitSeconds.Add(d.Seconds())
}

// Cooldown records a pause after a fetch error; kind is "short" or "long"
func (m *Metrics) Cooldown(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.cooldownSeconds.WithLabelValues(kind).Add(d.Seconds())
}

func (m *Metrics) RunFinished(outcome fmt.Stringer) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) SetFrontierSize(n int) {
	if m == nil {
		return
	}
	m.frontierSize.Set(float64(n))
}

func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.graphNodes.Set(float64(nodes))
	m.graphEdges.Set(float64(edges))
}

func (m *Metrics) RankFinished(iterations int, similarity float64, d time.Duration) {
	if m == nil {
		return
	}
	m.rankIterations.Set(float64(iterations))
	m.rankSimilarity.Set(similarity)
	m.rankDuration.Set(d.Seconds())
	m.rankLastCompletion.SetToCurrentTime()
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for the node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
