package pagerank

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"followrank/pkg/config"
	"followrank/pkg/logger"
	"followrank/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Config holds the power iteration settings
type Config struct {
	TeleportationRate   float64
	SimilarityThreshold float64
	MaxIterations       int
	// Workers is the number of goroutines computing columns, 0 means one per CPU
	Workers int
}

func DefaultConfig() Config {
	return ConfigFromPageRank(&config.DefaultConfig().PageRank)
}

// ConfigFromPageRank extracts the engine settings from the pagerank config section
func ConfigFromPageRank(c *config.PageRankConfig) Config {
	return Config{
		TeleportationRate:   c.TeleportationRate,
		SimilarityThreshold: c.SimilarityThreshold,
		MaxIterations:       c.MaxIterations,
		Workers:             c.Workers,
	}
}

// Convergence tracks the power iteration
type Convergence struct {
	// Similarity is the cosine similarity of the last two vectors
	Similarity float64
	// Iterations is the number of steps taken
	Iterations int
}

// Advance returns the state after one more step ending at similarity
func (c Convergence) Advance(similarity float64) Convergence {
	return Convergence{Similarity: similarity, Iterations: c.Iterations + 1}
}

// Done reports whether iteration should stop
func (c Convergence) Done(threshold float64, maxIterations int) bool {
	return c.Similarity >= threshold || c.Iterations >= maxIterations
}

// Engine ranks follower graphs
type Engine struct {
	config  Config
	logger  logger.Logger
	metrics *metrics.Metrics
}

// Option configures an Engine
type Option func(*Engine)

func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.logger = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine. Non-positive iteration caps fall back to the
// default and the teleportation rate is clamped into (0, 1).
func NewEngine(cfg Config, opts ...Option) *Engine {
	defaults := DefaultConfig()
	cfg.TeleportationRate = ClampTeleportationRate(cfg.TeleportationRate)
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	e := &Engine{config: cfg, logger: logger.GetLogger()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("component", "pagerank")
	return e
}

// Config returns the effective settings
func (e *Engine) Config() Config {
	return e.config
}

// Rank runs the power iteration over g. The start vector holds all mass at
// index 0; iteration stops once successive vectors reach the similarity
// threshold or the iteration cap.
func (e *Engine) Rank(ctx context.Context, g *Graph) (*Result, error) {
	started := time.Now()
	n := g.Len()
	e.metrics.SetGraphSize(n, g.Edges())

	if n == 0 {
		e.logger.Warn("Follower graph is empty, nothing to rank")
		return &Result{}, nil
	}

	m := NewTransitionMatrix(g, e.config.TeleportationRate)
	e.logger.WithFields(map[string]interface{}{
		"nodes":              n,
		"links":              m.Links(),
		"teleportation_rate": m.TeleportationRate(),
		"workers":            e.config.Workers,
	}).Info("Starting power iteration")

	vector := make([]float64, n)
	vector[0] = 1

	var conv Convergence
	for !conv.Done(e.config.SimilarityThreshold, e.config.MaxIterations) {
		next, err := e.step(ctx, m, vector)
		if err != nil {
			return nil, err
		}
		conv = conv.Advance(CosineSimilarity(vector, next))
		vector = next

		e.logger.DebugWithFields("Power iteration step", map[string]interface{}{
			"iteration":  conv.Iterations,
			"similarity": conv.Similarity,
		})
	}

	elapsed := time.Since(started)
	e.metrics.RankFinished(conv.Iterations, conv.Similarity, elapsed)
	e.logger.WithFields(map[string]interface{}{
		"iterations": conv.Iterations,
		"similarity": conv.Similarity,
		"converged":  conv.Similarity >= e.config.SimilarityThreshold,
		"duration":   elapsed,
	}).Info("Power iteration finished")

	return &Result{IDs: g.IDs(), Vector: vector, Convergence: conv}, nil
}

// step multiplies v by the augmented matrix, splitting columns across workers
func (e *Engine) step(ctx context.Context, m *Matrix, v []float64) ([]float64, error) {
	n := m.Len()
	next := make([]float64, n)

	var total float64
	for _, x := range v {
		total += x
	}

	workers := e.config.Workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	eg, egCtx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			for j := lo; j < hi; j++ {
				if j%1024 == 0 {
					if err := egCtx.Err(); err != nil {
						return err
					}
				}
				next[j] = m.column(v, total, j)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("power iteration interrupted: %w", err)
	}
	return next, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, 0 when
// either is a zero vector
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
