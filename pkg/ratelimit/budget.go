package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	HeaderRemaining = "x-rate-limit-remaining"
	HeaderReset     = "x-rate-limit-reset"

	// ResetMargin is added to every reset wait so the next call lands in the new window
	ResetMargin = time.Second
)

// Budget is the rate-limit state reported with a single response
type Budget struct {
	// Remaining is the number of calls left in the window, -1 when unknown
	Remaining int
	// ResetIn is the time until the window resets
	ResetIn time.Duration
}

// UnknownBudget is reported when the response carried no rate-limit headers
func UnknownBudget() Budget {
	return Budget{Remaining: -1}
}

func (b Budget) Known() bool { return b.Remaining >= 0 }

// Exhausted reports whether no calls remain in the current window
func (b Budget) Exhausted() bool { return b.Remaining == 0 }

// Pause is how long to wait before the next call once the budget is exhausted
func (b Budget) Pause() time.Duration {
	wait := b.ResetIn
	if wait < 0 {
		wait = 0
	}
	return wait + ResetMargin
}

// ParseHeaders reads the budget from response headers. The reset header is
// an epoch timestamp in seconds, converted relative to now.
func ParseHeaders(h http.Header, now time.Time) Budget {
	remainingRaw := h.Get(HeaderRemaining)
	if remainingRaw == "" {
		return UnknownBudget()
	}

	remaining, err := strconv.Atoi(remainingRaw)
	if err != nil || remaining < 0 {
		return UnknownBudget()
	}

	budget := Budget{Remaining: remaining}
	if resetRaw := h.Get(HeaderReset); resetRaw != "" {
		if epoch, err := strconv.ParseInt(resetRaw, 10, 64); err == nil {
			budget.ResetIn = time.Unix(epoch, 0).Sub(now)
			if budget.ResetIn < 0 {
				budget.ResetIn = 0
			}
		}
	}
	return budget
}

// Limiter defines the interface for pacing remote calls
type Limiter interface {
	// Wait blocks until the next call is allowed and returns how long it blocked
	Wait(ctx context.Context) (time.Duration, error)
	// Reset forgets any observed state
	Reset()
}

// Pacer is a Limiter driven by the budget the remote reports
type Pacer struct {
	clock Clock
	mu    sync.Mutex
	last  Budget
}

// NewPacer creates a pacer that sleeps on clock
func NewPacer(clock Clock) *Pacer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Pacer{clock: clock, last: UnknownBudget()}
}

// Observe records the budget reported by the latest response
func (p *Pacer) Observe(b Budget) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = b
}

// Wait sleeps until the window resets if the last observed budget is exhausted
func (p *Pacer) Wait(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	budget := p.last
	p.mu.Unlock()

	if !budget.Exhausted() {
		return 0, nil
	}

	pause := budget.Pause()
	if err := p.clock.Sleep(ctx, pause); err != nil {
		return 0, err
	}

	p.Reset()
	return pause, nil
}

func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = UnknownBudget()
}
