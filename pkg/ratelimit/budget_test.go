package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		remaining string
		reset     string
		want      Budget
	}{
		{"missing headers", "", "", UnknownBudget()},
		{"garbage remaining", "lots", "", UnknownBudget()},
		{"remaining only", "14", "", Budget{Remaining: 14}},
		{"exhausted", "0", strconv.FormatInt(now.Unix()+90, 10), Budget{Remaining: 0, ResetIn: 90 * time.Second}},
		{"reset in the past", "0", strconv.FormatInt(now.Unix()-5, 10), Budget{Remaining: 0}},
		{"bad reset", "3", "soon", Budget{Remaining: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.remaining != "" {
				h.Set(HeaderRemaining, tt.remaining)
			}
			if tt.reset != "" {
				h.Set(HeaderReset, tt.reset)
			}
			assert.Equal(t, tt.want, ParseHeaders(h, now))
		})
	}
}

func TestBudget(t *testing.T) {
	assert.False(t, UnknownBudget().Known())
	assert.False(t, UnknownBudget().Exhausted())

	b := Budget{Remaining: 0, ResetIn: 30 * time.Second}
	assert.True(t, b.Known())
	assert.True(t, b.Exhausted())
	assert.Equal(t, 31*time.Second, b.Pause())

	assert.Equal(t, ResetMargin, Budget{Remaining: 0, ResetIn: -time.Minute}.Pause())
}

func TestPacer(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	pacer := NewPacer(clock)
	ctx := context.Background()

	slept, err := pacer.Wait(ctx)
	require.NoError(t, err)
	assert.Zero(t, slept)

	pacer.Observe(Budget{Remaining: 5, ResetIn: time.Minute})
	slept, err = pacer.Wait(ctx)
	require.NoError(t, err)
	assert.Zero(t, slept)

	pacer.Observe(Budget{Remaining: 0, ResetIn: time.Minute})
	slept, err = pacer.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute+time.Second, slept)
	assert.Equal(t, []time.Duration{time.Minute + time.Second}, clock.Sleeps())

	// the exhausted budget is consumed by the wait
	slept, err = pacer.Wait(ctx)
	require.NoError(t, err)
	assert.Zero(t, slept)
}

func TestPacerCancelled(t *testing.T) {
	pacer := NewPacer(NewManualClock(time.Unix(0, 0)))
	pacer.Observe(Budget{Remaining: 0, ResetIn: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pacer.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
