package gate

import (
	"errors"
	"fmt"
	"time"
)

const DefaultInterval = 5 * time.Second

var ErrInvalidInterval = errors.New("interval must be positive")

// RateGate lets at most one batch through per interval.
// It is owned by a single poller and is not safe for concurrent use.
type RateGate struct {
	interval     time.Duration
	lastDispatch time.Time
}

func NewRateGate(interval time.Duration) (*RateGate, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	// Zero lastDispatch lies far enough in the past that the first batch always passes.
	return &RateGate{interval: interval}, nil
}

// ShouldDispatch accepts iff now >= lastDispatch + interval and closes the
// gate at now on accept.
func (g *RateGate) ShouldDispatch(now time.Time) bool {
	if now.Before(g.lastDispatch.Add(g.interval)) {
		return false
	}
	g.lastDispatch = now
	return true
}

func (g *RateGate) Interval() time.Duration {
	return g.interval
}

func (g *RateGate) LastDispatch() time.Time {
	return g.lastDispatch
}
