package phase

import (
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/common/clock"
)

// Timing is the session-relative schedule
type Timing struct {
	// RoundStarts are the offsets from session start at which each voting round opens
	RoundStarts []time.Duration

	// RoundLength is how long each voting round stays open
	RoundLength time.Duration

	// SettleDelay separates the end of the last round from the sections phase
	SettleDelay time.Duration
}

// DefaultTiming returns rounds at +20m, +40m and +60m lasting 60s each with a 1s settle
func DefaultTiming() Timing {
	return Timing{
		RoundStarts: []time.Duration{20 * time.Minute, 40 * time.Minute, 60 * time.Minute},
		RoundLength: 60 * time.Second,
		SettleDelay: time.Second,
	}
}

// Validate checks there is one start per round and rounds never overlap
func (t Timing) Validate() error {
	if len(t.RoundStarts) != Rounds {
		return fmt.Errorf("%w: want %d round starts, got %d", ErrInvalidTiming, Rounds, len(t.RoundStarts))
	}
	if t.RoundLength <= 0 || t.SettleDelay < 0 {
		return fmt.Errorf("%w: round length must be positive and settle delay non-negative", ErrInvalidTiming)
	}
	prevEnd := time.Duration(-1)
	for i, start := range t.RoundStarts {
		if start <= prevEnd {
			return fmt.Errorf("%w: round %d starts before round %d ends", ErrInvalidTiming, i+1, i)
		}
		prevEnd = start + t.RoundLength
	}
	return nil
}

// Hooks are called from timer goroutines. Callers own their locking.
type Hooks struct {
	StartRound    func(round int)
	EndRound      func(round int)
	EnterSections func()
}

// Schedule is the set of pending phase timers for one room
type Schedule struct {
	mu      sync.Mutex
	timers  []clock.Timer
	stopped bool
}

// Arm schedules every transition relative to start. Offsets already in the
// past fire immediately, in order.
func Arm(clk clock.Clock, start time.Time, timing Timing, hooks Hooks) *Schedule {
	s := &Schedule{}
	now := clk.Now()
	at := func(offset time.Duration, fn func()) {
		delay := start.Add(offset).Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.timers = append(s.timers, clk.AfterFunc(delay, fn))
	}

	for i, offset := range timing.RoundStarts {
		round := i + 1
		at(offset, func() { hooks.StartRound(round) })
		at(offset+timing.RoundLength, func() { hooks.EndRound(round) })
	}
	last := timing.RoundStarts[len(timing.RoundStarts)-1]
	at(last+timing.RoundLength+timing.SettleDelay, hooks.EnterSections)

	return s
}

// Stop cancels every pending transition. Safe to call more than once.
func (s *Schedule) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for _, t := range s.timers {
		t.Stop()
	}
}
