// Package phase drives a room through Open → Voting(1..3) → Sections.
//
// Machine holds the current phase and refuses any transition outside the
// fixed order. Schedule arms the wall-clock timers that request those
// transitions, anchored to the room's start time.
package phase

import (
	"fmt"

	"github.com/KirkDiggler/sketchroom/internal/models"
)

// PhaseError is a custom error type for phase errors
type PhaseError string

// Error implements the error interface
func (e PhaseError) Error() string {
	return string(e)
}

const (
	ErrIllegalTransition PhaseError = "illegal phase transition"
	ErrInvalidTiming     PhaseError = "invalid phase timing"
)

// Rounds is the number of voting rounds before sections
const Rounds = 3

// Open returns the open phase after round completed rounds
func Open(round int) models.Phase {
	return models.Phase{Kind: models.PhaseOpen, Round: round}
}

// Voting returns the voting phase for round
func Voting(round int) models.Phase {
	return models.Phase{Kind: models.PhaseVoting, Round: round}
}

// Sections returns the terminal phase
func Sections() models.Phase {
	return models.Phase{Kind: models.PhaseSections, Round: Rounds}
}

// Machine is a room's phase. It is not safe for concurrent use.
type Machine struct {
	current models.Phase
}

// NewMachine starts in Open before any round
func NewMachine() *Machine {
	return &Machine{current: Open(0)}
}

// Current returns the current phase
func (m *Machine) Current() models.Phase {
	return m.current
}

// Next returns the only phase the machine may move to, and false once terminal
func (m *Machine) Next() (models.Phase, bool) {
	cur := m.current
	switch {
	case cur.IsOpen() && cur.Round < Rounds:
		return Voting(cur.Round + 1), true
	case cur.IsVoting() && cur.Round < Rounds:
		return Open(cur.Round), true
	case cur.IsVoting() && cur.Round == Rounds:
		return Sections(), true
	default:
		return models.Phase{}, false
	}
}

// Advance moves to next if it is the machine's single legal successor
func (m *Machine) Advance(next models.Phase) error {
	want, ok := m.Next()
	if !ok || want != next {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, next)
	}
	m.current = next
	return nil
}
