package models

import "fmt"

// PhaseKind is the coarse position in the room's phase state machine
type PhaseKind string

const (
	// PhaseOpen is free interaction
	PhaseOpen PhaseKind = "open"

	// PhaseVoting is an eviction-voting round
	PhaseVoting PhaseKind = "voting"

	// PhaseSections is the terminal breakout phase
	PhaseSections PhaseKind = "sections"
)

// Phase is a room's current phase. Round is only meaningful while voting,
// and otherwise holds the last completed round.
type Phase struct {
	Kind  PhaseKind `json:"kind"`
	Round int       `json:"round"`
}

// IsOpen returns true if the phase is open interaction
func (p Phase) IsOpen() bool {
	return p.Kind == PhaseOpen
}

// IsVoting returns true if a voting round is running
func (p Phase) IsVoting() bool {
	return p.Kind == PhaseVoting
}

// IsSections returns true if the room reached the breakout phase
func (p Phase) IsSections() bool {
	return p.Kind == PhaseSections
}

func (p Phase) String() string {
	if p.Kind == PhaseVoting {
		return fmt.Sprintf("%s(%d)", p.Kind, p.Round)
	}
	return string(p.Kind)
}
