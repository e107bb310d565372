package models

// Participant is one admitted connection in a room. Other participants only
// ever see its Number.
type Participant struct {
	// ID is the opaque identifier generated at admission
	ID string

	// Number is the public number in [1, capacity], unique among active participants
	Number int

	// ConnID identifies the connection the participant was admitted on
	ConnID string
}
