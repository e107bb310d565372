package models

import (
	"time"
)

// RoomSummary is the operational view of a live room published to the room directory
type RoomSummary struct {
	// ID is the room identifier chosen by clients
	ID string `json:"id"`

	// Phase is the room's current phase
	Phase Phase `json:"phase"`

	// Participants is the active participant count
	Participants int `json:"participants"`

	// Waiting is the number of queued connections
	Waiting int `json:"waiting"`

	// StartedAt anchors the phase schedule
	StartedAt time.Time `json:"startedAt"`

	// UpdatedAt is when the summary was last written
	UpdatedAt time.Time `json:"updatedAt"`
}

// EvictionRecord records a participant removed by vote
type EvictionRecord struct {
	// ID is the unique identifier for the record
	ID string `json:"id"`

	// RoomID is the room the eviction happened in
	RoomID string `json:"roomId"`

	// Round is the voting round
	Round int `json:"round"`

	// Number is the evicted participant's public number
	Number int `json:"number"`

	// Voters is the distinct voter count that triggered the eviction
	Voters int `json:"voters"`

	// Timestamp is when the eviction happened
	Timestamp time.Time `json:"timestamp"`
}
