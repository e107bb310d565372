package session

import (
	"log/slog"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/broadcast"
	"github.com/KirkDiggler/sketchroom/internal/common/clock"
	"github.com/KirkDiggler/sketchroom/internal/common/uuid"
	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/KirkDiggler/sketchroom/internal/phase"
	evictionRepo "github.com/KirkDiggler/sketchroom/internal/repositories/eviction"
	roomRepo "github.com/KirkDiggler/sketchroom/internal/repositories/room"
	"github.com/KirkDiggler/sketchroom/internal/services/messaging"
)

const (
	// DefaultRoomID is used when a join names no room
	DefaultRoomID = "main"

	// DefaultIdleTimeout is how long an empty room survives
	DefaultIdleTimeout = 5 * time.Minute

	// DefaultRepoTimeout bounds each directory write
	DefaultRepoTimeout = 2 * time.Second
)

// Config holds configuration for the session service
type Config struct {
	// Capacity is the maximum number of active participants per room
	Capacity int

	// SectionCap is the maximum section size, inviter included
	SectionCap int

	// EvictionThreshold is the distinct-voter count that removes a participant
	EvictionThreshold int

	// Timing is the phase schedule; the zero value means phase.DefaultTiming
	Timing phase.Timing

	// IdleTimeout is how long an empty room waits before teardown
	IdleTimeout time.Duration

	// QueueWhenFull places joiners of a full room in a FIFO waiting list
	QueueWhenFull bool

	// InvitationTTL dissolves sections still unlocked after this long; 0 never expires
	InvitationTTL time.Duration

	// RepoTimeout bounds each repository call
	RepoTimeout time.Duration

	// DefaultRoomID is the room used when a join names none
	DefaultRoomID string

	Logger        *slog.Logger
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Dispatcher    *broadcast.Dispatcher
	Messaging     messaging.Service
	RoomRepo      roomRepo.Repository
	EvictionRepo  evictionRepo.Repository
}

// JoinInput contains parameters for joining a room
type JoinInput struct {
	Conn        broadcast.Conn
	RoomID      string
	AgeVerified bool
}

// JoinOutput describes the admission outcome
type JoinOutput struct {
	RoomID string

	// Number is the assigned public number; 0 while waiting
	Number int

	// Waiting is true when the connection was queued
	Waiting bool

	// Position is the 1-based place in the waiting list
	Position int

	// Duplicate is true when the connection had already joined; nothing changed
	Duplicate bool
}

// LeaveInput contains parameters for a disconnect
type LeaveInput struct {
	ConnID string
}

// LeaveOutput describes what the disconnect removed
type LeaveOutput struct {
	// Number is the freed public number, 0 if the connection was not admitted
	Number int
}

// DrawInput contains parameters for a draw command
type DrawInput struct {
	ConnID string
	PathID string
	Point  models.Point
	Color  string
	Width  float64
}

// UpdateDrawingInput contains parameters for a draw_update command
type UpdateDrawingInput struct {
	ConnID string
	PathID string
	Points []models.Point
}

// DrawOutput describes an applied draw
type DrawOutput struct {
	// Applied is false when the command was ignored
	Applied bool

	StrokeID string

	// Started is true when a new stroke was created
	Started bool
}

// AddTextInput contains parameters for a text command
type AddTextInput struct {
	ConnID  string
	Content string
	X       float64
	Y       float64
	Color   string
	Size    float64
}

// AddTextOutput describes a placed label
type AddTextOutput struct {
	Applied bool
	LabelID string
}

// EraseInput contains parameters for an erase command
type EraseInput struct {
	ConnID string
	X      float64
	Y      float64
	Radius float64
}

// EraseOutput lists what the erase removed
type EraseOutput struct {
	Applied   bool
	StrokeIDs []string
	LabelIDs  []string
}

// CastVoteInput contains parameters for a vote
type CastVoteInput struct {
	ConnID string

	// TargetNumber is the public number of the nominee
	TargetNumber int
}

// CastVoteOutput describes a counted vote
type CastVoteOutput struct {
	// Counted is false when the vote was ignored
	Counted bool
	Votes   int
	Evicted bool
}

// CreateSectionInput contains parameters for forming a section
type CreateSectionInput struct {
	ConnID string

	// InviteeNumbers are public numbers
	InviteeNumbers []int
}

// CreateSectionOutput contains the new section
type CreateSectionOutput struct {
	Section *models.Section
}

// AcceptInvitationInput contains parameters for accepting a section invitation
type AcceptInvitationInput struct {
	ConnID    string
	SectionID string
}

// AcceptInvitationOutput describes the section after acceptance
type AcceptInvitationOutput struct {
	Section *models.Section

	// JustLocked is true when this acceptance locked the section
	JustLocked bool
}

// ListRoomsInput contains parameters for listing rooms
type ListRoomsInput struct{}

// ListRoomsOutput contains the room directory
type ListRoomsOutput struct {
	Rooms []*models.RoomSummary
}

// ListEvictionsInput contains parameters for reading a room's evictions
type ListEvictionsInput struct {
	RoomID string
}

// ListEvictionsOutput contains a room's evictions, oldest first
type ListEvictionsOutput struct {
	Records []*models.EvictionRecord
}
