package session

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/sketchroom/internal/services/session Service

import (
	"context"
)

// Service routes participant commands to the coordinator of their room
type Service interface {
	// Join admits a connection to a room, creating the room on first use
	Join(ctx context.Context, input *JoinInput) (*JoinOutput, error)

	// Leave handles a disconnect, admitted or queued
	Leave(ctx context.Context, input *LeaveInput) (*LeaveOutput, error)

	// Draw starts a stroke, or continues the caller's stroke with the same path id
	Draw(ctx context.Context, input *DrawInput) (*DrawOutput, error)

	// UpdateDrawing appends points to the caller's current stroke
	UpdateDrawing(ctx context.Context, input *UpdateDrawingInput) (*DrawOutput, error)

	// AddText places a label
	AddText(ctx context.Context, input *AddTextInput) (*AddTextOutput, error)

	// Erase removes content around a point
	Erase(ctx context.Context, input *EraseInput) (*EraseOutput, error)

	// CastVote records a removal vote during a voting round
	CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error)

	// CreateSection invites participants into a breakout section
	CreateSection(ctx context.Context, input *CreateSectionInput) (*CreateSectionOutput, error)

	// AcceptInvitation consents to a pending section
	AcceptInvitation(ctx context.Context, input *AcceptInvitationInput) (*AcceptInvitationOutput, error)

	// ListRooms returns the room directory
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)

	// ListEvictions returns a room's eviction ledger
	ListEvictions(ctx context.Context, input *ListEvictionsInput) (*ListEvictionsOutput, error)

	// Shutdown closes every room and flushes pending directory writes
	Shutdown(ctx context.Context) error
}
