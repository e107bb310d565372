package room

import "github.com/KirkDiggler/sketchroom/internal/models"

// SaveRoomInput contains parameters for publishing a room summary
type SaveRoomInput struct {
	Room *models.RoomSummary
}

// GetRoomInput contains parameters for retrieving a room summary
type GetRoomInput struct {
	RoomID string
}

// DeleteRoomInput contains parameters for removing a room
type DeleteRoomInput struct {
	RoomID string
}

// GetActiveRoomsInput contains parameters for listing rooms
type GetActiveRoomsInput struct{}

// GetActiveRoomsOutput contains the live rooms, ordered by room ID
type GetActiveRoomsOutput struct {
	Rooms []*models.RoomSummary
}
