package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/sketchroom/internal/repositories/room Repository

import (
	"context"

	"github.com/KirkDiggler/sketchroom/internal/models"
)

// Repository is the directory of live rooms
type Repository interface {
	// SaveRoom publishes a room summary, refreshing its expiry
	SaveRoom(ctx context.Context, input *SaveRoomInput) error

	// GetRoom retrieves a room summary by room ID
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.RoomSummary, error)

	// DeleteRoom removes a room from the directory
	DeleteRoom(ctx context.Context, input *DeleteRoomInput) error

	// GetActiveRooms lists every room still in the directory
	GetActiveRooms(ctx context.Context, input *GetActiveRoomsInput) (*GetActiveRoomsOutput, error)
}
