package eviction

import "github.com/KirkDiggler/sketchroom/internal/models"

// AddEvictionRecordInput contains parameters for recording an eviction
type AddEvictionRecordInput struct {
	Record *models.EvictionRecord
}

// GetEvictionsForRoomInput contains parameters for reading a room's ledger
type GetEvictionsForRoomInput struct {
	RoomID string
}

// GetEvictionsForRoomOutput contains the result of reading a room's ledger
type GetEvictionsForRoomOutput struct {
	Records []*models.EvictionRecord
}
