package eviction

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/sketchroom/internal/repositories/eviction Repository

import (
	"context"
)

// Repository is the ledger of vote evictions
type Repository interface {
	// AddEvictionRecord appends an eviction to its room's ledger
	AddEvictionRecord(ctx context.Context, input *AddEvictionRecordInput) error

	// GetEvictionsForRoom retrieves a room's evictions, oldest first
	GetEvictionsForRoom(ctx context.Context, input *GetEvictionsForRoomInput) (*GetEvictionsForRoomOutput, error)
}
