package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	roomKeyPrefix  = "room:"
	activeRoomsKey = "active_rooms"
)

// DefaultTTL bounds how long a summary outlives a crashed process
const DefaultTTL = 2 * time.Hour

// RepositoryError is a custom error type for room directory errors
type RepositoryError string

// Error implements the error interface
func (e RepositoryError) Error() string {
	return string(e)
}

const (
	ErrRoomNotFound   RepositoryError = "room not found"
	ErrNilConfig      RepositoryError = "config cannot be nil"
	ErrNilRedisClient RepositoryError = "redis client cannot be nil"
	ErrInvalidInput   RepositoryError = "input and room ID cannot be empty"
)

// Config holds configuration for the Redis room repository
type Config struct {
	RedisClient *redis.Client

	// TTL defaults to DefaultTTL
	TTL time.Duration
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed room directory
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.RedisClient == nil {
		return nil, ErrNilRedisClient
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    ttl,
	}, nil
}

func roomKey(roomID string) string {
	return fmt.Sprintf("%s%s", roomKeyPrefix, roomID)
}

// SaveRoom persists a room summary to Redis
func (r *redisRepository) SaveRoom(ctx context.Context, input *SaveRoomInput) error {
	if input == nil || input.Room == nil || input.Room.ID == "" {
		return ErrInvalidInput
	}

	roomJSON, err := json.Marshal(input.Room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, roomKey(input.Room.ID), roomJSON, r.ttl)
	pipe.SAdd(ctx, activeRoomsKey, input.Room.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room summary by ID from Redis
func (r *redisRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.RoomSummary, error) {
	if input == nil || input.RoomID == "" {
		return nil, ErrInvalidInput
	}

	roomJSON, err := r.client.Get(ctx, roomKey(input.RoomID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var summary models.RoomSummary
	if err := json.Unmarshal([]byte(roomJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return &summary, nil
}

// DeleteRoom removes a room summary and its directory entry
func (r *redisRepository) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil || input.RoomID == "" {
		return ErrInvalidInput
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, roomKey(input.RoomID))
	pipe.SRem(ctx, activeRoomsKey, input.RoomID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// GetActiveRooms lists live rooms. Directory entries whose summary expired
// are pruned as they are found.
func (r *redisRepository) GetActiveRooms(ctx context.Context, input *GetActiveRoomsInput) (*GetActiveRoomsOutput, error) {
	roomIDs, err := r.client.SMembers(ctx, activeRoomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	if len(roomIDs) == 0 {
		return &GetActiveRoomsOutput{
			Rooms: []*models.RoomSummary{},
		}, nil
	}
	sort.Strings(roomIDs)

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(roomIDs))
	for i, roomID := range roomIDs {
		cmds[i] = pipe.Get(ctx, roomKey(roomID))
	}

	// A missing summary surfaces as redis.Nil from Exec; handled per command below
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	rooms := make([]*models.RoomSummary, 0, len(roomIDs))
	stale := make([]any, 0)
	for i, cmd := range cmds {
		roomJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				stale = append(stale, roomIDs[i])
				continue
			}
			return nil, fmt.Errorf("failed to get room %s: %w", roomIDs[i], err)
		}

		var summary models.RoomSummary
		if err := json.Unmarshal([]byte(roomJSON), &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room %s: %w", roomIDs[i], err)
		}
		rooms = append(rooms, &summary)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, activeRoomsKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired rooms: %w", err)
		}
	}

	return &GetActiveRoomsOutput{
		Rooms: rooms,
	}, nil
}
