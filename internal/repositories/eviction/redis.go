package eviction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/sketchroom/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	evictionKeyPrefix      = "eviction:"
	roomEvictionsKeyPrefix = "room_evictions:"
)

// DefaultTTL matches the room directory's expiry
const DefaultTTL = 2 * time.Hour

// LedgerError is a custom error type for eviction ledger errors
type LedgerError string

// Error implements the error interface
func (e LedgerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig      LedgerError = "config cannot be nil"
	ErrNilRedisClient LedgerError = "redis client cannot be nil"
	ErrNilRecord      LedgerError = "input and record cannot be nil"
	ErrEmptyRecordID  LedgerError = "eviction record ID cannot be empty"
	ErrEmptyRoomID    LedgerError = "room ID cannot be empty"
)

// Config holds configuration for the Redis eviction ledger
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

// NewRedis creates a new Redis-backed eviction ledger
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

// AddEvictionRecord adds an eviction record to the room's ledger
func (r *redisRepository) AddEvictionRecord(ctx context.Context, input *AddEvictionRecordInput) error {
	if input == nil || input.Record == nil {
		return ErrNilRecord
	}

	record := input.Record
	if record.ID == "" {
		return ErrEmptyRecordID
	}
	if record.RoomID == "" {
		return ErrEmptyRoomID
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal eviction record: %w", err)
	}

	pipe := r.client.TxPipeline()

	evictionKey := fmt.Sprintf("%s%s", evictionKeyPrefix, record.ID)
	pipe.Set(ctx, evictionKey, recordJSON, r.ttl)

	roomKey := fmt.Sprintf("%s%s", roomEvictionsKeyPrefix, record.RoomID)
	pipe.ZAdd(ctx, roomKey, redis.Z{
		Score:  float64(record.Timestamp.UnixNano()),
		Member: record.ID,
	})
	pipe.Expire(ctx, roomKey, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add eviction record: %w", err)
	}
	return nil
}

// GetEvictionsForRoom retrieves all eviction records for a room
func (r *redisRepository) GetEvictionsForRoom(ctx context.Context, input *GetEvictionsForRoomInput) (*GetEvictionsForRoomOutput, error) {
	if input == nil || input.RoomID == "" {
		return nil, ErrEmptyRoomID
	}

	roomKey := fmt.Sprintf("%s%s", roomEvictionsKeyPrefix, input.RoomID)
	recordIDs, err := r.client.ZRange(ctx, roomKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get eviction IDs for room: %w", err)
	}

	if len(recordIDs) == 0 {
		return &GetEvictionsForRoomOutput{
			Records: []*models.EvictionRecord{},
		}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(recordIDs))
	for i, recordID := range recordIDs {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf("%s%s", evictionKeyPrefix, recordID))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get eviction records: %w", err)
	}

	records := make([]*models.EvictionRecord, 0, len(recordIDs))
	for i, cmd := range cmds {
		recordJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Record expired between the range read and the fetch
				continue
			}
			return nil, fmt.Errorf("failed to get eviction record %s: %w", recordIDs[i], err)
		}

		var record models.EvictionRecord
		if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal eviction record %s: %w", recordIDs[i], err)
		}
		records = append(records, &record)
	}

	return &GetEvictionsForRoomOutput{
		Records: records,
	}, nil
}
