package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"chemsaver-backend/internal/models"
)

// Store persists per-well StreamState between pipeline invocations.
// State expires after the TTL so a well that goes silent long enough
// restarts with first-sample semantics.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore connects to Redis and verifies the connection.
func NewStore(addr, password string, db int, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Printf("Connected to Redis at %s", addr)

	return &Store{rdb: rdb, ttl: ttl}, nil
}

func stateKey(wellID string) string {
	return "stream_state:" + wellID
}

// Load returns the stream state for a well. A well with no stored
// state (first sample, or state expired) gets fresh empty state.
func (s *Store) Load(ctx context.Context, wellID string) (*models.StreamState, error) {
	raw, err := s.rdb.Get(ctx, stateKey(wellID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewStreamState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stream state for %s: %w", wellID, err)
	}

	var state models.StreamState
	if err := json.Unmarshal(raw, &state); err != nil {
		// Corrupt state is unrecoverable; start fresh rather than
		// blocking the well.
		log.Printf("Warning: corrupt stream state for %s, resetting: %v", wellID, err)
		return models.NewStreamState(), nil
	}

	return &state, nil
}

// Save persists the stream state for a well, refreshing the TTL.
func (s *Store) Save(ctx context.Context, wellID string, state *models.StreamState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal stream state for %s: %w", wellID, err)
	}

	if err := s.rdb.Set(ctx, stateKey(wellID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save stream state for %s: %w", wellID, err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	log.Println("Redis connection closed")
	return nil
}
