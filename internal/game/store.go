// Package game provides Redis-backed storage for game sessions: membership,
// the latest validated game state snapshot per game, and an in-memory buffer
// of recent relayed events. Game rules are never evaluated here; the store
// only holds what validated messages produced.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	GamePrefix    = "game:"
	StatePrefix   = "gamestate:"
	PlayersSuffix = ":players"

	// GameTTL bounds how long an inactive game lingers in Redis.
	GameTTL = 2 * time.Hour
)

// Info describes a game session's metadata.
type Info struct {
	GameID    string
	Host      string // session ID of the creating player
	CreatedAt int64
}

// Store manages game session state in Redis.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a game store backed by the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Create registers a new game with the creating session as host.
func (s *Store) Create(ctx context.Context, gameID, hostSessionID string) error {
	key := GamePrefix + gameID

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"host":       hostSessionID,
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, GameTTL)
	pipe.SAdd(ctx, key+PlayersSuffix, hostSessionID)
	pipe.Expire(ctx, key+PlayersSuffix, GameTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Get retrieves a game's metadata. Returns nil if the game does not exist.
func (s *Store) Get(ctx context.Context, gameID string) (*Info, error) {
	key := GamePrefix + gameID
	result, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	createdAt, _ := strconv.ParseInt(result["created_at"], 10, 64)
	return &Info{
		GameID:    gameID,
		Host:      result["host"],
		CreatedAt: createdAt,
	}, nil
}

// AddPlayer records a session as a participant and refreshes the game TTL.
func (s *Store) AddPlayer(ctx context.Context, gameID, sessionID string) error {
	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, GamePrefix+gameID+PlayersSuffix, sessionID)
	pipe.Expire(ctx, GamePrefix+gameID, GameTTL)
	pipe.Expire(ctx, GamePrefix+gameID+PlayersSuffix, GameTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// RemovePlayer drops a session from the participant set.
func (s *Store) RemovePlayer(ctx context.Context, gameID, sessionID string) error {
	return s.rdb.SRem(ctx, GamePrefix+gameID+PlayersSuffix, sessionID).Err()
}

// Players returns the session IDs of all participants in a game.
func (s *Store) Players(ctx context.Context, gameID string) ([]string, error) {
	return s.rdb.SMembers(ctx, GamePrefix+gameID+PlayersSuffix).Result()
}

// IsParticipant reports whether a session belongs to the game.
func (s *Store) IsParticipant(ctx context.Context, gameID, sessionID string) (bool, error) {
	return s.rdb.SIsMember(ctx, GamePrefix+gameID+PlayersSuffix, sessionID).Result()
}

// SaveState stores the latest validated game state snapshot. Callers must
// have run the state through the size guard first; this method only persists.
func (s *Store) SaveState(ctx context.Context, gameID string, state map[string]any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("game: marshal state: %w", err)
	}
	return s.rdb.Set(ctx, StatePrefix+gameID, data, GameTTL).Err()
}

// GetState retrieves the latest game state snapshot. Returns nil if no state
// has been stored for the game.
func (s *Store) GetState(ctx context.Context, gameID string) (map[string]any, error) {
	data, err := s.rdb.Get(ctx, StatePrefix+gameID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("game: unmarshal state: %w", err)
	}
	return state, nil
}

// Delete removes a game, its participant set, and its state snapshot.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, GamePrefix+gameID)
	pipe.Del(ctx, GamePrefix+gameID+PlayersSuffix)
	pipe.Del(ctx, StatePrefix+gameID)
	_, err := pipe.Exec(ctx)
	return err
}
