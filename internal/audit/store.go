// Package audit provides PostgreSQL-backed storage for rejected inbound
// messages. Each record captures the offending session, the declared message
// type, the failure reason, a truncated copy of the raw payload, and the last
// few relayed events from the game (for offline review of abuse patterns).
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/playforge/arena/internal/game"
)

// MaxRawBytes bounds how much of the raw payload is persisted per record.
// Oversized messages are the most common rejection, so the stored copy is a
// prefix, not the full message.
const MaxRawBytes = 4096

// validReasons is the set of allowed reason values, matching the CHECK
// constraint on the rejected_messages table.
var validReasons = map[string]bool{
	"size_limit":       true,
	"parse":            true,
	"structural":       true,
	"schema":           true,
	"unsupported_type": true,
}

// Store manages rejected-message records in PostgreSQL.
type Store struct {
	db     *sql.DB
	events *game.EventBuffer // optional; nil disables event snapshots
}

// Record represents a single rejected message to be persisted.
type Record struct {
	SessionID string
	GameID    string
	MsgType   string
	Reason    string
	Detail    string
	Raw       []byte
	Events    []game.Event // recent relayed events from the same game
}

// NewStore creates a new audit store backed by the given database handle.
// The event buffer may be nil if game snapshots are not wanted.
func NewStore(db *sql.DB, events *game.EventBuffer) *Store {
	return &Store{db: db, events: events}
}

// Create inserts a rejected-message record into PostgreSQL.
// Events are marshalled to JSONB. The reason is validated against the
// allowed set before insertion.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	if !validReasons[rec.Reason] {
		return fmt.Errorf("audit: invalid reason %q", rec.Reason)
	}

	var eventsJSON []byte
	if len(rec.Events) > 0 {
		var err error
		eventsJSON, err = json.Marshal(rec.Events)
		if err != nil {
			return fmt.Errorf("audit: marshal events: %w", err)
		}
	}

	raw := rec.Raw
	if len(raw) > MaxRawBytes {
		raw = raw[:MaxRawBytes]
	}

	const query = `
		INSERT INTO rejected_messages (session_id, game_id, msg_type, reason, detail, raw_message, events)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		rec.SessionID,
		rec.GameID,
		rec.MsgType,
		rec.Reason,
		rec.Detail,
		raw,
		eventsJSON,
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// RecordRejected persists a rejected message from the dispatch path. The raw
// payload may be arbitrary bytes; if it parses as JSON the gameId field is
// extracted so the record can carry a snapshot of recent game events. Errors
// are logged rather than returned so a slow or absent database never blocks
// message dispatch.
func (s *Store) RecordRejected(sessionID, msgType, reason, detail string, raw []byte) {
	rec := &Record{
		SessionID: sessionID,
		MsgType:   msgType,
		Reason:    reason,
		Detail:    detail,
		Raw:       raw,
	}

	rec.GameID = ExtractGameID(raw)
	if rec.GameID != "" && s.events != nil {
		rec.Events = s.events.Get(rec.GameID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Create(ctx, rec); err != nil {
		log.Printf("audit: record rejected message: %v", err)
	}
}

// CountRecent returns the number of rejected messages from a session within
// the given time window. Useful for spotting clients that repeatedly send
// malformed traffic.
func (s *Store) CountRecent(ctx context.Context, sessionID string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM rejected_messages
		WHERE session_id = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, sessionID, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("audit: count recent: %w", err)
	}
	return count, nil
}

// ExtractGameID pulls the gameId field out of a raw payload. Returns the
// empty string if the payload is not JSON or carries no string gameId; raw
// bytes here have already failed validation, so nothing is assumed about
// their shape.
func ExtractGameID(raw []byte) string {
	var probe struct {
		GameID string `json:"gameId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.GameID
}
