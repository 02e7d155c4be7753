// Package protocol defines the WebSocket message types and structures used
// for communication between game clients and the server. All messages are
// serialized as JSON and follow a consistent envelope format with an
// upper-case type discriminator.
package protocol

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Message type constants
// ---------------------------------------------------------------------------

// Client -> Server message types.
const (
	TypeCreateGame   = "CREATE_GAME"
	TypeJoinGame     = "JOIN_GAME"
	TypeLeaveGame    = "LEAVE_GAME"
	TypePlayerMove   = "PLAYER_MOVE"
	TypeChat         = "CHAT"
	TypeVisualEffect = "VISUAL_EFFECT"
	TypeGameState    = "GAME_STATE"
	TypePing         = "PING"
)

// Server -> Client message types.
const (
	TypeSessionCreated = "SESSION_CREATED"
	TypeGameCreated    = "GAME_CREATED"
	TypePlayerJoined   = "PLAYER_JOINED"
	TypePlayerLeft     = "PLAYER_LEFT"
	TypeStateSync      = "STATE_SYNC"
	TypeEffect         = "EFFECT"
	TypeError          = "ERROR"
	TypePong           = "PONG"
)

// ---------------------------------------------------------------------------
// Envelope — used for initial JSON parsing to extract the type discriminator.
// ---------------------------------------------------------------------------

// Envelope holds the message type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of the
// payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	// Capture the full raw message for deferred parsing.
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Client -> Server message structs
// ---------------------------------------------------------------------------

// CreateGameMsg is sent by the client to create a new game session.
type CreateGameMsg struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName"`
}

// JoinGameMsg is sent by the client to join an existing game by its id.
type JoinGameMsg struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// LeaveGameMsg is sent by the client to leave the game it is part of.
type LeaveGameMsg struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

// PlayerMoveMsg carries one player input within a game. The move payload is
// opaque to the server; game rules are enforced client-side by the host.
type PlayerMoveMsg struct {
	Type     string         `json:"type"`
	GameID   string         `json:"gameId"`
	PlayerID int            `json:"playerId"`
	Move     map[string]any `json:"move"`
}

// ChatMsg is an in-game text message sent by the client.
type ChatMsg struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Text   string `json:"text"`
}

// VisualEffectMsg asks the server to broadcast a visual effect to the other
// players in the game.
type VisualEffectMsg struct {
	Type   string         `json:"type"`
	GameID string         `json:"gameId"`
	Effect map[string]any `json:"effect"`
}

// GameStateMsg carries a full game state snapshot from the hosting client.
type GameStateMsg struct {
	Type      string         `json:"type"`
	GameID    string         `json:"gameId"`
	GameState map[string]any `json:"gameState"`
}

// PingMsg is a client-initiated keepalive ping.
type PingMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Server -> Client message structs
// ---------------------------------------------------------------------------

// SessionCreatedMsg is sent by the server when a new session is established.
type SessionCreatedMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// GameCreatedMsg is sent by the server when a game has been created. GameID
// is the freshly generated identifier the creator shares with other players.
type GameCreatedMsg struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// PlayerJoinedMsg announces a new participant to the other players in a game.
type PlayerJoinedMsg struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// PlayerLeftMsg announces that a participant left the game.
type PlayerLeftMsg struct {
	Type       string `json:"type"`
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// StateSyncMsg relays a validated game state snapshot to the other players.
type StateSyncMsg struct {
	Type      string         `json:"type"`
	GameID    string         `json:"gameId"`
	GameState map[string]any `json:"gameState"`
}

// EffectMsg relays a validated visual effect to the other players.
type EffectMsg struct {
	Type   string         `json:"type"`
	GameID string         `json:"gameId"`
	Effect map[string]any `json:"effect"`
}

// ServerChatMsg is a chat message relayed to the other players in a game.
type ServerChatMsg struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	From   string `json:"from"`
	Text   string `json:"text"`
	Ts     int64  `json:"ts"`
}

// ErrorMsg is sent by the server when an inbound message is rejected. The
// wire shape is exactly {"type":"ERROR","message":...}.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongMsg is the server's response to a client ping.
type PongMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseClientMessage parses raw WebSocket bytes into a typed client message.
// It returns the message type string, the decoded struct, and any error
// encountered during parsing. An error is returned for unknown or
// server-only message types.
func ParseClientMessage(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse message: %w", err)
	}

	var (
		msg interface{}
		err error
	)

	switch env.Type {
	case TypeCreateGame:
		var m CreateGameMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeJoinGame:
		var m JoinGameMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeLeaveGame:
		var m LeaveGameMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePlayerMove:
		var m PlayerMoveMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeChat:
		var m ChatMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeVisualEffect:
		var m VisualEffectMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeGameState:
		var m GameStateMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePing:
		var m PingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown client message type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// NewServerMessage creates a JSON-encoded byte slice for a server message.
// The msgType is injected into the payload under the "type" key. The payload
// should be one of the server message structs; this function marshals it to
// JSON, injects the type field, and returns the final bytes.
func NewServerMessage(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal server message: %w", err)
	}
	return out, nil
}
