package protocol

import (
	"encoding/json"
	"testing"
)

// ---------------------------------------------------------------------------
// Test: Parsing a valid JOIN_GAME message
// ---------------------------------------------------------------------------

func TestParseClientMessage_JoinGame(t *testing.T) {
	input := []byte(`{"type":"JOIN_GAME","gameId":"M3K9F2_A1B2C3","playerName":"Alice"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeJoinGame {
		t.Fatalf("expected type %q, got %q", TypeJoinGame, msgType)
	}

	jm, ok := msg.(JoinGameMsg)
	if !ok {
		t.Fatalf("expected JoinGameMsg, got %T", msg)
	}
	if jm.GameID != "M3K9F2_A1B2C3" {
		t.Errorf("expected gameId %q, got %q", "M3K9F2_A1B2C3", jm.GameID)
	}
	if jm.PlayerName != "Alice" {
		t.Errorf("expected playerName %q, got %q", "Alice", jm.PlayerName)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a PLAYER_MOVE message with a nested move payload
// ---------------------------------------------------------------------------

func TestParseClientMessage_PlayerMove(t *testing.T) {
	input := []byte(`{"type":"PLAYER_MOVE","gameId":"g1","playerId":2,"move":{"direction":"north","steps":3}}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypePlayerMove {
		t.Fatalf("expected type %q, got %q", TypePlayerMove, msgType)
	}

	pm, ok := msg.(PlayerMoveMsg)
	if !ok {
		t.Fatalf("expected PlayerMoveMsg, got %T", msg)
	}
	if pm.PlayerID != 2 {
		t.Errorf("expected playerId 2, got %d", pm.PlayerID)
	}
	if pm.Move["direction"] != "north" {
		t.Errorf("expected move direction %q, got %v", "north", pm.Move["direction"])
	}
}

// ---------------------------------------------------------------------------
// Test: Creating an ERROR server message
// ---------------------------------------------------------------------------

func TestNewServerMessage_Error(t *testing.T) {
	data, err := NewServerMessage(TypeError, ErrorMsg{Message: "message too large"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}

	if result["type"] != TypeError {
		t.Errorf("expected type %q, got %v", TypeError, result["type"])
	}
	if result["message"] != "message too large" {
		t.Errorf("expected message %q, got %v", "message too large", result["message"])
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing an unknown message type returns an error
// ---------------------------------------------------------------------------

func TestParseClientMessage_UnknownType(t *testing.T) {
	input := []byte(`{"type":"TELEPORT","data":"something"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err == nil {
		t.Fatal("expected an error for unknown message type, got nil")
	}
	if msg != nil {
		t.Errorf("expected nil message for unknown type, got %v", msg)
	}
	if msgType != "TELEPORT" {
		t.Errorf("expected returned type %q, got %q", "TELEPORT", msgType)
	}
}

// ---------------------------------------------------------------------------
// Test: Envelope UnmarshalJSON edge cases
// ---------------------------------------------------------------------------

func TestEnvelope_MissingType(t *testing.T) {
	input := []byte(`{"gameId":"no type field"}`)
	var env Envelope
	if err := json.Unmarshal(input, &env); err == nil {
		t.Fatal("expected error for missing type field, got nil")
	}
}

func TestEnvelope_InvalidJSON(t *testing.T) {
	input := []byte(`{invalid json}`)
	var env Envelope
	if err := json.Unmarshal(input, &env); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing all client message types succeeds
// ---------------------------------------------------------------------------

func TestParseClientMessage_AllTypes(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantType string
	}{
		{"create_game", `{"type":"CREATE_GAME","playerName":"Bo"}`, TypeCreateGame},
		{"join_game", `{"type":"JOIN_GAME","gameId":"g1","playerName":"Bo"}`, TypeJoinGame},
		{"leave_game", `{"type":"LEAVE_GAME","gameId":"g1"}`, TypeLeaveGame},
		{"player_move", `{"type":"PLAYER_MOVE","gameId":"g1","playerId":0,"move":{}}`, TypePlayerMove},
		{"chat", `{"type":"CHAT","gameId":"g1","text":"hi"}`, TypeChat},
		{"visual_effect", `{"type":"VISUAL_EFFECT","gameId":"g1","effect":{"kind":"flash"}}`, TypeVisualEffect},
		{"game_state", `{"type":"GAME_STATE","gameId":"g1","gameState":{"round":1}}`, TypeGameState},
		{"ping", `{"type":"PING"}`, TypePing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgType, msg, err := ParseClientMessage([]byte(tc.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msgType != tc.wantType {
				t.Errorf("expected type %q, got %q", tc.wantType, msgType)
			}
			if msg == nil {
				t.Error("expected non-nil message")
			}
		})
	}
}
