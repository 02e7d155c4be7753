package ws

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/gobwas/ws/wsutil"

	"github.com/playforge/arena/internal/protocol"
	"github.com/playforge/arena/internal/validation"
)

// newTestDispatcher builds a dispatcher with production schemas and the given
// limits, plus a piped connection whose client side is drained by a
// background reader that forwards decoded frames.
func newTestDispatcher(t *testing.T, limits validation.Limits) (*Dispatcher, *Connection, <-chan []byte) {
	t.Helper()

	d := NewDispatcher(nil, validation.New(limits), protocol.NewSchemaRegistry())

	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	conn := &Connection{ID: "test-session", Conn: server}

	frames := make(chan []byte, 16)
	go func() {
		for {
			data, _, err := wsutil.ReadServerData(client)
			if err != nil {
				close(frames)
				return
			}
			frames <- data
		}
	}()

	return d, conn, frames
}

type recordingAuditor struct {
	reasons []string
}

func (a *recordingAuditor) RecordRejected(sessionID, msgType, reason, detail string, raw []byte) {
	a.reasons = append(a.reasons, reason)
}

// ---------------------------------------------------------------------------
// Test: a valid message reaches its handler
// ---------------------------------------------------------------------------

func TestDispatch_ValidChat(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, validation.DefaultLimits())

	var got interface{}
	d.Register(protocol.TypeChat, func(c *Connection, msg interface{}) {
		got = msg
	})

	d.Dispatch(conn, []byte(`{"type":"CHAT","gameId":"g1","text":"hello"}`))

	cm, ok := got.(protocol.ChatMsg)
	if !ok {
		t.Fatalf("handler not called with ChatMsg, got %T", got)
	}
	if cm.Text != "hello" {
		t.Errorf("expected text %q, got %q", "hello", cm.Text)
	}
}

// ---------------------------------------------------------------------------
// Test: oversized messages are rejected before parsing
// ---------------------------------------------------------------------------

func TestDispatch_OversizedMessage(t *testing.T) {
	limits := validation.DefaultLimits()
	limits.MaxMessageBytes = 16
	d, conn, frames := newTestDispatcher(t, limits)

	auditor := &recordingAuditor{}
	d.SetAuditor(auditor)

	called := false
	d.Register(protocol.TypeChat, func(c *Connection, msg interface{}) {
		called = true
	})

	d.Dispatch(conn, []byte(`{"type":"CHAT","gameId":"g1","text":"this is too long"}`))

	if called {
		t.Error("handler must not run for an oversized message")
	}
	if len(auditor.reasons) != 1 || auditor.reasons[0] != ReasonSizeLimit {
		t.Errorf("expected one %q audit record, got %v", ReasonSizeLimit, auditor.reasons)
	}

	assertErrorFrame(t, <-frames)
}

// ---------------------------------------------------------------------------
// Test: malformed and structurally invalid messages
// ---------------------------------------------------------------------------

func TestDispatch_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"malformed_json", `{not json`},
		{"not_an_object", `"just a string"`},
		{"missing_type", `{"gameId":"g1"}`},
		{"numeric_type", `{"type":7}`},
		{"unknown_type", `{"type":"TELEPORT"}`},
		{"schema_failure", `{"type":"JOIN_GAME"}`},
		{"effect_not_object", `{"type":"VISUAL_EFFECT","gameId":"g1","effect":"flash"}`},
		{"state_missing", `{"type":"GAME_STATE","gameId":"g1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, conn, frames := newTestDispatcher(t, validation.DefaultLimits())

			called := false
			for _, mt := range []string{protocol.TypeJoinGame, protocol.TypeVisualEffect, protocol.TypeGameState} {
				d.Register(mt, func(c *Connection, msg interface{}) { called = true })
			}

			d.Dispatch(conn, []byte(tc.input))

			if called {
				t.Error("handler must not run for an invalid message")
			}
			assertErrorFrame(t, <-frames)
		})
	}
}

// ---------------------------------------------------------------------------
// Test: composite validators pass well-formed effect and state messages
// ---------------------------------------------------------------------------

func TestDispatch_CompositeKinds(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, validation.DefaultLimits())

	var effects, states int
	d.Register(protocol.TypeVisualEffect, func(c *Connection, msg interface{}) { effects++ })
	d.Register(protocol.TypeGameState, func(c *Connection, msg interface{}) { states++ })

	d.Dispatch(conn, []byte(`{"type":"VISUAL_EFFECT","gameId":"g1","effect":{"kind":"flash"}}`))
	d.Dispatch(conn, []byte(`{"type":"GAME_STATE","gameId":"g1","gameState":{"round":2}}`))

	if effects != 1 {
		t.Errorf("expected 1 effect dispatch, got %d", effects)
	}
	if states != 1 {
		t.Errorf("expected 1 state dispatch, got %d", states)
	}
}

// ---------------------------------------------------------------------------
// Test: built-in ping handling
// ---------------------------------------------------------------------------

func TestDispatch_Ping(t *testing.T) {
	d, conn, frames := newTestDispatcher(t, validation.DefaultLimits())

	before := conn.LastPing
	d.Dispatch(conn, []byte(`{"type":"PING"}`))

	if !conn.LastPing.After(before) {
		t.Error("expected LastPing to be refreshed")
	}

	data := <-frames
	var msg protocol.PongMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal pong: %v", err)
	}
	if msg.Type != protocol.TypePong {
		t.Errorf("expected %q response, got %q", protocol.TypePong, msg.Type)
	}
}

func assertErrorFrame(t *testing.T, data []byte) {
	t.Helper()
	var msg protocol.ErrorMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal error frame: %v", err)
	}
	if msg.Type != protocol.TypeError {
		t.Fatalf("expected %q frame, got %q", protocol.TypeError, msg.Type)
	}
	if msg.Message == "" {
		t.Error("error frame must carry a message")
	}
}
