package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/playforge/arena/internal/metrics"
	"github.com/playforge/arena/internal/protocol"
	"github.com/playforge/arena/internal/validation"
)

// Validation failure reasons used for metrics labels and audit records.
const (
	ReasonSizeLimit   = "size_limit"
	ReasonParse       = "parse"
	ReasonStructural  = "structural"
	ReasonSchema      = "schema"
	ReasonUnsupported = "unsupported_type"
)

// MessageHandler is the callback signature for handling a validated, parsed
// client message. The msg parameter is the concrete struct returned by
// protocol.ParseClientMessage (e.g., protocol.JoinGameMsg).
type MessageHandler func(conn *Connection, msg interface{})

// Auditor records rejected inbound messages for offline review. Implemented
// by the audit store; a nil Auditor disables recording.
type Auditor interface {
	RecordRejected(sessionID, msgType, reason, detail string, raw []byte)
}

// Dispatcher routes incoming WebSocket messages to registered handlers based
// on the message type. Every message runs through the full validation
// pipeline first: raw size guard, JSON decode, structural check, then a
// schema or composite check for its declared type. Messages that fail any
// stage are discarded after a best-effort error response; no handler ever
// sees an unvalidated payload.
type Dispatcher struct {
	handlers  map[string]MessageHandler
	server    *Server
	validator *validation.Validator
	schemas   *validation.Registry
	auditor   Auditor
}

// NewDispatcher creates a Dispatcher bound to the given validator and schema
// registry. The server reference may be nil at construction time and set
// later with SetServer (NewServer requires the Dispatch callback first).
func NewDispatcher(server *Server, validator *validation.Validator, schemas *validation.Registry) *Dispatcher {
	return &Dispatcher{
		handlers:  make(map[string]MessageHandler),
		server:    server,
		validator: validator,
		schemas:   schemas,
	}
}

// SetServer assigns the Server reference on the dispatcher.
func (d *Dispatcher) SetServer(server *Server) {
	d.server = server
}

// SetAuditor assigns the rejected-message auditor. Optional.
func (d *Dispatcher) SetAuditor(a Auditor) {
	d.auditor = a
}

// Register associates a MessageHandler with a message type. If a handler was
// already registered for the given type, it is silently replaced.
func (d *Dispatcher) Register(msgType string, handler MessageHandler) {
	d.handlers[msgType] = handler
}

// Dispatch is the onMessage callback implementation. It validates the raw
// bytes, handles PING internally, and routes all other types to the
// registered handler.
func (d *Dispatcher) Dispatch(conn *Connection, data []byte) {
	timer := prometheus.NewTimer(metrics.MessageLatency)
	defer timer.ObserveDuration()
	metrics.MessagesTotal.WithLabelValues("received").Inc()

	// Stage 1: raw size guard, before any deserialization.
	if !d.validator.ValidateMessageSize(data) {
		d.reject(conn, data, "", ReasonSizeLimit, "message exceeds size limit")
		return
	}

	// Stage 2: decode into a generic keyed structure.
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		d.reject(conn, data, "", ReasonParse, "invalid message format")
		return
	}

	// Stage 3: structural check (keyed structure with string type).
	if res := validation.ValidateMessageStructure(payload); !res.Valid {
		d.reject(conn, data, "", ReasonStructural, res.ErrorMessage)
		return
	}
	msgType := payload["type"].(string)

	// Built-in ping handler — respond immediately without requiring registration.
	if msgType == protocol.TypePing {
		d.sendPong(conn)
		return
	}

	// Stage 4: kind-specific validation. VISUAL_EFFECT and GAME_STATE use
	// composite validators; everything else goes through the schema registry.
	switch msgType {
	case protocol.TypeVisualEffect:
		if res := d.validator.ValidateVisualEffectMessage(payload, "effect"); !res.Valid {
			d.reject(conn, data, msgType, ReasonStructural, res.ErrorMessage)
			return
		}
	case protocol.TypeGameState:
		if res := d.validator.ValidateGameStateMessage(payload); !res.Valid {
			d.reject(conn, data, msgType, ReasonStructural, res.ErrorMessage)
			return
		}
		if !d.validator.ValidateGameStateSize(payload["gameState"]) {
			d.reject(conn, data, msgType, ReasonSizeLimit, "game state exceeds size limit")
			return
		}
	default:
		if schema, ok := d.schemas.Get(msgType); ok {
			if res := validation.ValidateAgainstSchema(payload, schema); !res.Valid {
				d.reject(conn, data, msgType, ReasonSchema, res.ErrorMessage)
				return
			}
		}
	}

	handler, ok := d.handlers[msgType]
	if !ok {
		d.reject(conn, data, msgType, ReasonUnsupported, "unsupported message type")
		return
	}

	// Stage 5: typed decode for the handler.
	_, msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		d.reject(conn, data, msgType, ReasonParse, "invalid message format")
		return
	}

	handler(conn, msg)
}

// reject discards an invalid message: it logs, counts, audits, and sends a
// best-effort error response. The original message never reaches a handler.
func (d *Dispatcher) reject(conn *Connection, raw []byte, msgType, reason, message string) {
	log.Printf("ws: rejected message session=%s type=%q reason=%s: %s", conn.ID, msgType, reason, message)
	metrics.MessagesTotal.WithLabelValues("rejected").Inc()
	metrics.ValidationFailures.WithLabelValues(reason).Inc()

	if d.auditor != nil {
		d.auditor.RecordRejected(conn.ID, msgType, reason, message, raw)
	}

	SendErrorResponse(conn, message)
}

// sendPong responds to a client ping with a pong message and updates the
// connection's LastPing timestamp to reflect the most recent keepalive.
func (d *Dispatcher) sendPong(conn *Connection) {
	conn.LastPing = time.Now()

	data, err := protocol.NewServerMessage(protocol.TypePong, protocol.PongMsg{})
	if err != nil {
		log.Printf("ws: failed to build pong message session=%s: %v", conn.ID, err)
		return
	}

	if err := conn.WriteMessage(data); err != nil {
		log.Printf("ws: failed to send pong message session=%s: %v", conn.ID, err)
	}
}
