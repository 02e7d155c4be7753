package ws

import (
	"log"

	"github.com/playforge/arena/internal/protocol"
)

// MessageWriter is the minimal connection surface the error responder needs.
// *Connection satisfies it.
type MessageWriter interface {
	WriteMessage(data []byte) error
}

// SendErrorResponse serializes {"type":"ERROR","message":...} and transmits
// it over the given connection. It is strictly best-effort and fire-and-
// forget: construction or transmission failures (for example, a connection
// that has already closed) are logged and swallowed, and the caller is never
// told whether delivery succeeded.
func SendErrorResponse(conn MessageWriter, message string) {
	data, err := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
		Message: message,
	})
	if err != nil {
		log.Printf("ws: failed to build error response: %v", err)
		return
	}

	if err := conn.WriteMessage(data); err != nil {
		log.Printf("ws: failed to send error response: %v", err)
	}
}
