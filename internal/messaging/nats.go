// Package messaging provides a NATS client wrapper for fanning validated
// game traffic out across server instances. It handles connection lifecycle,
// subject-based subscriptions, and convenience methods for the per-game
// state, effect, and chat channels.
package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns. Each is suffixed with the game ID so that servers
// hosting participants of the same game receive each other's relayed traffic.
const (
	SubjectGameState  = "game.state"  // + .<game_id>
	SubjectGameEffect = "game.effect" // + .<game_id>
	SubjectGameChat   = "game.chat"   // + .<game_id>
	SubjectGameEvent  = "game.event"  // + .<game_id> (joins, leaves, moves)
)

// Relay wraps a wire-format server message published to a game subject.
// From carries the sender's session ID so receiving servers can avoid
// echoing a message back to its origin.
type Relay struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "arena",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeToGame subscribes a session to all traffic for a game: state
// syncs, effects, chat, and lifecycle events. Subscriptions are keyed by
// sessionID so multiple players on the same server can follow the same game
// without overwriting each other.
func (c *NATSClient) SubscribeToGame(gameID, sessionID string, handler func(data []byte)) error {
	wildcard := "game.*." + gameID
	key := "gamesub:" + sessionID

	// A session follows at most one game. Drop any previous subscription
	// under the same key first, otherwise it would keep delivering the old
	// game's traffic with no remaining reference to unsubscribe it.
	c.mu.Lock()
	if prev, ok := c.subs[key]; ok {
		delete(c.subs, key)
		if err := prev.Unsubscribe(); err != nil {
			log.Printf("[nats] unsubscribe stale %s: %v", key, err)
		}
	}
	c.mu.Unlock()

	sub, err := c.conn.Subscribe(wildcard, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", wildcard, err)
	}

	c.mu.Lock()
	c.subs[key] = sub
	c.mu.Unlock()
	return nil
}

// UnsubscribeFromGame unsubscribes a session's game subscription.
func (c *NATSClient) UnsubscribeFromGame(sessionID string) error {
	key := "gamesub:" + sessionID
	return c.unsubscribe(key)
}

// PublishGameState publishes a validated state sync to the game's state subject.
func (c *NATSClient) PublishGameState(gameID string, data []byte) error {
	return c.Publish(SubjectGameState+"."+gameID, data)
}

// PublishGameEffect publishes a sanitized visual effect to the game's effect subject.
func (c *NATSClient) PublishGameEffect(gameID string, data []byte) error {
	return c.Publish(SubjectGameEffect+"."+gameID, data)
}

// PublishGameChat publishes a validated chat message to the game's chat subject.
func (c *NATSClient) PublishGameChat(gameID string, data []byte) error {
	return c.Publish(SubjectGameChat+"."+gameID, data)
}

// PublishGameEvent publishes a join or leave notification for a game.
func (c *NATSClient) PublishGameEvent(gameID string, data []byte) error {
	return c.Publish(SubjectGameEvent+"."+gameID, data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}

// unsubscribe removes and unsubscribes from a specific subject.
func (c *NATSClient) unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("nats: no subscription for subject %s", subject)
	}
	delete(c.subs, subject)
	c.mu.Unlock()

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", subject, err)
	}
	return nil
}
