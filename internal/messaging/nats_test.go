package messaging

import (
	"testing"
	"time"
)

// newTestClient connects to a local NATS instance. Tests that call this
// helper require a running NATS server on localhost:4222 and skip otherwise.
func newTestClient(t *testing.T) *NATSClient {
	t.Helper()
	cfg := DefaultNATSConfig()
	cfg.Name = "arena-test"
	cfg.MaxReconnects = 0
	client, err := NewNATSClient(cfg)
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestSubscribeToGame_ReplacesPreviousSubscription(t *testing.T) {
	client := newTestClient(t)

	oldGame := make(chan []byte, 4)
	if err := client.SubscribeToGame("test_g1", "sess1", func(data []byte) { oldGame <- data }); err != nil {
		t.Fatalf("subscribe g1: %v", err)
	}

	// Following a second game must retire the first subscription, not
	// orphan it.
	newGame := make(chan []byte, 4)
	if err := client.SubscribeToGame("test_g2", "sess1", func(data []byte) { newGame <- data }); err != nil {
		t.Fatalf("subscribe g2: %v", err)
	}

	if err := client.PublishGameChat("test_g1", []byte("old")); err != nil {
		t.Fatalf("publish g1: %v", err)
	}
	if err := client.PublishGameChat("test_g2", []byte("new")); err != nil {
		t.Fatalf("publish g2: %v", err)
	}
	if err := client.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	select {
	case msg := <-newGame:
		if string(msg) != "new" {
			t.Fatalf("unexpected message on current game: %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery on the current game subscription")
	}

	select {
	case msg := <-oldGame:
		t.Fatalf("previous subscription still delivering: %q", msg)
	case <-time.After(100 * time.Millisecond):
	}

	client.mu.Lock()
	n := len(client.subs)
	client.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 tracked subscription, got %d", n)
	}
}

func TestUnsubscribeFromGame(t *testing.T) {
	client := newTestClient(t)

	if err := client.SubscribeToGame("test_g3", "sess2", func([]byte) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := client.UnsubscribeFromGame("sess2"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := client.UnsubscribeFromGame("sess2"); err == nil {
		t.Fatal("expected error for missing subscription")
	}
}
