package game

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

// newTestStore creates a Store connected to a local Redis instance and cleans
// up test keys on exit. Tests that call this helper require a running Redis
// on localhost:6379 and skip otherwise.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	cleanup := func() {
		for _, pattern := range []string{GamePrefix + "test_*", StatePrefix + "test_*"} {
			iter := client.Scan(ctx, 0, pattern, 100).Iterator()
			for iter.Next(ctx) {
				client.Del(ctx, iter.Val())
			}
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})
	return NewStore(client)
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "test_g1", "host-session"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	info, err := store.Get(ctx, "test_g1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if info == nil {
		t.Fatal("expected game info, got nil")
	}
	if info.Host != "host-session" {
		t.Errorf("expected host %q, got %q", "host-session", info.Host)
	}

	missing, err := store.Get(ctx, "test_nope")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing game, got %+v", missing)
	}
}

func TestStore_Players(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "test_g2", "host"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.AddPlayer(ctx, "test_g2", "p2"); err != nil {
		t.Fatalf("AddPlayer() error: %v", err)
	}

	players, err := store.Players(ctx, "test_g2")
	if err != nil {
		t.Fatalf("Players() error: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d: %v", len(players), players)
	}

	ok, err := store.IsParticipant(ctx, "test_g2", "p2")
	if err != nil || !ok {
		t.Errorf("expected p2 to be a participant (ok=%v err=%v)", ok, err)
	}

	if err := store.RemovePlayer(ctx, "test_g2", "p2"); err != nil {
		t.Fatalf("RemovePlayer() error: %v", err)
	}
	ok, _ = store.IsParticipant(ctx, "test_g2", "p2")
	if ok {
		t.Error("p2 should no longer be a participant")
	}
}

func TestStore_StateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := map[string]any{"round": float64(3), "board": []any{"x", "o"}}
	if err := store.SaveState(ctx, "test_g3", state); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}

	got, err := store.GetState(ctx, "test_g3")
	if err != nil {
		t.Fatalf("GetState() error: %v", err)
	}
	if got == nil {
		t.Fatal("expected state, got nil")
	}
	if got["round"] != float64(3) {
		t.Errorf("expected round 3, got %v", got["round"])
	}

	none, err := store.GetState(ctx, "test_nostate")
	if err != nil {
		t.Fatalf("GetState() error: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil state for unknown game, got %v", none)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "test_g4", "host"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.SaveState(ctx, "test_g4", map[string]any{"a": float64(1)}); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}
	if err := store.Delete(ctx, "test_g4"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	info, _ := store.Get(ctx, "test_g4")
	if info != nil {
		t.Error("expected game to be gone after Delete")
	}
	state, _ := store.GetState(ctx, "test_g4")
	if state != nil {
		t.Error("expected state to be gone after Delete")
	}
}
