package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/playforge/arena/internal/audit"
	"github.com/playforge/arena/internal/config"
	"github.com/playforge/arena/internal/game"
	"github.com/playforge/arena/internal/gameid"
	"github.com/playforge/arena/internal/messaging"
	"github.com/playforge/arena/internal/metrics"
	"github.com/playforge/arena/internal/protocol"
	"github.com/playforge/arena/internal/session"
	"github.com/playforge/arena/internal/validation"
	"github.com/playforge/arena/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	serverConfig := ws.ServerConfig{
		ListenAddr:     cfg.ListenAddr,
		WorkerPoolSize: cfg.WorkerPoolSize,
		MaxConnections: cfg.MaxConnections,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
	}

	// --- NATS ---
	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = cfg.NATSURL
	natsConfig.Name = cfg.ServerName
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// --- Redis ---
	sessionStore, err := session.NewStore(cfg.RedisAddr, cfg.ServerName)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	gameStore := game.NewStore(sessionStore.Client())
	events := game.NewEventBuffer()

	// --- Postgres (optional audit trail) ---
	var auditStore *audit.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to open postgres: %v", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := audit.RunMigrations(db); err != nil {
			log.Fatalf("failed to migrate audit schema: %v", err)
		}
		auditStore = audit.NewStore(db, events)
	}

	validator := validation.New(cfg.Limits)
	schemas := protocol.NewSchemaRegistry()

	log.Printf("Arena game server starting")
	log.Printf("  listen_addr:     %s", cfg.ListenAddr)
	log.Printf("  server_name:     %s", cfg.ServerName)
	log.Printf("  worker_pool:     %d", cfg.WorkerPoolSize)
	log.Printf("  max_connections: %d", cfg.MaxConnections)
	log.Printf("  nats_url:        %s", cfg.NATSURL)
	log.Printf("  redis_addr:      %s", cfg.RedisAddr)
	log.Printf("  metrics_addr:    %s", cfg.MetricsAddr)
	log.Printf("  audit_enabled:   %v", auditStore != nil)

	// --- Metrics endpoint ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	// Declare server early so closures can capture it.
	var server *ws.Server

	// subscribeToGame wires a session into the NATS fan-out for a game.
	// Messages published by the session itself are filtered out.
	subscribeToGame := func(localSID, gameID string) {
		if err := natsClient.SubscribeToGame(gameID, localSID, func(data []byte) {
			var relay messaging.Relay
			if err := json.Unmarshal(data, &relay); err != nil {
				log.Printf("[game-sub] unmarshal error for session=%s: %v", localSID, err)
				return
			}
			if relay.From == localSID {
				return // don't echo to sender
			}
			if err := server.SendMessage(localSID, relay.Payload); err != nil {
				log.Printf("[game-sub] send to %s failed: %v", localSID, err)
			}
		}); err != nil {
			log.Printf("[game-sub] subscribe game=%s for session=%s FAILED: %v", gameID, localSID, err)
		}
	}

	// relay publishes a wire-format server message to a game subject, wrapped
	// so the sender does not receive its own message back.
	relay := func(publish func(string, []byte) error, gameID, fromSID string, payload []byte) {
		data, err := json.Marshal(messaging.Relay{From: fromSID, Payload: payload})
		if err != nil {
			log.Printf("relay marshal for game=%s: %v", gameID, err)
			return
		}
		if err := publish(gameID, data); err != nil {
			log.Printf("relay publish for game=%s: %v", gameID, err)
			return
		}
		metrics.MessagesTotal.WithLabelValues("relayed").Inc()
	}

	// leaveGame removes a session from a game and announces the departure.
	// Shared by the LEAVE_GAME handler and disconnect cleanup. The last
	// participant leaving tears the game down.
	leaveGame := func(ctx context.Context, sid, gameID, playerName string) {
		if err := gameStore.RemovePlayer(ctx, gameID, sid); err != nil {
			log.Printf("leave: remove player session=%s game=%s: %v", sid, gameID, err)
		}
		_ = natsClient.UnsubscribeFromGame(sid)
		if err := sessionStore.ClearGame(ctx, sid); err != nil {
			log.Printf("leave: clear session=%s: %v", sid, err)
		}

		payload, _ := protocol.NewServerMessage(protocol.TypePlayerLeft, protocol.PlayerLeftMsg{
			GameID:     gameID,
			PlayerName: playerName,
		})
		relay(natsClient.PublishGameEvent, gameID, sid, payload)

		players, err := gameStore.Players(ctx, gameID)
		if err == nil && len(players) == 0 {
			if err := gameStore.Delete(ctx, gameID); err != nil {
				log.Printf("leave: delete game=%s: %v", gameID, err)
			}
			events.Remove(gameID)
			metrics.ActiveGames.Dec()
			log.Printf("game %s ended (last player left)", gameID)
		}
	}

	dispatcher := ws.NewDispatcher(nil, validator, schemas)
	if auditStore != nil {
		dispatcher.SetAuditor(auditStore)
	}

	// -----------------------------------------------------------------------
	// CREATE_GAME — create a game session and become its host
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypeCreateGame, func(conn *ws.Connection, msg interface{}) {
		createMsg, ok := msg.(protocol.CreateGameMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		// A session is in at most one game; creating a new one implies
		// leaving the current one, or its membership and fan-out
		// subscription would leak.
		if sess, _ := sessionStore.Get(ctx, sid); sess != nil && sess.GameID != "" {
			leaveGame(ctx, sid, sess.GameID, sess.PlayerName)
		}

		playerName := validation.SanitizePlayerName(createMsg.PlayerName)
		gameID := gameid.New()

		if err := gameStore.Create(ctx, gameID, sid); err != nil {
			log.Printf("create_game: %v", err)
			ws.SendErrorResponse(conn, "could not create game")
			return
		}
		if err := sessionStore.SetGame(ctx, sid, gameID); err != nil {
			log.Printf("create_game: set session game session=%s: %v", sid, err)
		}
		if err := sessionStore.SetPlayerName(ctx, sid, playerName); err != nil {
			log.Printf("create_game: set player name session=%s: %v", sid, err)
		}
		subscribeToGame(sid, gameID)
		metrics.ActiveGames.Inc()

		resp, _ := protocol.NewServerMessage(protocol.TypeGameCreated, protocol.GameCreatedMsg{
			GameID:     gameID,
			PlayerName: playerName,
		})
		conn.WriteMessage(resp)
		log.Printf("create_game session=%s game=%s player=%q", sid, gameID, playerName)
	})

	// -----------------------------------------------------------------------
	// JOIN_GAME — join an existing game by id
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypeJoinGame, func(conn *ws.Connection, msg interface{}) {
		joinMsg, ok := msg.(protocol.JoinGameMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		gameID := validator.SanitizeString(joinMsg.GameID)
		info, err := gameStore.Get(ctx, gameID)
		if err != nil {
			log.Printf("join_game: lookup game=%s: %v", gameID, err)
			ws.SendErrorResponse(conn, "could not join game")
			return
		}
		if info == nil {
			ws.SendErrorResponse(conn, "game not found")
			return
		}

		// Joining implies leaving any current game first. This runs after the
		// lookup so a join to an unknown id leaves the session where it was,
		// and skips a re-join of the same game (membership and subscription
		// updates below are idempotent).
		if sess, _ := sessionStore.Get(ctx, sid); sess != nil && sess.GameID != "" && sess.GameID != gameID {
			leaveGame(ctx, sid, sess.GameID, sess.PlayerName)
		}

		playerName := validation.SanitizePlayerName(joinMsg.PlayerName)
		if err := gameStore.AddPlayer(ctx, gameID, sid); err != nil {
			log.Printf("join_game: add player session=%s game=%s: %v", sid, gameID, err)
			ws.SendErrorResponse(conn, "could not join game")
			return
		}
		if err := sessionStore.SetGame(ctx, sid, gameID); err != nil {
			log.Printf("join_game: set session game session=%s: %v", sid, err)
		}
		if err := sessionStore.SetPlayerName(ctx, sid, playerName); err != nil {
			log.Printf("join_game: set player name session=%s: %v", sid, err)
		}
		subscribeToGame(sid, gameID)

		// Announce the new player to everyone already in the game.
		payload, _ := protocol.NewServerMessage(protocol.TypePlayerJoined, protocol.PlayerJoinedMsg{
			GameID:     gameID,
			PlayerName: playerName,
		})
		relay(natsClient.PublishGameEvent, gameID, sid, payload)

		// Bring the joiner up to date with the latest state snapshot, if any.
		if state, err := gameStore.GetState(ctx, gameID); err == nil && state != nil {
			sync, _ := protocol.NewServerMessage(protocol.TypeStateSync, protocol.StateSyncMsg{
				GameID:    gameID,
				GameState: state,
			})
			conn.WriteMessage(sync)
		}

		log.Printf("join_game session=%s game=%s player=%q", sid, gameID, playerName)
	})

	// -----------------------------------------------------------------------
	// LEAVE_GAME — leave the current game
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypeLeaveGame, func(conn *ws.Connection, msg interface{}) {
		leaveMsg, ok := msg.(protocol.LeaveGameMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		gameID := validator.SanitizeString(leaveMsg.GameID)
		participant, err := gameStore.IsParticipant(ctx, gameID, sid)
		if err != nil || !participant {
			return
		}

		playerName := ""
		if sess, _ := sessionStore.Get(ctx, sid); sess != nil {
			playerName = sess.PlayerName
		}
		leaveGame(ctx, sid, gameID, playerName)
		log.Printf("leave_game session=%s game=%s", sid, gameID)
	})

	// -----------------------------------------------------------------------
	// PLAYER_MOVE — relay a validated move to the other players
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypePlayerMove, func(conn *ws.Connection, msg interface{}) {
		moveMsg, ok := msg.(protocol.PlayerMoveMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		gameID := validator.SanitizeString(moveMsg.GameID)
		participant, err := gameStore.IsParticipant(ctx, gameID, sid)
		if err != nil || !participant {
			ws.SendErrorResponse(conn, "not in this game")
			return
		}

		// Moves are opaque; the hosting client enforces the rules.
		payload, err := json.Marshal(moveMsg)
		if err != nil {
			log.Printf("player_move: marshal session=%s: %v", sid, err)
			return
		}
		relay(natsClient.PublishGameEvent, gameID, sid, payload)
		events.Add(gameID, game.Event{From: sid, Kind: protocol.TypePlayerMove, Ts: time.Now().Unix()})
	})

	// -----------------------------------------------------------------------
	// CHAT — relay an in-game chat message
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypeChat, func(conn *ws.Connection, msg interface{}) {
		chatMsg, ok := msg.(protocol.ChatMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		gameID := validator.SanitizeString(chatMsg.GameID)
		participant, err := gameStore.IsParticipant(ctx, gameID, sid)
		if err != nil || !participant {
			ws.SendErrorResponse(conn, "not in this game")
			return
		}

		payload, _ := protocol.NewServerMessage(protocol.TypeChat, protocol.ServerChatMsg{
			GameID: gameID,
			From:   sid,
			Text:   chatMsg.Text,
			Ts:     time.Now().Unix(),
		})
		relay(natsClient.PublishGameChat, gameID, sid, payload)
		events.Add(gameID, game.Event{From: sid, Kind: protocol.TypeChat, Ts: time.Now().Unix()})
	})

	// -----------------------------------------------------------------------
	// VISUAL_EFFECT — relay a sanitized visual effect
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypeVisualEffect, func(conn *ws.Connection, msg interface{}) {
		effectMsg, ok := msg.(protocol.VisualEffectMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		gameID := validator.SanitizeString(effectMsg.GameID)
		participant, err := gameStore.IsParticipant(ctx, gameID, sid)
		if err != nil || !participant {
			ws.SendErrorResponse(conn, "not in this game")
			return
		}

		payload, _ := protocol.NewServerMessage(protocol.TypeEffect, protocol.EffectMsg{
			GameID: gameID,
			Effect: effectMsg.Effect,
		})
		relay(natsClient.PublishGameEffect, gameID, sid, payload)
		events.Add(gameID, game.Event{From: sid, Kind: protocol.TypeVisualEffect, Ts: time.Now().Unix()})
	})

	// -----------------------------------------------------------------------
	// GAME_STATE — persist the latest snapshot and relay it
	// -----------------------------------------------------------------------
	dispatcher.Register(protocol.TypeGameState, func(conn *ws.Connection, msg interface{}) {
		stateMsg, ok := msg.(protocol.GameStateMsg)
		if !ok {
			return
		}
		sid := conn.ID
		ctx := context.Background()

		gameID := stateMsg.GameID
		participant, err := gameStore.IsParticipant(ctx, gameID, sid)
		if err != nil || !participant {
			ws.SendErrorResponse(conn, "not in this game")
			return
		}

		if err := gameStore.SaveState(ctx, gameID, stateMsg.GameState); err != nil {
			log.Printf("game_state: save session=%s game=%s: %v", sid, gameID, err)
		}

		payload, _ := protocol.NewServerMessage(protocol.TypeStateSync, protocol.StateSyncMsg{
			GameID:    gameID,
			GameState: stateMsg.GameState,
		})
		relay(natsClient.PublishGameState, gameID, sid, payload)
		events.Add(gameID, game.Event{From: sid, Kind: protocol.TypeGameState, Ts: time.Now().Unix()})
	})

	server = ws.NewServer(serverConfig, sessionStore, dispatcher.Dispatch)
	dispatcher.SetServer(server)

	// Handle disconnects: pull the player out of their game so the others
	// are notified even when the client never sent LEAVE_GAME.
	server.SetOnDisconnect(func(connID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		sess, err := sessionStore.Get(ctx, connID)
		if err != nil || sess == nil {
			return
		}
		if sess.GameID != "" {
			leaveGame(ctx, connID, sess.GameID, sess.PlayerName)
		}
		log.Printf("disconnect cleanup for session=%s status=%s", connID, sess.Status)
	})

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, initiating graceful shutdown...", sig)
		natsClient.Close()
		if err := server.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		if err := sessionStore.Close(); err != nil {
			log.Printf("session store close error: %v", err)
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
