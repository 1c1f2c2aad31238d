package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/observer/trivia/internal/bus"
	"github.com/observer/trivia/internal/config"
	"github.com/observer/trivia/internal/game"
	"github.com/observer/trivia/internal/loader"
	"github.com/observer/trivia/internal/lobby"
	"github.com/observer/trivia/internal/questions"
	"github.com/observer/trivia/internal/registry"
	"github.com/observer/trivia/internal/server"
	"github.com/observer/trivia/internal/store"
	"github.com/observer/trivia/internal/wsserver"
)

func main() {
	// Structured logging from the start
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context for initialization
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to the shared store (Redis)
	sharedStore, err := store.NewRedisStore(cfg.RedisURL, logger)
	if err != nil {
		slog.Error("failed to connect to shared store", "error", err)
		os.Exit(1)
	}
	defer sharedStore.Close()
	if err := sharedStore.Health(ctx); err != nil {
		slog.Error("shared store not reachable", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to shared store")

	// Load question catalogs into the shared store. Safe to do on every
	// replica boot: loading re-writes the same hash fields.
	if err := loader.Load(ctx, sharedStore, cfg.QuestionsFile, logger); err != nil {
		slog.Error("failed to load question catalogs", "error", err)
		os.Exit(1)
	}

	codes := lobby.NewCodeGenerator()
	serverInstanceName := cfg.ServerInstanceName
	if serverInstanceName == "" {
		serverInstanceName = "SERVER-" + codes.Next()
	}

	// SingleReplicaMode only makes sense for a lone dev/test instance -
	// clearing the election keys unconditionally in a multi-replica
	// deployment would disrupt another replica's in-flight election.
	if cfg.SingleReplicaMode {
		if err := lobby.ClearElectionKeys(ctx, sharedStore); err != nil {
			slog.Error("failed to clear election keys", "error", err)
			os.Exit(1)
		}
		slog.Info("single replica mode: cleared stale election keys")
	}

	publisher := bus.NewStorePublisher(sharedStore, cfg.BusChannel, logger)

	timers := game.Timers{
		Lobby:           cfg.LobbyTimer,
		Round:           cfg.RoundTimer,
		InterRoundPause: cfg.InterRoundPause,
		PostLobbySettle: cfg.PostLobbySettle,
	}
	poolConfig := questions.DefaultConfig()
	poolConfig.MinQueueLen = cfg.MinQueueLen
	poolConfig.RefillLimit = cfg.RefillLimit

	starter := server.NewGameStarter(sharedStore, publisher, poolConfig, timers, logger)
	lobbyCoordinator := lobby.New(sharedStore, codes, serverInstanceName, cfg.MinPlayers, starter, logger)
	sessionLimiter := lobby.NewSessionLimiter(60)
	userRegistry := registry.New(publisher, sharedStore, logger)

	// WebSocket hub: holds this replica's locally-connected clients and
	// implements bus.RoomBroadcaster so the message bus can deliver to them.
	hub := wsserver.NewHub(lobbyCoordinator, userRegistry, sessionLimiter, sharedStore, logger)
	go hub.Run(context.Background())

	messageBus := bus.New(sharedStore, cfg.BusChannel, hub, logger)
	go func() {
		if err := messageBus.Run(context.Background()); err != nil {
			slog.Error("message bus stopped", "error", err)
		}
	}()

	wsHandler := wsserver.NewHandler(hub, logger)

	// Determine static files directory (relative to working dir in dev,
	// configurable in prod).
	staticDir := "../frontend"
	if cfg.StaticDir != "" {
		staticDir = cfg.StaticDir
	}

	deps := &server.Dependencies{
		Store:     sharedStore,
		RoomStats: hub,
		WSHandler: wsHandler,
		StaticDir: staticDir,
		Logger:    logger,
	}

	srv := server.New(cfg, deps)

	// Graceful shutdown setup
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr, "instance", serverInstanceName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-shutdownCtx.Done()
	slog.Info("shutting down gracefully...")

	// Give active connections 10 seconds to finish
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer timeoutCancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
