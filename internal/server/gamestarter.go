package server

import (
	"context"
	"log/slog"

	"github.com/observer/trivia/internal/bus"
	"github.com/observer/trivia/internal/game"
	"github.com/observer/trivia/internal/questions"
	"github.com/observer/trivia/internal/store"
)

// GameStarter adapts a lobby election win into a running Round Engine. It
// implements lobby.GameStarter. Each room gets its own Question Pool so
// per-room dedup tracking never leaks across games.
type GameStarter struct {
	store      store.Store
	publisher  bus.Publisher
	poolConfig questions.Config
	timers     game.Timers
	logger     *slog.Logger
}

// NewGameStarter builds a GameStarter wired to the shared store and bus.
func NewGameStarter(s store.Store, publisher bus.Publisher, poolConfig questions.Config, timers game.Timers, logger *slog.Logger) *GameStarter {
	return &GameStarter{
		store:      s,
		publisher:  publisher,
		poolConfig: poolConfig,
		timers:     timers,
		logger:     logger.With("component", "game-starter"),
	}
}

// StartGame builds a fresh question pool and round engine for room and runs
// it in its own goroutine for the lifetime of the game.
func (g *GameStarter) StartGame(room string) {
	ctx := context.Background()
	pool := questions.New(ctx, g.store, g.poolConfig, g.logger)
	engine := game.New(room, g.store, g.publisher, pool, g.timers, g.logger)

	g.logger.Info("starting round engine", "room", room)
	go engine.Run(ctx)
}
