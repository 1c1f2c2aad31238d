// Package lobby implements the Lobby Coordinator / Game Factory (LC):
// admission control, room assignment, and leader election for which replica
// runs the next game.
package lobby

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/observer/trivia/internal/store"
)

// Shared store keys used for cross-replica election and room assignment.
const (
	NextGameRoomKey   = "next_game_room"
	NextGameServerKey = "next_game_server"
)

// GameStarter is the capability Lobby invokes on the replica that wins
// election for a room's next game. Implemented by whatever constructs and
// runs a Round Engine instance.
type GameStarter interface {
	StartGame(room string)
}

// Lobby is the per-replica Game Factory. It holds no per-room state of its
// own beyond the code generator; all cross-replica state lives in the store.
type Lobby struct {
	store      store.Store
	codes      *CodeGenerator
	serverName string
	minPlayers int
	starter    GameStarter
	logger     *slog.Logger
}

// New constructs a Lobby for one replica.
func New(s store.Store, codes *CodeGenerator, serverName string, minPlayers int, starter GameStarter, logger *slog.Logger) *Lobby {
	return &Lobby{
		store:      s,
		codes:      codes,
		serverName: serverName,
		minPlayers: minPlayers,
		starter:    starter,
		logger:     logger.With("component", "lobby"),
	}
}

// Result is the outcome of register_player, mirroring §4.1's return tuple.
type Result struct {
	Username     string
	Room         string
	RoomAssigned bool
	Others       []string
	MinPlayers   int
	GameStarting bool
	DenialReason string
}

// denialDuplicate is the info payload returned for a username already
// present in the next room's roster.
const denialDuplicate = "This username already exists, please pick a different one"

// RegisterPlayer admits username into the next room, electing this replica
// to run the game if this admission reaches the threshold. See §4.1.
func (l *Lobby) RegisterPlayer(ctx context.Context, username string) (Result, error) {
	if username == "" {
		return Result{DenialReason: "No user name provided, please pick one"}, nil
	}

	room, err := l.nextGameRoom(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve next game room: %w", err)
	}

	isMember, err := l.store.SetIsMember(ctx, room, username)
	if err != nil {
		return Result{}, fmt.Errorf("check roster membership: %w", err)
	}
	if isMember {
		return Result{Username: username, DenialReason: denialDuplicate}, nil
	}

	rosterSize, err := l.store.SetCard(ctx, room)
	if err != nil {
		return Result{}, fmt.Errorf("read roster size: %w", err)
	}

	if int64(l.minPlayers)-rosterSize <= 1 {
		claimed, err := l.store.SetIfAbsent(ctx, NextGameServerKey, l.serverName)
		if err != nil {
			return Result{}, fmt.Errorf("claim next game server: %w", err)
		}
		if claimed {
			l.logger.Info("elected to run next game", "room", room)
			l.starter.StartGame(room)
		}
	}

	others, err := l.store.SetMembers(ctx, room)
	if err != nil {
		return Result{}, fmt.Errorf("read roster: %w", err)
	}

	if err := l.store.SetAdd(ctx, room, username); err != nil {
		return Result{}, fmt.Errorf("add to roster: %w", err)
	}

	_, gameStarting, err := l.store.Get(ctx, NextGameServerKey)
	if err != nil {
		return Result{}, fmt.Errorf("read next game server: %w", err)
	}

	return Result{
		Username:     username,
		Room:         room,
		RoomAssigned: true,
		Others:       others,
		MinPlayers:   l.minPlayers,
		GameStarting: gameStarting,
	}, nil
}

// nextGameRoom returns the current next-room pointer, minting one if absent.
func (l *Lobby) nextGameRoom(ctx context.Context) (string, error) {
	room, ok, err := l.store.Get(ctx, NextGameRoomKey)
	if err != nil {
		return "", err
	}
	if ok {
		return room, nil
	}

	room = "room-" + l.codes.Next()
	if _, err := l.store.SetIfAbsent(ctx, NextGameRoomKey, room); err != nil {
		return "", err
	}
	// Another replica may have won the race to mint the pointer; read back
	// whatever value actually stuck.
	room, _, err = l.store.Get(ctx, NextGameRoomKey)
	if err != nil {
		return "", err
	}
	return room, nil
}

// ClearElectionKeys deletes the next-room and next-server pointers. Intended
// for single-replica development bootstraps only; see the process
// configuration notes on SingleReplicaMode.
func ClearElectionKeys(ctx context.Context, s store.Store) error {
	return s.Delete(ctx, NextGameRoomKey, NextGameServerKey)
}
