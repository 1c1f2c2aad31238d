// Package game implements the Round Engine (RE): the per-game state machine
// driving question selection, timed answer collection, elimination,
// statistics, and termination. One Engine runs one game on exactly one
// replica.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/observer/trivia/internal/bus"
	"github.com/observer/trivia/internal/lobby"
	"github.com/observer/trivia/internal/questions"
	"github.com/observer/trivia/internal/store"
)

// Timers bundles the wall-clock durations that drive a game's phases.
type Timers struct {
	Lobby           time.Duration
	Round           time.Duration
	InterRoundPause time.Duration
	PostLobbySettle time.Duration
}

// Engine runs the lobby-hold/round/tally state machine for one room.
type Engine struct {
	room      string
	store     store.Store
	publisher bus.Publisher
	pool      Pool
	timers    Timers
	logger    *slog.Logger
}

// Pool is the subset of questions.Pool the engine needs, so tests can stub it.
type Pool interface {
	Pop(ctx context.Context) (questions.PlayableQuestion, error)
}

// New constructs an Engine for room. pool should already be warming its
// initial refill in the background.
func New(room string, s store.Store, publisher bus.Publisher, pool Pool, timers Timers, logger *slog.Logger) *Engine {
	return &Engine{
		room:      room,
		store:     s,
		publisher: publisher,
		pool:      pool,
		timers:    timers,
		logger:    logger.With("component", "round-engine", "room", room),
	}
}

// Run drives the game to completion: LOBBY_HOLD, then rounds until one or
// zero survivors remain, then DONE. It returns only once the game has ended.
func (e *Engine) Run(ctx context.Context) {
	e.lobbyHold(ctx)

	round := 0
	survivors := -1
	for {
		round++
		var err error
		survivors, err = e.runRound(ctx, round)
		if err != nil {
			e.logger.Error("round ended in error", "round", round, "error", err)
			break
		}
		if survivors <= 1 {
			break
		}
		e.sleep(ctx, e.timers.InterRoundPause)
	}

	e.done(round, survivors)
}

func (e *Engine) lobbyHold(ctx context.Context) {
	payload := bus.NewGamePayload{Timer: int(e.timers.Lobby.Seconds())}
	if err := e.publisher.Publish(ctx, e.room, bus.EventNewGame, payload); err != nil {
		e.logger.Error("failed to publish new_game", "error", err)
	}
	e.sleep(ctx, e.timers.Lobby)

	if err := e.store.Delete(ctx, lobby.NextGameRoomKey, lobby.NextGameServerKey); err != nil {
		e.logger.Error("failed to clear election keys", "error", err)
	}
	e.sleep(ctx, e.timers.PostLobbySettle)
}

func (e *Engine) runRound(ctx context.Context, round int) (int, error) {
	q, err := e.pool.Pop(ctx)
	if err != nil {
		return 0, fmt.Errorf("pop question: %w", err)
	}
	if q.Prompt == "" {
		return 0, fmt.Errorf("question pool returned an empty prompt, pool exhausted")
	}

	roundAnswerKey := fmt.Sprintf("%s-ROUND-%d-ANSWERS", e.room, round)

	roster, err := e.store.SetMembers(ctx, e.room)
	if err != nil {
		return 0, fmt.Errorf("snapshot roster: %w", err)
	}

	newRound := bus.NewRoundPayload{
		Question:       q.Prompt,
		Options:        q.Options,
		RoundAnswerKey: roundAnswerKey,
		Timer:          int(e.timers.Round.Seconds()),
		Round:          round,
		Room:           e.room,
	}
	if err := e.publisher.Publish(ctx, e.room, bus.EventNewRound, newRound); err != nil {
		e.logger.Error("failed to publish new_round", "round", round, "error", err)
	}

	e.sleep(ctx, e.timers.Round)

	return e.tally(ctx, round, roundAnswerKey, roster, q)
}

func (e *Engine) tally(ctx context.Context, round int, roundAnswerKey string, roster []string, q questions.PlayableQuestion) (int, error) {
	answers, err := e.store.HashGetAll(ctx, roundAnswerKey)
	if err != nil {
		return 0, fmt.Errorf("read answers: %w", err)
	}

	optionCounts := make(map[string]int, len(q.Options))
	for _, opt := range q.Options {
		optionCounts[opt] = 0
	}

	answered := make(map[string]struct{}, len(answers))
	totalAnswers := 0
	survivors := 0

	for username, answer := range answers {
		answered[username] = struct{}{}
		totalAnswers++
		if _, known := optionCounts[answer]; known {
			optionCounts[answer]++
		}
		if answer == q.Answer {
			survivors++
			continue
		}
		e.eliminate(ctx, username)
	}

	for _, username := range roster {
		if _, ok := answered[username]; ok {
			continue
		}
		totalAnswers++
		e.eliminate(ctx, username)
	}

	stats := make(map[string]float64, len(optionCounts))
	for opt, count := range optionCounts {
		if totalAnswers == 0 {
			stats[opt] = 0
			continue
		}
		stats[opt] = float64(count) / float64(totalAnswers)
	}

	statsPayload := bus.RoundStatsPayload{
		Round:         round,
		Options:       q.Options,
		Stats:         stats,
		CorrectAnswer: q.Answer,
		PlayersInGame: survivors,
	}
	if err := e.publisher.Publish(ctx, e.room, bus.EventRoundStats, statsPayload); err != nil {
		e.logger.Error("failed to publish round_stats", "round", round, "error", err)
	}

	if err := e.store.HashDelete(ctx, roundAnswerKey); err != nil {
		e.logger.Error("failed to clean up answer table", "round", round, "error", err)
	}

	return survivors, nil
}

// eliminate publishes a players_update/left event and removes username from
// the room roster. Covers both wrong answers and non-submissions, and the
// "answer not among options" edge case is folded into this same elimination
// path rather than counted separately.
func (e *Engine) eliminate(ctx context.Context, username string) {
	payload := bus.PlayersUpdatePayload{Action: "left", Username: username}
	if err := e.publisher.Publish(ctx, e.room, bus.EventPlayersUpdate, payload); err != nil {
		e.logger.Error("failed to publish elimination", "username", username, "error", err)
	}
	if err := e.store.SetRemove(ctx, e.room, username); err != nil {
		e.logger.Error("failed to remove eliminated player from roster", "username", username, "error", err)
	}
}

func (e *Engine) done(rounds, survivors int) {
	ctx := context.Background()
	if err := e.store.Delete(ctx, e.room); err != nil {
		e.logger.Error("failed to delete room roster", "error", err)
	}
	e.logger.Info("game ended", "rounds", rounds, "survivors", survivors)
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
