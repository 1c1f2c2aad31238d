package lobby

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/observer/trivia/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStarter struct {
	mu    sync.Mutex
	rooms []string
}

func (s *recordingStarter) StartGame(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = append(s.rooms, room)
}

func (s *recordingStarter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func newTestLobby(t *testing.T, serverName string, minPlayers int, starter GameStarter) (*Lobby, store.Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.NewRedisStore("redis://"+mr.Addr(), logger)
	require.NoError(t, err)

	l := New(s, NewCodeGenerator(), serverName, minPlayers, starter, logger)
	return l, s, mr
}

func TestRegisterPlayer_SinglePlayerBlocked(t *testing.T) {
	starter := &recordingStarter{}
	l, s, mr := newTestLobby(t, "server-a", 2, starter)
	defer mr.Close()
	defer s.Close()

	res, err := l.RegisterPlayer(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", res.Username)
	assert.True(t, res.RoomAssigned)
	assert.Empty(t, res.Others)
	assert.Equal(t, 2, res.MinPlayers)
	assert.False(t, res.GameStarting)
	assert.Empty(t, res.DenialReason)
	assert.Equal(t, 0, starter.count())
}

func TestRegisterPlayer_DuplicateUsername(t *testing.T) {
	starter := &recordingStarter{}
	l, s, mr := newTestLobby(t, "server-a", 2, starter)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()
	_, err := l.RegisterPlayer(ctx, "alice")
	require.NoError(t, err)

	res, err := l.RegisterPlayer(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", res.Username)
	assert.False(t, res.RoomAssigned)
	assert.Equal(t, denialDuplicate, res.DenialReason)
}

func TestRegisterPlayer_ThresholdTriggersElection(t *testing.T) {
	starter := &recordingStarter{}
	l, s, mr := newTestLobby(t, "server-a", 2, starter)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()
	first, err := l.RegisterPlayer(ctx, "alice")
	require.NoError(t, err)

	second, err := l.RegisterPlayer(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, first.Room, second.Room)
	assert.ElementsMatch(t, []string{"alice"}, second.Others)
	assert.True(t, second.GameStarting)
	assert.Equal(t, 1, starter.count())

	val, ok, err := s.Get(ctx, NextGameServerKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "server-a", val)
}

func TestRegisterPlayer_ConcurrentElectionSafety(t *testing.T) {
	starterA := &recordingStarter{}
	starterB := &recordingStarter{}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storeA, err := store.NewRedisStore("redis://"+mr.Addr(), logger)
	require.NoError(t, err)
	defer storeA.Close()
	storeB, err := store.NewRedisStore("redis://"+mr.Addr(), logger)
	require.NoError(t, err)
	defer storeB.Close()

	codes := NewCodeGenerator()
	lobbyA := New(storeA, codes, "server-a", 2, starterA, logger)
	lobbyB := New(storeB, codes, "server-b", 2, starterB, logger)

	ctx := context.Background()
	_, err = lobbyA.RegisterPlayer(ctx, "seed")
	require.NoError(t, err)
	// seed stays in the roster, so both admissions below start at threshold-1.
	require.NotEmpty(t, mustRoom(t, ctx, storeA))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = lobbyA.RegisterPlayer(ctx, "alice")
	}()
	go func() {
		defer wg.Done()
		_, _ = lobbyB.RegisterPlayer(ctx, "bob")
	}()
	wg.Wait()

	assert.Equal(t, 1, starterA.count()+starterB.count())
}

func mustRoom(t *testing.T, ctx context.Context, s store.Store) string {
	room, ok, err := s.Get(ctx, NextGameRoomKey)
	require.NoError(t, err)
	require.True(t, ok)
	return room
}
