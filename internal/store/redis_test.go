package store

import (
	"context"
	"log/slog"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewRedisStore("redis://"+mr.Addr(), logger)
	require.NoError(t, err)

	return s, mr
}

func TestRedisStore_SetIfAbsent(t *testing.T) {
	s, mr := newTestStore(t)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()

	ok, err := s.SetIfAbsent(ctx, "k", "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetIfAbsent(ctx, "k", "v2")
	require.NoError(t, err)
	assert.False(t, ok)

	val, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", val)
}

func TestRedisStore_GetMissing(t *testing.T) {
	s, mr := newTestStore(t)
	defer mr.Close()
	defer s.Close()

	_, found, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Sets(t *testing.T) {
	s, mr := newTestStore(t)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SetAdd(ctx, "room", "alice", "bob"))

	card, err := s.SetCard(ctx, "room")
	require.NoError(t, err)
	assert.Equal(t, int64(2), card)

	isMember, err := s.SetIsMember(ctx, "room", "alice")
	require.NoError(t, err)
	assert.True(t, isMember)

	members, err := s.SetMembers(ctx, "room")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, members)

	require.NoError(t, s.SetRemove(ctx, "room", "alice"))
	isMember, err = s.SetIsMember(ctx, "room", "alice")
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestRedisStore_Hashes(t *testing.T) {
	s, mr := newTestStore(t)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.HashSet(ctx, "h", "0", `{"q":1}`))
	require.NoError(t, s.HashSet(ctx, "h", "1", `{"q":2}`))

	n, err := s.HashLen(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := s.HashGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0": `{"q":1}`, "1": `{"q":2}`}, all)

	values, ok, err := s.HashMultiGet(ctx, "h", "0", "missing")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.True(t, ok[0])
	assert.False(t, ok[1])
	assert.Equal(t, `{"q":1}`, values[0])

	require.NoError(t, s.HashDelete(ctx, "h"))
	n, err = s.HashLen(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRedisStore_PublishSubscribe(t *testing.T) {
	s, mr := newTestStore(t)
	defer mr.Close()
	defer s.Close()

	ctx := context.Background()
	sub, err := s.Subscribe(ctx, "chan")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, s.Publish(ctx, "chan", `{"hello":"world"}`))

	select {
	case payload := <-sub.Channel():
		assert.JSONEq(t, `{"hello":"world"}`, payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}
