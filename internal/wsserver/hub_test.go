package wsserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/observer/trivia/internal/bus"
	"github.com/observer/trivia/internal/lobby"
	"github.com/observer/trivia/internal/registry"
	"github.com/observer/trivia/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopStarter struct{}

func (noopStarter) StartGame(room string) {}

func newTestHub(t *testing.T) (*Hub, store.Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := store.NewRedisStore("redis://"+mr.Addr(), logger)
	require.NoError(t, err)

	l := lobby.New(s, lobby.NewCodeGenerator(), "server-a", 2, noopStarter{}, logger)
	pub := bus.NewStorePublisher(s, "hq_trivia", logger)
	reg := registry.New(pub, s, logger)
	limiter := lobby.NewSessionLimiter(120)

	h := NewHub(l, reg, limiter, s, logger)
	return h, s, mr
}

func TestHub_RegisterClient_AdmitsAndAcks(t *testing.T) {
	h, s, mr := newTestHub(t)
	defer mr.Close()
	defer s.Close()

	client := newTestClient()
	payload, _ := json.Marshal(RegisterClientPayload{Username: "alice"})
	h.HandleMessage(client, &ClientMessage{Type: EventRegisterClient, Payload: payload})

	select {
	case data := <-client.send:
		var ack RegisterClientAck
		require.NoError(t, json.Unmarshal(data, &ack))
		assert.Equal(t, "alice", ack.Username)
		assert.True(t, ack.Admitted)
		assert.NotEmpty(t, ack.RoomName)
	default:
		t.Fatal("no ack sent")
	}

	assert.True(t, client.IsRegistered())
	assert.Equal(t, 1, h.RoomSize(client.Room()))
}

func TestHub_RegisterClient_EmptyUsernameDenied(t *testing.T) {
	h, s, mr := newTestHub(t)
	defer mr.Close()
	defer s.Close()

	client := newTestClient()
	payload, _ := json.Marshal(RegisterClientPayload{Username: ""})
	h.HandleMessage(client, &ClientMessage{Type: EventRegisterClient, Payload: payload})

	select {
	case data := <-client.send:
		var info InfoMessage
		require.NoError(t, json.Unmarshal(data, &info))
		assert.Equal(t, "info", info.Type)
	default:
		t.Fatal("no info message sent")
	}
	assert.False(t, client.IsRegistered())
}

func TestHub_ReportRoundAnswer_WritesToStore(t *testing.T) {
	h, s, mr := newTestHub(t)
	defer mr.Close()
	defer s.Close()

	client := newTestClient()
	payload, _ := json.Marshal(ReportRoundAnswerPayload{
		RoundAnswerKey: "room-0001-aaaa-bbbb-ROUND-1-ANSWERS",
		Username:       "alice",
		Answer:         "4",
	})
	h.HandleMessage(client, &ClientMessage{Type: EventReportRoundAnswer, Payload: payload})

	values, ok, err := s.HashMultiGet(context.Background(), "room-0001-aaaa-bbbb-ROUND-1-ANSWERS", "alice")
	require.NoError(t, err)
	require.True(t, ok[0])
	assert.Equal(t, "4", values[0])
}

func TestHub_BroadcastToRoom_DeliversToMembers(t *testing.T) {
	h, s, mr := newTestHub(t)
	defer mr.Close()
	defer s.Close()

	client := newTestClient()
	client.SetIdentity("alice", "room-0001-aaaa-bbbb")
	h.mu.Lock()
	h.rooms["room-0001-aaaa-bbbb"] = map[*Client]bool{client: true}
	h.mu.Unlock()

	h.BroadcastToRoom("room-0001-aaaa-bbbb", []byte(`{"type":"new_round"}`))

	select {
	case data := <-client.send:
		assert.Equal(t, `{"type":"new_round"}`, string(data))
	default:
		t.Fatal("client did not receive broadcast")
	}
}
