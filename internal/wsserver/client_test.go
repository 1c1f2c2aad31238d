package wsserver

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient() *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return &Client{
		send:      make(chan []byte, 32),
		sessionID: "sess-1",
		logger:    logger,
	}
}

func TestClient_SetIdentity(t *testing.T) {
	client := newTestClient()
	client.SetIdentity("alice", "room-0001-aaaa-bbbb")

	assert.Equal(t, "alice", client.Username())
	assert.Equal(t, "room-0001-aaaa-bbbb", client.Room())
}

func TestClient_IsRegistered_FalseByDefault(t *testing.T) {
	client := newTestClient()
	assert.False(t, client.IsRegistered())
}

func TestClient_IsRegistered_TrueAfterIdentitySet(t *testing.T) {
	client := newTestClient()
	client.SetIdentity("bob", "room-0002-aaaa-bbbb")
	assert.True(t, client.IsRegistered())
}

func TestClient_SendRaw_Normal(t *testing.T) {
	client := newTestClient()
	client.SendRaw([]byte(`{"type":"new_game"}`))

	select {
	case data := <-client.send:
		assert.Equal(t, `{"type":"new_game"}`, string(data))
	default:
		t.Fatal("message was not queued to send channel")
	}
}

func TestClient_SendRaw_BufferFull(t *testing.T) {
	client := newTestClient()
	client.send = make(chan []byte, 1)

	client.SendRaw([]byte("first"))
	assert.NotPanics(t, func() { client.SendRaw([]byte("second")) })
}

func TestClient_Send_MarshalsPayload(t *testing.T) {
	client := newTestClient()
	client.Send(InfoMessage{Type: "info", Msg: "hello"})

	select {
	case data := <-client.send:
		assert.Contains(t, string(data), "info")
		assert.Contains(t, string(data), "hello")
	default:
		t.Fatal("message was not queued")
	}
}

func TestClient_SessionID(t *testing.T) {
	client := newTestClient()
	assert.Equal(t, "sess-1", client.SessionID())
}
