package wsserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMessage_DecodesTypeAndPayload(t *testing.T) {
	raw := []byte(`{"type":"register_client","payload":{"username":"alice"}}`)
	var msg ClientMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, EventRegisterClient, msg.Type)

	var p RegisterClientPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	assert.Equal(t, "alice", p.Username)
}

func TestReportRoundAnswerPayload_RoundTrip(t *testing.T) {
	original := ReportRoundAnswerPayload{
		RoundAnswerKey: "room-0001-aaaa-bbbb-ROUND-1-ANSWERS",
		Username:       "alice",
		Answer:         "4",
	}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ReportRoundAnswerPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestRegisterClientAck_JSONShape(t *testing.T) {
	ack := RegisterClientAck{
		Type:         EventRegisterClientAck,
		Username:     "bob",
		RoomName:     "room-0001-aaaa-bbbb",
		Admitted:     true,
		OtherPlayers: otherPlayersMap([]string{"alice"}),
		MinPlayers:   2,
		GameStarting: true,
	}
	data, err := json.Marshal(ack)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "bob", raw["username"])
	assert.Equal(t, "room-0001-aaaa-bbbb", raw["room_name"])
	assert.Equal(t, true, raw["admitted"])
	assert.Equal(t, true, raw["game_starting"])
}

func TestOtherPlayersMap(t *testing.T) {
	m := otherPlayersMap([]string{"alice", "bob"})
	assert.Equal(t, map[string]bool{"alice": true, "bob": true}, m)
}
