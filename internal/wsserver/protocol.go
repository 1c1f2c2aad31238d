package wsserver

import "encoding/json"

// Client -> server event types. See spec §6.3.
const (
	EventRegisterClient    = "register_client"
	EventReportRoundAnswer = "report_round_answer"
)

// Server -> client event types not already carried verbatim by the bus
// envelope (new_game, new_round, round_stats, players_update).
const (
	EventRegisterClientAck = "register_client_ack"
	EventInfo              = "info"
)

// ClientMessage is the envelope every inbound client frame is decoded into
// before dispatch.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RegisterClientPayload carries the desired username for admission.
type RegisterClientPayload struct {
	Username string `json:"username"`
}

// ReportRoundAnswerPayload carries one submitted answer.
type ReportRoundAnswerPayload struct {
	RoundAnswerKey string `json:"round_answer_key"`
	Username       string `json:"username"`
	Answer         string `json:"answer"`
}

// RegisterClientAck is the reply to register_client, mirroring the
// register_player return tuple.
type RegisterClientAck struct {
	Type         string          `json:"type"`
	Username     string          `json:"username"`
	RoomName     string          `json:"room_name,omitempty"`
	Admitted     bool            `json:"admitted"`
	OtherPlayers map[string]bool `json:"other_players,omitempty"`
	MinPlayers   int             `json:"min_players"`
	GameStarting bool            `json:"game_starting"`
	Reason       string          `json:"reason,omitempty"`
}

// InfoMessage carries an admission-denial or protocol-level notice.
type InfoMessage struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func otherPlayersMap(usernames []string) map[string]bool {
	out := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		out[u] = true
	}
	return out
}
