package bus

// Event type constants for the cross-replica bus. See spec §6.2.
const (
	EventNewGame       = "new_game"
	EventNewRound      = "new_round"
	EventRoundStats    = "round_stats"
	EventPlayersUpdate = "players_update"
)

// NewGamePayload accompanies EventNewGame.
type NewGamePayload struct {
	Timer int `json:"timer"`
}

// NewRoundPayload accompanies EventNewRound. Room is carried explicitly
// because MB strips the envelope's room_name before delivery (§4.4); without
// it the client would receive a new_round with no room identifier at all.
type NewRoundPayload struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	RoundAnswerKey string   `json:"round_answer_key"`
	Timer          int      `json:"timer"`
	Round          int      `json:"round"`
	Room           string   `json:"room"`
}

// RoundStatsPayload accompanies EventRoundStats.
type RoundStatsPayload struct {
	Round         int                `json:"round"`
	Options       []string           `json:"options"`
	Stats         map[string]float64 `json:"stats"`
	CorrectAnswer string             `json:"correct_answer"`
	PlayersInGame int                `json:"players_in_game"`
}

// PlayersUpdatePayload accompanies EventPlayersUpdate.
type PlayersUpdatePayload struct {
	Action   string `json:"action"` // "joined" or "left"
	Username string `json:"username"`
}
