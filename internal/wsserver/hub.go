package wsserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/observer/trivia/internal/lobby"
	"github.com/observer/trivia/internal/registry"
	"github.com/observer/trivia/internal/store"
)

// Hub maintains the set of locally-connected clients and their room
// membership, and implements bus.RoomBroadcaster so the message bus can
// deliver decoded events straight to them.
type Hub struct {
	// rooms maps room name to the set of clients locally joined to it.
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	lobby    *lobby.Lobby
	registry *registry.Registry
	limiter  *lobby.SessionLimiter
	store    store.Store
	logger   *slog.Logger
}

// NewHub constructs a Hub wired to the lobby coordinator, user registry, and
// shared store.
func NewHub(l *lobby.Lobby, r *registry.Registry, limiter *lobby.SessionLimiter, s store.Store, logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		lobby:      l,
		registry:   r,
		limiter:    limiter,
		store:      s,
		logger:     logger.With("component", "hub"),
	}
}

// Run processes register/unregister events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) handleRegister(client *Client) {
	h.logger.Debug("client connected", "session_id", client.SessionID())
}

func (h *Hub) handleUnregister(client *Client) {
	room := client.Room()

	h.mu.Lock()
	if room != "" {
		if clients, ok := h.rooms[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	h.limiter.Forget(client.SessionID())
	h.registry.Forget(client.SessionID())
	close(client.send)
	h.logger.Debug("client disconnected", "session_id", client.SessionID())
}

// HandleMessage dispatches one decoded client frame.
func (h *Hub) HandleMessage(client *Client, msg *ClientMessage) {
	switch msg.Type {
	case EventRegisterClient:
		h.handleRegisterClient(client, msg.Payload)
	case EventReportRoundAnswer:
		h.handleReportRoundAnswer(client, msg.Payload)
	default:
		client.sendInfo("warning", "Unknown event type: "+msg.Type)
	}
}

func (h *Hub) handleRegisterClient(client *Client, payload json.RawMessage) {
	var p RegisterClientPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		client.sendInfo("warning", "Invalid register_client payload")
		return
	}
	if p.Username == "" {
		client.Send(InfoMessage{Type: "info", Msg: "No user name provided, please pick one"})
		return
	}
	if !h.limiter.Allow(client.SessionID()) {
		client.sendInfo("warning", "Too many admission attempts, slow down")
		return
	}

	ctx := context.Background()
	result, err := h.lobby.RegisterPlayer(ctx, p.Username)
	if err != nil {
		h.logger.Error("registration failed", "username", p.Username, "error", err)
		client.sendInfo("warning", "Try again")
		return
	}

	if result.DenialReason != "" {
		client.Send(InfoMessage{Type: "info", Msg: result.DenialReason})
		return
	}

	client.SetIdentity(result.Username, result.Room)

	h.mu.Lock()
	if h.rooms[result.Room] == nil {
		h.rooms[result.Room] = make(map[*Client]bool)
	}
	h.rooms[result.Room][client] = true
	h.mu.Unlock()

	h.registry.Admit(client.SessionID(), result.Username, result.Room)

	client.Send(RegisterClientAck{
		Type:         EventRegisterClientAck,
		Username:     result.Username,
		RoomName:     result.Room,
		Admitted:     true,
		OtherPlayers: otherPlayersMap(result.Others),
		MinPlayers:   result.MinPlayers,
		GameStarting: result.GameStarting,
	})
}

func (h *Hub) handleReportRoundAnswer(client *Client, payload json.RawMessage) {
	var p ReportRoundAnswerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.logger.Warn("dropping malformed report_round_answer", "error", err)
		return
	}
	if p.RoundAnswerKey == "" || p.Username == "" {
		h.logger.Warn("dropping report_round_answer missing required fields")
		return
	}

	if err := h.store.HashSet(context.Background(), p.RoundAnswerKey, p.Username, p.Answer); err != nil {
		h.logger.Error("failed to record answer", "round_answer_key", p.RoundAnswerKey, "error", err)
	}
}

// BroadcastToRoom implements bus.RoomBroadcaster: delivers payload to every
// client locally joined to room.
func (h *Hub) BroadcastToRoom(room string, payload []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.SendRaw(payload)
	}
}

// RoomSize reports how many clients are locally joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Stats reports aggregate connection counts for this replica. It satisfies
// httpapi.RoomStats.
func (h *Hub) Stats() (rooms int, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms = len(h.rooms)
	for _, members := range h.rooms {
		clients += len(members)
	}
	return rooms, clients
}
