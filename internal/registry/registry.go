// Package registry implements the User Registry (UR): a process-local
// mapping from session id to {username, room}, publishing join/leave events
// onto the bus as side effects of explicit Admit/Forget operations.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/observer/trivia/internal/bus"
	"github.com/observer/trivia/internal/store"
)

// Session is what the registry remembers about one locally-connected client.
type Session struct {
	Username string
	Room     string
}

// Registry is the per-replica session map. Safe for concurrent use.
type Registry struct {
	publisher bus.Publisher
	store     store.Store
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

// New constructs an empty Registry for one replica.
func New(publisher bus.Publisher, s store.Store, logger *slog.Logger) *Registry {
	return &Registry{
		publisher: publisher,
		store:     s,
		logger:    logger.With("component", "registry"),
		sessions:  make(map[string]Session),
	}
}

// Admit records sessionID under {username, room} and asynchronously
// publishes players_update/joined. The caller does not wait on delivery.
func (r *Registry) Admit(sessionID, username, room string) {
	r.mu.Lock()
	r.sessions[sessionID] = Session{Username: username, Room: room}
	r.mu.Unlock()

	go func() {
		ctx := context.Background()
		payload := bus.PlayersUpdatePayload{Action: "joined", Username: username}
		if err := r.publisher.Publish(ctx, room, bus.EventPlayersUpdate, payload); err != nil {
			r.logger.Error("failed to publish join", "username", username, "room", room, "error", err)
		}
	}()
}

// Forget removes sessionID, asynchronously publishing players_update/left
// and removing username from the room roster in the store if still present.
// A no-op if sessionID is unknown.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	go func() {
		ctx := context.Background()
		payload := bus.PlayersUpdatePayload{Action: "left", Username: session.Username}
		if err := r.publisher.Publish(ctx, session.Room, bus.EventPlayersUpdate, payload); err != nil {
			r.logger.Error("failed to publish leave", "username", session.Username, "room", session.Room, "error", err)
		}

		isMember, err := r.store.SetIsMember(ctx, session.Room, session.Username)
		if err != nil {
			r.logger.Error("failed to check roster membership on forget", "error", err)
			return
		}
		if isMember {
			if err := r.store.SetRemove(ctx, session.Room, session.Username); err != nil {
				r.logger.Error("failed to remove from roster on forget", "error", err)
			}
		}
	}()
}

// Lookup returns the session recorded for sessionID, if any.
func (r *Registry) Lookup(sessionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// Len reports the number of locally-tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
