// Package bus implements the cross-replica Message Bus (MB): one
// subscription per replica on the shared channel, demultiplexing broadcast
// events to locally-connected clients in the named rooms. See spec §4.4.
package bus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/observer/trivia/internal/store"
)

// RoomBroadcaster is the capability MB uses to deliver a decoded payload to
// every client locally joined to a room. Implemented by the websocket hub.
type RoomBroadcaster interface {
	BroadcastToRoom(room string, payload []byte)
}

// MessageBus subscribes once to the shared channel and fans events out to
// the local RoomBroadcaster. Neither side calls the other directly — RE and
// UR publish through a Publisher, MB only ever reads from the Store.
type MessageBus struct {
	store       store.Store
	channel     string
	broadcaster RoomBroadcaster
	logger      *slog.Logger
}

// New creates a MessageBus that will deliver to broadcaster once Run starts.
func New(s store.Store, channel string, broadcaster RoomBroadcaster, logger *slog.Logger) *MessageBus {
	return &MessageBus{
		store:       s,
		channel:     channel,
		broadcaster: broadcaster,
		logger:      logger.With("component", "bus"),
	}
}

// Run subscribes to the shared channel and processes messages until ctx is
// cancelled or the subscription drops. It is meant to run for the lifetime
// of the replica process.
func (b *MessageBus) Run(ctx context.Context) error {
	sub, err := b.store.Subscribe(ctx, b.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	b.logger.Info("subscribed to shared channel", "channel", b.channel)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-sub.Channel():
			if !ok {
				b.logger.Warn("subscription channel closed")
				return nil
			}
			b.deliver(payload)
		}
	}
}

// deliver decodes one raw payload and hands it to the broadcaster, stripped
// of room_name. Delivery to individual clients is fire-and-forget from MB's
// perspective; concurrent local fan-out lives in the broadcaster.
func (b *MessageBus) deliver(raw string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		b.logger.Warn("dropping malformed bus payload", "error", err)
		return
	}

	var eventType string
	if typeRaw, ok := fields["type"]; ok {
		_ = json.Unmarshal(typeRaw, &eventType)
	}
	var room string
	if roomRaw, ok := fields["room_name"]; ok {
		_ = json.Unmarshal(roomRaw, &room)
	}
	if eventType == "" || room == "" {
		b.logger.Warn("dropping bus payload missing type or room_name")
		return
	}

	delete(fields, "room_name")
	stripped, err := json.Marshal(fields)
	if err != nil {
		b.logger.Error("failed to re-marshal stripped payload", "error", err)
		return
	}

	b.broadcaster.BroadcastToRoom(room, stripped)
}
