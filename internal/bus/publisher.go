package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/observer/trivia/internal/store"
)

// Publisher is the capability the Round Engine and User Registry use to put
// an event on the shared channel. Every published payload carries room_name
// and type at the top level per spec §4.3's broadcast envelope contract.
type Publisher interface {
	Publish(ctx context.Context, room, eventType string, payload interface{}) error
}

// StorePublisher publishes onto a fixed channel of a Store.
type StorePublisher struct {
	store   store.Store
	channel string
	logger  *slog.Logger
}

// NewStorePublisher creates a Publisher that publishes JSON envelopes onto
// channel via store.
func NewStorePublisher(s store.Store, channel string, logger *slog.Logger) *StorePublisher {
	return &StorePublisher{store: s, channel: channel, logger: logger.With("component", "bus-publisher")}
}

// Publish flattens payload's fields together with "type" and "room_name"
// into one JSON object and publishes it on the shared channel.
func (p *StorePublisher) Publish(ctx context.Context, room, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", eventType, err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("flatten payload for %s: %w", eventType, err)
	}
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["type"] = eventType
	fields["room_name"] = room

	envelope, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal envelope for %s: %w", eventType, err)
	}

	if err := p.store.Publish(ctx, p.channel, string(envelope)); err != nil {
		p.logger.Error("failed to publish", "room", room, "type", eventType, "error", err)
		return err
	}
	return nil
}
