// Package store defines the Shared Store (SS) surface the core depends on:
// string cells, sets, hashes, and pub/sub, all backed by a single external
// key/value service. See spec §6.1.
package store

import "context"

// Store is the capability surface the lobby coordinator, round engine, and
// question pool manager consume. It is an interface (not a concrete
// *redis.Client) so tests can run it against an in-process fake.
type Store interface {
	// SetIfAbsent sets key to value only if key does not already exist
	// (SET key value NX). Returns true if the set happened.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	// Get returns the value stored at key, and false if key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes zero or more keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// SetAdd adds members to the set at key.
	SetAdd(ctx context.Context, key string, members ...string) error

	// SetRemove removes members from the set at key.
	SetRemove(ctx context.Context, key string, members ...string) error

	// SetIsMember reports whether member is in the set at key.
	SetIsMember(ctx context.Context, key, member string) (bool, error)

	// SetCard returns the cardinality of the set at key.
	SetCard(ctx context.Context, key string) (int64, error)

	// SetMembers returns every member of the set at key.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// HashSet sets field to value in the hash at key.
	HashSet(ctx context.Context, key, field, value string) error

	// HashGetAll returns the full field/value map of the hash at key.
	HashGetAll(ctx context.Context, key string) (map[string]string, error)

	// HashMultiGet fetches several fields from the hash at key in one
	// round-trip. Missing fields come back as "" with ok=false at the same
	// index.
	HashMultiGet(ctx context.Context, key string, fields ...string) ([]string, []bool, error)

	// HashLen returns the number of fields in the hash at key.
	HashLen(ctx context.Context, key string) (int64, error)

	// HashDelete deletes the entire hash at key.
	HashDelete(ctx context.Context, key string) error

	// Publish sends payload (already-serialized JSON) to channel.
	Publish(ctx context.Context, channel, payload string) error

	// Subscribe opens a single subscription to channel. The caller owns
	// the returned Subscription and must Close it when done.
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	// Close releases the underlying connection(s).
	Close() error

	// Health reports whether the store is currently reachable.
	Health(ctx context.Context) error
}

// Subscription delivers raw message payloads published to a channel.
type Subscription interface {
	// Channel returns the stream of raw payload strings. It is closed when
	// the subscription is closed or the underlying connection drops.
	Channel() <-chan string

	// Close unsubscribes and releases resources.
	Close() error
}
