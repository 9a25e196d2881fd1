package store

import "context"

// KeyValueStore is the durable key/value capability used for user preferences.
// Get reports ok=false for an absent key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

var _ KeyValueStore = (*MemoryStore)(nil)
var _ KeyValueStore = (*RedisStore)(nil)
