package cache

import (
	"context"
	"time"
)

// Cache is a best-effort JSON read cache. Misses and errors are equivalent to
// the service layer; correctness never depends on it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ConversationKey is the cache key for a conversation document by id.
func ConversationKey(id string) string { return "conversation:" + id }

// Noop is used when no redis instance is configured.
type Noop struct{}

func (Noop) GetJSON(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (Noop) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	return nil
}
func (Noop) Del(ctx context.Context, keys ...string) error { return nil }
