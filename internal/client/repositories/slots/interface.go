// Package slots persists the client's named key/value slots, the durable
// storage behind the session store. Values are opaque bytes; the typed layer
// lives in internal/client/session.
package slots

import "context"

// Repository is the slot storage contract. Get returns (nil, nil) for a
// missing key. SetMany and DeleteMany are atomic: either every slot is
// written/removed or none are.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
