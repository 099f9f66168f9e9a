package slots

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and ephemeral runs
// (no session persistence across restarts).
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.items[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (r *MemoryRepository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range values {
		r.items[key] = append([]byte(nil), value...)
	}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key)
	return nil
}

func (r *MemoryRepository) DeleteMany(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.items, key)
	}
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string][]byte, len(r.items))
	for key, value := range r.items {
		result[key] = append([]byte(nil), value...)
	}
	return result, nil
}

func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string][]byte)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
