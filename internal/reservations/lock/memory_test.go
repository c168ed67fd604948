package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	owner     string
	expiresAt time.Time
}

type MemoryBackend struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		locks: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (b *MemoryBackend) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if entry, ok := b.locks[key]; ok && now.Before(entry.expiresAt) {
		return false, nil
	}
	b.locks[key] = memoryEntry{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}

func (b *MemoryBackend) Release(ctx context.Context, key, owner string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.locks[key]; ok && entry.owner == owner {
		delete(b.locks, key)
	}
	return nil
}

// Holder returns the current owner of key, if any.
func (b *MemoryBackend) Holder(key string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.locks[key]
	if !ok || !b.now().Before(entry.expiresAt) {
		return "", false
	}
	return entry.owner, true
}
