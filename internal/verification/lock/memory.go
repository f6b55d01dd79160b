package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"verigate/pkg/platform/sentinel"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryLocker is a single-process Locker with the same TTL semantics as the
// Redis implementation.
type MemoryLocker struct {
	mu   sync.Mutex
	ttl  time.Duration
	held map[string]memoryEntry
	now  func() time.Time
}

func NewMemoryLocker(ttl time.Duration) *MemoryLocker {
	return &MemoryLocker{ttl: ttl, held: map[string]memoryEntry{}, now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, fmt.Errorf("acquire %s: %w", key, sentinel.ErrLocked)
	}
	token := uuid.NewString()
	l.held[key] = memoryEntry{token: token, expires: now.Add(l.ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.held[key]; ok && e.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
