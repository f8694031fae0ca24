package memory

import (
	"context"
	"sync"
	"time"

	"github.com/zlnvch/stylussphere/cache"
)

type subscriber struct {
	ctx     context.Context
	handler func(message []byte)
}

type sessionEntry struct {
	username string
	expires  time.Time
}

// MemoryStylusCache is the in-process reference variant of the redis
// cache: a single-instance pub/sub loopback plus a session table with
// lazy TTL expiry. Handlers run synchronously on Publish, which keeps
// per-publisher ordering identical to the redis path.
type MemoryStylusCache struct {
	mu          sync.RWMutex
	subscribers map[string][]subscriber
	sessions    map[string]sessionEntry
}

func NewMemoryStylusCache() *MemoryStylusCache {
	return &MemoryStylusCache{
		subscribers: make(map[string][]subscriber),
		sessions:    make(map[string]sessionEntry),
	}
}

func (memCache *MemoryStylusCache) Publish(ctx context.Context, channel string, message []byte) error {
	memCache.mu.RLock()
	subs := make([]subscriber, len(memCache.subscribers[channel]))
	copy(subs, memCache.subscribers[channel])
	memCache.mu.RUnlock()

	for _, sub := range subs {
		if sub.ctx.Err() != nil {
			continue
		}
		sub.handler(message)
	}
	return nil
}

func (memCache *MemoryStylusCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	memCache.mu.Lock()
	defer memCache.mu.Unlock()

	memCache.subscribers[channel] = append(memCache.subscribers[channel], subscriber{ctx: ctx, handler: handler})
	return nil
}

func (memCache *MemoryStylusCache) SetSession(ctx context.Context, sessionId string, username string, ttl time.Duration) error {
	memCache.mu.Lock()
	defer memCache.mu.Unlock()

	memCache.sessions[sessionId] = sessionEntry{username: username, expires: time.Now().Add(ttl)}
	return nil
}

func (memCache *MemoryStylusCache) GetSession(ctx context.Context, sessionId string) (string, error) {
	memCache.mu.RLock()
	entry, ok := memCache.sessions[sessionId]
	memCache.mu.RUnlock()

	if !ok {
		return "", cache.ErrSessionNotFound
	}
	if time.Now().After(entry.expires) {
		memCache.mu.Lock()
		delete(memCache.sessions, sessionId)
		memCache.mu.Unlock()
		return "", cache.ErrSessionNotFound
	}
	return entry.username, nil
}

func (memCache *MemoryStylusCache) DeleteSession(ctx context.Context, sessionId string) error {
	memCache.mu.Lock()
	defer memCache.mu.Unlock()

	delete(memCache.sessions, sessionId)
	return nil
}
