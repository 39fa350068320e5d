package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache stores verified identities keyed by a token digest.
type TokenCache interface {
	Get(ctx context.Context, key string) (Identity, bool)
	Set(ctx context.Context, key string, id Identity, ttl time.Duration)
}

// cacheKey never stores the raw token.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	id      Identity
	expires time.Time
}

// MemoryCache is a process-local TokenCache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return Identity{}, false
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return Identity{}, false
	}
	return e.id, true
}

func (m *MemoryCache) Set(_ context.Context, key string, id Identity, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	// Opportunistic sweep keeps the map bounded by live tokens.
	if len(m.entries) > 1024 {
		for k, e := range m.entries {
			if !now.Before(e.expires) {
				delete(m.entries, k)
			}
		}
	}
	m.entries[key] = memoryEntry{id: id, expires: now.Add(ttl)}
}

// RedisCache shares verified identities across API instances.
type RedisCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client, Prefix: "hairalyzer:auth:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) (Identity, bool) {
	raw, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logCacheError("get", err)
		}
		return Identity{}, false
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.UID == "" {
		return Identity{}, false
	}
	return id, true
}

func (r *RedisCache) Set(ctx context.Context, key string, id Identity, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := r.Client.Set(ctx, r.Prefix+key, raw, ttl).Err(); err != nil {
		logCacheError("set", err)
	}
}
