package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a successful read stays cached.
const DefaultCacheTTL = 5 * time.Minute

// Backend is the raw string-keyed storage wrapped by Store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Reader is the read side of Store consumed by the reporting pipeline.
type Reader interface {
	Get(ctx context.Context, key string, opts ...GetOption) any
	ClearCache()
}

type getOptions struct {
	bypassCache bool
}

// GetOption tunes a single Get call.
type GetOption func(*getOptions)

// BypassCache forces the read to go to the backend.
func BypassCache() GetOption {
	return func(o *getOptions) { o.bypassCache = true }
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// Store JSON-encodes values on write, decodes them on read and keeps decoded
// values in a process-local cache with a fixed TTL.
type Store struct {
	backend Backend
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New wraps the backend. A non-positive ttl falls back to DefaultCacheTTL.
func New(backend Backend, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		backend: backend,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

// Get returns the decoded value stored under key, or nil when the key is
// absent or the backend failed. Failures are logged, never returned.
func (s *Store) Get(ctx context.Context, key string, opts ...GetOption) any {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !o.bypassCache {
		if value, ok := s.cached(key); ok {
			return value
		}
	}

	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	value := decode(raw)
	if !o.bypassCache {
		s.store(key, value)
	}
	return value
}

// Set encodes value as JSON and writes it. Errors are logged and returned.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("storage encode failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := s.backend.Set(ctx, key, string(payload)); err != nil {
		s.logger.Warn("storage write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("write %s: %w", key, err)
	}

	s.Invalidate(key)
	return nil
}

// Remove deletes key from the backend and the cache.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.Invalidate(key)
	if err := s.backend.Remove(ctx, key); err != nil {
		s.logger.Warn("storage remove failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Invalidate drops a single cache entry.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}

// ClearCache drops every cache entry.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cacheEntry)
}

func (s *Store) cached(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.cache, key)
		return nil, false
	}
	return entry.value, true
}

func (s *Store) store(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{value: value, expiresAt: s.now().Add(s.ttl)}
}

// decode parses JSON payloads and passes anything else through as a string.
func decode(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
