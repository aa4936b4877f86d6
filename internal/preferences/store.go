// Package preferences persists per-user view state. Storage is best effort:
// the engine behaves the same whether a save or load succeeds or not.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"trustmap/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Store is a narrow key-value persistence port.
type Store interface {
	// Load decodes the value under key into dest. It returns
	// errors.ErrPreferenceNotFound when nothing is stored.
	Load(ctx context.Context, key string, dest interface{}) error
	Save(ctx context.Context, key string, value interface{}) error
}

const keyPrefix = "trustmap:prefs:"

// ==============================================================================
// REDIS
// ==============================================================================

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server. A zero ttl keeps keys forever.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("%w: %s", errors.ErrPreferenceNotFound, key)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *RedisStore) Save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ==============================================================================
// IN-MEMORY
// ==============================================================================

// MemoryStore keeps JSON copies so callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrPreferenceNotFound, key)
	}
	return json.Unmarshal(data, dest)
}

func (s *MemoryStore) Save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = data
	s.mu.Unlock()
	return nil
}
