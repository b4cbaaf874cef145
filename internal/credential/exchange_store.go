package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cf_bridge/internal/cloudflare"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ExchangeData is what an SSO exchange token resolves to: the short-lived
// access token plus the accounts and zones visible to it.
type ExchangeData struct {
	SiteID      string                `json:"siteId"`
	AccessToken string                `json:"accessToken"`
	Accounts    []cloudflare.Account  `json:"accounts"`
	Zones       []cloudflare.ZoneRef  `json:"zones"`
}

// ExchangeStore stores single-use, time-boxed SSO exchange tokens.
// Consume is the only way to read a token back; a second Consume of the
// same token fails.
type ExchangeStore interface {
	Create(ctx context.Context, data *ExchangeData, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token string) (*ExchangeData, error)
}

// RedisExchangeStore keeps exchange tokens in Redis with a TTL
type RedisExchangeStore struct {
	rdb *redis.Client
}

// NewRedisExchangeStore creates a Redis-backed exchange store
func NewRedisExchangeStore(rdb *redis.Client) *RedisExchangeStore {
	return &RedisExchangeStore{rdb: rdb}
}

// Create stores the exchange data under a fresh token
func (s *RedisExchangeStore) Create(ctx context.Context, data *ExchangeData, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal exchange data: %w", err)
	}

	key := "sso:exchange:" + token
	if err := s.rdb.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store exchange token in Redis: %w", err)
	}
	return token, nil
}

// Consume atomically reads and deletes a token. Returns (nil, nil) when
// the token is missing, expired, or was already consumed.
// Uses a Lua script so read-and-delete cannot race with another consumer.
func (s *RedisExchangeStore) Consume(ctx context.Context, token string) (*ExchangeData, error) {
	key := "sso:exchange:" + token

	script := `
		local key = KEYS[1]
		local data = redis.call('GET', key)
		if not data then
			return nil
		end
		redis.call('DEL', key)
		return data
	`

	result, err := s.rdb.Eval(ctx, script, []string{key}).Result()
	if err == redis.Nil || result == nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume exchange token: %w", err)
	}

	jsonData, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from Redis")
	}

	var data ExchangeData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exchange data: %w", err)
	}
	return &data, nil
}

// MemoryExchangeStore is an in-process exchange store used in tests and
// single-node deployments without Redis.
type MemoryExchangeStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      *ExchangeData
	expiresAt time.Time
}

// NewMemoryExchangeStore creates an in-memory exchange store
func NewMemoryExchangeStore() *MemoryExchangeStore {
	return &MemoryExchangeStore{entries: make(map[string]memoryEntry)}
}

// Create stores the exchange data under a fresh token
func (s *MemoryExchangeStore) Create(_ context.Context, data *ExchangeData, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	return token, nil
}

// Consume reads and deletes a token; (nil, nil) when missing or expired
func (s *MemoryExchangeStore) Consume(_ context.Context, token string) (*ExchangeData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return nil, nil
	}
	delete(s.entries, token)
	if time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.data, nil
}
