package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"helpsync/calllog"
	"helpsync/config"
	"helpsync/types"
)

// Store keeps the reports of past bulk operations, newest first
type Store interface {
	Save(ctx context.Context, report types.SyncReport) error
	Recent(ctx context.Context, n int) ([]types.SyncReport, error)
}

// RedisStore keeps reports in a capped redis list
type RedisStore struct {
	client *redis.Client
	key    string
	max    int
}

// NewRedisStore connects to redis and verifies connectivity
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Ping to verify
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreFromClient(client, cfg.Key, cfg.MaxEntries), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, key string, max int) *RedisStore {
	if key == "" {
		key = config.DefaultHistoryKey
	}
	if max <= 0 {
		max = config.HistorySize
	}
	return &RedisStore{client: client, key: key, max: max}
}

// Close closes the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Save pushes the report and trims the list to the configured size
func (s *RedisStore) Save(ctx context.Context, report types.SyncReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, int64(s.max-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Recent returns up to n reports, newest first
func (s *RedisStore) Recent(ctx context.Context, n int) ([]types.SyncReport, error) {
	if n <= 0 {
		n = s.max
	}
	raw, err := s.client.LRange(ctx, s.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	reports := make([]types.SyncReport, 0, len(raw))
	for _, item := range raw {
		var r types.SyncReport
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// MemoryStore keeps reports in process memory
type MemoryStore struct {
	ring *calllog.Ring[types.SyncReport]
}

// NewMemoryStore creates a store holding at most max reports
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = config.HistorySize
	}
	return &MemoryStore{ring: calllog.NewRing[types.SyncReport](max)}
}

// Save implements Store
func (s *MemoryStore) Save(_ context.Context, report types.SyncReport) error {
	s.ring.Add(report)
	return nil
}

// Recent implements Store
func (s *MemoryStore) Recent(_ context.Context, n int) ([]types.SyncReport, error) {
	entries := s.ring.Entries()
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]types.SyncReport, 0, n)
	for i := len(entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
