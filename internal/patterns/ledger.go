package patterns

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger records which template bodies were already emitted per
// conversation thread. Implementations need not be atomic across calls; the
// Library serialises access per thread.
type Ledger interface {
	Used(ctx context.Context, threadID string) (map[string]bool, error)
	Record(ctx context.Context, threadID, body string) error
	Reset(ctx context.Context, threadID string) error
}

// MemoryLedger keeps the ledger in process memory for the process lifetime.
type MemoryLedger struct {
	mu      sync.Mutex
	threads map[string]map[string]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{threads: make(map[string]map[string]bool)}
}

func (m *MemoryLedger) Used(_ context.Context, threadID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.threads[threadID]))
	for body := range m.threads[threadID] {
		out[body] = true
	}
	return out, nil
}

func (m *MemoryLedger) Record(_ context.Context, threadID, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.threads[threadID]
	if !ok {
		set = make(map[string]bool)
		m.threads[threadID] = set
	}
	set[body] = true
	return nil
}

func (m *MemoryLedger) Reset(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.threads, threadID)
	return nil
}

// RedisLedger stores each thread as a Redis set that expires ttl after its
// last write, so abandoned threads do not accumulate.
type RedisLedger struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLedger parses a redis:// URL. A zero ttl disables expiry.
func NewRedisLedger(redisURL string, ttl time.Duration) (*RedisLedger, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisLedgerFromOptions(opts, ttl), nil
}

func NewRedisLedgerFromOptions(opts *redis.Options, ttl time.Duration) *RedisLedger {
	return &RedisLedger{rdb: redis.NewClient(opts), prefix: "mimic:ledger:", ttl: ttl}
}

func (r *RedisLedger) key(threadID string) string {
	return r.prefix + threadID
}

// Ping verifies Redis connectivity.
func (r *RedisLedger) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisLedger) Close() error {
	return r.rdb.Close()
}

func (r *RedisLedger) Used(ctx context.Context, threadID string) (map[string]bool, error) {
	members, err := r.rdb.SMembers(ctx, r.key(threadID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	out := make(map[string]bool, len(members))
	for _, m := range members {
		out[m] = true
	}
	return out, nil
}

func (r *RedisLedger) Record(ctx context.Context, threadID, body string) error {
	key := r.key(threadID)
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, key, body)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record ledger: %w", err)
	}
	return nil
}

func (r *RedisLedger) Reset(ctx context.Context, threadID string) error {
	if err := r.rdb.Del(ctx, r.key(threadID)).Err(); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}
