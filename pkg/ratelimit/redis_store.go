package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"seotooler/internal/constants"
)

const (
	fieldCount       = "count"
	fieldWindowStart = "window_start"

	pingTimeout = 5 * time.Second
)

// RedisStore shares the rate limit table between instances. Each record is
// a hash that also carries a PEXPIREAT, so Sweep only has to catch keys
// written without one.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisStoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRecordTTL sets how long past WindowStart a record is kept.
func WithRecordTTL(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) { s.ttl = d }
}

func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: constants.CacheKeyPrefixRateLimit,
		ttl:    constants.DefaultWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(identity string) string {
	return s.prefix + identity
}

func (s *RedisStore) Get(ctx context.Context, identity string) (Record, bool, error) {
	values, err := s.client.HGetAll(ctx, s.key(identity)).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("redis HGETALL failed: %w", err)
	}
	if len(values) == 0 {
		return Record{}, false, nil
	}

	rec, err := decodeRecord(values)
	if err != nil {
		return Record{}, false, fmt.Errorf("corrupt rate limit record for %q: %w", identity, err)
	}
	return rec, true, nil
}

func (s *RedisStore) Set(ctx context.Context, identity string, rec Record) error {
	key := s.key(identity)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		fieldCount, rec.Count,
		fieldWindowStart, rec.WindowStart.UnixMilli(),
	)
	// One extra second keeps the record readable at exactly now - start == window.
	pipe.PExpireAt(ctx, key, rec.WindowStart.Add(s.ttl+time.Second))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis HSET failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	removed := 0
	for iter.Next(ctx) {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}

		key := iter.Val()
		raw, err := s.client.HGet(ctx, key, fieldWindowStart).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("redis HGET failed: %w", err)
		}

		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || now.Sub(time.UnixMilli(ms)) > window {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return removed, fmt.Errorf("redis DEL failed: %w", err)
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan failed: %w", err)
	}
	return removed, nil
}

// Ping backs the "redis" health check.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func decodeRecord(values map[string]string) (Record, error) {
	count, err := strconv.Atoi(strings.TrimSpace(values[fieldCount]))
	if err != nil {
		return Record{}, fmt.Errorf("invalid count: %w", err)
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(values[fieldWindowStart]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid window start: %w", err)
	}
	return Record{Count: count, WindowStart: time.UnixMilli(ms)}, nil
}
