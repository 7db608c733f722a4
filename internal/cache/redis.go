package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "leadfinder:cache:"

// RedisBackend stores entries as JSON strings. Keys carry no server-side
// expiry; staleness is decided by ResultCache on lookup.
type RedisBackend struct {
	client redis.UniversalClient
}

func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// DialRedis connects and pings a single Redis server.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", addr, err)
	}
	return NewRedisBackend(client), nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := r.client.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	return e, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := r.client.Set(ctx, redisPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// scan visits every stored entry.
func (r *RedisBackend) scan(ctx context.Context, fn func(key string, e Entry) error) error {
	iter := r.client.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		e, ok, err := r.Get(ctx, full[len(redisPrefix):])
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := fn(full[len(redisPrefix):], e); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []string
	err := r.scan(ctx, func(key string, e Entry) error {
		if e.StoredAt.Before(cutoff) {
			stale = append(stale, redisPrefix+key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	n, err := r.client.Del(ctx, stale...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return int(n), nil
}

func (r *RedisBackend) Stats(ctx context.Context) (BackendStats, error) {
	var times []time.Time
	err := r.scan(ctx, func(_ string, e Entry) error {
		times = append(times, e.StoredAt)
		return nil
	})
	if err != nil {
		return BackendStats{}, err
	}
	return statsOf(func(yield func(time.Time)) {
		for _, t := range times {
			yield(t)
		}
	}), nil
}
