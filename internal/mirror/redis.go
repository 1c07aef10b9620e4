package mirror

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/h0rv/counters/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisMirror stores the list as a single JSON value, so a replace is one SET
// and readers never observe a partially inserted list.
type RedisMirror struct {
	client *redis.Client
	prefix string
}

// NewRedisMirror creates a mirror under keys starting with prefix.
func NewRedisMirror(client *redis.Client, prefix string) *RedisMirror {
	return &RedisMirror{client: client, prefix: prefix}
}

func (r *RedisMirror) key() string {
	return r.prefix + "counters"
}

func (r *RedisMirror) ReplaceAll(ctx context.Context, counters []domain.Counter) error {
	data, err := sonic.Marshal(domain.Clone(counters))
	if err != nil {
		return fmt.Errorf("failed to encode mirror: %w", err)
	}
	if err := r.client.Set(ctx, r.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write mirror: %w", err)
	}
	return nil
}

func (r *RedisMirror) All(ctx context.Context) ([]domain.Counter, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err == redis.Nil {
		return []domain.Counter{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror: %w", err)
	}

	var counters []domain.Counter
	if err := sonic.Unmarshal(data, &counters); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return domain.Clone(counters), nil
}

func (r *RedisMirror) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear mirror: %w", err)
	}
	return nil
}

// RedisPrefs stores preference flags in a hash.
type RedisPrefs struct {
	client *redis.Client
	prefix string
}

// NewRedisPrefs creates prefs under keys starting with prefix.
func NewRedisPrefs(client *redis.Client, prefix string) *RedisPrefs {
	return &RedisPrefs{client: client, prefix: prefix}
}

func (r *RedisPrefs) key() string {
	return r.prefix + "prefs"
}

// Bool returns the flag, false when unset or unreadable.
func (r *RedisPrefs) Bool(key string) bool {
	v, err := r.client.HGet(context.Background(), r.key(), key).Result()
	if err != nil {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// SetBool persists the flag.
func (r *RedisPrefs) SetBool(key string, value bool) error {
	if err := r.client.HSet(context.Background(), r.key(), key, strconv.FormatBool(value)).Err(); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}
