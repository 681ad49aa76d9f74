package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"wildcard/internal/observability"
)

// Redis is a Store backed by a Redis instance. Keys are prefixed with the
// configured namespace so several profiles can share one server.
type Redis struct {
	client    *redis.Client
	namespace string
}

// OpenRedis connects to addr, which may be a bare host:port or a
// redis:// URL, and verifies the connection with a short ping.
func OpenRedis(addr, namespace string) (*Redis, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	observability.GlobalLogger.Info("redis store connected", "addr", opts.Addr, "namespace", namespace)
	return &Redis{client: client, namespace: namespace}, nil
}

// NewRedisFromClient wraps an existing client. Used by tests with miniredis.
func NewRedisFromClient(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) key(key string) string {
	return r.namespace + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		observability.StoreErrors.WithLabelValues("redis", "get").Inc()
		return nil, err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		observability.StoreErrors.WithLabelValues("redis", "set").Inc()
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		observability.StoreErrors.WithLabelValues("redis", "del").Inc()
		return err
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
