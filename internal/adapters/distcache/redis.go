package distcache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/noderun/internal/core/domain"
	"go.trai.ch/zerr"
)

const redisPingTimeout = 5 * time.Second

// RedisBlobs stores archives as redis strings with an expiry.
type RedisBlobs struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBlobs connects to the server of cfg and checks that it answers.
func NewRedisBlobs(ctx context.Context, cfg domain.RedisConfig) (*RedisBlobs, error) {
	opts := &redis.Options{Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrConfigInvalid.Error())
		}
		opts.Addr = parsed.Addr
		if parsed.Password != "" && cfg.Password == "" {
			opts.Password = parsed.Password
		}
		if parsed.DB != 0 && cfg.DB == 0 {
			opts.DB = parsed.DB
		}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, zerr.With(zerr.Wrap(err, "redis ping"), "addr", opts.Addr)
	}
	return &RedisBlobs{client: client, ttl: cfg.TTL}, nil
}

// Exists reports whether key is stored.
func (b *RedisBlobs) Exists(ctx context.Context, key string) (bool, error) {
	n, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return false, zerr.Wrap(err, "redis exists")
	}
	return n > 0, nil
}

// Get returns the content stored under key.
func (b *RedisBlobs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, zerr.Wrap(err, "redis get")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put stores data under key. A zero ttl keeps it forever.
func (b *RedisBlobs) Put(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, key, data, b.ttl).Err(); err != nil {
		return zerr.Wrap(err, "redis set")
	}
	return nil
}

// Close closes the connection pool.
func (b *RedisBlobs) Close() error {
	return b.client.Close()
}
