package kv

import (
	"context"
	"errors"
	"net"
	"slices"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key, so several tools can share a database.
	// Defaults to "netview:".
	Prefix string
}

// RedisBackend stores keys in Redis under a common prefix.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisBackend connects to the Redis server described by opts and checks
// the connection.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{opts.Addr},
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Join(ErrUnavailable, err)
	}
	b := NewRedisBackendFromClient(client, opts.Prefix)
	b.owned = true
	return b, nil
}

// NewRedisBackendFromClient wraps an existing client. Close leaves the
// client open.
func NewRedisBackendFromClient(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "netview:"
	}
	return &RedisBackend{client: client, prefix: prefix}
}

// Name implements Backend.
func (b *RedisBackend) Name() string { return "redis" }

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(err)
	}
	return data, true, nil
}

// Set implements Backend.
func (b *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	return classify(b.client.Set(ctx, b.prefix+key, data, 0).Err())
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return classify(b.client.Del(ctx, b.prefix+key).Err())
}

// Keys implements Backend. It uses SCAN, so it never blocks the server.
func (b *RedisBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, b.prefix+escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear implements Backend. Only keys under the backend prefix are removed.
func (b *RedisBackend) Clear(ctx context.Context) error {
	keys, err := b.Keys(ctx, "")
	if err != nil {
		return err
	}
	for chunk := range slices.Chunk(keys, 500) {
		full := make([]string, len(chunk))
		for i, k := range chunk {
			full[i] = b.prefix + k
		}
		if err := b.client.Del(ctx, full...).Err(); err != nil {
			return classify(err)
		}
	}
	return nil
}

// Close closes the client if the backend created it.
func (b *RedisBackend) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}

// classify marks network failures and a closed client as unavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, redis.ErrClosed) {
		return Unavailable(err)
	}
	return err
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

var _ Backend = (*RedisBackend)(nil)
