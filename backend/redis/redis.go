// Package redis adapts a go-redis client to the tagcache backend contract.
// Values use the server's native per-key TTL, tag sets map onto Redis sets,
// and the cross-process lock is a SET NX with expiry.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tagcache/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

const defaultKeyPrefix = "tagcache:"

// delBatch bounds how many keys a single DEL carries during DelMany/Clear.
const delBatch = 512

type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var (
	_ backend.Backend = (*Redis)(nil)
	_ backend.Locker  = (*Redis)(nil)
)

type Config struct {
	Client goredis.UniversalClient

	// KeyPrefix is prepended to every key this adapter touches and scopes
	// Clear to a SCAN over that prefix, so a shared database is never
	// flushed. Empty => "tagcache:".
	KeyPrefix string

	// CloseClient should be true only if this adapter exclusively owns the
	// client.
	CloseClient bool
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{rdb: cfg.Client, prefix: prefix, closeClient: cfg.CloseClient}, nil
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // non-positive TTLs mean "no expiry" at the adapter level
	}
	return r.rdb.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

func (r *Redis) DelMany(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += delBatch {
		end := start + delBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := make([]string, 0, end-start)
		for _, k := range keys[start:end] {
			batch = append(batch, r.key(k))
		}
		if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Clear scans the adapter's prefix and deletes in batches. Other tenants of
// the same database are untouched.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", int64(delBatch)).Iterator()
	batch := make([]string, 0, delBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == delBatch {
			if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *Redis) SetAdd(ctx context.Context, setKey, member string) error {
	return r.rdb.SAdd(ctx, r.key(setKey), member).Err()
}

func (r *Redis) SetMembers(ctx context.Context, setKey string) ([]string, error) {
	members, err := r.rdb.SMembers(ctx, r.key(setKey)).Result()
	if err != nil && err != goredis.Nil {
		return nil, err
	}
	return members, nil
}

func (r *Redis) SetDrop(ctx context.Context, setKey string) error {
	return r.rdb.Del(ctx, r.key(setKey)).Err()
}

func (r *Redis) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, r.key(key), "1", ttl).Result()
}

func (r *Redis) ReleaseLock(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

// Close releases the underlying client only when this adapter owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Redis) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
