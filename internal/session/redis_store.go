package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisClient wraps the go-redis client used for session storage.
type RedisClient struct {
	rdb *goredis.Client
}

func NewRedisClient(addr, password string, db int) *RedisClient {
	return &RedisClient{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// Client exposes the underlying connection to other Redis users such as the
// login rate limiter.
func (c *RedisClient) Client() *goredis.Client {
	return c.rdb
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

// RedisStore keeps each payload as a Redis string under <prefix><key>.
// A zero ttl stores without expiry.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(c *RedisClient, ttl time.Duration) *RedisStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &RedisStore{
		rdb:    rdb,
		prefix: "hxadmin:session:",
		ttl:    ttl,
	}
}

// Scope returns the Store for a single key.
func (r *RedisStore) Scope(key string) Store {
	return &redisScope{parent: r, key: r.prefix + key}
}

type redisScope struct {
	parent *RedisStore
	key    string
}

func (s *redisScope) Load(ctx context.Context) (*Session, error) {
	if s.parent.rdb == nil {
		return nil, ErrStoreUnavailable
	}

	raw, err := s.parent.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return New(raw)
}

func (s *redisScope) Save(ctx context.Context, sess *Session) error {
	if sess == nil || len(sess.Raw) == 0 {
		return ErrEmptyPayload
	}
	if s.parent.rdb == nil {
		return ErrStoreUnavailable
	}
	if err := s.parent.rdb.Set(ctx, s.key, sess.Raw, s.parent.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *redisScope) Clear(ctx context.Context) error {
	if s.parent.rdb == nil {
		return ErrStoreUnavailable
	}
	if err := s.parent.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
