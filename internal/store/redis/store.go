// Package redis is a store.Store over Redis. Each record is a string value
// and every collection keeps a set of its keys so GetAll avoids SCAN.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/MrSnakeDoc/pathways/internal/store"
	"github.com/redis/go-redis/v9"
)

var _ store.Store = (*Store)(nil)

// Store handles Redis operations for all collections.
type Store struct {
	client      *redis.Client
	prefix      string
	ready       func(ctx context.Context) error
	initialized atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithReadiness replaces the single PING done by Init, typically with a
// retrying wait.
func WithReadiness(fn func(ctx context.Context) error) Option {
	return func(s *Store) { s.ready = fn }
}

// NewStore creates a Redis store. The client is not contacted until Init.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	s.ready = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init waits for the server to answer.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	if err := s.ready(ctx); err != nil {
		return store.Unavailable(err)
	}
	s.initialized.Store(true)
	return nil
}

func (s *Store) Get(ctx context.Context, c store.Collection, key string) ([]byte, error) {
	if err := s.check(c); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, RecordKey(s.prefix, c, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("get %s/%s: %w", c, key, err))
	}
	return data, nil
}

// GetAll reads the member set and fetches every value with MGET. Members
// whose value has vanished are skipped.
func (s *Store) GetAll(ctx context.Context, c store.Collection) ([]store.Record, error) {
	if err := s.check(c); err != nil {
		return nil, err
	}

	keys, err := s.client.SMembers(ctx, MembersKey(s.prefix, c)).Result()
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("list %s: %w", c, err))
	}
	if len(keys) == 0 {
		return []store.Record{}, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = RecordKey(s.prefix, c, k)
	}

	values, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("fetch %s: %w", c, err))
	}

	out := make([]store.Record, 0, len(keys))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, store.Record{Key: keys[i], Value: []byte(str)})
	}
	return out, nil
}

// Put writes the value and its set membership in one MULTI/EXEC.
func (s *Store) Put(ctx context.Context, c store.Collection, key string, value []byte) error {
	if err := s.check(c); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, RecordKey(s.prefix, c, key), value, 0)
	pipe.SAdd(ctx, MembersKey(s.prefix, c), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return store.Unavailable(fmt.Errorf("put %s/%s: %w", c, key, err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, c store.Collection, key string) error {
	if err := s.check(c); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, RecordKey(s.prefix, c, key))
	pipe.SRem(ctx, MembersKey(s.prefix, c), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return store.Unavailable(fmt.Errorf("delete %s/%s: %w", c, key, err))
	}
	return nil
}

func (s *Store) Close() error {
	s.initialized.Store(false)
	return s.client.Close()
}

func (s *Store) check(c store.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !s.initialized.Load() {
		return store.ErrNotInitialized
	}
	return nil
}
