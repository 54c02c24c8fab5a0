// Package memory is an in-process store.Store. Nothing survives a restart;
// it backs tests and PATHWAYS_STORE_BACKEND=memory.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/pathways/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps each collection in its own map behind a single RWMutex.
type Store struct {
	mu          sync.RWMutex
	collections map[store.Collection]map[string][]byte
	initialized bool
	closed      bool

	// initHook, when set, runs inside Init. Tests use it to delay or fail
	// the open.
	initHook func(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithInitHook installs fn to run during Init. A non-nil error from fn
// fails Init with store.ErrStoreUnavailable.
func WithInitHook(fn func(ctx context.Context) error) Option {
	return func(s *Store) { s.initHook = fn }
}

// New creates an empty memory store.
func New(opts ...Option) *Store {
	s := &Store{collections: make(map[store.Collection]map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init prepares the collections. Calling it again is a no-op.
func (s *Store) Init(ctx context.Context) error {
	if s.initHook != nil {
		if err := s.initHook(ctx); err != nil {
			return store.Unavailable(err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.Unavailable(nil)
	}
	if s.initialized {
		return nil
	}
	for _, c := range store.Collections() {
		s.collections[c] = make(map[string][]byte)
	}
	s.initialized = true
	return nil
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, c store.Collection, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.collectionLocked(c)
	if err != nil {
		return nil, err
	}
	v, ok := records[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(v), nil
}

// GetAll returns a snapshot of the collection.
func (s *Store) GetAll(_ context.Context, c store.Collection) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.collectionLocked(c)
	if err != nil {
		return nil, err
	}
	out := make([]store.Record, 0, len(records))
	for k, v := range records {
		out = append(out, store.Record{Key: k, Value: clone(v)})
	}
	return out, nil
}

// Put upserts the full record.
func (s *Store) Put(_ context.Context, c store.Collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.collectionLocked(c)
	if err != nil {
		return err
	}
	records[key] = clone(value)
	return nil
}

// Delete removes key if present.
func (s *Store) Delete(_ context.Context, c store.Collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.collectionLocked(c)
	if err != nil {
		return err
	}
	delete(records, key)
	return nil
}

// Close drops all data. Later calls fail with ErrStoreUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.initialized = false
	s.collections = make(map[store.Collection]map[string][]byte)
	return nil
}

func (s *Store) collectionLocked(c store.Collection) (map[string][]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, store.Unavailable(nil)
	}
	if !s.initialized {
		return nil, store.ErrNotInitialized
	}
	return s.collections[c], nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
