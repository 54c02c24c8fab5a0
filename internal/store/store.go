// Package store defines the Persistent Store: a durable, key-indexed record
// store with a fixed set of named collections.
//
// Backends live in the sub-packages (memory, sqlite, redis). Records are
// opaque bytes; encoding is the caller's concern.
package store

import (
	"context"
	"fmt"
)

// Collection names a logical record set.
type Collection string

const (
	// Pathways holds one record per pathway, keyed by pathway id.
	Pathways Collection = "pathways"
	// Settings holds one record per setting, keyed by setting name.
	Settings Collection = "settings"
	// GitHub holds the remote-sync config singleton under ConfigKey.
	GitHub Collection = "github"
)

// ConfigKey is the fixed primary key of the GitHub singleton.
const ConfigKey = "config"

// Collections lists every collection a backend must provide.
func Collections() []Collection {
	return []Collection{Pathways, Settings, GitHub}
}

// Validate rejects collection names the store does not know about.
func (c Collection) Validate() error {
	switch c {
	case Pathways, Settings, GitHub:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
	}
}

// Record is one stored key/value pair.
type Record struct {
	Key   string
	Value []byte
}

// Store is the contract every backend implements.
//
// Init must complete before any other method is used; callers coordinate
// that through the readiness gate. Get returns ErrNotFound for a missing
// key. GetAll returns records in no particular order. Put is a full upsert,
// never a field merge. Delete of a missing key is a no-op.
type Store interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, c Collection, key string) ([]byte, error)
	GetAll(ctx context.Context, c Collection) ([]Record, error)
	Put(ctx context.Context, c Collection, key string, value []byte) error
	Delete(ctx context.Context, c Collection, key string) error
	Close() error
}
