// Package store provides access to external keyed record stores for refdump.
//
// A store holds JSON-encoded records addressed by dotted "namespace.name"
// identifiers. Four backends are supported: a directory tree, a zip archive,
// a SQL table (MySQL, Postgres, or SQLite), and a Badger key-value database.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/refdump/internal/config"
)

// ErrNotFound is returned by Fetch and FetchRaw when the store has no
// record at the requested path.
var ErrNotFound = errors.New("record not found")

// Store is the read surface of an external keyed record store.
type Store interface {
	// Exists reports whether the candidate is a known record identifier.
	Exists(ctx context.Context, candidate string) (bool, error)

	// Fetch returns the decoded content tree for a record path.
	// Returns ErrNotFound when the path is unknown.
	Fetch(ctx context.Context, path string) (interface{}, error)

	// ListAll returns every known record identifier in a deterministic order.
	ListAll(ctx context.Context) ([]string, error)

	Close() error
}

// RawStore is a Store that can also return the raw encoded bytes of a
// record, used for index copies and verification.
type RawStore interface {
	Store

	// FetchRaw returns the stored bytes for a record path.
	// Returns ErrNotFound when the path is unknown.
	FetchRaw(ctx context.Context, path string) ([]byte, error)
}

// WriteStore is a store that also accepts records, used as an index
// destination. The zip backend is read-only and does not implement it.
type WriteStore interface {
	RawStore

	// Put stores raw record bytes under a path, replacing any existing record.
	Put(ctx context.Context, path string, raw []byte) error
}

// Open creates a read-only store from configuration.
func Open(ctx context.Context, cfg *config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "dir":
		return OpenDir(cfg.Path)
	case "zip":
		return OpenZip(cfg.Path)
	case "badger":
		return OpenBadger(cfg.Path)
	case "mysql", "postgres", "sqlite":
		return OpenSQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// OpenWrite creates a writable store from configuration.
func OpenWrite(ctx context.Context, cfg *config.StoreConfig) (WriteStore, error) {
	switch cfg.Driver {
	case "dir":
		return OpenDirWrite(cfg.Path)
	case "badger":
		return OpenBadger(cfg.Path)
	case "mysql", "postgres", "sqlite":
		return OpenSQL(ctx, cfg)
	case "zip":
		return nil, fmt.Errorf("the zip driver is read-only")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
