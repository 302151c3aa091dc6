package store

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dbsmedya/refdump/internal/record"
)

// BadgerStore reads records from a Badger key-value database where keys are
// record identifiers and values are JSON content.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a Badger database directory as a record store.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadger wraps an existing Badger handle. Used by tests with an
// in-memory database.
func NewBadger(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Exists reports whether a key is present for the candidate.
func (s *BadgerStore) Exists(ctx context.Context, candidate string) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(candidate))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("existence check for %s: %w", candidate, err)
	}
	return found, nil
}

// Fetch reads and decodes the record at path.
func (s *BadgerStore) Fetch(ctx context.Context, path string) (interface{}, error) {
	raw, err := s.FetchRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	content, err := record.DecodeContent(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return content, nil
}

// FetchRaw reads the stored bytes for path.
func (s *BadgerStore) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return raw, nil
}

// ListAll returns every record identifier in Badger's key order.
func (s *BadgerStore) ListAll(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			paths = append(paths, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	return paths, nil
}

// Put stores raw record bytes under a path.
func (s *BadgerStore) Put(ctx context.Context, path string, raw []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), raw)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
