package traverse

import (
	"context"
	"fmt"

	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/store"
)

// memStore is an in-memory record store for tests. Records are raw JSON
// keyed by path; ListAll returns insertion order. Call counters let tests
// assert how often the oracle and bulk scans were hit.
type memStore struct {
	records map[string]string
	order   []string

	existsCalls int
	fetchCalls  int
	listCalls   int

	existsErr error
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]string)}
}

func (m *memStore) add(path, raw string) *memStore {
	if _, dup := m.records[path]; !dup {
		m.order = append(m.order, path)
	}
	m.records[path] = raw
	return m
}

func (m *memStore) Exists(ctx context.Context, candidate string) (bool, error) {
	m.existsCalls++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.records[candidate]
	return ok, nil
}

func (m *memStore) Fetch(ctx context.Context, path string) (interface{}, error) {
	m.fetchCalls++
	raw, ok := m.records[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	content, err := record.DecodeContent([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return content, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]string, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.order...), nil
}

func (m *memStore) Close() error {
	return nil
}
