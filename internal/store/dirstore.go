package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/refdump/internal/record"
)

// DirStore reads records from a directory tree laid out as
// <root>/<namespace>/<name>.json, with namespace-less records directly
// under the root.
type DirStore struct {
	root string
}

// OpenDir opens an existing directory as a record store.
func OpenDir(root string) (*DirStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store root %s is not a directory", root)
	}
	return &DirStore{root: root}, nil
}

// OpenDirWrite opens a directory as a writable store, creating it if needed.
func OpenDirWrite(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("store root: %w", err)
	}
	return &DirStore{root: root}, nil
}

// filePath maps a record identifier to its file location. Identifiers
// carrying filesystem separators would escape the root and map to "".
func (s *DirStore) filePath(path string) string {
	if path == "" || strings.ContainsAny(path, `/\`) {
		return ""
	}
	ns := record.Namespace(path)
	name := record.Name(path)
	if ns == name {
		// No separator; the record lives directly under the root.
		return filepath.Join(s.root, name+".json")
	}
	return filepath.Join(s.root, ns, name+".json")
}

// Exists reports whether a record file is present for the candidate.
func (s *DirStore) Exists(ctx context.Context, candidate string) (bool, error) {
	file := s.filePath(candidate)
	if file == "" {
		return false, nil
	}
	info, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// Fetch reads and decodes the record at path.
func (s *DirStore) Fetch(ctx context.Context, path string) (interface{}, error) {
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
func (s *DirStore) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	file := s.filePath(path)
	if file == "" {
		return nil, ErrNotFound
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

// ListAll walks the store root and returns every record identifier.
// The walk is lexical, so the order is deterministic.
func (s *DirStore) ListAll(ctx context.Context) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Only namespace directories directly under the root are scanned.
			if file != s.root && filepath.Dir(file) != s.root {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		name := strings.TrimSuffix(d.Name(), ".json")
		rel, err := filepath.Rel(s.root, file)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(rel); dir != "." {
			paths = append(paths, dir+"."+name)
		} else {
			paths = append(paths, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan store root: %w", err)
	}
	return paths, nil
}

// Put writes raw record bytes to the file for path, creating the
// namespace directory as needed.
func (s *DirStore) Put(ctx context.Context, path string, raw []byte) error {
	file := s.filePath(path)
	if file == "" {
		return fmt.Errorf("invalid record identifier %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}
	return os.WriteFile(file, raw, 0644)
}

// Close is a no-op for directory stores.
func (s *DirStore) Close() error {
	return nil
}
