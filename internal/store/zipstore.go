package store

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dbsmedya/refdump/internal/record"
)

// ZipStore reads records from a zip archive using the same
// <namespace>/<name>.json layout as DirStore. Archives are read-only.
type ZipStore struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
	order []string // archive member order
}

// OpenZip opens a zip archive as a record store. The member index is built
// once at open time so existence checks stay cheap.
func OpenZip(archivePath string) (*ZipStore, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	s := &ZipStore{
		rc:    rc,
		files: make(map[string]*zip.File),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		path := identifierFromMember(f.Name)
		if path == "" {
			continue
		}
		if _, dup := s.files[path]; dup {
			continue
		}
		s.files[path] = f
		s.order = append(s.order, path)
	}
	return s, nil
}

// identifierFromMember maps an archive member name to a record identifier.
// "ns/name.json" becomes "ns.name"; root-level "name.json" stays "name".
// Members nested deeper or without the .json suffix are not records.
func identifierFromMember(member string) string {
	if !strings.HasSuffix(member, ".json") {
		return ""
	}
	trimmed := strings.TrimSuffix(member, ".json")
	parts := strings.Split(trimmed, "/")
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return ""
		}
		return parts[0] + "." + parts[1]
	default:
		return ""
	}
}

// Exists reports whether the archive holds a record for the candidate.
func (s *ZipStore) Exists(ctx context.Context, candidate string) (bool, error) {
	_, ok := s.files[candidate]
	return ok, nil
}

// Fetch reads and decodes the record at path.
func (s *ZipStore) Fetch(ctx context.Context, path string) (interface{}, error) {
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

// FetchRaw reads the stored bytes for path from the archive.
func (s *ZipStore) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	f, ok := s.files[path]
	if !ok {
		return nil, ErrNotFound
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read member %s: %w", f.Name, err)
	}
	return raw, nil
}

// ListAll returns every record identifier in archive member order.
func (s *ZipStore) ListAll(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

// Close releases the archive handle.
func (s *ZipStore) Close() error {
	return s.rc.Close()
}
