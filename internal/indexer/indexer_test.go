package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/refdump/internal/store"
)

func dirStoreWith(t *testing.T, docs map[string]string) *store.DirStore {
	t.Helper()
	s, err := store.OpenDirWrite(t.TempDir())
	require.NoError(t, err)
	for path, raw := range docs {
		require.NoError(t, s.Put(context.Background(), path, []byte(raw)))
	}
	return s
}

var sourceDocs = map[string]string{
	"A.one":   `{"$type":"Quest","next":"A.two"}`,
	"A.two":   `{"$type":"Quest"}`,
	"B.three": `{"$type":"Item"}`,
	"B.four":  `{"$type":"Item"}`,
	"C.five":  `{"$type":"Creature"}`,
}

func TestNewValidation(t *testing.T) {
	s := dirStoreWith(t, nil)

	_, err := New(nil, s, Options{}, nil)
	assert.Error(t, err)

	_, err = New(s, nil, Options{}, nil)
	assert.Error(t, err)

	ix, err := New(s, s, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, ix.opts.BatchSize)
}

func TestRunCopiesAllRecords(t *testing.T) {
	source := dirStoreWith(t, sourceDocs)
	dest := dirStoreWith(t, nil)

	ix, err := New(source, dest, Options{BatchSize: 2}, nil)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.RecordsCopied)
	assert.Equal(t, 0, stats.RecordsSkipped)
	assert.Equal(t, 0, stats.RecordsFailed)
	assert.Equal(t, 3, stats.Batches)

	paths, err := dest.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, paths, 5)

	raw, err := dest.FetchRaw(context.Background(), "A.one")
	require.NoError(t, err)
	assert.Equal(t, sourceDocs["A.one"], string(raw))
}

func TestRunResumeSkipsExisting(t *testing.T) {
	source := dirStoreWith(t, sourceDocs)
	dest := dirStoreWith(t, map[string]string{
		"A.one": sourceDocs["A.one"],
		"A.two": sourceDocs["A.two"],
	})

	ix, err := New(source, dest, Options{Resume: true}, nil)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.RecordsCopied)
	assert.Equal(t, 2, stats.RecordsSkipped)
}

func TestRunWithoutResumeOverwrites(t *testing.T) {
	source := dirStoreWith(t, sourceDocs)
	dest := dirStoreWith(t, map[string]string{
		"A.one": `{"stale":true}`,
	})

	ix, err := New(source, dest, Options{}, nil)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.RecordsCopied)

	raw, err := dest.FetchRaw(context.Background(), "A.one")
	require.NoError(t, err)
	assert.Equal(t, sourceDocs["A.one"], string(raw))
}

// flakySource fails reads for one path; the indexer skips it and goes on.
type flakySource struct {
	*store.DirStore
	badPath string
}

func (f *flakySource) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	if path == f.badPath {
		return nil, errors.New("corrupt block")
	}
	return f.DirStore.FetchRaw(ctx, path)
}

func TestRunSkipsUnreadableSourceRecords(t *testing.T) {
	source := &flakySource{DirStore: dirStoreWith(t, sourceDocs), badPath: "B.three"}
	dest := dirStoreWith(t, nil)

	ix, err := New(source, dest, Options{}, nil)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.RecordsCopied)
	assert.Equal(t, 1, stats.RecordsFailed)

	ok, err := dest.Exists(context.Background(), "B.three")
	require.NoError(t, err)
	assert.False(t, ok)
}

// failingDest rejects writes after a number of successful puts.
type failingDest struct {
	*store.DirStore
	allow int
	puts  int
}

func (f *failingDest) Put(ctx context.Context, path string, raw []byte) error {
	f.puts++
	if f.puts > f.allow {
		return errors.New("index table corrupted")
	}
	return f.DirStore.Put(ctx, path, raw)
}

func TestRunAbortsOnWriteFailure(t *testing.T) {
	source := dirStoreWith(t, sourceDocs)
	dest := &failingDest{DirStore: dirStoreWith(t, nil), allow: 2}

	ix, err := New(source, dest, Options{}, nil)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index table corrupted")
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.RecordsCopied)
}

func TestRunCanceledContext(t *testing.T) {
	source := dirStoreWith(t, sourceDocs)
	dest := dirStoreWith(t, nil)

	ix, err := New(source, dest, Options{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := ix.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.RecordsCopied)
}

func TestRunEmptySource(t *testing.T) {
	source := dirStoreWith(t, nil)
	dest := dirStoreWith(t, nil)

	ix, err := New(source, dest, Options{}, nil)
	require.NoError(t, err)

	stats, err := ix.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RecordsCopied)
	assert.Equal(t, 0, stats.Batches)
}
