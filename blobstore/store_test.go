package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}
}

func TestBlobStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte("hello ngram world")
			require.NoError(t, store.Put(ctx, "models/a.ngfm", data))

			blob, err := store.Open(ctx, "models/a.ngfm")
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err := blob.ReadAt(ctx, buf, 6)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "ngram", string(buf))

			n, err = blob.ReadAt(ctx, make([]byte, 10), 12)
			assert.Equal(t, 5, n)
			assert.ErrorIs(t, err, io.EOF)

			rc, err := blob.ReadRange(ctx, 12, 100)
			require.NoError(t, err)
			tail, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "world", string(tail))
			require.NoError(t, rc.Close())
			require.NoError(t, blob.Close())

			w, err := store.Create(ctx, "models/b.ngfm")
			require.NoError(t, err)
			_, err = w.Write([]byte("streamed"))
			require.NoError(t, err)
			require.NoError(t, w.Sync())
			require.NoError(t, w.Close())

			all, err := ReadAll(ctx, store, "models/b.ngfm")
			require.NoError(t, err)
			assert.Equal(t, "streamed", string(all))

			names, err := store.List(ctx, "models/")
			require.NoError(t, err)
			assert.Equal(t, []string{"models/a.ngfm", "models/b.ngfm"}, names)

			require.NoError(t, store.Delete(ctx, "models/a.ngfm"))
			require.NoError(t, store.Delete(ctx, "models/a.ngfm"), "deleting twice is fine")

			_, err = store.Open(ctx, "models/a.ngfm")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = ReadAll(ctx, store, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_Mappable(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "m", []byte("mapped")))

	blob, err := store.Open(ctx, "m")
	require.NoError(t, err)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mapped", string(data))

	require.NoError(t, blob.Close())
	_, err = m.Bytes()
	assert.Error(t, err)
}

func TestLocalStore_EmptyAndMissingRoot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	names, err := NewLocalStore(filepath.Join(dir, "nope")).List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	store := NewLocalStore(dir)
	require.NoError(t, store.Put(ctx, "empty", nil))
	data, err := ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestLocalStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	require.NoError(t, store.Put(ctx, "x", []byte("1")))
	require.NoError(t, store.Put(ctx, "x", []byte("2")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Name())

	data, err := ReadAll(ctx, store, "x")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", data))
	data[0] = 'z'

	got, err := ReadAll(ctx, store, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryStore_Mappable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	src := []byte("weights")
	require.NoError(t, store.Put(ctx, "m", src))
	src[0] = 'W'

	blob, err := store.Open(ctx, "m")
	require.NoError(t, err)
	mb, ok := blob.(Mappable)
	require.True(t, ok)

	data, err := mb.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "weights", string(data), "put copies its input")

	require.NoError(t, store.Put(ctx, "m", []byte("other")))
	assert.Equal(t, "weights", string(data), "open blobs keep their content")
}

func TestWritableBlob_Abort(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "m.ngfm", []byte("v1")))

			w, err := store.Create(ctx, "m.ngfm")
			require.NoError(t, err)
			_, err = w.Write([]byte("v2, half written"))
			require.NoError(t, err)
			require.NoError(t, w.Abort())
			require.NoError(t, w.Abort(), "abort twice is fine")

			got, err := ReadAll(ctx, store, "m.ngfm")
			require.NoError(t, err)
			assert.Equal(t, "v1", string(got))

			w, err = store.Create(ctx, "new.ngfm")
			require.NoError(t, err)
			require.NoError(t, w.Abort())
			_, err = store.Open(ctx, "new.ngfm")
			assert.ErrorIs(t, err, ErrNotFound)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"m.ngfm"}, names)
		})
	}
}
