package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagekv/blobstore"
)

func TestStore_KeyMapping(t *testing.T) {
	s := NewStore(nil, "bucket", "backups/")
	assert.Equal(t, "backups/nightly.pkv", s.key("nightly.pkv"))
	assert.Equal(t, "nightly.pkv", s.relative("backups/nightly.pkv"))

	s = NewStore(nil, "bucket", "")
	assert.Equal(t, "a/b.pkv", s.key("a/b.pkv"))
	assert.Equal(t, "a/b.pkv", s.relative("a/b.pkv"))
}

// TestMinioStore_Integration requires a running MinIO instance at
// PAGEKV_MINIO_ENDPOINT (for example localhost:9000 with minioadmin
// credentials).
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("PAGEKV_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("PAGEKV_MINIO_ENDPOINT not set")
	}

	ctx := context.Background()
	store, err := Dial(ctx, endpoint, "minioadmin", "minioadmin", false, "test-pagekv", "test-prefix/")
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	all, err := io.ReadAll(blobstore.NewReader(blob))
	require.NoError(t, err)
	require.Equal(t, data, all)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	_, err = store.Open(ctx, "test.txt")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	wb, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	blob, err = store.Open(ctx, "stream.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(13), blob.Size())
	require.NoError(t, blob.Close())

	_ = store.Delete(ctx, "stream.txt")
}
