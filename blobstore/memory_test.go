package blobstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	runStoreLifecycle(t, NewMemoryStore())
}

func TestMemoryStore_PutCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "x", data))
	data[0] = 'X'

	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf))
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("blob-%02d", i)
			assert.NoError(t, store.Put(ctx, name, []byte(name)))
			_, err := store.Open(ctx, name)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	names, err := store.List(ctx, "blob-")
	require.NoError(t, err)
	assert.Len(t, names, 16)
}

func TestAbort(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]BlobStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			w, err := store.Create(ctx, "aborted.pkv")
			require.NoError(t, err)
			_, err = w.Write([]byte("half a backup"))
			require.NoError(t, err)
			require.NoError(t, Abort(w))

			_, err = store.Open(ctx, "aborted.pkv")
			assert.ErrorIs(t, err, ErrNotFound)
			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}
