package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	rng := NewRNG(4711)

	for range 1000 {
		k := rng.Key(4)
		require.Len(t, k, 4)
		assert.NotZero(t, k[0])
	}
	assert.Len(t, rng.Key(0), 1)
}

func TestKeyWithPrefix(t *testing.T) {
	rng := NewRNG(4711)

	k := rng.KeyWithPrefix('u', 8)
	assert.Len(t, k, 9)
	assert.Equal(t, byte('u'), k[0])
}

func TestKeys_Distinct(t *testing.T) {
	rng := NewRNG(4711)

	keys := rng.Keys(500, 2)
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[string(k)])
		seen[string(k)] = true
	}
	assert.Len(t, seen, 500)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.Value(32)
	rng.Reset()
	v2 := rng.Value(32)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestSequentialKey(t *testing.T) {
	assert.Equal(t, "user:00000007", string(SequentialKey("user:", 7)))
	assert.Less(t, string(SequentialKey("k", 9)), string(SequentialKey("k", 10)))
}

func TestModel(t *testing.T) {
	m := NewModel()
	m.Put([]byte("b"), []byte("1"))
	m.Put([]byte("a"), []byte("2"))
	m.Put([]byte("c"), []byte("3"))
	m.Put([]byte("b"), []byte("4"))

	v, ok := m.Get([]byte("b"))
	require.True(t, ok)
	assert.Equal(t, "4", string(v))
	assert.Equal(t, 3, m.Len())

	var keys []string
	for k := range m.Range([]byte("a"), []byte("c")) {
		keys = append(keys, string(k))
	}
	assert.Equal(t, []string{"a", "b"}, keys)

	keys = keys[:0]
	for k := range m.Range(nil, nil) {
		keys = append(keys, string(k))
		if len(keys) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}
