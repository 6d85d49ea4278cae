package wal

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv struct {
	key, value string
}

func encodeAll(t *testing.T, pageSize int, recs ...kv) []byte {
	t.Helper()
	var out []byte
	for _, r := range recs {
		buf := make([]byte, EncodedLen(len(r.key), len(r.value), pageSize))
		n, err := Encode(buf, []byte(r.key), []byte(r.value), pageSize)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		out = append(out, buf...)
	}
	return out
}

func decodeAll(data []byte) []kv {
	var out []kv
	for k, v := range Decode(data) {
		out = append(out, kv{string(k), string(v)})
	}
	return out
}

func TestEncodedLen(t *testing.T) {
	tests := []struct {
		keyLen, valueLen, pageSize int
		want                       int
	}{
		{1, 0, 4096, 4096},
		{3, 3, 4096, 4096},
		{4096 - 12 - 10, 10, 4096, 4096},
		{4096 - 12 - 10, 11, 4096, 8192},
		{100, 1000, 512, 1536},
		{1, 1, 1, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodedLen(tt.keyLen, tt.valueLen, tt.pageSize),
			"EncodedLen(%d, %d, %d)", tt.keyLen, tt.valueLen, tt.pageSize)
	}
}

func TestEncode_Layout(t *testing.T) {
	buf := make([]byte, 512)
	n, err := Encode(buf, []byte("aaa"), []byte("xy"), 512)
	require.NoError(t, err)
	require.Equal(t, 512, n)

	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, "aaa", string(buf[4:7]))
	assert.Equal(t, uint32(512-12-3-2), binary.LittleEndian.Uint32(buf[7:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[11:]))
	assert.Equal(t, "xy", string(buf[15:17]))
}

func TestEncode_ShortDestination(t *testing.T) {
	_, err := Encode(make([]byte, 100), []byte("k"), []byte("v"), 512)
	assert.Error(t, err)
}

func TestDecode_RoundTrip(t *testing.T) {
	recs := []kv{{"a", "1"}, {"bb", ""}, {"a", "2"}, {"key", string(make([]byte, 3000))}}
	data := encodeAll(t, 512, recs...)

	assert.Equal(t, recs, decodeAll(data))
	assert.Equal(t, len(data), ValidPrefix(data))
}

func TestDecode_StopsOnIncompleteTail(t *testing.T) {
	data := encodeAll(t, 512, kv{"a", "1"}, kv{"b", "2"})
	full := len(data)

	// Every cut inside the second record keeps only the first one.
	for cut := 512; cut < full; cut += 37 {
		got := decodeAll(data[:cut])
		assert.Equal(t, []kv{{"a", "1"}}, got, "cut at %d", cut)
		assert.Equal(t, 512, ValidPrefix(data[:cut]), "cut at %d", cut)
	}

	for cut := 0; cut < 512; cut += 53 {
		assert.Empty(t, decodeAll(data[:cut]), "cut at %d", cut)
		assert.Equal(t, 0, ValidPrefix(data[:cut]))
	}
}

func TestDecode_CutPaddingDropsWholeValue(t *testing.T) {
	data := encodeAll(t, 512, kv{"a", "1"}, kv{"b", "2"})

	// Key and value of "b" are complete; only its padding is missing. The
	// record still counts as torn, so replay and repair stop before it.
	whole := 512 + 4 + len("b") + 8 + len("2")
	for _, cut := range []int{whole, whole + 1, len(data) - 1} {
		assert.Equal(t, []kv{{"a", "1"}}, decodeAll(data[:cut]), "cut at %d", cut)
		assert.Equal(t, 512, ValidPrefix(data[:cut]), "cut at %d", cut)
	}
	assert.Equal(t, []kv{{"a", "1"}, {"b", "2"}}, decodeAll(data))
}

func TestDecode_ZeroFilledTail(t *testing.T) {
	data := encodeAll(t, 512, kv{"a", "1"})
	data = append(data, make([]byte, 4096)...)

	assert.Equal(t, []kv{{"a", "1"}}, decodeAll(data))
	assert.Equal(t, 512, ValidPrefix(data))
}

func TestDecode_HugeLengthDoesNotOverflow(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data, 0xFFFFFFFF)
	assert.Empty(t, decodeAll(data))
	assert.Equal(t, 0, ValidPrefix(data))
}

func TestDecode_EarlyStop(t *testing.T) {
	data := encodeAll(t, 512, kv{"a", "1"}, kv{"b", "2"}, kv{"c", "3"})

	var seen int
	for range Decode(data) {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func BenchmarkEncode(b *testing.B) {
	key := []byte("benchmark-key")
	value := make([]byte, 4000)
	buf := make([]byte, EncodedLen(len(key), len(value), 4096))

	b.ReportAllocs()
	for b.Loop() {
		_, _ = Encode(buf, key, value, 4096)
	}
}
