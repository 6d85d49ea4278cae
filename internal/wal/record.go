package wal

import (
	"encoding/binary"
	"errors"
	"iter"
	"math"
)

// Record layout (all integers little-endian):
//
//	key_len u32 | key | pad_len u32 | value_len u32 | value | pad
//
// The padding brings the record to a multiple of the page size so that a
// record can be written with O_DIRECT in a single call. It carries no data.
const headerOverhead = 12

// ErrRecordTooLarge is returned when a key or value length does not fit in 32 bits.
var ErrRecordTooLarge = errors.New("wal record too large")

// EncodedLen returns the on-disk size of a record with the given key and value
// lengths, rounded up to a multiple of pageSize.
func EncodedLen(keyLen, valueLen, pageSize int) int {
	raw := headerOverhead + keyLen + valueLen
	if pageSize <= 1 {
		return raw
	}
	return (raw + pageSize - 1) / pageSize * pageSize
}

// Encode writes the record for key and value into dst and returns its length.
// dst must hold at least EncodedLen(len(key), len(value), pageSize) bytes.
// Padding bytes are zeroed.
func Encode(dst, key, value []byte, pageSize int) (int, error) {
	if uint64(len(key)) > math.MaxUint32 || uint64(len(value)) > math.MaxUint32 {
		return 0, ErrRecordTooLarge
	}

	total := EncodedLen(len(key), len(value), pageSize)
	if len(dst) < total {
		return 0, errors.New("wal: destination buffer too small")
	}
	pad := total - headerOverhead - len(key) - len(value)

	off := 0
	binary.LittleEndian.PutUint32(dst[off:], uint32(len(key)))
	off += 4
	off += copy(dst[off:], key)
	binary.LittleEndian.PutUint32(dst[off:], uint32(pad))
	off += 4
	binary.LittleEndian.PutUint32(dst[off:], uint32(len(value)))
	off += 4
	off += copy(dst[off:], value)
	clear(dst[off:total])

	return total, nil
}

// next decodes the record at the start of data. It returns the record and its
// full length, or ok == false when data does not hold a complete record.
func next(data []byte) (key, value []byte, n int, ok bool) {
	if len(data) < 4 {
		return nil, nil, 0, false
	}
	keyLen := uint64(binary.LittleEndian.Uint32(data))
	off := uint64(4)

	if keyLen == 0 || keyLen > uint64(len(data))-off {
		return nil, nil, 0, false
	}
	key = data[off : off+keyLen]
	off += keyLen

	if uint64(len(data))-off < 8 {
		return nil, nil, 0, false
	}
	padLen := uint64(binary.LittleEndian.Uint32(data[off:]))
	valueLen := uint64(binary.LittleEndian.Uint32(data[off+4:]))
	off += 8

	if valueLen > uint64(len(data))-off {
		return nil, nil, 0, false
	}
	value = data[off : off+valueLen]
	off += valueLen

	// A record whose padding runs past the end was cut short while being written.
	if padLen > uint64(len(data))-off {
		return nil, nil, 0, false
	}
	off += padLen

	return key, value, int(off), true
}

// Decode returns a forward-only sequence over the complete records in data.
//
// The sequence ends silently at the first incomplete record. A zero key length
// also ends it: the engine never writes empty keys, and zero-filled space at the
// end of a file decodes that way. Yielded slices alias data.
func Decode(data []byte) iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for len(data) > 0 {
			key, value, n, ok := next(data)
			if !ok {
				return
			}
			if !yield(key, value) {
				return
			}
			data = data[n:]
		}
	}
}

// ValidPrefix returns the length of the longest prefix of data made of complete
// records. Bytes past it belong to a write that never finished.
func ValidPrefix(data []byte) int {
	valid := 0
	for valid < len(data) {
		_, _, n, ok := next(data[valid:])
		if !ok {
			break
		}
		valid += n
	}
	return valid
}
