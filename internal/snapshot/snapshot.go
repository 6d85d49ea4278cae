// Package snapshot implements the portable backup format of a pagekv engine.
//
// A snapshot is a header followed by a (possibly compressed) body:
//
//	"PKVSNAP1" | compression u8 | body
//	body  = entry* | uvarint(0) | count u64 LE | crc32 u32 LE
//	entry = uvarint(len(key)) | key | uvarint(len(value)) | value
//
// Keys are never empty, so a zero key length ends the entries. The checksum is
// CRC-32 (IEEE) over the uncompressed body from the first entry up to and
// including the uvarint(0) terminator; count and checksum are not covered.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
)

// Magic opens every snapshot.
const Magic = "PKVSNAP1"

const (
	headerSize = len(Magic) + 1
	// Fields up to this size are read into a single allocation; larger ones grow
	// with the data actually present so a corrupt length cannot force a huge
	// allocation.
	directReadLimit = 1 << 20
)

var (
	// ErrCorrupt is returned for truncated, malformed or mismatching snapshots.
	ErrCorrupt = errors.New("corrupt snapshot")
	// ErrEmptyKey is returned when adding an entry without a key.
	ErrEmptyKey = errors.New("snapshot entry key must not be empty")
)

// Writer streams entries into a snapshot.
type Writer struct {
	body    io.WriteCloser
	crc     hash.Hash32
	count   uint64
	scratch [binary.MaxVarintLen64]byte
	closed  bool
}

// NewWriter writes the snapshot header to w and returns a Writer for the body.
// Close must be called to complete the snapshot; it does not close w.
func NewWriter(w io.Writer, c Compression) (*Writer, error) {
	var header [headerSize]byte
	copy(header[:], Magic)
	header[len(Magic)] = byte(c)

	body, err := compressor(w, c)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(header[:]); err != nil {
		return nil, err
	}
	return &Writer{body: body, crc: crc32.NewIEEE()}, nil
}

func (w *Writer) writeField(b []byte) error {
	n := binary.PutUvarint(w.scratch[:], uint64(len(b)))
	if _, err := w.body.Write(w.scratch[:n]); err != nil {
		return err
	}
	_, _ = w.crc.Write(w.scratch[:n])
	if len(b) == 0 {
		return nil
	}
	if _, err := w.body.Write(b); err != nil {
		return err
	}
	_, _ = w.crc.Write(b)
	return nil
}

// Add appends one entry.
func (w *Writer) Add(key, value []byte) error {
	if w.closed {
		return errors.New("snapshot writer closed")
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if err := w.writeField(key); err != nil {
		return err
	}
	if err := w.writeField(value); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of entries added so far.
func (w *Writer) Count() uint64 {
	return w.count
}

// Close writes the trailer and flushes the compressor.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var trailer [1 + 8 + 4]byte
	trailer[0] = 0
	_, _ = w.crc.Write(trailer[:1])
	binary.LittleEndian.PutUint64(trailer[1:], w.count)
	binary.LittleEndian.PutUint32(trailer[9:], w.crc.Sum32())
	if _, err := w.body.Write(trailer[:]); err != nil {
		_ = w.body.Close()
		return err
	}
	return w.body.Close()
}

// Reader reads entries back from a snapshot.
type Reader struct {
	compression Compression
	br          *bufio.Reader
	closer      io.Closer
	crc         hash.Hash32
	count       uint64
	done        bool
}

// NewReader validates the snapshot header read from r.
func NewReader(r io.Reader) (*Reader, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if string(header[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, header[:len(Magic)])
	}

	c := Compression(header[len(Magic)])
	body, closer, err := decompressor(r, c)
	if err != nil {
		return nil, err
	}

	return &Reader{
		compression: c,
		br:          bufio.NewReader(body),
		closer:      closer,
		crc:         crc32.NewIEEE(),
	}, nil
}

// Compression returns the codec of the snapshot body.
func (r *Reader) Compression() Compression {
	return r.compression
}

// Count returns the number of entries read so far.
func (r *Reader) Count() uint64 {
	return r.count
}

func corrupt(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %s: %w", ErrCorrupt, what, err)
}

func (r *Reader) readLen() (uint64, error) {
	var scratch [binary.MaxVarintLen64]byte
	n, err := binary.ReadUvarint(r.br)
	if err != nil {
		return 0, err
	}
	_, _ = r.crc.Write(scratch[:binary.PutUvarint(scratch[:], n)])
	return n, nil
}

func (r *Reader) readBytes(n uint64) ([]byte, error) {
	if n > math.MaxUint32 {
		return nil, fmt.Errorf("field length %d out of range", n)
	}
	var b []byte
	if n <= directReadLimit {
		b = make([]byte, n)
		if _, err := io.ReadFull(r.br, b); err != nil {
			return nil, err
		}
	} else {
		var buf bytes.Buffer
		if _, err := io.CopyN(&buf, r.br, int64(n)); err != nil {
			return nil, err
		}
		b = buf.Bytes()
	}
	_, _ = r.crc.Write(b)
	return b, nil
}

// Next returns the next entry. After the last entry it verifies the trailer
// and returns io.EOF. The returned slices are owned by the caller.
func (r *Reader) Next() (key, value []byte, err error) {
	if r.done {
		return nil, nil, io.EOF
	}

	keyLen, err := r.readLen()
	if err != nil {
		return nil, nil, corrupt("entry", err)
	}
	if keyLen == 0 {
		r.done = true
		return nil, nil, r.verifyTrailer()
	}

	if key, err = r.readBytes(keyLen); err != nil {
		return nil, nil, corrupt("key", err)
	}
	valueLen, err := r.readLen()
	if err != nil {
		return nil, nil, corrupt("value length", err)
	}
	if value, err = r.readBytes(valueLen); err != nil {
		return nil, nil, corrupt("value", err)
	}

	r.count++
	return key, value, nil
}

func (r *Reader) verifyTrailer() error {
	var trailer [8 + 4]byte
	if _, err := io.ReadFull(r.br, trailer[:]); err != nil {
		return corrupt("trailer", err)
	}
	count := binary.LittleEndian.Uint64(trailer[0:])
	sum := binary.LittleEndian.Uint32(trailer[8:])
	if count != r.count {
		return fmt.Errorf("%w: trailer counts %d entries, read %d", ErrCorrupt, count, r.count)
	}
	if sum != r.crc.Sum32() {
		return fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	// Drain the body so the decompressor checks its own framing to the end.
	if _, err := r.br.ReadByte(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data")
		}
		return fmt.Errorf("%w: after trailer: %w", ErrCorrupt, err)
	}
	return io.EOF
}

// Close releases the decompressor. It does not close the underlying reader.
func (r *Reader) Close() error {
	return r.closer.Close()
}
