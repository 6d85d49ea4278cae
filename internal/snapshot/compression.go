package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec applied to a snapshot body.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionSnappy uses the snappy framing format (fast, modest ratio).
	CompressionSnappy Compression = 1
	// CompressionLZ4 uses the LZ4 frame format (fast, good for hot data).
	CompressionLZ4 Compression = 2
	// CompressionZstd uses Zstandard (better ratio, good for cold data).
	CompressionZstd Compression = 3
)

var compressionNames = map[Compression]string{
	CompressionNone:   "none",
	CompressionSnappy: "snappy",
	CompressionLZ4:    "lz4",
	CompressionZstd:   "zstd",
}

func (c Compression) String() string {
	if s, ok := compressionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// ParseCompression returns the compression named s ("none", "snappy", "lz4"
// or "zstd"). The empty string means none.
func ParseCompression(s string) (Compression, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CompressionNone, nil
	}
	for c, name := range compressionNames {
		if name == s {
			return c, nil
		}
	}
	return CompressionNone, fmt.Errorf("unknown compression %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Compression) UnmarshalText(text []byte) error {
	parsed, err := ParseCompression(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// compressor wraps w. Closing the result flushes it but leaves w open.
func compressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
	}
}

func decompressor(r io.Reader, c Compression) (io.Reader, io.Closer, error) {
	noop := closerFunc(func() error { return nil })
	switch c {
	case CompressionNone:
		return r, noop, nil
	case CompressionSnappy:
		return snappy.NewReader(r), noop, nil
	case CompressionLZ4:
		return lz4.NewReader(r), noop, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, closerFunc(func() error { dec.Close(); return nil }), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
	}
}
