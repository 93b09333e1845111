package codif

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the container encoding of a capture.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Capture is a buffered, decompressed view of a capture source.
type Capture struct {
	io.Reader
	compression Compression
	closers     []func() error
}

// Compression returns the detected container encoding.
func (c *Capture) Compression() Compression { return c.compression }

// Close releases the decompressor and the underlying file, if any.
func (c *Capture) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// OpenCapture opens a capture file. zstd and LZ4 frame captures are
// detected by their magic numbers and decompressed as they are read.
func OpenCapture(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture: %w", err)
	}
	c, err := NewCapture(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closers = append([]func() error{f.Close}, c.closers...)
	return c, nil
}

// NewCapture wraps r, detecting and undoing zstd or LZ4 compression.
// Closing the Capture does not close r.
func NewCapture(r io.Reader) (*Capture, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading capture: %w", err)
	}

	switch {
	case bytes.Equal(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstd capture: %w", err)
		}
		rc := dec.IOReadCloser()
		return &Capture{
			Reader:      bufio.NewReader(rc),
			compression: CompressionZstd,
			closers:     []func() error{rc.Close},
		}, nil

	case bytes.Equal(magic, lz4Magic):
		return &Capture{
			Reader:      bufio.NewReader(lz4.NewReader(br)),
			compression: CompressionLZ4,
		}, nil

	default:
		return &Capture{Reader: br, compression: CompressionNone}, nil
	}
}
