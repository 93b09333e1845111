// Package payload decodes and encodes CODIF sample payloads.
//
// A payload is a sequence of sample blocks, one per sample period. Each
// sample block holds one channel block per channel, and a channel block is
// a (real, imaginary) pair of signed little-endian integers, or a single
// real value when the header's complex flag is clear. Decoded payloads are
// returned channel-major as a gonum complex matrix with one row per
// channel and one column per sample.
package payload

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	binpkg "github.com/robert-malhotra/go-codif/internal/binary"
	"github.com/robert-malhotra/go-codif/internal/header"
)

// Errors
var (
	ErrTruncated               = binpkg.ErrTruncated
	ErrUnsupportedSampleFormat = errors.New("unsupported sample format")
	ErrShape                   = errors.New("sample array shape does not match header")
	ErrSampleRange             = errors.New("sample value not representable")
)

// format describes the integer encoding of one channel block.
type format struct {
	bytesPerComponent int
	complex           bool
}

func formatOf(h *header.Header) (format, error) {
	switch h.SampleSize {
	case 8, 16:
		return format{bytesPerComponent: int(h.SampleSize) / 8, complex: h.Complex}, nil
	default:
		return format{}, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedSampleFormat, h.SampleSize)
	}
}

func (f format) components() int {
	if f.complex {
		return 2
	}
	return 1
}

func (f format) blockSize() int {
	return f.bytesPerComponent * f.components()
}

func (f format) limits() (lo, hi float64) {
	if f.bytesPerComponent == 1 {
		return math.MinInt8, math.MaxInt8
	}
	return math.MinInt16, math.MaxInt16
}

// layout checks that the payload geometry described by h is self-consistent
// for format f and returns the sample block stride in bytes.
func layout(h *header.Header, f format) (stride int, err error) {
	stride = int(h.SampleBlockLength) * header.WordSize
	if stride == 0 {
		return 0, fmt.Errorf("%w: zero sample block length", header.ErrInvalidHeader)
	}
	if need := int(h.Channels) * f.blockSize(); need > stride {
		return 0, fmt.Errorf("%w: %d channels need %d bytes, sample block holds %d",
			header.ErrChannelBlockMismatch, h.Channels, need, stride)
	}
	return stride, nil
}

// Decode converts a payload into a channels × samples complex matrix.
// buf must be exactly h.PayloadSize() bytes.
func Decode(buf []byte, h *header.Header) (*mat.CDense, error) {
	f, err := formatOf(h)
	if err != nil {
		return nil, err
	}
	stride, err := layout(h, f)
	if err != nil {
		return nil, err
	}
	if len(buf) != h.PayloadSize() {
		return nil, fmt.Errorf("%w: payload has %d bytes, header declares %d", ErrTruncated, len(buf), h.PayloadSize())
	}

	channels := int(h.Channels)
	samples := h.SamplesPerFrame()
	if channels == 0 || samples == 0 {
		return nil, fmt.Errorf("%w: empty payload geometry %dx%d", header.ErrInvalidHeader, channels, samples)
	}

	data := make([]complex128, channels*samples)
	r := binpkg.NewReader(buf)
	for s := 0; s < samples; s++ {
		block := r.At(s * stride)
		for c := 0; c < channels; c++ {
			v, err := readValue(block, f)
			if err != nil {
				return nil, fmt.Errorf("sample %d channel %d: %w", s, c, err)
			}
			data[c*samples+s] = v
		}
	}

	return mat.NewCDense(channels, samples, data), nil
}

func readValue(r *binpkg.Reader, f format) (complex128, error) {
	re, err := readComponent(r, f)
	if err != nil {
		return 0, err
	}
	if !f.complex {
		return complex(re, 0), nil
	}
	im, err := readComponent(r, f)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

func readComponent(r *binpkg.Reader, f format) (float64, error) {
	if f.bytesPerComponent == 1 {
		b, err := r.ReadUint8()
		return float64(int8(b)), err
	}
	v, err := r.ReadInt16()
	return float64(v), err
}

// Encode converts a channels × samples matrix back to payload bytes.
// Every component must be an integer within the sample format's range.
func Encode(m *mat.CDense, h *header.Header) ([]byte, error) {
	f, err := formatOf(h)
	if err != nil {
		return nil, err
	}
	stride, err := layout(h, f)
	if err != nil {
		return nil, err
	}

	channels := int(h.Channels)
	samples := h.SamplesPerFrame()
	if r, c := m.Dims(); r != channels || c != samples {
		return nil, fmt.Errorf("%w: matrix is %dx%d, header needs %dx%d", ErrShape, r, c, channels, samples)
	}

	lo, hi := f.limits()
	w := binpkg.NewWriter(h.PayloadSize())
	for s := 0; s < samples; s++ {
		start := w.Pos()
		for c := 0; c < channels; c++ {
			v := m.At(c, s)
			parts := []float64{real(v)}
			if f.complex {
				parts = append(parts, imag(v))
			} else if imag(v) != 0 {
				return nil, fmt.Errorf("%w: channel %d sample %d has imaginary part in real format", ErrSampleRange, c, s)
			}
			for _, p := range parts {
				if p != math.Trunc(p) || p < lo || p > hi {
					return nil, fmt.Errorf("%w: channel %d sample %d value %g", ErrSampleRange, c, s, p)
				}
				if f.bytesPerComponent == 1 {
					w.WriteUint8(uint8(int8(p)))
				} else {
					w.WriteInt16(int16(p))
				}
			}
		}
		w.WriteZeros(stride - (w.Pos() - start))
	}
	return w.Bytes(), nil
}
