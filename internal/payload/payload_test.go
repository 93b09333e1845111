package payload

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-codif/internal/header"
)

// complexHeader describes two complex 16-bit channels, three samples.
func complexHeader() *header.Header {
	return &header.Header{
		SampleSize:        16,
		Complex:           true,
		Channels:          2,
		SampleBlockLength: 1,
		DataArrayLength:   3,
		SyncSequence:      header.SyncWord,
	}
}

func writeInt16s(vals ...int16) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func TestDecodeComplex16(t *testing.T) {
	h := complexHeader()
	// sample-major: (c0 re, c0 im, c1 re, c1 im) per sample block
	buf := writeInt16s(
		-23, 45, 7, -8,
		1, 2, 3, 4,
		113, -89, -32768, 32767,
	)

	m, err := Decode(buf, h)
	require.NoError(t, err)

	r, c := m.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 3, c)

	assert.Equal(t, complex(-23, 45), m.At(0, 0))
	assert.Equal(t, complex(7, -8), m.At(1, 0))
	assert.Equal(t, complex(1, 2), m.At(0, 1))
	assert.Equal(t, complex(3, 4), m.At(1, 1))
	assert.Equal(t, complex(113, -89), m.At(0, 2))
	assert.Equal(t, complex(-32768, 32767), m.At(1, 2))
}

func TestDecodeReal8(t *testing.T) {
	h := &header.Header{
		SampleSize:        8,
		Channels:          8,
		SampleBlockLength: 1,
		DataArrayLength:   2,
	}
	buf := []byte{
		0, 1, 2, 3, 0xFF, 0xFE, 0x80, 0x7F,
		10, 20, 30, 40, 50, 60, 70, 80,
	}

	m, err := Decode(buf, h)
	require.NoError(t, err)

	assert.Equal(t, complex(-1, 0), m.At(4, 0))
	assert.Equal(t, complex(-128, 0), m.At(6, 0))
	assert.Equal(t, complex(127, 0), m.At(7, 0))
	assert.Equal(t, complex(80, 0), m.At(7, 1))
}

func TestDecodeComplex8(t *testing.T) {
	h := &header.Header{
		SampleSize:        8,
		Complex:           true,
		Channels:          4,
		SampleBlockLength: 1,
		DataArrayLength:   1,
	}
	buf := []byte{1, 0xFF, 2, 0xFE, 3, 0xFD, 4, 0xFC}

	m, err := Decode(buf, h)
	require.NoError(t, err)

	for c := 0; c < 4; c++ {
		want := complex(float64(c+1), -float64(c+1))
		assert.Equal(t, want, m.At(c, 0), "channel %d", c)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	h := complexHeader()
	buf := make([]byte, h.PayloadSize())

	_, err := Decode(buf[:len(buf)-1], h)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(append(buf, 0), h)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeUnsupportedSampleSize(t *testing.T) {
	for _, size := range []uint8{0, 2, 4, 12, 32} {
		h := complexHeader()
		h.SampleSize = size
		_, err := Decode(make([]byte, h.PayloadSize()), h)
		assert.ErrorIs(t, err, ErrUnsupportedSampleFormat, "sample size %d", size)
	}
}

func TestDecodeChannelOverflow(t *testing.T) {
	h := complexHeader()
	h.Channels = 3

	_, err := Decode(make([]byte, h.PayloadSize()), h)
	assert.ErrorIs(t, err, header.ErrChannelBlockMismatch)
}

func TestEncodeRoundTrip(t *testing.T) {
	h := complexHeader()
	buf := writeInt16s(
		-23, 45, 7, -8,
		1, 2, 3, 4,
		113, -89, -32768, 32767,
	)

	m, err := Decode(buf, h)
	require.NoError(t, err)

	out, err := Encode(m, h)
	require.NoError(t, err)
	assert.Equal(t, buf, out)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	h := complexHeader()

	_, err := Encode(mat.NewCDense(1, 3, nil), h)
	assert.ErrorIs(t, err, ErrShape)

	m := mat.NewCDense(2, 3, nil)
	m.Set(0, 0, complex(0.5, 0))
	_, err = Encode(m, h)
	assert.ErrorIs(t, err, ErrSampleRange)

	m = mat.NewCDense(2, 3, nil)
	m.Set(1, 2, complex(0, 40000))
	_, err = Encode(m, h)
	assert.ErrorIs(t, err, ErrSampleRange)

	real8 := &header.Header{SampleSize: 8, Channels: 8, SampleBlockLength: 1, DataArrayLength: 1}
	m = mat.NewCDense(8, 1, nil)
	m.Set(3, 0, complex(1, 1))
	_, err = Encode(m, real8)
	assert.ErrorIs(t, err, ErrSampleRange)
}
