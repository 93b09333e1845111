package header

import (
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-codif/internal/binary"
)

const (
	// Size is the encoded header length in bytes.
	Size = 64

	// WordSize is the CODIF length unit for sample blocks and data arrays.
	WordSize = 8

	// SyncWord is the expected synchronisation sequence.
	SyncWord uint32 = 0xFEEDCAFE

	// SyncOffset is the byte offset of the synchronisation sequence.
	SyncOffset = 40

	// MetadataSize is the number of opaque metadata bytes.
	MetadataSize = 18
)

// Errors
var (
	ErrTruncated            = binpkg.ErrTruncated
	ErrBadSync              = errors.New("bad synchronisation sequence")
	ErrInvalidHeader        = errors.New("invalid header geometry")
	ErrChannelBlockMismatch = errors.New("channel blocks per sample block does not match channel count")
)

// Header is a decoded CODIF frame header.
type Header struct {
	DataFrameNumber uint32
	EpochOffset     uint32 // seconds since the reference epoch
	ReferenceEpoch  uint8  // half-years since 2000-01-01
	SampleSize      uint8  // bits per sample component

	SampleRepresentation uint8
	CalEnabled           bool
	Complex              bool
	Invalid              bool
	Atypical             bool

	Version  uint8
	Protocol uint8

	Reserved        uint16
	AlignmentPeriod uint16 // seconds

	ThreadID     uint16
	GroupID      uint16
	SecondaryID  uint16
	StationBytes [2]byte

	Channels          uint16
	SampleBlockLength uint16 // 8-byte words
	DataArrayLength   uint32 // 8-byte words

	SamplePeriodsPerAlignmentPeriod uint64

	SyncSequence uint32
	MetadataID   uint16
	Metadata     [MetadataSize]byte

	// FlagsByte and VersionByte hold bytes 10 and 11 exactly as read.
	// They are zero on headers built in memory.
	FlagsByte   uint8
	VersionByte uint8
}

// Geometry is the subset of header fields that must agree across every
// frame of a stream.
type Geometry struct {
	Channels                        uint16
	SampleBlockLength               uint16
	DataArrayLength                 uint32
	SamplePeriodsPerAlignmentPeriod uint64
	AlignmentPeriod                 uint16
}

// SamplesPerFrame returns the number of sample blocks in one payload.
func (g Geometry) SamplesPerFrame() int {
	if g.SampleBlockLength == 0 {
		return 0
	}
	return int(g.DataArrayLength / uint32(g.SampleBlockLength))
}

// SamplePeriod returns the duration of one sample in seconds.
func (g Geometry) SamplePeriod() float64 {
	if g.SamplePeriodsPerAlignmentPeriod == 0 {
		return 0
	}
	return float64(g.AlignmentPeriod) / float64(g.SamplePeriodsPerAlignmentPeriod)
}

// Geometry returns the stream-wide geometry of the frame.
func (h *Header) Geometry() Geometry {
	return Geometry{
		Channels:                        h.Channels,
		SampleBlockLength:               h.SampleBlockLength,
		DataArrayLength:                 h.DataArrayLength,
		SamplePeriodsPerAlignmentPeriod: h.SamplePeriodsPerAlignmentPeriod,
		AlignmentPeriod:                 h.AlignmentPeriod,
	}
}

// StationID returns the two station bytes interpreted as characters.
// No printability check is made; see StationPrintable.
func (h *Header) StationID() string {
	return string([]rune{rune(h.StationBytes[0]), rune(h.StationBytes[1])})
}

// StationPrintable reports whether both station bytes are printable ASCII.
func (h *Header) StationPrintable() bool {
	for _, b := range h.StationBytes {
		if b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}

// EffectiveSampleSizeBits is the sample size doubled for complex data.
func (h *Header) EffectiveSampleSizeBits() int {
	if h.Complex {
		return int(h.SampleSize) * 2
	}
	return int(h.SampleSize)
}

// ChannelBlockSizeBits is the size of one channel's data in a sample block.
func (h *Header) ChannelBlockSizeBits() int {
	return h.EffectiveSampleSizeBits()
}

// ChannelBlockSizeBytes is ChannelBlockSizeBits in bytes.
func (h *Header) ChannelBlockSizeBytes() int {
	return h.ChannelBlockSizeBits() / 8
}

// ChannelBlocksPerSampleBlock is the number of channel blocks that fit in
// one sample block. It is zero when the channel block size is zero.
func (h *Header) ChannelBlocksPerSampleBlock() int {
	bits := h.ChannelBlockSizeBits()
	if bits == 0 {
		return 0
	}
	return int(uint64(h.SampleBlockLength) * 64 / uint64(bits))
}

// SamplesPerFrame returns the number of sample blocks in the payload.
func (h *Header) SamplesPerFrame() int {
	return h.Geometry().SamplesPerFrame()
}

// PayloadSize returns the payload length in bytes.
func (h *Header) PayloadSize() int {
	return int(h.DataArrayLength) * WordSize
}

// Validate checks the synchronisation sequence and the payload geometry.
func (h *Header) Validate() error {
	if h.SyncSequence != SyncWord {
		return fmt.Errorf("%w: got 0x%08X, expected 0x%08X", ErrBadSync, h.SyncSequence, SyncWord)
	}
	switch {
	case h.SampleBlockLength == 0:
		return fmt.Errorf("%w: zero sample block length", ErrInvalidHeader)
	case h.SampleSize == 0:
		return fmt.Errorf("%w: zero sample size", ErrInvalidHeader)
	case h.DataArrayLength == 0:
		return fmt.Errorf("%w: empty data array", ErrInvalidHeader)
	case h.SamplePeriodsPerAlignmentPeriod == 0:
		return fmt.Errorf("%w: zero sample periods per alignment period", ErrInvalidHeader)
	case h.DataArrayLength%uint32(h.SampleBlockLength) != 0:
		return fmt.Errorf("%w: data array length %d is not a multiple of sample block length %d",
			ErrInvalidHeader, h.DataArrayLength, h.SampleBlockLength)
	}
	if got := h.ChannelBlocksPerSampleBlock(); got != int(h.Channels) {
		return fmt.Errorf("%w: %d channel blocks for %d channels", ErrChannelBlockMismatch, got, h.Channels)
	}
	return nil
}
