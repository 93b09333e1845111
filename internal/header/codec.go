package header

import (
	"fmt"

	binpkg "github.com/robert-malhotra/go-codif/internal/binary"
)

// Flag bits shared by every layout.
const (
	flagAtypical   = 0x01
	flagInvalid    = 0x02
	flagComplex    = 0x04
	flagCalEnabled = 0x08
)

// unpackFunc fills the packed fields of h from bytes 10 and 11.
type unpackFunc func(h *Header, flags, version byte)

// packFunc produces bytes 10 and 11 from h.
type packFunc func(h *Header) (flags, version byte)

// decode parses the layout-independent fields in wire order and
// delegates the packed bytes to unpack.
func decode(buf []byte, unpack unpackFunc) (*Header, error) {
	r := binpkg.NewReader(buf)
	if _, err := r.Peek(Size); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	f := &fieldReader{r: r}

	h := &Header{
		DataFrameNumber: f.uint32(),
		EpochOffset:     f.uint32(),
		ReferenceEpoch:  f.uint8(),
		SampleSize:      f.uint8(),
		FlagsByte:       f.uint8(),
		VersionByte:     f.uint8(),
		Reserved:        f.uint16(),
		AlignmentPeriod: f.uint16(),
		ThreadID:        f.uint16(),
		GroupID:         f.uint16(),
		SecondaryID:     f.uint16(),
	}
	copy(h.StationBytes[:], f.bytes(len(h.StationBytes)))
	h.Channels = f.uint16()
	h.SampleBlockLength = f.uint16()
	h.DataArrayLength = f.uint32()
	h.SamplePeriodsPerAlignmentPeriod = f.uint64()
	h.SyncSequence = f.uint32()
	h.MetadataID = f.uint16()
	copy(h.Metadata[:], f.bytes(MetadataSize))
	if f.err != nil {
		return nil, fmt.Errorf("header: %w", f.err)
	}
	unpack(h, h.FlagsByte, h.VersionByte)

	return h, nil
}

// fieldReader reads consecutive header fields. The first error sticks
// and later reads return zero values.
type fieldReader struct {
	r   *binpkg.Reader
	err error
}

func (f *fieldReader) uint8() uint8 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint8()
	f.err = err
	return v
}

func (f *fieldReader) uint16() uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint16()
	f.err = err
	return v
}

func (f *fieldReader) uint32() uint32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint32()
	f.err = err
	return v
}

func (f *fieldReader) uint64() uint64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUint64()
	f.err = err
	return v
}

func (f *fieldReader) bytes(n int) []byte {
	if f.err != nil {
		return nil
	}
	b, err := f.r.ReadBytes(n)
	f.err = err
	return b
}

// encode writes h in wire order using pack for bytes 10 and 11.
func encode(h *Header, pack packFunc) []byte {
	flags, version := pack(h)

	w := binpkg.NewWriter(Size)
	w.WriteUint32(h.DataFrameNumber)
	w.WriteUint32(h.EpochOffset)
	w.WriteUint8(h.ReferenceEpoch)
	w.WriteUint8(h.SampleSize)
	w.WriteUint8(flags)
	w.WriteUint8(version)
	w.WriteUint16(h.Reserved)
	w.WriteUint16(h.AlignmentPeriod)
	w.WriteUint16(h.ThreadID)
	w.WriteUint16(h.GroupID)
	w.WriteUint16(h.SecondaryID)
	w.WriteBytes(h.StationBytes[:])
	w.WriteUint16(h.Channels)
	w.WriteUint16(h.SampleBlockLength)
	w.WriteUint32(h.DataArrayLength)
	w.WriteUint64(h.SamplePeriodsPerAlignmentPeriod)
	w.WriteUint32(h.SyncSequence)
	w.WriteUint16(h.MetadataID)
	w.WriteBytes(h.Metadata[:])
	return w.Bytes()
}

// unpackFlagBits decodes the four single-bit flags common to all layouts.
func unpackFlagBits(h *Header, flags byte) {
	h.Atypical = flags&flagAtypical != 0
	h.Invalid = flags&flagInvalid != 0
	h.Complex = flags&flagComplex != 0
	h.CalEnabled = flags&flagCalEnabled != 0
}

// packFlagBits encodes the four single-bit flags.
func packFlagBits(h *Header) byte {
	var b byte
	if h.Atypical {
		b |= flagAtypical
	}
	if h.Invalid {
		b |= flagInvalid
	}
	if h.Complex {
		b |= flagComplex
	}
	if h.CalEnabled {
		b |= flagCalEnabled
	}
	return b
}

// unpackVersion splits byte 11 into version (bits 0-4) and protocol (bits 5-7).
func unpackVersion(h *Header, version byte) {
	h.Version = version & 0x1F
	h.Protocol = version >> 5
}

func packVersion(h *Header) byte {
	return h.Version&0x1F | h.Protocol<<5
}
