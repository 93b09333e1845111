// Package testutil builds synthetic CODIF frames and captures for tests.
package testutil

import (
	"bytes"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-codif/internal/header"
	"github.com/robert-malhotra/go-codif/internal/payload"
)

// ReferenceHeader returns the header of frame 477644 of station KP:
// eight complex 16-bit channels, 64 samples per frame.
func ReferenceHeader() *header.Header {
	return &header.Header{
		DataFrameNumber:                 477644,
		EpochOffset:                     9767380,
		ReferenceEpoch:                  49,
		SampleSize:                      16,
		SampleRepresentation:            1,
		Complex:                         true,
		Version:                         3,
		Protocol:                        7,
		AlignmentPeriod:                 27,
		ThreadID:                        215,
		GroupID:                         17,
		SecondaryID:                     926,
		StationBytes:                    [2]byte{'K', 'P'},
		Channels:                        8,
		SampleBlockLength:               4,
		DataArrayLength:                 256,
		SamplePeriodsPerAlignmentPeriod: 51200000,
		SyncSequence:                    header.SyncWord,
	}
}

// Key selects the frame-identifying fields of a small test header.
type Key struct {
	Frame     uint32
	Thread    uint16
	Group     uint16
	Secondary uint16
	Station   string
}

// SmallHeader returns a valid header with two complex 16-bit channels and
// four samples per frame, identified by k.
func SmallHeader(k Key) *header.Header {
	h := &header.Header{
		DataFrameNumber:                 k.Frame,
		EpochOffset:                     100,
		ReferenceEpoch:                  48,
		SampleSize:                      16,
		Complex:                         true,
		AlignmentPeriod:                 1,
		ThreadID:                        k.Thread,
		GroupID:                         k.Group,
		SecondaryID:                     k.Secondary,
		Channels:                        2,
		SampleBlockLength:               1,
		DataArrayLength:                 4,
		SamplePeriodsPerAlignmentPeriod: 1000,
		SyncSequence:                    header.SyncWord,
	}
	copy(h.StationBytes[:], k.Station)
	return h
}

// Pattern returns the sample value a synthetic frame carries at (channel,
// sample). It encodes the frame's identity so tests can check placement,
// and always fits in a signed 16-bit component.
func Pattern(h *header.Header, channel, sample int) complex128 {
	re := float64(int(h.DataFrameNumber%300)*100 + sample%100)
	im := float64(int(h.ThreadID%10)*1000 + int(h.GroupID%10)*100 + int(h.StationBytes[0]%10)*10 + channel%10)
	return complex(re, im)
}

// Samples returns the channel × sample matrix Pattern describes for h.
func Samples(h *header.Header) *mat.CDense {
	channels, samples := int(h.Channels), h.SamplesPerFrame()
	m := mat.NewCDense(channels, samples, nil)
	for c := 0; c < channels; c++ {
		for s := 0; s < samples; s++ {
			m.Set(c, s, Pattern(h, c, s))
		}
	}
	return m
}

// Frame encodes h with the canonical layout followed by its Pattern payload.
func Frame(t testing.TB, h *header.Header) []byte {
	t.Helper()
	return FrameWith(t, h, Samples(h))
}

// FrameWith encodes h with the canonical layout followed by samples.
func FrameWith(t testing.TB, h *header.Header, samples *mat.CDense) []byte {
	t.Helper()
	codec, err := header.NewCodec(header.LayoutCanonical)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	body, err := payload.Encode(samples, h)
	if err != nil {
		t.Fatalf("payload.Encode failed: %v", err)
	}
	return append(codec.Encode(h), body...)
}

// Capture concatenates encoded frames for each key.
func Capture(t testing.TB, keys ...Key) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, k := range keys {
		buf.Write(Frame(t, SmallHeader(k)))
	}
	return buf.Bytes()
}
