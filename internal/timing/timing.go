// Package timing derives wall-clock time for CODIF frames and samples.
//
// CODIF time is layered: a reference epoch selects a half-year starting
// point, the epoch offset selects the start of an alignment period within
// it, and the frame number selects a position within that alignment
// period. Sample times follow at the sample period
// (alignment period / sample periods per alignment period).
//
// All arithmetic is done in float64 seconds since BaseEpoch. The whole
// second parts (epoch base and epoch offset) are integers and exact in
// float64; only the in-period fraction is rounded, which keeps present-day
// timestamps within about 0.12 µs. Conversion to time.Time happens only at
// the boundary, in ToTime and FrameStartTime.
package timing

import (
	"math"
	"time"

	"github.com/robert-malhotra/go-codif/internal/header"
)

// BaseYear is the calendar year of reference epoch 0.
const BaseYear = 2000

// BaseEpoch is the fixed origin of every timestamp produced by this package.
var BaseEpoch = time.Date(BaseYear, time.January, 1, 0, 0, 0, 0, time.UTC)

// EpochBase returns the first instant of the half-year period numbered
// referenceEpoch: even periods start on 1 January, odd ones on 1 July.
func EpochBase(referenceEpoch uint8) time.Time {
	year := BaseYear + int(referenceEpoch)/2
	month := time.Month(int(referenceEpoch)%2*6 + 1)
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// AlignmentPeriodStart returns epochBase advanced by epochOffset seconds.
func AlignmentPeriodStart(epochBase time.Time, epochOffset uint32) time.Time {
	return epochBase.Add(time.Duration(epochOffset) * time.Second)
}

// CompleteSampleBlocksToEndOfFrame returns the number of whole sample blocks
// from the start of the alignment period to the end of frame frameNumber.
// Callers computing a frame's own start pass frameNumber-1, so frame 0 has
// no preceding blocks.
func CompleteSampleBlocksToEndOfFrame(frameNumber int64, dataArrayLength uint32, sampleBlockLength uint16) int64 {
	if sampleBlockLength == 0 {
		return 0
	}
	return (frameNumber + 1) * int64(dataArrayLength) / int64(sampleBlockLength)
}

// FrameTimeOffset returns the seconds between the alignment period start
// and the first sample of the frame.
func FrameTimeOffset(h *header.Header) float64 {
	blocks := CompleteSampleBlocksToEndOfFrame(int64(h.DataFrameNumber)-1, h.DataArrayLength, h.SampleBlockLength)
	if h.SamplePeriodsPerAlignmentPeriod == 0 {
		return 0
	}
	return float64(blocks) * float64(h.AlignmentPeriod) / float64(h.SamplePeriodsPerAlignmentPeriod)
}

// FrameStart returns the frame's first sample time in seconds since BaseEpoch.
func FrameStart(h *header.Header) float64 {
	return float64(alignmentStartSeconds(h)) + FrameTimeOffset(h)
}

// FrameStartTime returns the frame's first sample time as a time.Time,
// rounded to the nanosecond.
func FrameStartTime(h *header.Header) time.Time {
	start := AlignmentPeriodStart(EpochBase(h.ReferenceEpoch), h.EpochOffset)
	return start.Add(secondsToDuration(FrameTimeOffset(h)))
}

// SampleTimestamps returns one timestamp per sample of the frame, in seconds
// since BaseEpoch. Sample i is at FrameStart + i*samplePeriod; each value is
// computed directly so no error accumulates along the frame.
func SampleTimestamps(h *header.Header) []float64 {
	n := h.SamplesPerFrame()
	ts := make([]float64, n)
	if n == 0 {
		return ts
	}

	period := h.Geometry().SamplePeriod()
	whole := float64(alignmentStartSeconds(h))
	offset := FrameTimeOffset(h)
	for i := range ts {
		ts[i] = whole + (offset + float64(i)*period)
	}
	return ts
}

// ToTime converts seconds since BaseEpoch to a time.Time.
func ToTime(seconds float64) time.Time {
	whole := math.Floor(seconds)
	return BaseEpoch.
		Add(time.Duration(whole) * time.Second).
		Add(secondsToDuration(seconds - whole))
}

// alignmentStartSeconds returns the alignment period start as whole seconds
// since BaseEpoch.
func alignmentStartSeconds(h *header.Header) int64 {
	base := EpochBase(h.ReferenceEpoch).Unix() - BaseEpoch.Unix()
	return base + int64(h.EpochOffset)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
