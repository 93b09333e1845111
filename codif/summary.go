package codif

import (
	"math"
	"time"

	"github.com/robert-malhotra/go-codif/internal/timing"
)

// Summary is a serialisable description of a dataset or index.
type Summary struct {
	Frames          int      `json:"frames"`
	Shape           []int    `json:"shape"`
	Flattened       bool     `json:"flattened"`
	Stations        []string `json:"stations"`
	Groups          []uint16 `json:"groups"`
	Threads         []uint16 `json:"threads"`
	Channels        int      `json:"channels"`
	SamplesPerFrame int      `json:"samples_per_frame"`
	SamplePeriod    float64  `json:"sample_period_seconds"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
}

// Summary describes d. Start and End are the times of the first and last
// samples of the time axis.
func (d *Dataset) Summary() Summary {
	s := newSummary(d.Geometry)
	s.Frames = len(d.Frames)
	s.Shape = d.Data.Shape()
	s.Flattened = d.Flattened
	s.Stations = d.Stations
	s.Groups = d.Groups
	s.Threads = d.Threads
	if n := len(d.axis); n > 0 {
		s.Start = formatTime(d.Frames[d.axis[0]].Start())
		s.End = formatTime(lastSampleTime(d.Frames[d.axis[n-1]].Header))
	}
	return s
}

// Summary describes idx.
func (idx *Index) Summary() Summary {
	s := newSummary(idx.Geometry)
	s.Frames = idx.Frames
	s.Shape = idx.Shape
	s.Flattened = idx.Flattened
	s.Stations = idx.Stations
	s.Groups = idx.Groups
	s.Threads = idx.Threads
	s.Start = formatTime(idx.Start)
	s.End = formatTime(idx.End)
	return s
}

func newSummary(g Geometry) Summary {
	return Summary{
		Channels:        int(g.Channels),
		SamplesPerFrame: g.SamplesPerFrame(),
		SamplePeriod:    g.SamplePeriod(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// lastSampleTime returns the time of the last sample of the frame h heads.
func lastSampleTime(h *Header) time.Time {
	span := float64(h.SamplesPerFrame()-1) * h.Geometry().SamplePeriod()
	return timing.FrameStartTime(h).Add(time.Duration(math.Round(span * float64(time.Second))))
}
