package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/robert-malhotra/go-codif/codif"
	"github.com/robert-malhotra/go-codif/internal/codec"
	"github.com/robert-malhotra/go-codif/internal/config"
)

// report is what codifinfo prints.
type report struct {
	Path        string        `json:"path"`
	Layout      codif.Layout  `json:"layout"`
	Compression string        `json:"compression"`
	HeadersOnly bool          `json:"headers_only"`
	Digest      string        `json:"digest,omitempty"`
	Bytes       int64         `json:"bytes,omitempty"`
	Skipped     int64         `json:"skipped,omitempty"`
	Elements    int           `json:"elements,omitempty"`
	Summary     codif.Summary `json:"summary"`
}

func writeReport(w io.Writer, format string, rep *report, d *codif.Dataset, listFrames bool) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case config.FormatCBOR:
		data, err := codec.Marshal(rep)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return writeText(w, rep, d, listFrames)
	}
}

func writeText(w io.Writer, rep *report, d *codif.Dataset, listFrames bool) error {
	s := rep.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n\n", rep.Path)
	fmt.Fprintf(&b, "Compression:       %s\n", rep.Compression)
	fmt.Fprintf(&b, "Header layout:     %s\n", rep.Layout)
	if rep.Digest != "" {
		fmt.Fprintf(&b, "BLAKE3:            %s\n", rep.Digest)
	}
	fmt.Fprintf(&b, "Frames:            %d\n", s.Frames)
	fmt.Fprintf(&b, "Stations:          %s\n", strings.Join(s.Stations, " "))
	fmt.Fprintf(&b, "Groups:            %v\n", s.Groups)
	fmt.Fprintf(&b, "Threads:           %v\n", s.Threads)
	fmt.Fprintf(&b, "Channels:          %d\n", s.Channels)
	fmt.Fprintf(&b, "Samples per frame: %d\n", s.SamplesPerFrame)
	fmt.Fprintf(&b, "Sample period:     %g s\n", s.SamplePeriod)
	fmt.Fprintf(&b, "Shape:             %v", s.Shape)
	if s.Flattened {
		b.WriteString(" (flattened)")
	}
	b.WriteString("\n")
	if rep.Elements > 0 {
		fmt.Fprintf(&b, "Elements:          %d\n", rep.Elements)
	}
	fmt.Fprintf(&b, "Start:             %s\n", s.Start)
	fmt.Fprintf(&b, "End:               %s\n", s.End)
	if rep.HeadersOnly {
		fmt.Fprintf(&b, "Bytes read:        %d\n", rep.Bytes)
		if rep.Skipped > 0 {
			fmt.Fprintf(&b, "Bytes skipped:     %d\n", rep.Skipped)
		}
	}

	if listFrames && d != nil {
		b.WriteString("\n")
		err := codif.Walk(d, func(key codif.FrameKey, f *codif.Frame) error {
			fmt.Fprintf(&b, "  %s  start %s\n", key, f.Start().UTC().Format("2006-01-02T15:04:05.000000000Z"))
			return nil
		})
		if err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
