package codif

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robert-malhotra/go-codif/internal/timing"
)

// Index describes a capture from its headers alone.
type Index struct {
	Frames       int
	FrameNumbers []uint32
	Stations     []string
	Groups       []uint16
	Threads      []uint16
	Secondaries  []uint16
	Geometry     Geometry

	// Shape is the shape Load would give Dataset.Data with the same options.
	Shape     []int
	Flattened bool

	// Start is the earliest frame start; End is the time of the last
	// sample of the latest frame.
	Start time.Time
	End   time.Time

	// Bytes is the number of bytes read; Skipped the number discarded by
	// resynchronisation.
	Bytes   int64
	Skipped int64
}

// Inspect reads every header in r, skipping payloads without decoding
// them, and reports the dimensions of the capture. It applies the same
// cross-frame checks as Load, so a capture Inspect accepts has a valid
// layout; payload errors are found only by Load.
func Inspect(ctx context.Context, r io.Reader, opts ...Option) (*Index, error) {
	o := newOptions(opts)
	fr, err := newReader(r, o)
	if err != nil {
		return nil, err
	}

	c := newCatalog()
	var first, last time.Time
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, at, err := fr.nextHeader()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := c.add(KeyOf(h), h.Geometry()); err != nil {
			return nil, err
		}

		start, end := timing.FrameStartTime(h), lastSampleTime(h)
		if c.frames == 1 || start.Before(first) {
			first = start
		}
		if c.frames == 1 || end.After(last) {
			last = end
		}

		if err := fr.skipPayload(h, at); err != nil {
			return nil, err
		}
	}

	if c.frames == 0 {
		return nil, &ValidationError{Err: ErrNoFrames}
	}
	if err := c.checkComplete(); err != nil {
		return nil, err
	}

	return &Index{
		Frames:       c.frames,
		FrameNumbers: c.frameNumberList(),
		Stations:     c.stationList(),
		Groups:       c.groupList(),
		Threads:      c.threadList(),
		Secondaries:  c.secondaryList(),
		Geometry:     c.geometry,
		Shape:        c.shape(o.flatten),
		Flattened:    o.flatten,
		Start:        first,
		End:          last,
		Bytes:        fr.Offset(),
		Skipped:      fr.Skipped(),
	}, nil
}

// InspectFile inspects a capture file, decompressing zstd or LZ4 captures.
func InspectFile(ctx context.Context, path string, opts ...Option) (*Index, error) {
	c, err := OpenCapture(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	idx, err := Inspect(ctx, c, opts...)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return idx, nil
}
