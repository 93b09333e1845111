package codif

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-codif/internal/timing"
)

// Dataset is a fully reassembled capture.
type Dataset struct {
	// Frames holds every decoded frame by key.
	Frames map[FrameKey]*Frame

	// Distinct stations, groups and threads in ascending order. Index i
	// of each list is index i of the corresponding tensor axis.
	Stations []string
	Groups   []uint16
	Threads  []uint16

	// Timestamps is the sample time axis in seconds since
	// timing.BaseEpoch. It is taken from the lexicographically smallest
	// (thread, group, secondary, station) combination; every other
	// combination is assumed, not checked, to follow the same timing.
	Timestamps []float64

	// Data has shape (station, group, thread, channel, sample). With
	// WithFlattenGroups it has shape (station*group*thread*channel,
	// sample) and row ((s*G+g)*T+t)*C+c holds station s, group g,
	// thread t, channel c.
	Data *Tensor

	// Geometry is shared by every frame.
	Geometry Geometry

	// Flattened reports whether Data was flattened.
	Flattened bool

	keys []FrameKey
	axis []FrameKey
}

// Keys returns the frame keys in ascending order.
func (d *Dataset) Keys() []FrameKey {
	return slices.Clone(d.keys)
}

// Time returns sample i of the time axis as a time.Time.
func (d *Dataset) Time(i int) time.Time {
	return timing.ToTime(d.Timestamps[i])
}

// Load reads every frame from r and assembles them into a Dataset. Any
// malformed frame or inconsistency aborts the load; no partial dataset is
// returned. ctx is checked before each frame.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*Dataset, error) {
	o := newOptions(opts)
	fr, err := newReader(r, o)
	if err != nil {
		return nil, err
	}

	frames, err := collect(ctx, fr, o)
	if err != nil {
		return nil, err
	}

	d, err := build(frames, o.flatten)
	if err != nil {
		return nil, err
	}
	o.logger.Info("codif: dataset built",
		"frames", len(d.Frames),
		"shape", d.Data.Shape(),
		"skipped", fr.Skipped(),
	)
	return d, nil
}

// collect reads frame spans sequentially and decodes them on a pool of
// o.workers goroutines. The returned map is complete or nil.
func collect(ctx context.Context, fr *Reader, o *options) (map[FrameKey]*Frame, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	var (
		mu      sync.Mutex
		frames  = make(map[FrameKey]*Frame)
		readErr error
	)

	for {
		if gctx.Err() != nil {
			break
		}
		sp, err := fr.nextSpan()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}

		g.Go(func() error {
			f, err := sp.decode()
			if err != nil {
				return err
			}
			key := f.Key()

			mu.Lock()
			defer mu.Unlock()
			if _, dup := frames[key]; dup {
				return validationError(ErrDuplicateKey, &key, "second occurrence at offset %d", sp.offset)
			}
			frames[key] = f
			o.logger.Debug("codif: frame decoded", "offset", sp.offset, "key", key.String())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// build performs the reduction pass over a complete frame map.
func build(frames map[FrameKey]*Frame, flatten bool) (*Dataset, error) {
	if len(frames) == 0 {
		return nil, &ValidationError{Err: ErrNoFrames}
	}

	keys := make([]FrameKey, 0, len(frames))
	for k := range frames {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)

	c := newCatalog()
	for _, k := range keys {
		if err := c.add(k, frames[k].Header.Geometry()); err != nil {
			return nil, err
		}
	}
	if err := c.checkComplete(); err != nil {
		return nil, err
	}

	d := &Dataset{
		Frames:   frames,
		Stations: c.stationList(),
		Groups:   c.groupList(),
		Threads:  c.threadList(),
		Geometry: c.geometry,
		keys:     keys,
	}
	d.axis, d.Timestamps = timeAxis(frames, keys, c.canonicalSource())
	d.Data = assemble(frames, keys, d, c.totalSamples())

	if flatten {
		flat, err := d.Data.Reshape(c.shape(true)...)
		if err != nil {
			return nil, err
		}
		d.Data, d.Flattened = flat, true
	}
	return d, nil
}

// timeAxis concatenates the timestamps of src's frames and returns them
// with the frames' keys. keys is sorted by frame number first, so
// filtering preserves frame order.
func timeAxis(frames map[FrameKey]*Frame, keys []FrameKey, src source) ([]FrameKey, []float64) {
	var (
		axisKeys []FrameKey
		axis     []float64
	)
	for _, k := range keys {
		if (source{k.Thread, k.Group, k.Secondary, k.Station}) == src {
			axisKeys = append(axisKeys, k)
			axis = append(axis, frames[k].Timestamps...)
		}
	}
	return axisKeys, axis
}

// assemble copies every frame into its plane of a
// (station, group, thread, channel, sample) tensor. Frames of a plane
// are concatenated in ascending frame number, across all secondaries.
func assemble(frames map[FrameKey]*Frame, keys []FrameKey, d *Dataset, total int) *Tensor {
	channels := int(d.Geometry.Channels)
	t := newTensor(len(d.Stations), len(d.Groups), len(d.Threads), channels, total)

	stationIdx := indexOf(d.Stations)
	groupIdx := indexOf(d.Groups)
	threadIdx := indexOf(d.Threads)
	filled := make(map[combo]int)

	for _, k := range keys {
		f := frames[k]
		cb := combo{k.Station, k.Group, k.Thread}
		plane := t.Plane(stationIdx[k.Station], groupIdx[k.Group], threadIdx[k.Thread])

		src := f.Samples.RawCMatrix()
		dst := plane.RawCMatrix()
		n := f.Header.SamplesPerFrame()
		at := filled[cb]
		for ch := 0; ch < channels; ch++ {
			copy(dst.Data[ch*dst.Stride+at:ch*dst.Stride+at+n], src.Data[ch*src.Stride:ch*src.Stride+n])
		}
		filled[cb] = at + n
	}
	return t
}

func indexOf[T comparable](values []T) map[T]int {
	idx := make(map[T]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

// LoadFile loads a capture file, decompressing zstd or LZ4 captures.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	c, err := OpenCapture(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	d, err := Load(ctx, c, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return d, nil
}
