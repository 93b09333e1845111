package codif

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// combo is a (station, group, thread) combination: one tensor plane.
type combo struct {
	station string
	group   uint16
	thread  uint16
}

// source is a (thread, group, secondary, station) combination: one
// independent frame sequence.
type source struct {
	thread    uint16
	group     uint16
	secondary uint16
	station   string
}

func compareSources(a, b source) int {
	return cmp.Or(
		cmp.Compare(a.thread, b.thread),
		cmp.Compare(a.group, b.group),
		cmp.Compare(a.secondary, b.secondary),
		cmp.Compare(a.station, b.station),
	)
}

// catalog collects the dimension cardinalities of a frame set from its
// keys and geometry alone.
type catalog struct {
	geometry     Geometry
	first        FrameKey
	frames       int
	keys         map[FrameKey]struct{}
	stations     map[string]struct{}
	groups       map[uint16]struct{}
	threads      map[uint16]struct{}
	secondaries  map[uint16]struct{}
	frameNumbers map[uint32]struct{}
	planeFrames  map[combo]map[uint32]int
	sources      map[source]struct{}
}

func newCatalog() *catalog {
	return &catalog{
		keys:         make(map[FrameKey]struct{}),
		stations:     make(map[string]struct{}),
		groups:       make(map[uint16]struct{}),
		threads:      make(map[uint16]struct{}),
		secondaries:  make(map[uint16]struct{}),
		frameNumbers: make(map[uint32]struct{}),
		planeFrames:  make(map[combo]map[uint32]int),
		sources:      make(map[source]struct{}),
	}
}

// add records one frame. The first frame fixes the geometry every later
// frame must match.
func (c *catalog) add(k FrameKey, g Geometry) error {
	if _, dup := c.keys[k]; dup {
		return validationError(ErrDuplicateKey, &k, "key already present")
	}
	if c.frames == 0 {
		c.geometry, c.first = g, k
	} else if g != c.geometry {
		return validationError(ErrInconsistentGeometry, &k,
			"%s differs from %s of %s", describeGeometry(g), describeGeometry(c.geometry), c.first)
	}

	c.frames++
	c.keys[k] = struct{}{}
	c.stations[k.Station] = struct{}{}
	c.groups[k.Group] = struct{}{}
	c.threads[k.Thread] = struct{}{}
	c.secondaries[k.Secondary] = struct{}{}
	c.frameNumbers[k.FrameNumber] = struct{}{}
	plane := combo{k.Station, k.Group, k.Thread}
	if c.planeFrames[plane] == nil {
		c.planeFrames[plane] = make(map[uint32]int)
	}
	c.planeFrames[plane][k.FrameNumber]++
	c.sources[source{k.Thread, k.Group, k.Secondary, k.Station}] = struct{}{}
	return nil
}

func (c *catalog) stationList() []string   { return slices.Sorted(maps.Keys(c.stations)) }
func (c *catalog) groupList() []uint16     { return slices.Sorted(maps.Keys(c.groups)) }
func (c *catalog) threadList() []uint16    { return slices.Sorted(maps.Keys(c.threads)) }
func (c *catalog) secondaryList() []uint16 { return slices.Sorted(maps.Keys(c.secondaries)) }
func (c *catalog) frameNumberList() []uint32 {
	return slices.Sorted(maps.Keys(c.frameNumbers))
}

// totalSamples is the sample axis length of the dataset tensor.
func (c *catalog) totalSamples() int {
	return len(c.frameNumbers) * c.geometry.SamplesPerFrame()
}

// shape returns the tensor shape a dataset of these frames has.
func (c *catalog) shape(flatten bool) []int {
	s, g, t := len(c.stations), len(c.groups), len(c.threads)
	ch := int(c.geometry.Channels)
	if flatten {
		return []int{s * g * t * ch, c.totalSamples()}
	}
	return []int{s, g, t, ch, c.totalSamples()}
}

// canonicalSource returns the lexicographically smallest
// (thread, group, secondary, station) combination present.
func (c *catalog) canonicalSource() source {
	return slices.MinFunc(slices.Collect(maps.Keys(c.sources)), compareSources)
}

// checkComplete verifies every (station, group, thread) plane holds each
// frame number of the set exactly once, so that it receives exactly
// totalSamples samples. Planes are checked in tensor order.
func (c *catalog) checkComplete() error {
	want := c.totalSamples()
	spf := c.geometry.SamplesPerFrame()
	numbers := c.frameNumberList()
	for _, st := range c.stationList() {
		for _, g := range c.groupList() {
			for _, t := range c.threadList() {
				seen := c.planeFrames[combo{st, g, t}]
				got := 0
				for _, n := range seen {
					got += n * spf
				}
				for _, f := range numbers {
					switch n := seen[f]; {
					case n == 0:
						return validationError(ErrIncompleteFrameSet, nil,
							"station %q group %d thread %d is missing frame %d (%d samples, expected %d)",
							st, g, t, f, got, want)
					case n > 1:
						return validationError(ErrIncompleteFrameSet, nil,
							"station %q group %d thread %d has frame %d from %d secondaries (%d samples, expected %d)",
							st, g, t, f, n, got, want)
					}
				}
			}
		}
	}
	return nil
}

func describeGeometry(g Geometry) string {
	return fmt.Sprintf("geometry{channels=%d sbl=%d dal=%d periods=%d alignment=%d}",
		g.Channels, g.SampleBlockLength, g.DataArrayLength, g.SamplePeriodsPerAlignmentPeriod, g.AlignmentPeriod)
}
