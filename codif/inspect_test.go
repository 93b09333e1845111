package codif

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-codif/internal/header"
	"github.com/robert-malhotra/go-codif/internal/testutil"
)

func TestInspectMatchesLoad(t *testing.T) {
	capture := testutil.Capture(t, grid([]string{"AA", "BB"}, []uint16{1}, []uint16{0, 3}, []uint32{5, 6, 7})...)

	for _, flatten := range []bool{false, true} {
		idx, err := Inspect(context.Background(), bytes.NewReader(capture), WithFlattenGroups(flatten))
		require.NoError(t, err)
		d, err := load(t, capture, WithFlattenGroups(flatten))
		require.NoError(t, err)

		assert.Equal(t, d.Data.Shape(), idx.Shape)
		assert.Equal(t, d.Stations, idx.Stations)
		assert.Equal(t, d.Groups, idx.Groups)
		assert.Equal(t, d.Threads, idx.Threads)
		assert.Equal(t, d.Geometry, idx.Geometry)
		assert.Equal(t, len(d.Frames), idx.Frames)
		assert.Equal(t, flatten, idx.Flattened)
	}

	idx, err := Inspect(context.Background(), bytes.NewReader(capture))
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 6, 7}, idx.FrameNumbers)
	assert.Equal(t, []uint16{0}, idx.Secondaries)
	assert.Equal(t, int64(len(capture)), idx.Bytes)
	assert.Zero(t, idx.Skipped)

	first := testutil.SmallHeader(testutil.Key{Frame: 5})
	f, err := ReadFrame(bytes.NewReader(testutil.Frame(t, first)))
	require.NoError(t, err)
	assert.True(t, idx.Start.Equal(f.Start()))
	assert.InDelta(t, 0.011, idx.End.Sub(idx.Start).Seconds(), 1e-6)
}

func TestInspectErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Inspect(ctx, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNoFrames)

	key := testutil.Key{Frame: 1}
	_, err = Inspect(ctx, bytes.NewReader(testutil.Capture(t, key, key)))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = Inspect(ctx, bytes.NewReader(testutil.Capture(t,
		testutil.Key{Frame: 0, Station: "AA"},
		testutil.Key{Frame: 1, Station: "AA"},
		testutil.Key{Frame: 1, Station: "BB"},
	)))
	assert.ErrorIs(t, err, ErrIncompleteFrameSet)

	capture := testutil.Capture(t, testutil.Key{Frame: 0})
	_, err = Inspect(ctx, bytes.NewReader(capture[:len(capture)-1]))
	assert.ErrorIs(t, err, ErrTruncated)

	// A header declaring no samples is rejected by both passes.
	empty := testutil.SmallHeader(testutil.Key{Frame: 0})
	empty.DataArrayLength = 0
	codec, err := header.NewCodec(header.LayoutCanonical)
	require.NoError(t, err)
	_, err = Inspect(ctx, bytes.NewReader(codec.Encode(empty)))
	assert.ErrorIs(t, err, ErrInvalidHeader)
	_, err = load(t, codec.Encode(empty))
	assert.ErrorIs(t, err, ErrInvalidHeader)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Inspect(cancelled, bytes.NewReader(capture))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummary(t *testing.T) {
	capture := testutil.Capture(t, testutil.Key{Frame: 0, Station: "KP"}, testutil.Key{Frame: 1, Station: "KP"})

	d, err := load(t, capture)
	require.NoError(t, err)
	s := d.Summary()

	assert.Equal(t, 2, s.Frames)
	assert.Equal(t, []int{1, 1, 1, 2, 8}, s.Shape)
	assert.Equal(t, []string{"KP"}, s.Stations)
	assert.Equal(t, 2, s.Channels)
	assert.Equal(t, 4, s.SamplesPerFrame)
	assert.InDelta(t, 0.001, s.SamplePeriod, 1e-12)
	assert.Equal(t, "2024-01-01T00:01:40Z", s.Start)
	assert.Equal(t, "2024-01-01T00:01:40.007Z", s.End)

	idx, err := Inspect(context.Background(), bytes.NewReader(capture))
	require.NoError(t, err)
	assert.Equal(t, s, idx.Summary())
}
