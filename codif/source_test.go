package codif

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-codif/internal/testutil"
)

func compressZstd(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func compressLZ4(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNewCaptureDetectsCompression(t *testing.T) {
	raw := testutil.Capture(t, testutil.Key{Frame: 0}, testutil.Key{Frame: 1})

	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"none", raw, CompressionNone},
		{"zstd", compressZstd(t, raw), CompressionZstd},
		{"lz4", compressLZ4(t, raw), CompressionLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCapture(bytes.NewReader(tt.data))
			require.NoError(t, err)
			defer c.Close()

			assert.Equal(t, tt.want, c.Compression())
			assert.Equal(t, tt.name, c.Compression().String())

			got, err := io.ReadAll(c)
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}

func TestNewCaptureShortInput(t *testing.T) {
	c, err := NewCapture(bytes.NewReader([]byte{0x28, 0xB5}))
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, c.Compression())

	_, err = Load(context.Background(), c)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestLoadFileCompressed(t *testing.T) {
	raw := testutil.Capture(t, grid([]string{"AA"}, []uint16{0, 1}, []uint16{0}, []uint32{0, 1})...)
	dir := t.TempDir()

	want, err := load(t, raw)
	require.NoError(t, err)

	files := map[string][]byte{
		"capture.codif":     raw,
		"capture.codif.zst": compressZstd(t, raw),
		"capture.codif.lz4": compressLZ4(t, raw),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		got, err := LoadFile(context.Background(), path)
		require.NoError(t, err, name)
		assert.Equal(t, want.Data.Raw(), got.Data.Raw(), name)
		assert.Equal(t, want.Keys(), got.Keys(), name)

		idx, err := InspectFile(context.Background(), path)
		require.NoError(t, err, name)
		assert.Equal(t, int64(len(raw)), idx.Bytes, name)
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.codif"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "empty.codif")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = LoadFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrNoFrames)
	assert.Contains(t, err.Error(), "empty.codif")
}
