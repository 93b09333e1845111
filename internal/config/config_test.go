package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-codif/codif"
	"github.com/robert-malhotra/go-codif/internal/testutil"
)

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
decode:
  layout: lownibble
  flatten_groups: true
  workers: 8
  resync_window: 4096
  headers_only: true
output:
  format: cbor
  digest: true
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, codif.LayoutLowNibble, cfg.Decode.Layout)
	assert.True(t, cfg.Decode.FlattenGroups)
	assert.Equal(t, 8, cfg.Decode.Workers)
	assert.Equal(t, 4096, cfg.Decode.ResyncWindow)
	assert.True(t, cfg.Decode.HeadersOnly)
	assert.Equal(t, FormatCBOR, cfg.Output.Format)
	assert.True(t, cfg.Output.Digest)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("output:\n  format: json\n"))
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, codif.LayoutCanonical, cfg.Decode.Layout)
	assert.Equal(t, 1, cfg.Decode.Workers)
	assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "decode:\n  flatten: true\n"},
		{"unknown layout", "decode:\n  layout: v9\n"},
		{"negative workers", "decode:\n  workers: -1\n"},
		{"negative resync", "decode:\n  resync_window: -5\n"},
		{"unknown format", "output:\n  format: xml\n"},
		{"bad level", "log:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codifinfo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decode:\n  workers: 3\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Decode.Workers)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptionsApply(t *testing.T) {
	cfg := Default()
	cfg.Decode.Workers = 2
	cfg.Decode.FlattenGroups = true

	capture := testutil.Capture(t, testutil.Key{Frame: 0}, testutil.Key{Frame: 1})
	d, err := codif.Load(context.Background(), bytes.NewReader(capture), cfg.Options(nil)...)
	require.NoError(t, err)
	assert.True(t, d.Flattened)
	assert.Equal(t, []int{2, 8}, d.Data.Shape())
}
