// Package config loads codifinfo configuration from YAML.
//
// Example:
//
//	decode:
//	  layout: canonical
//	  flatten_groups: false
//	  workers: 4
//	  resync_window: 0
//	output:
//	  format: json
//	  digest: true
//	log:
//	  level: debug
//
// Every field is optional; omitted fields keep their Default values.
// Unknown fields are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-codif/codif"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Config is the root configuration.
type Config struct {
	Decode DecodeConfig `yaml:"decode"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// DecodeConfig maps onto codif options.
type DecodeConfig struct {
	Layout        codif.Layout `yaml:"layout"`
	FlattenGroups bool         `yaml:"flatten_groups"`

	// Workers is the number of concurrent frame decoders; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	// ResyncWindow enables resynchronisation when positive.
	ResyncWindow int `yaml:"resync_window"`

	// HeadersOnly skips payload decoding and reports the header index.
	HeadersOnly bool `yaml:"headers_only"`
}

// OutputConfig controls how codifinfo reports.
type OutputConfig struct {
	Format string `yaml:"format"`
	Digest bool   `yaml:"digest"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level slog.Level `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			Layout:  codif.LayoutCanonical,
			Workers: 1,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Log: LogConfig{
			Level: slog.LevelWarn,
		},
	}
}

// LoadFile reads a YAML configuration file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := codif.ParseLayout(c.Decode.Layout.String()); err != nil {
		return fmt.Errorf("decode.layout: %w", err)
	}
	if c.Decode.Workers < 0 {
		return fmt.Errorf("decode.workers must be >= 0, got %d", c.Decode.Workers)
	}
	if c.Decode.ResyncWindow < 0 {
		return fmt.Errorf("decode.resync_window must be >= 0, got %d", c.Decode.ResyncWindow)
	}
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatCBOR:
	default:
		return fmt.Errorf("output.format must be one of text, json, cbor; got %q", c.Output.Format)
	}
	return nil
}

// Options converts the decode section into codif options.
func (c *Config) Options(logger *slog.Logger) []codif.Option {
	return []codif.Option{
		codif.WithLayout(c.Decode.Layout),
		codif.WithFlattenGroups(c.Decode.FlattenGroups),
		codif.WithWorkers(c.Decode.Workers),
		codif.WithResync(c.Decode.ResyncWindow),
		codif.WithLogger(logger),
	}
}
