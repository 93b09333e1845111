// codifinfo reports the layout of a CODIF capture.
//
// Usage:
//
//	codifinfo [flags] <capture>
//
// Captures may be zstd or LZ4 compressed. Settings come from an optional
// YAML file (--config); flags override it.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"github.com/robert-malhotra/go-codif/codif"
	"github.com/robert-malhotra/go-codif/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		configPath  string
		layout      string
		flatten     bool
		workers     int
		resync      int
		headersOnly bool
		format      string
		digest      bool
		verbose     bool
	)

	flagSet := pflag.NewFlagSet("codifinfo", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "YAML configuration file")
	flagSet.StringVar(&layout, "layout", "canonical", "header bit layout: canonical or lownibble")
	flagSet.BoolVar(&flatten, "flatten", false, "merge station, group, thread and channel axes")
	flagSet.IntVar(&workers, "workers", 1, "concurrent frame decoders (0 = GOMAXPROCS)")
	flagSet.IntVar(&resync, "resync", 0, "resynchronise within this many bytes after a bad header (0 = off)")
	flagSet.BoolVar(&headersOnly, "headers-only", false, "read headers only; do not decode samples")
	flagSet.StringVar(&format, "format", config.FormatText, "output format: text, json or cbor")
	flagSet.BoolVar(&digest, "digest", false, "include the BLAKE3 digest of the capture file")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log decode diagnostics and list frames")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: codifinfo [flags] <capture>\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected one capture path, got %d arguments", flagSet.NArg())
	}
	path := flagSet.Arg(0)

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if flagSet.Changed("layout") {
		l, err := codif.ParseLayout(layout)
		if err != nil {
			return err
		}
		cfg.Decode.Layout = l
	}
	if flagSet.Changed("flatten") {
		cfg.Decode.FlattenGroups = flatten
	}
	if flagSet.Changed("workers") {
		cfg.Decode.Workers = workers
	}
	if flagSet.Changed("resync") {
		cfg.Decode.ResyncWindow = resync
	}
	if flagSet.Changed("headers-only") {
		cfg.Decode.HeadersOnly = headersOnly
	}
	if flagSet.Changed("format") {
		cfg.Output.Format = format
	}
	if flagSet.Changed("digest") {
		cfg.Output.Digest = digest
	}
	if verbose {
		cfg.Log.Level = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Log.Level}))

	rep, frames, err := inspect(ctx, path, cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Output.Digest {
		rep.Digest, err = fileDigest(path)
		if err != nil {
			return err
		}
	}
	return writeReport(stdout, cfg.Output.Format, rep, frames, verbose)
}

// inspect loads or indexes the capture at path as cfg asks.
func inspect(ctx context.Context, path string, cfg *config.Config, logger *slog.Logger) (*report, *codif.Dataset, error) {
	capture, err := codif.OpenCapture(path)
	if err != nil {
		return nil, nil, err
	}
	defer capture.Close()

	opts := cfg.Options(logger)
	rep := &report{
		Path:        path,
		Layout:      cfg.Decode.Layout,
		Compression: capture.Compression().String(),
		HeadersOnly: cfg.Decode.HeadersOnly,
	}

	if cfg.Decode.HeadersOnly {
		idx, err := codif.Inspect(ctx, capture, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("inspecting %s: %w", path, err)
		}
		rep.Summary = idx.Summary()
		rep.Bytes, rep.Skipped = idx.Bytes, idx.Skipped
		return rep, nil, nil
	}

	d, err := codif.Load(ctx, capture, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	rep.Summary = d.Summary()
	rep.Elements = d.Data.Len()
	return rep, d, nil
}

// fileDigest returns the hex BLAKE3 digest of the file as stored.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening capture: %w", err)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hashing capture: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
