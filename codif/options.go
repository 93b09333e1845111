package codif

import (
	"log/slog"
	"runtime"

	"github.com/robert-malhotra/go-codif/internal/header"
)

// Option configures decoding.
type Option func(*options)

type options struct {
	layout  header.Layout
	flatten bool
	workers int
	resync  int
	logger  *slog.Logger
}

func defaultOptions() *options {
	return &options{
		layout:  header.DefaultLayout,
		workers: 1,
		logger:  slog.New(slog.DiscardHandler),
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLayout selects the header bit layout (default LayoutCanonical).
func WithLayout(l Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithFlattenGroups merges the station, group, thread and channel axes of
// the dataset tensor into one row axis. See Dataset.Data.
func WithFlattenGroups(flatten bool) Option {
	return func(o *options) {
		o.flatten = flatten
	}
}

// WithWorkers sets how many frames are decoded concurrently.
// Zero or a negative value uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithResync enables resynchronisation: after a header fails validation the
// reader slides forward one byte at a time, up to window bytes, looking
// for the next valid header. Zero disables it, which is the default; a
// malformed frame then aborts the read.
func WithResync(window int) Option {
	return func(o *options) {
		if window < 0 {
			window = 0
		}
		o.resync = window
	}
}

// WithLogger sets the logger for decode diagnostics. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
