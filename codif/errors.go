package codif

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-codif/internal/header"
	"github.com/robert-malhotra/go-codif/internal/payload"
)

// Frame-level errors
var (
	ErrTruncated               = header.ErrTruncated
	ErrBadSync                 = header.ErrBadSync
	ErrInvalidHeader           = header.ErrInvalidHeader
	ErrChannelBlockMismatch    = header.ErrChannelBlockMismatch
	ErrUnsupportedSampleFormat = payload.ErrUnsupportedSampleFormat
)

// Cross-frame errors
var (
	ErrDuplicateKey         = errors.New("duplicate frame key")
	ErrInconsistentGeometry = errors.New("inconsistent frame geometry")
	ErrIncompleteFrameSet   = errors.New("incomplete frame set")
	ErrNoFrames             = errors.New("capture contains no frames")
)

// FormatError reports malformed bytes in one frame of a capture.
type FormatError struct {
	Offset int64 // byte offset of the frame header in the source
	Frame  int   // zero-based position of the frame in the source
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("codif: frame %d at offset %d: %v", e.Frame, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports a cross-frame consistency failure found while
// building a dataset. Key is nil when no single frame is to blame.
type ValidationError struct {
	Key    *FrameKey
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "codif: " + e.Err.Error()
	if e.Key != nil {
		msg += " at " + e.Key.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func validationError(err error, key *FrameKey, format string, args ...any) *ValidationError {
	return &ValidationError{Key: key, Detail: fmt.Sprintf(format, args...), Err: err}
}
