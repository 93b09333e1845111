package codif

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/robert-malhotra/go-codif/internal/header"
	"github.com/robert-malhotra/go-codif/internal/payload"
	"github.com/robert-malhotra/go-codif/internal/timing"
)

// Header is a decoded 64-byte frame header.
type Header = header.Header

// Geometry is the part of a header every frame of a dataset shares.
type Geometry = header.Geometry

// Layout selects a header bit layout.
type Layout = header.Layout

// Header bit layouts
const (
	LayoutCanonical = header.LayoutCanonical
	LayoutLowNibble = header.LayoutLowNibble
)

// HeaderSize is the size of a frame header in bytes.
const HeaderSize = header.Size

// ParseLayout parses a layout name ("canonical" or "lownibble").
func ParseLayout(name string) (Layout, error) {
	return header.ParseLayout(name)
}

// FrameKey identifies a frame within a capture.
type FrameKey struct {
	FrameNumber uint32
	Thread      uint16
	Group       uint16
	Secondary   uint16
	Station     string
}

// KeyOf returns the key of the frame h heads.
func KeyOf(h *Header) FrameKey {
	return FrameKey{
		FrameNumber: h.DataFrameNumber,
		Thread:      h.ThreadID,
		Group:       h.GroupID,
		Secondary:   h.SecondaryID,
		Station:     h.StationID(),
	}
}

func (k FrameKey) String() string {
	return fmt.Sprintf("frame %d thread %d group %d secondary %d station %q",
		k.FrameNumber, k.Thread, k.Group, k.Secondary, k.Station)
}

// compareKeys orders keys by frame number, thread, group, secondary, station.
func compareKeys(a, b FrameKey) int {
	return cmp.Or(
		cmp.Compare(a.FrameNumber, b.FrameNumber),
		cmp.Compare(a.Thread, b.Thread),
		cmp.Compare(a.Group, b.Group),
		cmp.Compare(a.Secondary, b.Secondary),
		cmp.Compare(a.Station, b.Station),
	)
}

// Frame is one decoded header and payload. Frames are not modified after
// they are returned.
type Frame struct {
	Header *Header

	// Samples holds one row per channel and one column per sample.
	Samples *mat.CDense

	// Timestamps holds one entry per sample, in seconds since
	// timing.BaseEpoch (2000-01-01T00:00:00Z).
	Timestamps []float64
}

// Key returns the frame's key.
func (f *Frame) Key() FrameKey {
	return KeyOf(f.Header)
}

// Start returns the time of the frame's first sample.
func (f *Frame) Start() time.Time {
	return timing.FrameStartTime(f.Header)
}

// DecodeHeader decodes the first HeaderSize bytes of buf. It does not
// validate the header; see Header.Validate.
func DecodeHeader(buf []byte, opts ...Option) (*Header, error) {
	o := newOptions(opts)
	codec, err := header.NewCodec(o.layout)
	if err != nil {
		return nil, err
	}
	h, err := codec.Decode(buf)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	return h, nil
}

// ReadFrame reads and decodes the next frame from r. It consumes exactly
// one frame, plus any bytes skipped by resynchronisation, and returns
// io.EOF when r is empty at a frame boundary.
func ReadFrame(r io.Reader, opts ...Option) (*Frame, error) {
	fr, err := NewReader(r, opts...)
	if err != nil {
		return nil, err
	}
	return fr.Next()
}

// Reader decodes frames sequentially from a byte stream.
type Reader struct {
	src     io.Reader
	codec   header.Codec
	opts    *options
	log     *slog.Logger
	offset  int64
	index   int
	skipped int64
	hdr     [header.Size]byte
}

// NewReader returns a Reader decoding frames from r. The Reader does not
// buffer; wrap r in a bufio.Reader for small reads from files.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	return newReader(r, newOptions(opts))
}

func newReader(r io.Reader, o *options) (*Reader, error) {
	codec, err := header.NewCodec(o.layout)
	if err != nil {
		return nil, err
	}
	return &Reader{src: r, codec: codec, opts: o, log: o.logger}, nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.offset }

// Skipped returns the number of bytes discarded by resynchronisation.
func (r *Reader) Skipped() int64 { return r.skipped }

// Next reads and decodes the next frame. It returns io.EOF when the
// stream ends cleanly at a frame boundary.
func (r *Reader) Next() (*Frame, error) {
	sp, err := r.nextSpan()
	if err != nil {
		return nil, err
	}
	return sp.decode()
}

// payloadChunk caps the payload buffer allocated before any payload
// bytes have been read.
const payloadChunk = 1 << 20

// span is one frame's header and still-encoded payload.
type span struct {
	offset int64
	index  int
	header *Header
	body   []byte
}

func (sp *span) decode() (*Frame, error) {
	samples, err := payload.Decode(sp.body, sp.header)
	if err != nil {
		return nil, &FormatError{Offset: sp.offset, Frame: sp.index, Err: err}
	}
	return &Frame{
		Header:     sp.header,
		Samples:    samples,
		Timestamps: timing.SampleTimestamps(sp.header),
	}, nil
}

func (r *Reader) nextSpan() (*span, error) {
	h, start, err := r.nextHeader()
	if err != nil {
		return nil, err
	}

	// The declared size is untrusted; the buffer only grows as bytes arrive.
	size := int64(h.PayloadSize())
	var body bytes.Buffer
	body.Grow(int(min(size, payloadChunk)))
	n, err := io.CopyN(&body, r.src, size)
	r.offset += n
	if err != nil {
		return nil, r.readError(start, err, "payload")
	}

	sp := &span{offset: start, index: r.index, header: h, body: body.Bytes()}
	r.index++
	return sp, nil
}

// skipPayload advances past the payload of h without decoding it.
func (r *Reader) skipPayload(h *Header, start int64) error {
	n, err := io.CopyN(io.Discard, r.src, int64(h.PayloadSize()))
	r.offset += n
	if err != nil {
		return r.readError(start, err, "payload")
	}
	r.index++
	return nil
}

// nextHeader reads and validates the next header, resynchronising if
// enabled. It returns the header and its offset.
func (r *Reader) nextHeader() (*Header, int64, error) {
	start := r.offset
	n, err := io.ReadFull(r.src, r.hdr[:])
	r.offset += int64(n)
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		if r.opts.resync > 0 && errors.Is(err, io.ErrUnexpectedEOF) {
			r.skipped += int64(n)
			r.log.Warn("codif: discarded trailing bytes", "offset", start, "bytes", n)
			return nil, 0, io.EOF
		}
		return nil, 0, r.readError(start, err, "header")
	}

	h, err := r.parseHeader()
	if err == nil {
		r.logHeader(h, start)
		return h, start, nil
	}
	if r.opts.resync == 0 {
		return nil, 0, &FormatError{Offset: start, Frame: r.index, Err: err}
	}
	return r.resync(start, err)
}

func (r *Reader) parseHeader() (*Header, error) {
	h, err := r.codec.Decode(r.hdr[:])
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// resync slides the header window forward one byte at a time until it
// holds a valid header or the resync window is exhausted.
func (r *Reader) resync(start int64, cause error) (*Header, int64, error) {
	var one [1]byte
	for skipped := 1; skipped <= r.opts.resync; skipped++ {
		n, err := io.ReadFull(r.src, one[:])
		r.offset += int64(n)
		if err != nil {
			// Trailing bytes that never form a frame end the stream.
			r.skipped += int64(skipped - 1 + header.Size)
			r.log.Warn("codif: discarded trailing bytes",
				"offset", start, "bytes", skipped-1+header.Size)
			return nil, 0, io.EOF
		}
		copy(r.hdr[:], r.hdr[1:])
		r.hdr[header.Size-1] = one[0]

		if binary.LittleEndian.Uint32(r.hdr[header.SyncOffset:]) != header.SyncWord {
			continue
		}
		h, err := r.parseHeader()
		if err != nil {
			continue
		}
		at := start + int64(skipped)
		r.skipped += int64(skipped)
		r.log.Warn("codif: resynchronised",
			"offset", start, "skipped", skipped, "cause", cause)
		r.logHeader(h, at)
		return h, at, nil
	}
	return nil, 0, &FormatError{
		Offset: start,
		Frame:  r.index,
		Err:    fmt.Errorf("no valid header within %d bytes: %w", r.opts.resync, cause),
	}
}

func (r *Reader) readError(start int64, err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("%w: short %s", ErrTruncated, what)
	}
	return &FormatError{Offset: start, Frame: r.index, Err: err}
}

func (r *Reader) logHeader(h *Header, offset int64) {
	if !r.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	r.log.Debug("codif: frame header",
		"offset", offset,
		"key", KeyOf(h).String(),
		"flags", fmt.Sprintf("0x%02x", h.FlagsByte),
		"version", fmt.Sprintf("0x%02x", h.VersionByte),
	)
}
