package header

import (
	"fmt"
	"strings"
)

// Layout identifies how the packed bytes 10 and 11 are interpreted.
type Layout uint8

const (
	// LayoutCanonical places the sample representation in bits 4-7.
	LayoutCanonical Layout = iota + 1

	// LayoutLowNibble reads the sample representation from bits 0-3.
	LayoutLowNibble
)

// DefaultLayout is used when no layout is configured.
const DefaultLayout = LayoutCanonical

// String returns the configuration name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutCanonical:
		return "canonical"
	case LayoutLowNibble:
		return "lownibble"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(l))
	}
}

// ParseLayout parses a layout from its configuration name.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "canonical":
		return LayoutCanonical, nil
	case "lownibble", "low-nibble", "legacy":
		return LayoutLowNibble, nil
	default:
		return 0, fmt.Errorf("unknown header layout: %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Codec decodes and encodes headers for one bit layout.
type Codec interface {
	// Layout returns the bit layout this codec implements.
	Layout() Layout

	// Decode parses the first Size bytes of buf. It does not validate
	// the header; call Header.Validate for that.
	Decode(buf []byte) (*Header, error)

	// Encode returns the Size-byte wire form of h.
	Encode(h *Header) []byte
}

// NewCodec returns the codec for the given layout.
func NewCodec(l Layout) (Codec, error) {
	switch l {
	case LayoutCanonical:
		return canonicalCodec{}, nil
	case LayoutLowNibble:
		return lowNibbleCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported header layout: %s", l)
	}
}
