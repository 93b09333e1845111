package testutil

import (
	"testing"

	"github.com/robert-malhotra/go-codif/internal/header"
)

func TestReferenceHeaderValid(t *testing.T) {
	if err := ReferenceHeader().Validate(); err != nil {
		t.Fatalf("reference header invalid: %v", err)
	}
}

func TestFrameLength(t *testing.T) {
	h := SmallHeader(Key{Frame: 7, Station: "AB"})
	if err := h.Validate(); err != nil {
		t.Fatalf("small header invalid: %v", err)
	}
	if got, want := len(Frame(t, h)), header.Size+h.PayloadSize(); got != want {
		t.Errorf("frame is %d bytes, expected %d", got, want)
	}
	if got, want := len(Frame(t, ReferenceHeader())), header.Size+2048; got != want {
		t.Errorf("reference frame is %d bytes, expected %d", got, want)
	}
}

func TestCaptureConcatenates(t *testing.T) {
	keys := []Key{{Frame: 1}, {Frame: 2}, {Frame: 3}}
	single := len(Frame(t, SmallHeader(keys[0])))
	if got := len(Capture(t, keys...)); got != 3*single {
		t.Errorf("capture is %d bytes, expected %d", got, 3*single)
	}
}
