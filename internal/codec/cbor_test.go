package codec

import (
	"bytes"
	"testing"

	"github.com/robert-malhotra/go-codif/internal/header"
)

type summary struct {
	Frames   int           `json:"frames"`
	Stations []string      `json:"stations"`
	Layout   header.Layout `json:"layout"`
	Shape    []int         `json:"shape"`
}

func TestMarshalRoundtrip(t *testing.T) {
	in := summary{Frames: 4, Stations: []string{"KP", "MO"}, Layout: header.LayoutLowNibble, Shape: []int{2, 1, 1, 8, 128}}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out summary
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Frames != in.Frames || out.Layout != in.Layout || len(out.Shape) != 5 || out.Stations[1] != "MO" {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	in := map[string]int{"threads": 2, "groups": 1, "stations": 3, "channels": 8}

	first, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Marshal(in)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("iteration %d produced different bytes", i)
		}
	}
}

func TestLayoutEncodesAsText(t *testing.T) {
	data, err := Marshal(summary{Layout: header.LayoutCanonical})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var generic map[string]any
	if err := Unmarshal(data, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got, ok := generic["layout"].(string); !ok || got != "canonical" {
		t.Errorf("layout not encoded as text string: %#v", generic["layout"])
	}
}
