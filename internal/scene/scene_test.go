package scene

import (
	"testing"

	"github.com/grainlab/groove-core/internal/sequencer"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	s := &Scene{Name: "demo", TempoBPM: 128, ReverbWet: 0.3}
	s.Tracks = append(s.Tracks, TrackScene{Engine: "subtractive", Level: 1, Filter: true})
	p := sequencer.NewPattern(4, 16)
	p.Cells[0][0] = sequencer.Step{}
	s.AddPattern("verse", p)

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "demo" || got.TempoBPM != 128 {
		t.Fatalf("scalar fields didn't round trip: %+v", got)
	}
	if len(got.Tracks) != 1 || got.Tracks[0].Engine != "subtractive" || !got.Tracks[0].Filter {
		t.Fatalf("track didn't round trip: %+v", got.Tracks)
	}
	gotPattern, err := got.Pattern(0)
	if err != nil {
		t.Fatalf("decoding pattern: %v", err)
	}
	if gotPattern.Tracks != 4 || gotPattern.Steps != 16 {
		t.Fatalf("pattern dims didn't round trip: %+v", gotPattern)
	}
}

func TestPatternOutOfRange(t *testing.T) {
	s := &Scene{}
	if _, err := s.Pattern(0); err == nil {
		t.Fatal("expected an error for an empty pattern bank")
	}
}
