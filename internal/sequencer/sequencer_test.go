package sequencer

import "testing"

func TestStepRoundTrip(t *testing.T) {
	s := Step{
		Note:         60,
		Velocity:     100,
		SlideTimeMs:  30,
		AccentAmount: 80,
		Flags:        FlagEnabled | FlagAccent | FlagSlide,
		Probability:  127,
		MicroTiming:  5,
	}
	got := Deserialize(s.Serialize())
	if got != s {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, s)
	}
}

func TestStepRoundTripAllValid(t *testing.T) {
	for note := uint8(0); note < 128; note += 13 {
		for mt := int8(-64); mt < 63; mt += 17 {
			s := Step{Note: note, Velocity: 64, SlideTimeMs: 60, AccentAmount: 50, Flags: FlagEnabled, Probability: 100, MicroTiming: mt}
			if got := Deserialize(s.Serialize()); got != s {
				t.Fatalf("round trip mismatch for note=%d mt=%d: got %+v want %+v", note, mt, got, s)
			}
		}
	}
}

func TestEuclidean16_5_0(t *testing.T) {
	want := []bool{true, false, false, true, false, false, true, false, false, true, false, false, true, false, false, false}
	got := Euclidean(16, 5, 0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestEuclideanPulseCount(t *testing.T) {
	for _, tc := range []struct{ n, k int }{{16, 5}, {8, 3}, {13, 7}, {7, 13}, {1, 1}} {
		got := Euclidean(tc.n, tc.k, 0)
		count := 0
		for _, b := range got {
			if b {
				count++
			}
		}
		want := tc.k
		if want > tc.n {
			want = tc.n
		}
		if count != want {
			t.Fatalf("Euclidean(%d,%d): got %d pulses want %d", tc.n, tc.k, count, want)
		}
	}
}

func TestEuclideanRotationConsistency(t *testing.T) {
	n, k := 16, 5
	base := Euclidean(n, k, 3)
	rotated := rotateBool(Euclidean(n, k, 0), 3)
	for i := range base {
		if base[i] != rotated[i] {
			t.Fatalf("Euclidean(n,k,3) should equal rotating Euclidean(n,k,0) by 3, mismatch at %d", i)
		}
	}
	a := Euclidean(n, k, 4)
	b := rotateBool(Euclidean(n, k, 3), 1)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("rotating by 1 should match rotation+1, mismatch at %d", i)
		}
	}
}

func TestPatternSerializeRoundTrip(t *testing.T) {
	p := NewPattern(2, 4)
	p.Cells[0][0] = Step{Note: 36, Velocity: 100, Flags: FlagEnabled, Probability: 127, SlideTimeMs: 5}
	p.Cells[1][2] = Step{Note: 48, Velocity: 90, Flags: FlagEnabled | FlagAccent, Probability: 100, SlideTimeMs: 5, AccentAmount: 64}
	got := DeserializePattern(p.Serialize())
	if got == nil {
		t.Fatal("deserialize returned nil")
	}
	if got.Tracks != p.Tracks || got.Steps != p.Steps {
		t.Fatalf("shape mismatch: got %dx%d want %dx%d", got.Tracks, got.Steps, p.Tracks, p.Steps)
	}
	if got.Cells[0][0] != p.Cells[0][0] || got.Cells[1][2] != p.Cells[1][2] {
		t.Fatal("cell contents did not round-trip")
	}
}

func TestTrackAudible(t *testing.T) {
	p := NewPattern(2, 4)
	p.TrackCfg[0].Muted = true
	if p.TrackAudible(0) {
		t.Fatal("muted track should not be audible")
	}
	if !p.TrackAudible(1) {
		t.Fatal("enabled unmuted track should be audible")
	}
	p.TrackCfg[1].Solo = true
	if p.TrackAudible(0) {
		t.Fatal("non-solo track should be inaudible when another track is soloed")
	}
	if !p.TrackAudible(1) {
		t.Fatal("solo track should be audible")
	}
}

func TestPlayheadEmitsNoteOn(t *testing.T) {
	p := NewPattern(1, 4)
	p.Cells[0][0] = Step{Note: 60, Velocity: 100, Flags: FlagEnabled, Probability: 127}
	ph := NewPlayhead(48000, 120)
	ph.Division = 4
	n := int(ph.samplesPerStep()) + 10
	events := ph.Advance(p, n, nil)
	found := false
	for _, e := range events {
		if e.Kind == EventNoteOn && e.Note == 60 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a note-on event, got %+v", events)
	}
}

func TestEuclideanEmptyRotation(t *testing.T) {
	got := rotateBool(nil, 3)
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestPlayheadArpeggiatorRewritesEmittedNote(t *testing.T) {
	p := NewPattern(1, 4)
	for i := range p.Cells[0] {
		p.Cells[0][i] = Step{Note: 60, Velocity: 100, Flags: FlagEnabled, Probability: 127}
	}
	ph := NewPlayhead(48000, 120)
	ph.Division = 4
	ph.Tracks[0].Arp = NewArpeggiator(nil)
	ph.Tracks[0].Arp.Enabled = true
	ph.Tracks[0].Arp.Octaves = 2
	ph.Tracks[0].Arp.Mode = ArpUp

	stepLen := int(ph.samplesPerStep())
	var notesOn []int
	for i := 0; i < 4; i++ {
		events := ph.Advance(p, stepLen, nil)
		for _, e := range events {
			if e.Kind == EventNoteOn {
				notesOn = append(notesOn, e.Note)
			}
		}
	}
	if len(notesOn) == 0 {
		t.Fatal("expected the arpeggiator to emit note-ons")
	}
	sawOctaveUp := false
	for _, n := range notesOn {
		if n == 72 {
			sawOctaveUp = true
		}
		if n != 60 && n != 72 {
			t.Fatalf("arpeggiator emitted a note outside its held+octave set: %d", n)
		}
	}
	if !sawOctaveUp {
		t.Fatalf("expected the octave-stacked note (72) to appear in an up-mode cycle, got %v", notesOn)
	}
}

func TestFilterEnvelopeGatesWithStepLifecycle(t *testing.T) {
	p := NewPattern(1, 2)
	p.Cells[0][0] = Step{Note: 60, Velocity: 100, Flags: FlagEnabled, Probability: 127}
	p.Cells[0][1] = Step{Note: 64, Velocity: 100, Flags: FlagEnabled, Probability: 127}
	ph := NewPlayhead(48000, 120)
	ph.Division = 4
	ph.Tracks[0].FilterEnv.Depth = 1

	stepLen := int(ph.samplesPerStep())
	ph.Advance(p, stepLen, nil)
	if ph.Tracks[0].FilterEnv.stage != filterEnvAttack && ph.Tracks[0].FilterEnv.stage != filterEnvDecay {
		t.Fatalf("expected the filter envelope gated open after the first step's note-on, got stage=%v", ph.Tracks[0].FilterEnv.stage)
	}

	offsets := ph.AdvanceFilterEnvelopes(stepLen)
	if offsets[0] <= 0 {
		t.Fatalf("expected a positive cutoff offset while the envelope is open, got %v", offsets[0])
	}

	ph.Advance(p, stepLen, nil) // second step's note-on re-gates (no tie) after closing the first
	if ph.Tracks[0].FilterEnv.stage == filterEnvIdle {
		t.Fatal("expected the envelope to have re-gated open on the second step's note-on")
	}
}
