package groove

import (
	"testing"

	"github.com/grainlab/groove-core/internal/control"
	"github.com/grainlab/groove-core/internal/sequencer"
	"github.com/grainlab/groove-core/internal/voice"
	"github.com/grainlab/groove-core/internal/voicemgr"
)

// newTestEngine builds a one-track engine driven directly through
// SetTrackParameter/Events, bypassing the sequencer clock so scenarios can
// fire note-on/off at an exact sample.
func newTestEngine(sampleRate float64) *Engine {
	pattern := sequencer.NewPattern(1, 1)
	return NewEngine(sampleRate, pattern, []TrackConfig{{Engine: voice.EngineSubtractive, VoiceCount: voicemgr.DefaultMaxVoices}}, nil)
}

// TestScenarioSubtractiveC4 covers note_on(60,100) at ATTACK=0.01,
// DECAY=0.1, SUSTAIN=0.7, RELEASE=0.2, VOLUME=0.5: it must produce non-zero
// output from sample 0 and still be in the attack/decay region by sample
// 480 at 48kHz.
func TestScenarioSubtractiveC4(t *testing.T) {
	e := newTestEngine(48000)
	e.SetTrackParameter(0, voice.ParamAttack, 0.01)
	e.SetTrackParameter(0, voice.ParamDecay, 0.1)
	e.SetTrackParameter(0, voice.ParamSustain, 0.7)
	e.SetTrackParameter(0, voice.ParamRelease, 0.2)
	e.SetTrackParameter(0, voice.ParamVolume, 0.5)

	e.Events.Send(control.ControlEvent{Kind: control.EventNoteOn, Track: 0, Note: 60, Velocity: 100.0 / 127})

	out := make([]float32, 480*2)
	e.Process(out)

	nonZero := false
	for _, s := range out {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected non-zero output within the first block")
	}

	v := firstActiveVoice(e)
	if v == nil {
		t.Fatal("expected an active voice after note-on")
	}
	lvl := v.Env.Level()
	stage := v.Env.Stage()
	if lvl <= 0.7 || lvl > 1.0 {
		t.Fatalf("expected envelope level in (0.7, 1.0] at sample 480, got %v", lvl)
	}
	if stage != voice.StageAttack && stage != voice.StageDecay {
		t.Fatalf("expected envelope still in Attack/Decay at sample 480, got stage=%v", stage)
	}
}

// TestScenarioNoteOffSilence checks that after a note-off, a one-second
// render decays to silence and the voice deactivates.
func TestScenarioNoteOffSilence(t *testing.T) {
	e := newTestEngine(48000)
	e.SetTrackParameter(0, voice.ParamAttack, 0.01)
	e.SetTrackParameter(0, voice.ParamDecay, 0.1)
	e.SetTrackParameter(0, voice.ParamSustain, 0.7)
	e.SetTrackParameter(0, voice.ParamRelease, 0.2)
	e.SetTrackParameter(0, voice.ParamVolume, 0.5)

	e.Events.Send(control.ControlEvent{Kind: control.EventNoteOn, Track: 0, Note: 60, Velocity: 100.0 / 127})
	out := make([]float32, 480*2)
	e.Process(out)

	e.Events.Send(control.ControlEvent{Kind: control.EventNoteOff, Track: 0, Note: 60})

	const blockSize = 480
	total := 0
	var last []float32
	for total < 48000 {
		e.Process(out)
		last = out
		total += blockSize
	}

	for _, s := range last[len(last)-2:] {
		if abs32(s) >= 1e-4 {
			t.Fatalf("expected near-silent tail, got %v", s)
		}
	}
	tr := e.tracks[0]
	for _, v := range tr.voices.Voices() {
		if v.Active {
			t.Fatalf("expected voice to have deactivated by end of render")
		}
	}
}

// TestScenarioVoiceSteal checks that with MAX_VOICES=4, five distinct
// note-ons leave exactly four active voices, the oldest (note 60) having
// been stolen, and a subsequent note-off on it must not panic.
func TestScenarioVoiceSteal(t *testing.T) {
	pattern := sequencer.NewPattern(1, 1)
	e := NewEngine(48000, pattern, []TrackConfig{{Engine: voice.EngineSubtractive, VoiceCount: 4}}, nil)

	notes := []int{60, 61, 62, 63, 64}
	out := make([]float32, 64)
	for _, n := range notes {
		e.Events.Send(control.ControlEvent{Kind: control.EventNoteOn, Track: 0, Note: n, Velocity: 0.8})
		e.Process(out)
	}

	tr := e.tracks[0]
	if got := tr.voices.ActiveVoiceCount(); got != 4 {
		t.Fatalf("expected exactly 4 active voices, got %d", got)
	}
	for _, v := range tr.voices.Voices() {
		if v.Active && v.Note == 60 {
			t.Fatalf("note 60 should have been stolen")
		}
	}

	e.Events.Send(control.ControlEvent{Kind: control.EventNoteOff, Track: 0, Note: 60})
	e.Process(out) // must not panic
}

func firstActiveVoice(e *Engine) *voice.Voice {
	for _, tr := range e.tracks {
		for _, v := range tr.voices.Voices() {
			if v.Active {
				return v
			}
		}
	}
	return nil
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
