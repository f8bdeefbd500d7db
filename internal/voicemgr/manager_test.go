package voicemgr

import (
	"testing"

	"github.com/grainlab/groove-core/internal/voice"
)

type testEngine struct {
	env       *voice.ADSR
	note      int
	active    bool
	amplitude float32
}

func newTestEngine() *testEngine { return &testEngine{note: -1, amplitude: 0.5} }

func (e *testEngine) Info() voice.Info              { return voice.Info{Type: voice.EngineSubtractive} }
func (e *testEngine) AttachEnvelope(env *voice.ADSR) { e.env = env }
func (e *testEngine) SetPortamento(seconds float64)  {}
func (e *testEngine) NoteOn(note int, velocity, aftertouch float64) {
	e.note = note
	e.active = true
}
func (e *testEngine) NoteOff(note int) {
	if e.note == note {
		e.active = false
	}
}
func (e *testEngine) SetAftertouch(note int, value float64) {}
func (e *testEngine) AllNotesOff()                           { e.active = false }
func (e *testEngine) SetParameter(id voice.ParameterID, v float64) {}
func (e *testEngine) GetParameter(id voice.ParameterID) float64    { return 0 }
func (e *testEngine) HasParameter(id voice.ParameterID) bool       { return true }
func (e *testEngine) SupportsParameterModulation(id voice.ParameterID) bool { return true }
func (e *testEngine) SetModulation(id voice.ParameterID, amount float64)    {}
func (e *testEngine) ProcessAudio(out []float32) {
	for i := range out {
		lvl := e.env.Next()
		out[i] = float32(lvl) * e.amplitude
	}
}
func (e *testEngine) ActiveVoiceCount() int    { return 1 }
func (e *testEngine) MaxVoiceCount() int       { return 1 }
func (e *testEngine) SetSampleRate(sr float64) {}
func (e *testEngine) SetBufferSize(n int)      {}
func (e *testEngine) SavePreset(buf []byte) int  { return 0 }
func (e *testEngine) LoadPreset(buf []byte) bool { return true }

func newTestManager(maxVoices int) *Manager {
	return NewManager(maxVoices, 48000, func(slot int) voice.SynthEngine { return newTestEngine() })
}

func TestActiveVoiceCountNeverExceedsMax(t *testing.T) {
	m := newTestManager(4)
	for n := 60; n < 70; n++ {
		m.NoteOn(n, 1.0, 0)
		if m.ActiveVoiceCount() > m.MaxVoices() {
			t.Fatalf("active voice count %d exceeds max %d", m.ActiveVoiceCount(), m.MaxVoices())
		}
	}
}

func TestVoiceStealingTakesOldest(t *testing.T) {
	m := newTestManager(4)
	m.NoteOn(60, 1, 0)
	m.NoteOn(61, 1, 0)
	m.NoteOn(62, 1, 0)
	m.NoteOn(63, 1, 0)
	m.NoteOn(64, 1, 0)

	if m.ActiveVoiceCount() != 4 {
		t.Fatalf("expected exactly 4 active voices, got %d", m.ActiveVoiceCount())
	}
	foundNote60 := false
	for _, v := range m.Voices() {
		if v.Active && v.Note == 60 {
			foundNote60 = true
		}
	}
	if foundNote60 {
		t.Fatalf("note 60 should have been stolen")
	}

	// note_off on a stolen note must be a no-op, not a crash.
	m.NoteOff(60)
}

func TestMixdownDeactivatesSilentVoice(t *testing.T) {
	m := newTestManager(4)
	v := m.NoteOn(60, 1, 0)
	buf := make([]float32, 64)
	m.Process(buf, 32)
	if !v.Active {
		t.Fatalf("voice should still be active while sounding")
	}
	v.Env.SetADSR(0.0001, 0.0001, 0, 0.0001)
	v.NoteOff()
	for i := 0; i < 100; i++ {
		m.Process(buf, 32)
		if !v.Active {
			break
		}
	}
	if v.Active {
		t.Fatalf("voice should deactivate once envelope is idle and output is silent")
	}
}

func TestRepeatedNoteOnRetriggersHeldVoiceRatherThanStealing(t *testing.T) {
	m := newTestManager(4)
	first := m.NoteOn(60, 1, 0)
	first.Env.SetADSR(1, 1, 1, 1) // long attack/decay/sustain: stays held, never idle
	m.NoteOn(61, 1, 0)
	m.NoteOn(62, 1, 0)

	if m.ActiveVoiceCount() != 3 {
		t.Fatalf("expected 3 active voices before retrigger, got %d", m.ActiveVoiceCount())
	}

	second := m.NoteOn(60, 1, 0)
	if second != first {
		t.Fatalf("expected repeated note-on for a held note to retrigger the same voice, got a different one")
	}
	if m.ActiveVoiceCount() != 3 {
		t.Fatalf("expected retrigger to leave active voice count unchanged at 3, got %d", m.ActiveVoiceCount())
	}

	count60 := 0
	for _, v := range m.Voices() {
		if v.Active && v.Note == 60 {
			count60++
		}
	}
	if count60 != 1 {
		t.Fatalf("expected exactly one active voice on note 60, got %d", count60)
	}
}

func TestReleasedNoteOnDoesNotRetrigger(t *testing.T) {
	m := newTestManager(4)
	first := m.NoteOn(60, 1, 0)
	first.Env.SetADSR(0.0001, 0.0001, 1, 10)
	buf := make([]float32, 64)
	m.Process(buf, 32) // advance past attack/decay into sustain
	first.NoteOff()    // now releasing

	second := m.NoteOn(60, 1, 0)
	if second == nil {
		t.Fatal("expected a voice to be allocated")
	}
	if second.Env.Stage() != voice.StageAttack {
		t.Fatalf("a fresh note-on must start its envelope at attack, got stage %v", second.Env.Stage())
	}
}

func TestMixdownScaling(t *testing.T) {
	m := newTestManager(8)
	for n := 60; n < 64; n++ {
		v := m.NoteOn(n, 1, 0)
		v.Env.SetADSR(0, 1, 1, 1)
	}
	buf := make([]float32, 64)
	m.Process(buf, 32)
	var sum float64
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	if sum <= 0 {
		t.Fatalf("expected non-zero mixdown with active voices")
	}
}
