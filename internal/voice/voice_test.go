package voice

import "testing"

type fakeEngine struct {
	onNote  int
	params  map[ParameterID]float64
	mod     map[ParameterID]float64
	sr      float64
	bufSize int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{params: map[ParameterID]float64{}, mod: map[ParameterID]float64{}}
}

func (f *fakeEngine) Info() Info                { return Info{Type: EngineSubtractive, Name: "fake"} }
func (f *fakeEngine) AttachEnvelope(env *ADSR)   {}
func (f *fakeEngine) SetPortamento(seconds float64) {}
func (f *fakeEngine) NoteOn(note int, velocity, aftertouch float64) { f.onNote = note }
func (f *fakeEngine) NoteOff(note int) {
	if f.onNote == note {
		f.onNote = -1
	}
}
func (f *fakeEngine) SetAftertouch(note int, value float64) {}
func (f *fakeEngine) AllNotesOff()                           { f.onNote = -1 }
func (f *fakeEngine) SetParameter(id ParameterID, v float64) { f.params[id] = v }
func (f *fakeEngine) GetParameter(id ParameterID) float64    { return f.params[id] }
func (f *fakeEngine) HasParameter(id ParameterID) bool       { return true }
func (f *fakeEngine) SupportsParameterModulation(id ParameterID) bool { return true }
func (f *fakeEngine) SetModulation(id ParameterID, amount float64)    { f.mod[id] = amount }
func (f *fakeEngine) ProcessAudio(out []float32) {
	for i := range out {
		out[i] = 0.1
	}
}
func (f *fakeEngine) ActiveVoiceCount() int   { return 1 }
func (f *fakeEngine) MaxVoiceCount() int      { return 1 }
func (f *fakeEngine) SetSampleRate(sr float64) { f.sr = sr }
func (f *fakeEngine) SetBufferSize(n int)      { f.bufSize = n }
func (f *fakeEngine) SavePreset(buf []byte) int { return 0 }
func (f *fakeEngine) LoadPreset(buf []byte) bool { return true }

func TestADSRLevelBounds(t *testing.T) {
	e := NewADSR(48000)
	e.SetADSR(0.01, 0.1, 0.7, 0.2)
	e.NoteOn()
	for i := 0; i < 48000; i++ {
		l := e.Next()
		if l < 0 || l > 1 {
			t.Fatalf("level out of bounds at sample %d: %v", i, l)
		}
	}
}

func TestADSRReleaseReachesIdleAtZero(t *testing.T) {
	e := NewADSR(48000)
	e.SetADSR(0.001, 0.001, 0.5, 0.01)
	e.NoteOn()
	for i := 0; i < 200; i++ {
		e.Next()
	}
	e.NoteOff()
	for i := 0; i < 48000; i++ {
		e.Next()
		if e.Stage() == StageIdle {
			break
		}
	}
	if e.Stage() != StageIdle {
		t.Fatalf("expected envelope to reach Idle, stage=%v", e.Stage())
	}
	if e.Level() != 0 {
		t.Fatalf("Idle envelope must have level == 0, got %v", e.Level())
	}
}

func TestADSRNoteOffFromIdleIsNoop(t *testing.T) {
	e := NewADSR(48000)
	if e.Stage() != StageIdle {
		t.Fatalf("new envelope should start Idle")
	}
	e.NoteOff()
	if e.Stage() != StageIdle {
		t.Fatalf("NoteOff from Idle must stay Idle, got %v", e.Stage())
	}
}

func TestADSRRetriggerHasNoLevelJump(t *testing.T) {
	e := NewADSR(48000)
	e.SetADSR(0.01, 0.1, 0.7, 0.2)
	e.NoteOn()
	for i := 0; i < 100; i++ {
		e.Next()
	}
	levelBefore := e.Level()
	e.NoteOn()
	if e.Level() != levelBefore {
		t.Fatalf("retrigger must not change level instantaneously: before=%v after=%v", levelBefore, e.Level())
	}
	if e.Stage() != StageAttack {
		t.Fatalf("retrigger must restart at Attack, got %v", e.Stage())
	}
}

func TestVoiceNoteOnOffForwardsToEngine(t *testing.T) {
	fe := newFakeEngine()
	v := NewVoice(fe, 48000)
	v.NoteOn(60, 0.8, 0)
	if fe.onNote != 60 {
		t.Fatalf("expected engine.NoteOn(60,...), got onNote=%d", fe.onNote)
	}
	if !v.Active {
		t.Fatalf("voice should be active after NoteOn")
	}
	v.NoteOff()
	if fe.onNote != -1 {
		t.Fatalf("expected engine.NoteOff to clear onNote, got %d", fe.onNote)
	}
}
