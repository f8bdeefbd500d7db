package voice

// Voice owns one synthesis-engine instance, a MIDI note, a velocity, a
// per-voice aftertouch, an ADSR envelope, an age used for stealing, and an
// active flag. It is exclusively owned by one voice-manager slot; nothing
// else ever holds a reference to it.
type Voice struct {
	Engine SynthEngine
	Env    *ADSR

	Note       int
	Velocity   float64
	Aftertouch float64
	Age        uint64
	Active     bool

	slideTime float64 // seconds, set by the sequencer's SLIDE directive
}

// NewVoice wraps an engine instance in a voice at the given sample rate.
func NewVoice(engine SynthEngine, sampleRate float64) *Voice {
	v := &Voice{Engine: engine, Env: NewADSR(sampleRate)}
	engine.AttachEnvelope(v.Env)
	return v
}

// NoteOn assigns note/velocity/aftertouch, restarts the envelope at Attack
// (from its current level, per ADSR's click-free retrigger rule) and
// forwards to the engine.
func (v *Voice) NoteOn(note int, velocity, aftertouch float64) {
	v.Note = note
	v.Velocity = velocity
	v.Aftertouch = aftertouch
	v.Active = true
	v.Env.NoteOn()
	if v.slideTime > 0 {
		v.Engine.SetPortamento(v.slideTime)
		v.slideTime = 0
	}
	v.Engine.NoteOn(note, velocity, aftertouch)
}

// NoteOff releases the envelope and forwards to the engine; a no-op if the
// voice is already idle.
func (v *Voice) NoteOff() {
	v.Env.NoteOff()
	v.Engine.NoteOff(v.Note)
}

// SetSlideTime records a portamento time in seconds for the engine's next
// note-on, per the sequencer's SLIDE directive.
func (v *Voice) SetSlideTime(seconds float64) {
	v.slideTime = seconds
}

// SlideTime returns the pending portamento time, in seconds.
func (v *Voice) SlideTime() float64 { return v.slideTime }

// IsIdle reports whether the envelope has fully released.
func (v *Voice) IsIdle() bool { return v.Env.IsIdle() }
