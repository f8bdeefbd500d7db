// Package voicemgr implements the fixed-size polyphonic voice manager:
// allocation, stealing, mixdown and active-voice scaling. It never grows or
// shrinks its voice array at runtime — the audio context must stay
// allocation-free.
package voicemgr

import (
	"math"

	"github.com/grainlab/groove-core/internal/voice"
)

// DefaultMaxVoices is the default polyphony ceiling.
const DefaultMaxVoices = 32

// silenceEpsilon is the per-block magnitude below which a decaying voice is
// considered finished and deactivated.
const silenceEpsilon = 1e-3

// Manager owns a fixed array of voice slots plus a monotonic allocation
// counter. It is the sole path that deactivates voices.
type Manager struct {
	slots   []*voice.Voice
	counter uint64
	scratch []float32 // preallocated per-voice render scratch, stereo interleaved
}

// NewManager builds a manager with maxVoices slots, each wrapping the
// engine returned by newEngine for that slot index.
func NewManager(maxVoices int, sampleRate float64, newEngine func(slot int) voice.SynthEngine) *Manager {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	m := &Manager{slots: make([]*voice.Voice, maxVoices)}
	for i := range m.slots {
		m.slots[i] = voice.NewVoice(newEngine(i), sampleRate)
	}
	return m
}

// MaxVoices returns the fixed slot count.
func (m *Manager) MaxVoices() int { return len(m.slots) }

// ActiveVoiceCount counts slots currently marked active.
func (m *Manager) ActiveVoiceCount() int {
	n := 0
	for _, v := range m.slots {
		if v.Active {
			n++
		}
	}
	return n
}

// NoteOn allocates a slot for (note, velocity): the first inactive slot, or
// if none is free, the occupied slot with the smallest age (oldest). A
// stolen voice receives NoteOff on its engine before being reassigned.
// Every successful allocation bumps the monotonic counter into the slot's
// age.
func (m *Manager) NoteOn(note int, velocity float64, aftertouch float64) *voice.Voice {
	return m.allocate(note, velocity, aftertouch, 0)
}

// NoteOnWithSlide is NoteOn plus a portamento time applied to whichever
// voice ends up allocated — the slide directive targets the voice about to
// sound, not any particular slot, so it can't be set ahead of allocation.
func (m *Manager) NoteOnWithSlide(note int, velocity, aftertouch, slideSeconds float64) *voice.Voice {
	return m.allocate(note, velocity, aftertouch, slideSeconds)
}

func (m *Manager) allocate(note int, velocity, aftertouch, slideSeconds float64) *voice.Voice {
	slot := m.findHeldSlot(note)
	if slot < 0 {
		slot = m.findFreeSlot()
	}
	if slot < 0 {
		slot = m.findOldestSlot()
		m.slots[slot].Engine.NoteOff(m.slots[slot].Note)
	}
	m.counter++
	v := m.slots[slot]
	v.Age = m.counter
	if slideSeconds > 0 {
		v.SetSlideTime(slideSeconds)
	}
	v.NoteOn(note, velocity, aftertouch)
	return v
}

// findHeldSlot returns the slot index of an active voice already sounding
// note whose envelope is in attack, decay, or sustain, so that a repeated
// note-on retriggers it instead of stealing or spawning a second voice — at
// most one voice per note may be in those stages at once. A voice already in
// release is not held: it gets a fresh voice like any other note-on.
func (m *Manager) findHeldSlot(note int) int {
	for i, v := range m.slots {
		if !v.Active || v.Note != note {
			continue
		}
		switch v.Env.Stage() {
		case voice.StageAttack, voice.StageDecay, voice.StageSustain:
			return i
		}
	}
	return -1
}

func (m *Manager) findFreeSlot() int {
	for i, v := range m.slots {
		if !v.Active {
			return i
		}
	}
	return -1
}

func (m *Manager) findOldestSlot() int {
	oldest := 0
	oldestAge := m.slots[0].Age
	for i, v := range m.slots {
		if v.Age < oldestAge {
			oldestAge = v.Age
			oldest = i
		}
	}
	return oldest
}

// NoteOff calls note-off on every slot currently holding the given note. A
// no-op if no slot holds it (including a stolen or already-released note).
func (m *Manager) NoteOff(note int) {
	for _, v := range m.slots {
		if v.Active && v.Note == note {
			v.NoteOff()
		}
	}
}

// AllNotesOff walks every active slot and releases it.
func (m *Manager) AllNotesOff() {
	for _, v := range m.slots {
		if v.Active {
			v.NoteOff()
		}
	}
}

// SetParameter broadcasts a parameter change to every voice's engine.
func (m *Manager) SetParameter(id voice.ParameterID, v float64) {
	for _, s := range m.slots {
		s.Engine.SetParameter(id, v)
	}
}

// SetModulation broadcasts a modulation amount to every voice's engine.
func (m *Manager) SetModulation(id voice.ParameterID, amount float64) {
	for _, s := range m.slots {
		s.Engine.SetModulation(id, amount)
	}
}

// Process renders N stereo frames into out (len(out) == 2*n), clearing it
// first, then mixing each active voice's render with scale
// 0.8/max(1,sqrt(activeCount)). A voice is deactivated, the sole such path,
// when its envelope is Idle and its scratch render's peak magnitude is
// below silenceEpsilon.
func (m *Manager) Process(out []float32, n int) {
	for i := range out {
		out[i] = 0
	}
	if cap(m.scratch) < n*2 {
		m.scratch = make([]float32, n*2)
	}
	scratch := m.scratch[:n*2]

	active := m.ActiveVoiceCount()
	scale := float32(0.8 / math.Max(1, math.Sqrt(float64(active))))

	for _, v := range m.slots {
		if !v.Active {
			continue
		}
		for i := range scratch {
			scratch[i] = 0
		}
		v.Engine.ProcessAudio(scratch)

		var peak float32
		for i, s := range scratch {
			out[i] += s * scale
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}

		if v.Env.IsIdle() && peak < silenceEpsilon {
			v.Active = false
		}
	}
}

// Voices exposes the underlying slots for inspection (tests, telemetry).
// Callers other than tests and the engine's own diagnostic path should not
// mutate slot contents directly.
func (m *Manager) Voices() []*voice.Voice { return m.slots }
