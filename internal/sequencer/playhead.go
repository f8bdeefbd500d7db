package sequencer

import "github.com/grainlab/groove-core/internal/dsp"

// EventKind tags the step event payload emitted by the playhead.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
)

// StepEvent is what the playhead hands to the engine-facing caller (the
// top-level Engine's audio-block loop) at its scheduled sample offset
// within the current buffer.
type StepEvent struct {
	Track          int
	Kind           EventKind
	Note           int
	Velocity       int
	SampleOffset   int // offset within the current Advance call's buffer
	Accent         bool
	AccentGainDB   float64
	AccentCutoff   float64 // additive cutoff boost, [0, 0.25]
	Slide          bool
	SlideSeconds   float64
	Tie            bool
}

// accentMapping translates a 0..127 accent amount into the gain/cutoff
// boost pair the engine applies alongside the note-on ("amount
// in [0..127] -> gain_db in [0..8], cutoff_boost in [0..0.25]").
func accentMapping(amount uint8) (gainDB, cutoffBoost float64) {
	frac := float64(amount) / 127
	return frac * 8, frac * 0.25
}

// filterEnvStage names the filter envelope's current phase.
type filterEnvStage int

const (
	filterEnvIdle filterEnvStage = iota
	filterEnvAttack
	filterEnvDecay
	filterEnvSustainRamp
	filterEnvRelease
)

// filterEnvelope is the supplemented per-track filter-envelope feature
// (attack/decay/sustain-ramp/release cutoff stages), sample-counted rather
// than tick-counted (see original_source/'s tick-counted equivalent),
// producing an additive offset for voice.ParamFilterCutoff while a step's
// gate is open. Generalized from voice.ADSR's stage machine.
type filterEnvelope struct {
	Attack, Decay, SustainRamp, Release float64 // seconds
	SustainLevel                        float64 // cutoff offset held during sustain ramp's target
	Depth                                float64 // overall scale applied to the offset

	sampleRate float64
	stage      filterEnvStage
	level      float64
}

// newFilterEnvelope builds a disabled (zero-depth) filter envelope; its
// sample rate is supplied later through SetSampleRate.
func newFilterEnvelope() filterEnvelope {
	return filterEnvelope{Attack: 0.01, Decay: 0.2, SustainRamp: 0.3, Release: 0.3, SustainLevel: 0.5}
}

// SetSampleRate stores the sample rate used to convert the envelope's
// second-valued stage durations into per-sample increments.
func (f *filterEnvelope) SetSampleRate(sr float64) { f.sampleRate = sr }

// Gate opens (on note-on) or closes (on note-off) the envelope gate.
func (f *filterEnvelope) Gate(on bool) {
	if on {
		f.stage = filterEnvAttack
	} else if f.stage != filterEnvIdle {
		f.stage = filterEnvRelease
	}
}

// Next advances the envelope by one sample and returns the current cutoff
// offset, scaled by Depth.
func (f *filterEnvelope) Next() float64 {
	if f.sampleRate <= 0 {
		return 0
	}
	switch f.stage {
	case filterEnvIdle:
		f.level = 0
	case filterEnvAttack:
		f.level += 1 / (maxFloat(f.Attack, 1e-4) * f.sampleRate)
		if f.level >= 1 {
			f.level = 1
			f.stage = filterEnvDecay
		}
	case filterEnvDecay:
		f.level -= (1 - f.SustainLevel) / (maxFloat(f.Decay, 1e-4) * f.sampleRate)
		if f.level <= f.SustainLevel {
			f.level = f.SustainLevel
			f.stage = filterEnvSustainRamp
		}
	case filterEnvSustainRamp:
		// Holds at SustainLevel; "ramp" here refers to an optional slow
		// drift modeled as a no-op plateau unless a caller overrides
		// SustainLevel between calls (e.g. from a macro).
		f.level = f.SustainLevel
	case filterEnvRelease:
		f.level -= f.level / (maxFloat(f.Release, 1e-4) * f.sampleRate)
		if f.level <= 1e-4 {
			f.level = 0
			f.stage = filterEnvIdle
		}
	}
	return f.level * f.Depth
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Track is per-track sequencer runtime state: the arpeggiator (if armed),
// the filter envelope, and the portamento-from-previous-note memory SLIDE
// needs.
type Track struct {
	Arp           *Arpeggiator
	FilterEnv     filterEnvelope
	lastNote      int
	lastHeldNote  int
	lastNoteValid bool
}

// Playhead advances the sequencer clock sample-by-sample across a pattern,
// emitting StepEvents at their scheduled offsets within each Advance call.
// It owns no audio state itself — it is a pure clock plus event scheduler,
// so that the audio context never allocates or blocks while it runs.
type Playhead struct {
	SampleRate float64
	TempoBPM   float64
	Division   float64 // clock-division multiplier (1 = quarter note per step)

	trackPos     [MaxTracks]int     // current step index per track
	sampleCursor [MaxTracks]float64 // samples until the next step boundary
	Tracks       [MaxTracks]Track

	rng dsp.LCG
}

// NewPlayhead creates a playhead at the given sample rate and tempo, four
// steps per quarter note (sixteenth-note steps) by default.
func NewPlayhead(sampleRate, tempoBPM float64) *Playhead {
	ph := &Playhead{SampleRate: sampleRate, TempoBPM: tempoBPM, Division: 4, rng: dsp.NewLCG(0xBEEF)}
	for t := range ph.Tracks {
		ph.Tracks[t].FilterEnv = newFilterEnvelope()
	}
	return ph
}

// AdvanceFilterEnvelopes steps every track's supplemented filter envelope
// forward by n samples (the block size) and returns each track's resulting
// cutoff offset, for the caller to fold additively into ParamFilterCutoff
// alongside the modulation fabric's contribution.
func (ph *Playhead) AdvanceFilterEnvelopes(n int) [MaxTracks]float64 {
	var out [MaxTracks]float64
	for t := range ph.Tracks {
		ph.Tracks[t].FilterEnv.SetSampleRate(ph.SampleRate)
		var v float64
		for i := 0; i < n; i++ {
			v = ph.Tracks[t].FilterEnv.Next()
		}
		out[t] = v
	}
	return out
}

// samplesPerStep computes samples_per_beat/division_multiplier.
func (ph *Playhead) samplesPerStep() float64 {
	if ph.TempoBPM <= 0 {
		return ph.SampleRate
	}
	samplesPerBeat := 60.0 / ph.TempoBPM * ph.SampleRate
	if ph.Division <= 0 {
		return samplesPerBeat
	}
	return samplesPerBeat / ph.Division
}

// swingOffset returns the sample offset swing applies to odd-indexed
// steps: (swing-0.5)*0.1*samples_per_step.
func swingOffset(swing float64, samplesPerStep float64) float64 {
	return (swing - 0.5) * 0.1 * samplesPerStep
}

// Reset rewinds every track's position to step 0.
func (ph *Playhead) Reset() {
	for t := range ph.trackPos {
		ph.trackPos[t] = 0
		ph.sampleCursor[t] = 0
	}
}

// Advance steps the clock forward by n samples against pattern p, appending
// any StepEvents whose scheduled sample lands within [0, n) to out, and
// returns the (possibly grown) slice. Each enabled, unmuted, probability-
// passing step emits a note-on at its (swing- and micro-timing-adjusted)
// offset; TIE suppresses the note-off that would otherwise close the
// previous step's note.
func (ph *Playhead) Advance(p *Pattern, n int, out []StepEvent) []StepEvent {
	stepLen := ph.samplesPerStep()
	if stepLen <= 0 {
		return out
	}
	for t := 0; t < p.Tracks && t < MaxTracks; t++ {
		if !p.TrackAudible(t) {
			continue
		}
		out = ph.advanceTrack(p, t, n, stepLen, out)
	}
	return out
}

func (ph *Playhead) advanceTrack(p *Pattern, t, n int, stepLen float64, out []StepEvent) []StepEvent {
	remaining := float64(n)
	cursor := ph.sampleCursor[t]
	base := float64(n) - remaining // samples already consumed this call

	for remaining > 0 {
		if cursor >= remaining {
			ph.sampleCursor[t] = cursor - remaining
			return out
		}
		// Step boundary falls within this call at offset (n-remaining)+cursor.
		offset := int(base + cursor)
		idx := ph.trackPos[t]
		step := p.Cells[t][idx]

		microShift := float64(step.MicroTiming) / 64 * (stepLen / 2)
		swingShift := 0.0
		if idx%2 == 1 {
			swingShift = swingOffset(p.Timing.Swing, stepLen)
		}
		emitOffset := offset + int(microShift+swingShift)
		if emitOffset < 0 {
			emitOffset = 0
		}
		if emitOffset >= n {
			emitOffset = n - 1
		}

		if step.HasFlag(FlagEnabled) && !step.HasFlag(FlagMute) && !step.HasFlag(FlagSkip) {
			if ph.rng.NextUnipolar() < float64(step.Probability)/127 {
				out = ph.emitStep(p, t, step, emitOffset, out)
			}
		}

		base += cursor
		remaining -= cursor
		cursor = stepLen
		ph.trackPos[t] = (idx + 1) % p.Steps
	}
	ph.sampleCursor[t] = cursor - remaining
	return out
}

func (ph *Playhead) emitStep(p *Pattern, t int, step Step, offset int, out []StepEvent) []StepEvent {
	tr := &ph.Tracks[t]
	note := int(step.Note) + p.TrackCfg[t].Transpose

	emitNote := note
	if tr.Arp != nil && tr.Arp.Enabled {
		tr.Arp.NoteHeld(note)
		arpNote, ok := tr.Arp.Advance()
		if !ok {
			return out
		}
		emitNote = arpNote
	}

	if tr.lastNoteValid && !step.HasFlag(FlagTie) {
		out = append(out, StepEvent{Track: t, Kind: EventNoteOff, Note: tr.lastNote, SampleOffset: offset})
		tr.FilterEnv.Gate(false)
		if tr.Arp != nil && tr.Arp.Enabled {
			tr.Arp.NoteReleased(tr.lastHeldNote)
		}
	}
	tr.FilterEnv.Gate(true)

	ev := StepEvent{
		Track:        t,
		Kind:         EventNoteOn,
		Note:         emitNote,
		Velocity:     int(step.Velocity),
		SampleOffset: offset,
		Tie:          step.HasFlag(FlagTie),
	}
	if step.HasFlag(FlagAccent) {
		ev.Accent = true
		ev.AccentGainDB, ev.AccentCutoff = accentMapping(step.AccentAmount)
	}
	if step.HasFlag(FlagSlide) {
		ev.Slide = true
		ev.SlideSeconds = float64(step.SlideTimeMs) / 1000
	}
	out = append(out, ev)
	tr.lastNote = emitNote
	tr.lastHeldNote = note
	tr.lastNoteValid = true
	return out
}
