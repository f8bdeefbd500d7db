package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

const chordVoiceCount = 4

// chordIntervals are semitone offsets per HARMONICS bucket: major, minor,
// sus4, major-7th stacks.
var chordIntervals = [4][chordVoiceCount]int{
	{0, 4, 7, 12},
	{0, 3, 7, 12},
	{0, 5, 7, 12},
	{0, 4, 7, 11},
}

// Chord genuinely stacks several detuned oscillators per note-on, so unlike
// the other engines it reports a multi-voice ActiveVoiceCount. HARMONICS
// picks the interval set, TIMBRE detunes the stack, MORPH crossfades
// between a sine and saw core waveform.
type Chord struct {
	base

	oscs   [chordVoiceCount]*dsp.Oscillator
	noteHz float64
}

func NewChord(sampleRate float64) *Chord {
	e := &Chord{base: newBase(sampleRate)}
	for i := range e.oscs {
		e.oscs[i] = dsp.NewOscillator(sampleRate)
	}
	e.params[voice.ParamHarmonics] = 0
	e.params[voice.ParamTimbre] = 0.1
	e.params[voice.ParamMorph] = 0
	return e
}

func (e *Chord) Info() voice.Info {
	return voice.Info{Type: voice.EngineChord, Name: "Chord", Description: "Four-voice interval stack per note"}
}

func (e *Chord) NoteOn(note int, velocity, aftertouch float64) {
	e.noteHz = noteToHz(note)
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Chord) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Chord) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

func (e *Chord) ActiveVoiceCount() int {
	if e.active {
		return chordVoiceCount
	}
	return 0
}

func (e *Chord) MaxVoiceCount() int { return chordVoiceCount }

func (e *Chord) ProcessAudio(out []float32) {
	bucket := int(voice.Clamp01(e.modulated(voice.ParamHarmonics)) * 3.999)
	intervals := chordIntervals[bucket]
	detune := voice.Clamp01(e.modulated(voice.ParamTimbre)) * 0.04
	morph := voice.Clamp01(e.modulated(voice.ParamMorph))
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	for i := 0; i+1 < len(out); i += 2 {
		var mixed float32
		for v := 0; v < chordVoiceCount; v++ {
			hz := e.noteHz * semitoneRatio(float64(intervals[v]))
			spread := 1 + detune*float64(v-chordVoiceCount/2)/float64(chordVoiceCount)
			e.oscs[v].SetSampleRate(e.sampleRate)
			e.oscs[v].SetFrequency(hz * spread)
			saw := e.oscs[v].Phase()/(2*math.Pi)*2 - 1
			sine := e.oscs[v].Sample(dsp.WaveSine)
			mixed += float32(sine*(1-morph) + saw*morph)
		}
		mixed /= chordVoiceCount

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := mixed * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func semitoneRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

func (e *Chord) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Chord) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
