package engines

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

const wavetableFrameSize = 256
const wavetableFrameCount = 8

// Wavetable plays back interpolated single-cycle frames crossfaded by
// HARMONICS, with TIMBRE controlling a one-pole brightness filter,
// grounded in the teacher's internal/wavetable engine. MORPH is accepted
// and modulatable but does not change the sound; there is a single
// wavetable position.
type Wavetable struct {
	base

	frames  [wavetableFrameCount][]float64
	morphed [wavetableFrameSize]float64
	osc     *dsp.Oscillator
	tone    *dsp.OnePole
	noteHz  float64
}

func NewWavetable(sampleRate float64) *Wavetable {
	e := &Wavetable{base: newBase(sampleRate), osc: dsp.NewOscillator(sampleRate)}
	e.tone = dsp.NewOnePoleLowPass(8000, sampleRate)
	for f := 0; f < wavetableFrameCount; f++ {
		frame := make([]float64, wavetableFrameSize)
		harmonicCount := f + 1
		for i := range frame {
			phase := 2 * math.Pi * float64(i) / wavetableFrameSize
			var v float64
			for h := 1; h <= harmonicCount; h++ {
				v += math.Sin(phase*float64(h)) / float64(h)
			}
			frame[i] = v
		}
		normalize(frame)
		e.frames[f] = frame
	}
	e.params[voice.ParamHarmonics] = 0.3
	e.params[voice.ParamTimbre] = 0.6
	e.params[voice.ParamMorph] = 0.0
	return e
}

func normalize(frame []float64) {
	var peak float64
	for _, v := range frame {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak <= 0 {
		return
	}
	for i := range frame {
		frame[i] /= peak
	}
}

func (e *Wavetable) Info() voice.Info {
	return voice.Info{Type: voice.EngineWavetable, Name: "Wavetable", Description: "Single-cycle wavetable playback with frame morphing"}
}

func (e *Wavetable) NoteOn(note int, velocity, aftertouch float64) {
	hz := noteToHz(note)
	if e.active && e.slideArmTime > 0 {
		e.beginSlide(e.noteHz, hz, e.slideArmTime)
	} else {
		e.beginSlide(hz, hz, 0)
	}
	e.noteHz = hz
	e.slideArmTime = 0
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *Wavetable) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *Wavetable) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamHarmonics || id == voice.ParamTimbre || id == voice.ParamMorph
}

// currentFrame crossfades between two adjacent stored frames into the
// engine's preallocated scratch buffer; it never allocates.
func (e *Wavetable) currentFrame() []float64 {
	pos := voice.Clamp01(e.modulated(voice.ParamHarmonics)) * float64(wavetableFrameCount-1)
	idx := int(pos)
	if idx >= wavetableFrameCount-1 {
		copy(e.morphed[:], e.frames[wavetableFrameCount-1])
		return e.morphed[:]
	}
	frac := pos - float64(idx)
	a, b := e.frames[idx], e.frames[idx+1]
	for i := range e.morphed {
		e.morphed[i] = a[i]*(1-frac) + b[i]*frac
	}
	return e.morphed[:]
}

func (e *Wavetable) ProcessAudio(out []float32) {
	e.osc.SetSampleRate(e.sampleRate)
	frame := e.currentFrame()
	e.osc.SetWavetable(frame)

	timbre := voice.Clamp01(e.modulated(voice.ParamTimbre))
	e.tone.SetCutoff(200+timbre*timbre*12000, e.sampleRate)
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	for i := 0; i+1 < len(out); i += 2 {
		hz := e.currentSlideHz()
		e.osc.SetFrequency(hz)
		raw := float32(e.osc.Sample(dsp.WaveWavetable))
		filtered := e.tone.Process(raw)

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := filtered * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *Wavetable) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *Wavetable) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
