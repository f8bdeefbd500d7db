package engines

import (
	"github.com/grainlab/groove-core/internal/voice"
)

const sampleSlicerSliceCount = 16

// SampleSlicer plays one slice of a loaded buffer per note, the way a
// breakbeat chopper maps slices across a keyboard range: note - baseNote
// selects the slice index (wrapped into [0, sampleSlicerSliceCount)).
// HARMONICS fine-offsets the slice start, TIMBRE scales playback speed,
// MORPH reverses the slice when > 0.5.
type SampleSlicer struct {
	base

	data     []float32
	baseNote int
	playPos  float64
	sliceLen int
	reverse  bool
	playing  bool
}

func NewSampleSlicer(sampleRate float64) *SampleSlicer {
	e := &SampleSlicer{base: newBase(sampleRate), baseNote: 36}
	e.params[voice.ParamHarmonics] = 0
	e.params[voice.ParamTimbre] = 0.5
	e.params[voice.ParamMorph] = 0
	return e
}

func (e *SampleSlicer) Info() voice.Info {
	return voice.Info{Type: voice.EngineSampleSlicer, Name: "Sample Slicer", Description: "Fixed-count slice playback of a loaded buffer, one slice per note"}
}

// LoadSampleData installs the buffer to be chopped into
// sampleSlicerSliceCount equal slices starting at baseNote.
func (e *SampleSlicer) LoadSampleData(data []float32, baseNote int) {
	e.data = data
	e.baseNote = baseNote
	e.sliceLen = len(data) / sampleSlicerSliceCount
}

func (e *SampleSlicer) NoteOn(note int, velocity, aftertouch float64) {
	sliceIdx := note - e.baseNote
	if sliceIdx < 0 {
		sliceIdx = 0
	}
	sliceIdx %= sampleSlicerSliceCount
	e.reverse = e.modulated(voice.ParamMorph) > 0.5
	if e.sliceLen > 0 {
		offset := voice.Clamp01(e.modulated(voice.ParamHarmonics)) * float64(e.sliceLen) * 0.25
		e.playPos = float64(sliceIdx*e.sliceLen) + offset
		if e.reverse {
			e.playPos = float64((sliceIdx+1)*e.sliceLen-1) - offset
		}
	}
	e.playing = e.sliceLen > 0
	e.noteOnCommon(note, velocity, aftertouch)
}

func (e *SampleSlicer) HasParameter(id voice.ParameterID) bool {
	switch id {
	case voice.ParamHarmonics, voice.ParamTimbre, voice.ParamMorph,
		voice.ParamAttack, voice.ParamDecay, voice.ParamSustain, voice.ParamRelease,
		voice.ParamVolume, voice.ParamPan:
		return true
	}
	return false
}

func (e *SampleSlicer) SupportsParameterModulation(id voice.ParameterID) bool {
	return id == voice.ParamTimbre
}

func (e *SampleSlicer) ProcessAudio(out []float32) {
	if !e.playing {
		return
	}
	sliceIdx := e.note - e.baseNote
	if sliceIdx < 0 {
		sliceIdx = 0
	}
	sliceIdx %= sampleSlicerSliceCount
	start := sliceIdx * e.sliceLen
	end := start + e.sliceLen
	if end > len(e.data) {
		end = len(e.data)
	}

	speed := 0.25 + voice.Clamp01(e.modulated(voice.ParamTimbre))*3.75
	step := speed
	if e.reverse {
		step = -speed
	}
	volume := voice.Clamp01(e.modulated(voice.ParamVolume))
	leftGain, rightGain := equalPowerPan(voice.Clamp01(e.modulated(voice.ParamPan)))

	for i := 0; i+1 < len(out); i += 2 {
		idx := int(e.playPos)
		if idx < start || idx >= end {
			e.playing = false
			break
		}
		raw := e.data[idx]
		e.playPos += step

		env := e.env.Next()
		amp := float32(env * volume * e.velocity)
		sample := raw * amp

		out[i] += sample * float32(leftGain)
		out[i+1] += sample * float32(rightGain)
	}
}

func (e *SampleSlicer) SavePreset(buf []byte) int  { return e.savePresetParams(buf) }
func (e *SampleSlicer) LoadPreset(buf []byte) bool { return e.loadPresetParams(buf) > 0 }
