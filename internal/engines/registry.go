package engines

import "github.com/grainlab/groove-core/internal/voice"

// New constructs a fresh engine instance of the given type at sampleRate.
// This is the factory the voice manager's per-slot constructor closure
// calls; adding a new engine type means adding one case here plus its
// file, nothing in voicemgr needs to change.
func New(t voice.EngineType, sampleRate float64) voice.SynthEngine {
	switch t {
	case voice.EngineSubtractive:
		return NewSubtractive(sampleRate)
	case voice.EngineFM2:
		return NewFM2(sampleRate)
	case voice.EngineWavetable:
		return NewWavetable(sampleRate)
	case voice.EngineWaveshaper:
		return NewWaveshaper(sampleRate)
	case voice.EngineChord:
		return NewChord(sampleRate)
	case voice.EngineAdditive:
		return NewAdditive(sampleRate)
	case voice.EngineFormant:
		return NewFormant(sampleRate)
	case voice.EngineNoise:
		return NewNoise(sampleRate)
	case voice.EngineTidal:
		return NewTidal(sampleRate)
	case voice.EnginePhysicalModel:
		return NewPhysicalModel(sampleRate)
	case voice.EngineModal:
		return NewModal(sampleRate)
	case voice.EngineDrumKit:
		return NewDrumKit(sampleRate)
	case voice.EngineSampleKit:
		return NewSampleKit(sampleRate)
	case voice.EngineSampleSlicer:
		return NewSampleSlicer(sampleRate)
	default:
		return NewSubtractive(sampleRate)
	}
}
