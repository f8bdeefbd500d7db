package modulation

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
	"github.com/grainlab/groove-core/internal/voice"
)

// DefaultUpdateRateHz is the fabric's default decoupled update tick rate.
const DefaultUpdateRateHz = 1000.0

// randomSubdivisionSeconds is the random source's redraw period: it
// re-draws on a 100 ms subdivision.
const randomSubdivisionSeconds = 0.1

// MacroWeight is one term of a macro's weighted sum over other sources.
type MacroWeight struct {
	Source Source
	Weight float64
}

// Matrix is the modulation fabric: dense source values, a source-enable
// bitset, an LFO bank, envelope followers, a list of modulation slots, a
// macro table, and per-slot smoothing filters.
type Matrix struct {
	sources       [SourceCount]float64
	sourceEnabled [SourceCount]bool

	LFOs  []*LFO
	Envs  [3]*EnvFollower

	slots []*Slot
	macros [4][]MacroWeight

	// GlobalModAmount scales every slot's contribution before it is summed
	// into the base parameter value; a master "depth" knob over the whole
	// fabric. A value of exactly 0 is treated as 1 (see globalModAmount).
	GlobalModAmount float64

	updateRateHz  float64
	smartUpdates  bool
	sinceLastTick float64
	sinceRandom   float64
	rng           dsp.LCG

	smoothers map[int]*dsp.SmoothedParam

	sampleRate float64
}

// NewMatrix builds a fabric with lfoCount LFOs (clamped to [1, MaxLFOs])
// and three envelope followers, ticking at DefaultUpdateRateHz.
func NewMatrix(sampleRate float64, lfoCount int) *Matrix {
	if lfoCount < 1 {
		lfoCount = 1
	}
	if lfoCount > MaxLFOs {
		lfoCount = MaxLFOs
	}
	m := &Matrix{
		updateRateHz:    DefaultUpdateRateHz,
		smartUpdates:    true,
		rng:             dsp.NewLCG(0xC0FFEE),
		smoothers:       make(map[int]*dsp.SmoothedParam),
		sampleRate:      sampleRate,
		GlobalModAmount: 1,
	}
	for i := 0; i < lfoCount; i++ {
		m.LFOs = append(m.LFOs, NewLFO(m.updateRateHz))
	}
	for i := range m.Envs {
		m.Envs[i] = NewEnvFollower(5, 150, sampleRate)
	}
	for i := range m.sourceEnabled {
		m.sourceEnabled[i] = true
	}
	return m
}

// SetUpdateRate changes the decoupled tick rate.
func (m *Matrix) SetUpdateRate(hz float64) {
	if hz <= 0 {
		hz = DefaultUpdateRateHz
	}
	m.updateRateHz = hz
}

// SetSmartUpdates toggles starvation-avoidance: when false, every call to
// Tick runs a full update regardless of elapsed time.
func (m *Matrix) SetSmartUpdates(on bool) { m.smartUpdates = on }

// SetSourceValue is the external entry point hardware sources (smart-knob,
// touch, aftertouch, velocity) write through; always safe to call from the
// control context since it's a single scalar write.
func (m *Matrix) SetSourceValue(src Source, v float64) {
	m.sources[src] = v
}

// SetSourceEnabled toggles a source's enable bit.
func (m *Matrix) SetSourceEnabled(src Source, enabled bool) {
	m.sourceEnabled[src] = enabled
}

// AddSlot registers a new modulation slot.
func (m *Matrix) AddSlot(s *Slot) {
	m.slots = append(m.slots, s)
}

// RemoveSlot removes the slot with the given id, if present.
func (m *Matrix) RemoveSlot(id int) {
	for i, s := range m.slots {
		if s.ID == id {
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			return
		}
	}
}

// SetMacro configures macro index mi (0-3) as a weighted sum over other
// sources.
func (m *Matrix) SetMacro(mi int, weights []MacroWeight) {
	if mi < 0 || mi > 3 {
		return
	}
	m.macros[mi] = weights
}

// Tick advances the fabric by dtSeconds of wall time; when the accumulated
// time since the last update reaches 1/updateRateHz (or smartUpdates is
// off), LFOs advance, the random source may redraw, macros are evaluated,
// and the elapsed-time accumulator resets. tempoBPM is forwarded to every
// LFO so tempo-synced LFOs can track it.
func (m *Matrix) Tick(dtSeconds, tempoBPM float64, fmInputs, amInputs []float64) {
	m.sinceLastTick += dtSeconds
	interval := 1.0 / m.updateRateHz
	if m.smartUpdates && m.sinceLastTick < interval {
		return
	}
	elapsed := m.sinceLastTick
	if elapsed <= 0 {
		elapsed = interval
	}
	m.sinceLastTick = 0

	for i, l := range m.LFOs {
		var fm, am float64
		if i < len(fmInputs) {
			fm = fmInputs[i]
		}
		if i < len(amInputs) {
			am = amInputs[i]
		}
		out := l.Advance(elapsed, tempoBPM, fm, am)
		m.sources[lfoSource(i)] = out
	}

	m.sinceRandom += elapsed
	if m.sinceRandom >= randomSubdivisionSeconds {
		m.sinceRandom = 0
		m.sources[SourceRandom] = m.rng.NextBipolar()
	}

	for mi, weights := range m.macros {
		if len(weights) == 0 {
			continue
		}
		var sum float64
		for _, w := range weights {
			sum += m.sources[w.Source] * w.Weight
		}
		m.sources[SourceMacro1+Source(mi)] = sum
	}
}

// RefreshAudioDerivedSources updates the audio-level/pitch/brightness
// sources from the last rendered block's features, called once per audio
// buffer rather than on the fabric's own tick.
func (m *Matrix) RefreshAudioDerivedSources(level, pitch, brightness float64) {
	m.sources[SourceAudioLevel] = level
	m.sources[SourceAudioPitch] = pitch
	m.sources[SourceAudioBrightness] = brightness
}

// GetModulatedValue is the hot path: it folds every enabled slot targeting
// param into base and returns the result.
func (m *Matrix) GetModulatedValue(param voice.ParameterID, base float64) float64 {
	result := base
	for _, s := range m.slots {
		if !s.Enabled || s.Destination != param {
			continue
		}
		if s.Condition != nil && !s.Condition.met(&m.sources) {
			continue
		}
		if !m.sourceEnabled[s.Source] {
			continue
		}

		raw := m.sources[s.Source]
		raw = m.applyProcessing(s, raw)

		if s.RateMult != 0 && s.RateMult != 1 {
			raw *= s.RateMult
		}
		if s.PhaseOffset != 0 {
			raw = PhaseShift(raw, s.PhaseOffset)
		}
		if !s.Bipolar {
			raw = (raw + 1) / 2
		}

		contribution := raw*s.Amount + s.Offset

		if s.ResponseMs > 0 {
			sm, ok := m.smoothers[s.ID]
			if !ok {
				rampSamples := int(m.sampleRate * s.ResponseMs / 1000)
				sm = dsp.NewSmoothedParam(contribution, maxInt(rampSamples, 1))
				m.smoothers[s.ID] = sm
			}
			sm.SetTarget(contribution)
			contribution = sm.Next()
		}

		result += contribution * m.globalModAmount()
	}
	return result
}

// globalModAmount returns GlobalModAmount, defaulting to unity whenever it
// is 0, which covers a zero-value Matrix that never went through NewMatrix.
func (m *Matrix) globalModAmount() float64 {
	if m.GlobalModAmount == 0 {
		return 1
	}
	return m.GlobalModAmount
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (m *Matrix) applyProcessing(s *Slot, raw float64) float64 {
	switch s.Processing {
	case ProcDirect:
		return raw
	case ProcInverted:
		return -raw
	case ProcRectified:
		return math.Abs(raw)
	case ProcQuantized:
		steps := 8.0
		return math.Round(raw*steps) / steps
	case ProcSmoothed:
		alpha := 0.05
		s.smoothState += alpha * (raw - s.smoothState)
		return s.smoothState
	case ProcSampleHold:
		if raw != s.shPhaseLast {
			s.shHeld = raw
			s.shPhaseLast = raw
		}
		return s.shHeld
	case ProcExpCurve:
		return dsp.UnipolarToBipolarExp((raw+1)/2, s.CurveAmount)
	case ProcLogCurve:
		return dsp.UnipolarToBipolarLog((raw+1)/2, s.CurveAmount)
	case ProcSCurve:
		return sCurve(raw, s.CurveAmount)
	default:
		return raw
	}
}

// sCurve applies a tanh-based S-curve to a bipolar input; amount in [0,1]
// scales the curvature with 0 being a straight pass-through.
func sCurve(x, amount float64) float64 {
	if amount <= 0 {
		return x
	}
	k := 1 + amount*8
	return math.Tanh(x*k) / math.Tanh(k)
}
