// Package modulation implements the modulation fabric: the LFO bank,
// envelope followers, the source value table and the modulation matrix that
// maps sources through per-slot curve processing onto destination
// parameters.
package modulation

import "github.com/grainlab/groove-core/internal/voice"

// Source names an entry in the fabric's dense source-value array.
type Source int

const (
	SourceSmartKnob Source = iota
	SourceTouchX
	SourceTouchY
	SourceAftertouch
	SourceVelocity
	SourceLFO1
	SourceLFO2
	SourceLFO3
	SourceLFO4
	SourceLFO5
	SourceLFO6
	SourceLFO7
	SourceLFO8
	SourceEnv1
	SourceEnv2
	SourceEnv3
	SourceRandom
	SourceAudioLevel
	SourceAudioPitch
	SourceAudioBrightness
	SourceNoteNumber
	SourceNoteOnTime
	SourceVoiceCount
	SourceMacro1
	SourceMacro2
	SourceMacro3
	SourceMacro4

	sourceCount
)

// SourceCount is the number of source slots in the fabric's dense array.
const SourceCount = int(sourceCount)

// MaxLFOs is the ceiling on LFO bank size (3-8 instances).
const MaxLFOs = 8

// lfoSource maps an LFO bank index (0-based) to its Source entry.
func lfoSource(i int) Source { return SourceLFO1 + Source(i) }

// Processing selects the curve shape applied to a raw source reading
// before it's summed into a destination parameter.
type Processing int

const (
	ProcDirect Processing = iota
	ProcInverted
	ProcRectified
	ProcQuantized
	ProcSmoothed
	ProcSampleHold
	ProcExpCurve
	ProcLogCurve
	ProcSCurve
)

// Slot is one entry in the modulation matrix: a routing from a source to a
// destination parameter with curve processing, gating, and per-slot
// smoothing.
type Slot struct {
	ID          int
	Source      Source
	Destination voice.ParameterID
	Amount      float64 // [-1, 1]
	Offset      float64
	Processing  Processing
	RateMult    float64
	PhaseOffset float64
	Threshold   float64
	Bipolar     bool
	CurveAmount float64
	ResponseMs  float64
	Enabled     bool

	Condition *Condition

	smoothState  float64
	smoothInited bool
	shHeld       float64
	shPhaseLast  float64
}

// Condition gates a slot: it's active only while the named source compares
// against threshold per Invert.
type Condition struct {
	Source    Source
	Threshold float64
	Invert    bool
}

// met evaluates the condition against the fabric's current source table.
func (c *Condition) met(sources *[SourceCount]float64) bool {
	v := sources[c.Source]
	above := v >= c.Threshold
	if c.Invert {
		return !above
	}
	return above
}
