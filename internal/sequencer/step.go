// Package sequencer implements the per-step pattern data model: the packed
// Step record, the track/pattern matrix, the Euclidean rhythm generator,
// the sample-accurate playhead clock, pattern chaining, and the
// arpeggiator that sits between step events and the voice manager.
package sequencer

// StepFlag is one bit of a Step's flag bitset.
type StepFlag uint8

const (
	FlagEnabled StepFlag = 1 << iota
	FlagAccent
	FlagSlide
	FlagTie
	FlagVelocityLatch
	FlagMute
	FlagSkip
	FlagRandomize
)

// Step is a packed per-step record: note, velocity, slide time, accent
// amount, flags, probability and micro-timing all addressed as u7/i7
// fields so the whole record fits a single 64-bit word (see Serialize).
type Step struct {
	Note         uint8 // 0..127
	Velocity     uint8 // 0..127
	SlideTimeMs  uint8 // 5..120
	AccentAmount uint8 // 0..127
	Flags        StepFlag
	Probability  uint8 // 0..127
	MicroTiming  int8  // -64..63
}

// HasFlag reports whether f is set on the step.
func (s Step) HasFlag(f StepFlag) bool { return s.Flags&f != 0 }

// bit layout of the packed 64-bit word, LSB first.
const (
	bitsNote        = 7
	bitsVelocity    = 7
	bitsSlideTime   = 7
	bitsAccent      = 7
	bitsFlags       = 8
	bitsProbability = 7
	bitsMicroTiming = 7

	shiftNote        = 0
	shiftVelocity    = shiftNote + bitsNote
	shiftSlideTime   = shiftVelocity + bitsVelocity
	shiftAccent      = shiftSlideTime + bitsSlideTime
	shiftFlags       = shiftAccent + bitsAccent
	shiftProbability = shiftFlags + bitsFlags
	shiftMicroTiming = shiftProbability + bitsProbability
)

const (
	maskNote        = uint64(1)<<bitsNote - 1
	maskVelocity    = uint64(1)<<bitsVelocity - 1
	maskSlideTime   = uint64(1)<<bitsSlideTime - 1
	maskAccent      = uint64(1)<<bitsAccent - 1
	maskFlags       = uint64(1)<<bitsFlags - 1
	maskProbability = uint64(1)<<bitsProbability - 1
	maskMicroTiming = uint64(1)<<bitsMicroTiming - 1
)

// clampSlideTime enforces the [5, 120] ms range assigned to slide_time_ms;
// out-of-range values clamp rather than error, matching the module's
// silently-clamped configuration-error policy.
func clampSlideTime(ms uint8) uint8 {
	if ms < 5 {
		return 5
	}
	if ms > 120 {
		return 120
	}
	return ms
}

// Serialize packs the step into a single 64-bit word. Round-tripping
// through Deserialize is identity for every valid Step.
func (s Step) Serialize() uint64 {
	slide := clampSlideTime(s.SlideTimeMs)
	var word uint64
	word |= (uint64(s.Note) & maskNote) << shiftNote
	word |= (uint64(s.Velocity) & maskVelocity) << shiftVelocity
	word |= (uint64(slide) & maskSlideTime) << shiftSlideTime
	word |= (uint64(s.AccentAmount) & maskAccent) << shiftAccent
	word |= (uint64(s.Flags) & maskFlags) << shiftFlags
	word |= (uint64(s.Probability) & maskProbability) << shiftProbability
	word |= (encodeMicroTiming(s.MicroTiming) & maskMicroTiming) << shiftMicroTiming
	return word
}

// Deserialize unpacks a 64-bit word produced by Serialize back into a Step.
func Deserialize(word uint64) Step {
	return Step{
		Note:         uint8((word >> shiftNote) & maskNote),
		Velocity:     uint8((word >> shiftVelocity) & maskVelocity),
		SlideTimeMs:  clampSlideTime(uint8((word >> shiftSlideTime) & maskSlideTime)),
		AccentAmount: uint8((word >> shiftAccent) & maskAccent),
		Flags:        StepFlag((word >> shiftFlags) & maskFlags),
		Probability:  uint8((word >> shiftProbability) & maskProbability),
		MicroTiming:  decodeMicroTiming(uint64((word >> shiftMicroTiming) & maskMicroTiming)),
	}
}

// encodeMicroTiming maps i7 range [-64,63] onto the unsigned 7-bit field by
// adding 64 (two's-complement-style bias), so bit patterns round-trip
// exactly through Serialize/Deserialize.
func encodeMicroTiming(v int8) uint64 {
	return uint64(int64(v) + 64)
}

func decodeMicroTiming(raw uint64) int8 {
	return int8(int64(raw) - 64)
}
