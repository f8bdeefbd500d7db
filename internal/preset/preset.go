// Package preset implements the binary preset format: one engine's
// parameter values plus its modulation routing and LFO settings, packed the
// same little-endian, hand-rolled way sequencer.Pattern packs its step
// matrix.
package preset

import (
	"math"

	"github.com/grainlab/groove-core/internal/modulation"
	"github.com/grainlab/groove-core/internal/voice"
)

const magic = 0x47524f56 // "GROV"
const formatVersion = 1

// LFOSetting is the subset of an LFO's public configuration worth saving.
type LFOSetting struct {
	Waveform      modulation.LFOWaveform
	Sync          modulation.SyncMode
	ClockDivision float64
	RateHz        float64
	Depth         float64
	Offset        float64
	Bipolar       bool
	Invert        bool
	PulseWidth    float64
	Enabled       bool
}

// SlotSetting is the subset of a modulation.Slot's public configuration
// worth saving. Conditional gating (modulation.Condition) is left out of
// the binary format: presets capture a fixed routing, not the runtime
// gating state a live session builds up.
type SlotSetting struct {
	ID          int
	Source      modulation.Source
	Destination voice.ParameterID
	Amount      float64
	Offset      float64
	Processing  modulation.Processing
	Bipolar     bool
	CurveAmount float64
	ResponseMs  float64
	Enabled     bool
}

// Preset is one engine's complete saveable state: its type, its parameter
// values, and the LFO/routing configuration that drives it.
type Preset struct {
	EngineType voice.EngineType
	Params     [voice.ParamCount]float64
	LFOs       []LFOSetting
	Slots      []SlotSetting
}

// FromSlot reduces a live modulation.Slot to its saveable fields.
func FromSlot(s *modulation.Slot) SlotSetting {
	return SlotSetting{
		ID: s.ID, Source: s.Source, Destination: s.Destination, Amount: s.Amount,
		Offset: s.Offset, Processing: s.Processing, Bipolar: s.Bipolar,
		CurveAmount: s.CurveAmount, ResponseMs: s.ResponseMs, Enabled: s.Enabled,
	}
}

// Slot expands a saved SlotSetting back into a live modulation.Slot.
func (s SlotSetting) Slot() *modulation.Slot {
	return &modulation.Slot{
		ID: s.ID, Source: s.Source, Destination: s.Destination, Amount: s.Amount,
		Offset: s.Offset, Processing: s.Processing, Bipolar: s.Bipolar,
		CurveAmount: s.CurveAmount, ResponseMs: s.ResponseMs, Enabled: s.Enabled,
	}
}

// Serialize packs the preset into its binary record: magic, version,
// engine type, every parameter value, then the LFO and slot lists.
func (p *Preset) Serialize() []byte {
	size := 4 + 4 + 4 + voice.ParamCount*8 + 4 + len(p.LFOs)*lfoRecordSize + 4 + len(p.Slots)*slotRecordSize
	buf := make([]byte, size)
	off := 0
	putU32(buf[off:], magic)
	off += 4
	putU32(buf[off:], formatVersion)
	off += 4
	putU32(buf[off:], uint32(p.EngineType))
	off += 4
	for i := 0; i < voice.ParamCount; i++ {
		putF64(buf[off:], p.Params[i])
		off += 8
	}
	putU32(buf[off:], uint32(len(p.LFOs)))
	off += 4
	for _, l := range p.LFOs {
		off += putLFO(buf[off:], l)
	}
	putU32(buf[off:], uint32(len(p.Slots)))
	off += 4
	for _, s := range p.Slots {
		off += putSlot(buf[off:], s)
	}
	return buf
}

const lfoRecordSize = 4 + 4 + 8*6 + 3

const slotRecordSize = 4 + 4 + 4 + 4 + 8*4 + 1 + 1

// Deserialize is the inverse of Serialize; it returns nil on a magic
// mismatch, an unsupported version, or a truncated buffer.
func Deserialize(buf []byte) *Preset {
	if len(buf) < 12 || getU32(buf[0:4]) != magic || getU32(buf[4:8]) != formatVersion {
		return nil
	}
	p := &Preset{EngineType: voice.EngineType(getU32(buf[8:12]))}
	off := 12
	need := off + voice.ParamCount*8 + 4
	if len(buf) < need {
		return nil
	}
	for i := 0; i < voice.ParamCount; i++ {
		p.Params[i] = getF64(buf[off:])
		off += 8
	}
	lfoCount := int(getU32(buf[off:]))
	off += 4
	for i := 0; i < lfoCount; i++ {
		if off+lfoRecordSize > len(buf) {
			return nil
		}
		l, n := getLFO(buf[off:])
		p.LFOs = append(p.LFOs, l)
		off += n
	}
	if off+4 > len(buf) {
		return nil
	}
	slotCount := int(getU32(buf[off:]))
	off += 4
	for i := 0; i < slotCount; i++ {
		if off+slotRecordSize > len(buf) {
			return nil
		}
		s, n := getSlot(buf[off:])
		p.Slots = append(p.Slots, s)
		off += n
	}
	return p
}

func putLFO(b []byte, l LFOSetting) int {
	off := 0
	putU32(b[off:], uint32(l.Waveform))
	off += 4
	putU32(b[off:], uint32(l.Sync))
	off += 4
	putF64(b[off:], l.ClockDivision)
	off += 8
	putF64(b[off:], l.RateHz)
	off += 8
	putF64(b[off:], l.Depth)
	off += 8
	putF64(b[off:], l.Offset)
	off += 8
	putF64(b[off:], l.PulseWidth)
	off += 8
	putF64(b[off:], 0) // reserved for future use
	off += 8
	putBool(b[off:], l.Bipolar)
	off++
	putBool(b[off:], l.Invert)
	off++
	putBool(b[off:], l.Enabled)
	off++
	return off
}

func getLFO(b []byte) (LFOSetting, int) {
	var l LFOSetting
	off := 0
	l.Waveform = modulation.LFOWaveform(getU32(b[off:]))
	off += 4
	l.Sync = modulation.SyncMode(getU32(b[off:]))
	off += 4
	l.ClockDivision = getF64(b[off:])
	off += 8
	l.RateHz = getF64(b[off:])
	off += 8
	l.Depth = getF64(b[off:])
	off += 8
	l.Offset = getF64(b[off:])
	off += 8
	l.PulseWidth = getF64(b[off:])
	off += 8
	off += 8 // reserved
	l.Bipolar = getBool(b[off:])
	off++
	l.Invert = getBool(b[off:])
	off++
	l.Enabled = getBool(b[off:])
	off++
	return l, off
}

func putSlot(b []byte, s SlotSetting) int {
	off := 0
	putU32(b[off:], uint32(s.ID))
	off += 4
	putU32(b[off:], uint32(s.Source))
	off += 4
	putU32(b[off:], uint32(s.Destination))
	off += 4
	putU32(b[off:], uint32(s.Processing))
	off += 4
	putF64(b[off:], s.Amount)
	off += 8
	putF64(b[off:], s.Offset)
	off += 8
	putF64(b[off:], s.CurveAmount)
	off += 8
	putF64(b[off:], s.ResponseMs)
	off += 8
	putBool(b[off:], s.Bipolar)
	off++
	putBool(b[off:], s.Enabled)
	off++
	return off
}

func getSlot(b []byte) (SlotSetting, int) {
	var s SlotSetting
	off := 0
	s.ID = int(getU32(b[off:]))
	off += 4
	s.Source = modulation.Source(getU32(b[off:]))
	off += 4
	s.Destination = voice.ParameterID(getU32(b[off:]))
	off += 4
	s.Processing = modulation.Processing(getU32(b[off:]))
	off += 4
	s.Amount = getF64(b[off:])
	off += 8
	s.Offset = getF64(b[off:])
	off += 8
	s.CurveAmount = getF64(b[off:])
	off += 8
	s.ResponseMs = getF64(b[off:])
	off += 8
	s.Bipolar = getBool(b[off:])
	off++
	s.Enabled = getBool(b[off:])
	off++
	return s, off
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putF64(b []byte, v float64) {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}

func getF64(b []byte) float64 {
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(b[i]) << (8 * i)
	}
	return math.Float64frombits(bits)
}

func putBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func getBool(b []byte) bool { return b[0] != 0 }
