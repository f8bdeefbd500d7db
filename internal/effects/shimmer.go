package effects

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
)

const (
	shimmerGrainCount  = 6
	shimmerGrainSize   = 2048
	shimmerSemitonesUp = 7.0
	shimmerDetuneCents = 3.0
	shimmerPreFilterHz = 7000
	shimmerEngageWet   = 0.4
	shimmerWetScale    = 0.15
	shimmerWetRange    = 0.6
)

// grain is one voice in the shimmer's granular pitch-shift bank: a read
// head into the ring buffer advancing at a pitch-shifted rate, windowed by
// a squared Hann envelope and retriggered once it completes a grain.
type grain struct {
	readPos  float64 // fractional position, in samples behind the write head
	age      int     // samples since this grain retriggered
	pitch    float64 // playback rate multiplier
}

// Shimmer is the master bus's granular pitch-shift reverb tail: a bank of
// overlapping grains pitched up a fifth, seven semitones (detuned slightly between
// grains so the result shimmers rather than phases), pre-filtered to tame
// harshness, and only engaged once the overall reverb wet amount crosses
// shimmerEngageWet.
type Shimmer struct {
	sampleRate float64
	ringL      []float32
	ringR      []float32
	writePos   int
	grains     [shimmerGrainCount]grain
	window     [shimmerGrainSize]float32
	preL, preR dsp.OnePole
}

func NewShimmer(sampleRate int) *Shimmer {
	s := &Shimmer{
		sampleRate: float64(sampleRate),
		ringL:      make([]float32, shimmerGrainSize*4),
		ringR:      make([]float32, shimmerGrainSize*4),
	}
	s.preL.SetCutoff(shimmerPreFilterHz, s.sampleRate)
	s.preR.SetCutoff(shimmerPreFilterHz, s.sampleRate)
	for i := range s.window {
		hann := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(shimmerGrainSize-1))
		s.window[i] = float32(hann * hann)
	}
	ratio := math.Pow(2, shimmerSemitonesUp/12)
	for g := range s.grains {
		detuneSemis := (float64(g)/float64(shimmerGrainCount-1) - 0.5) * 2 * (shimmerDetuneCents / 100)
		s.grains[g] = grain{
			pitch: ratio * math.Pow(2, detuneSemis/12),
			age:   g * (shimmerGrainSize / shimmerGrainCount),
		}
	}
	return s
}

func (s *Shimmer) ringLen() int { return len(s.ringL) }

// wetAmount maps the master reverb's overall wet knob to the shimmer's own
// contribution, silent below shimmerEngageWet.
func (s *Shimmer) wetAmount(masterWet float32) float32 {
	excess := masterWet - shimmerEngageWet
	if excess <= 0 {
		return 0
	}
	return excess / shimmerWetRange * shimmerWetScale
}

// Process writes l, r into the ring, advances every grain, and returns the
// shimmer tail scaled by masterWet's excess above shimmerEngageWet (zero
// below it, per the master bus's "shimmer only engages above wet>0.4" rule).
func (s *Shimmer) Process(l, r float32, masterWet float32) (float32, float32) {
	wet := s.wetAmount(masterWet)

	fl := s.preL.Process(l)
	fr := s.preR.Process(r)
	n := s.ringLen()
	s.ringL[s.writePos] = fl
	s.ringR[s.writePos] = fr

	if wet <= 0 {
		s.writePos = (s.writePos + 1) % n
		return 0, 0
	}

	var outL, outR float32
	for i := range s.grains {
		g := &s.grains[i]
		if g.age >= shimmerGrainSize {
			g.age = 0
			g.readPos = float64(shimmerGrainSize) * (g.pitch - 1)
		}
		src := float64(s.writePos) - g.readPos
		src = math.Mod(src, float64(n))
		if src < 0 {
			src += float64(n)
		}
		idx := int(src)
		idx2 := (idx + 1) % n
		frac := float32(src - math.Floor(src))
		sampleL := s.ringL[idx]*(1-frac) + s.ringL[idx2]*frac
		sampleR := s.ringR[idx]*(1-frac) + s.ringR[idx2]*frac

		w := s.window[g.age]
		outL += sampleL * w
		outR += sampleR * w

		g.readPos -= g.pitch - 1
		g.age++
	}
	const norm = 2.0 / shimmerGrainCount
	s.writePos = (s.writePos + 1) % n
	return outL * norm * wet, outR * norm * wet
}

func (s *Shimmer) Reset() {
	for i := range s.ringL {
		s.ringL[i] = 0
		s.ringR[i] = 0
	}
	s.writePos = 0
	s.preL.Reset()
	s.preR.Reset()
	for i := range s.grains {
		s.grains[i].age = i * (shimmerGrainSize / shimmerGrainCount)
		s.grains[i].readPos = 0
	}
}
