package analyzer

import (
	"math"
	"time"
)

// BarkBands and DisplayBars are fixed sizes for the bark-band and
// display-bar output arrays.
const (
	BarkBands   = 24
	DisplayBars = 32
)

// Frame is the spectrum snapshot the analyzer publishes each call.
type Frame struct {
	Magnitudes       [Bins]float64
	BarkBands        [BarkBands]float64
	DisplayBars      [DisplayBars]float64
	SpectralCentroid float64
	Spread           float64
	Rolloff          float64
	Flux             float64
	Fundamental      float64
	RMS              float64
	Peak             float64
	BassEnergy       float64
	MidEnergy        float64
	HighEnergy       float64
	LowMidRatio      float64
	HighMidRatio     float64
	TotalEnergy      float64
	HasActivity      bool
	Timestamp        int64
}

// Features is the derived boolean/scalar feature set adaptive automation
// reads alongside a Frame.
type Features struct {
	HasKick        bool
	HasSnare       bool
	HasHihat       bool
	HasBass        bool
	HasVocals      bool
	IsPercussive   bool
	IsMelodic      bool
	IsNoisy        bool
	Tempo          float64
	Key            int
	RhythmStrength float64
	Harmonicity    float64
}

// band frequency ranges in Hz.
const (
	bassLowHz, bassHighHz = 20.0, 250.0
	midLowHz, midHighHz   = 250.0, 4000.0
	highLowHz, highHighHz = 4000.0, 20000.0
)

// Analyzer maintains the rolling FFT_SIZE input ring and the cached
// per-call analysis pipeline: window, FFT, magnitude smoothing, bark
// bands, display bars and derived features.
type Analyzer struct {
	sampleRate float64

	ring     [FFTSize]float64
	ringPos  int
	window   []float64
	bitrev   []int
	buf      fftBuffers
	windowed []float64

	smoothingFactor float64
	smoothed        [Bins]float64
	prevMagnitudes  [Bins]float64

	barkRanges [BarkBands][2]int // [startBin, endBin) per band

	last           Frame
	ProcessingLoad float64 // t_compute / t_buffer, updated each ProcessAudioBuffer call
}

// New builds an analyzer at the given sample rate with a smoothing factor
// of 0.2 (20% of each new frame blended in).
func New(sampleRate float64) *Analyzer {
	a := &Analyzer{
		sampleRate:      sampleRate,
		window:          hannWindow(FFTSize),
		bitrev:          bitReverseIndices(FFTSize),
		buf:             newFFTBuffers(FFTSize),
		windowed:        make([]float64, FFTSize),
		smoothingFactor: 0.2,
	}
	a.barkRanges = computeBarkRanges(sampleRate)
	return a
}

// SetSmoothingFactor adjusts the bin-smoothing blend coefficient.
func (a *Analyzer) SetSmoothingFactor(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	a.smoothingFactor = f
}

// hzToBark converts a frequency in Hz to the Bark scale using the
// closed-form approximation.
func hzToBark(hz float64) float64 {
	return 13*math.Atan(0.00076*hz) + 3.5*math.Atan(math.Pow(hz/7500, 2))
}

// computeBarkRanges precomputes the [startBin,endBin) range each of the 24
// Bark bands averages over, for the given sample rate.
func computeBarkRanges(sampleRate float64) [BarkBands][2]int {
	var ranges [BarkBands][2]int
	maxBark := hzToBark(sampleRate / 2)
	for b := 0; b < BarkBands; b++ {
		loBark := maxBark * float64(b) / BarkBands
		hiBark := maxBark * float64(b+1) / BarkBands
		loHz := barkToHz(loBark)
		hiHz := barkToHz(hiBark)
		lo := int(loHz / (sampleRate / 2) * (Bins - 1))
		hi := int(hiHz / (sampleRate / 2) * (Bins - 1))
		if hi <= lo {
			hi = lo + 1
		}
		if hi > Bins {
			hi = Bins
		}
		ranges[b] = [2]int{lo, hi}
	}
	return ranges
}

// barkToHz inverts hzToBark by bisection; the forward formula has no closed
// inverse but is monotonic over the audible range.
func barkToHz(bark float64) float64 {
	lo, hi := 0.0, 24000.0
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if hzToBark(mid) < bark {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// binToHz converts an FFT bin index to its center frequency.
func (a *Analyzer) binToHz(bin int) float64 {
	return float64(bin) * a.sampleRate / FFTSize
}

// ProcessAudioBuffer shifts new stereo samples (interleaved L,R) into the
// rolling ring (summed to mono), then recomputes the full spectrum and
// derived features. timestamp is an opaque caller-supplied stamp copied
// into the returned Frame.
func (a *Analyzer) ProcessAudioBuffer(stereo []float32, timestamp int64) (Frame, Features) {
	start := time.Now()
	frames := len(stereo) / 2
	for i := 0; i < frames; i++ {
		mono := (float64(stereo[i*2]) + float64(stereo[i*2+1])) * 0.5
		a.ring[a.ringPos] = mono
		a.ringPos = (a.ringPos + 1) % FFTSize
	}

	for i := 0; i < FFTSize; i++ {
		src := (a.ringPos + i) % FFTSize
		a.windowed[i] = a.ring[src] * a.window[i]
	}

	forwardReal(a.windowed, a.buf, a.bitrev)

	a.prevMagnitudes = a.smoothed
	for k := 0; k < Bins; k++ {
		mag := math.Hypot(a.buf.re[k], a.buf.im[k]) * 2 / FFTSize
		a.smoothed[k] = a.smoothed[k]*(1-a.smoothingFactor) + mag*a.smoothingFactor
	}

	frame := a.buildFrame(timestamp)
	features := deriveFeatures(frame)
	a.last = frame

	if a.sampleRate > 0 && frames > 0 {
		bufferSeconds := float64(frames) / a.sampleRate
		a.ProcessingLoad = time.Since(start).Seconds() / bufferSeconds
	}
	return frame, features
}

// Last returns the most recently computed frame without recomputing.
func (a *Analyzer) Last() Frame { return a.last }

func (a *Analyzer) buildFrame(timestamp int64) Frame {
	var f Frame
	f.Timestamp = timestamp
	copy(f.Magnitudes[:], a.smoothed[:])

	var totalEnergy, weightedFreq, peak, fluxSum float64
	var bass, mid, high float64
	var sumSquares float64
	for k := 0; k < Bins; k++ {
		mag := a.smoothed[k]
		energy := mag * mag
		totalEnergy += energy
		sumSquares += energy
		hz := a.binToHz(k)
		weightedFreq += hz * mag
		if mag > peak {
			peak = mag
			f.Fundamental = hz
		}
		d := mag - a.prevMagnitudes[k]
		if d > 0 {
			fluxSum += d
		}
		switch {
		case hz >= bassLowHz && hz < bassHighHz:
			bass += energy
		case hz >= midLowHz && hz < midHighHz:
			mid += energy
		case hz >= highLowHz && hz < highHighHz:
			high += energy
		}
	}

	f.TotalEnergy = totalEnergy
	f.HasActivity = totalEnergy > 1e-10
	f.RMS = math.Sqrt(sumSquares / Bins)
	f.Peak = peak
	f.Flux = fluxSum

	magSum := 0.0
	for k := 0; k < Bins; k++ {
		magSum += a.smoothed[k]
	}
	if magSum > 1e-12 {
		f.SpectralCentroid = weightedFreq / magSum
	}

	var spreadAcc float64
	for k := 0; k < Bins; k++ {
		d := a.binToHz(k) - f.SpectralCentroid
		spreadAcc += d * d * a.smoothed[k]
	}
	if magSum > 1e-12 {
		f.Spread = math.Sqrt(spreadAcc / magSum)
	}

	f.Rolloff = a.rolloff95(totalEnergy)

	f.BassEnergy, f.MidEnergy, f.HighEnergy = bass, mid, high
	if mid > 1e-12 {
		f.LowMidRatio = bass / mid
		f.HighMidRatio = high / mid
	}

	for b := 0; b < BarkBands; b++ {
		rng := a.barkRanges[b]
		var sum float64
		count := rng[1] - rng[0]
		for k := rng[0]; k < rng[1] && k < Bins; k++ {
			sum += a.smoothed[k]
		}
		if count > 0 {
			f.BarkBands[b] = sum / float64(count)
		}
	}

	for i := 0; i < DisplayBars; i++ {
		loHz := 20 * math.Pow(1000, float64(i)/DisplayBars)
		hiHz := 20 * math.Pow(1000, float64(i+1)/DisplayBars)
		lo := int(loHz / (a.sampleRate / 2) * (Bins - 1))
		hi := int(hiHz / (a.sampleRate / 2) * (Bins - 1))
		if hi <= lo {
			hi = lo + 1
		}
		if hi > Bins {
			hi = Bins
		}
		var sum float64
		count := 0
		for k := lo; k < hi && k < Bins; k++ {
			sum += a.smoothed[k]
			count++
		}
		if count > 0 {
			f.DisplayBars[i] = sum / float64(count)
		}
	}

	return f
}

// rolloff95 returns the frequency below which 95% of totalEnergy lies.
func (a *Analyzer) rolloff95(totalEnergy float64) float64 {
	if totalEnergy <= 0 {
		return 0
	}
	threshold := totalEnergy * 0.95
	var acc float64
	for k := 0; k < Bins; k++ {
		mag := a.smoothed[k]
		acc += mag * mag
		if acc >= threshold {
			return a.binToHz(k)
		}
	}
	return a.binToHz(Bins - 1)
}

// deriveFeatures maps a Frame's spectral shape onto the coarse boolean
// feature set. These heuristics are intentionally simple energy-band and
// shape thresholds, not a trained classifier.
func deriveFeatures(f Frame) Features {
	var feat Features
	if !f.HasActivity {
		return feat
	}
	feat.HasBass = f.BassEnergy > f.MidEnergy*0.5
	feat.HasKick = feat.HasBass && f.Peak > 0.3 && f.Fundamental < 150
	feat.HasSnare = f.MidEnergy > f.BassEnergy && f.Flux > 0.05
	feat.HasHihat = f.HighEnergy > f.MidEnergy*0.8
	feat.HasVocals = f.SpectralCentroid > 500 && f.SpectralCentroid < 3500 && f.Spread < 2000
	feat.IsPercussive = f.Flux > 0.08
	feat.IsNoisy = f.Spread > 3000
	feat.IsMelodic = !feat.IsNoisy && f.Spread < 1500
	feat.RhythmStrength = clamp01(f.Flux * 4)
	feat.Harmonicity = clamp01(1 - f.Spread/5000)
	return feat
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
