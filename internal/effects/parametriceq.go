package effects

import (
	"math"

	"github.com/grainlab/groove-core/internal/dsp"
)

// EQBandCount is the fixed number of bands in the parametric EQ.
const EQBandCount = 7

// eqBandDefaultHz gives each band's center/corner frequency: Sub, Low,
// LowMid, Mid, HighMid, High, Air.
var eqBandDefaultHz = [EQBandCount]float64{60, 150, 400, 1000, 2500, 6000, 12000}

var eqBandKind = [EQBandCount]dsp.BiquadType{
	dsp.BiquadLowShelf,
	dsp.BiquadBell,
	dsp.BiquadBell,
	dsp.BiquadBell,
	dsp.BiquadBell,
	dsp.BiquadBell,
	dsp.BiquadHighShelf,
}

// eqAutoGainProbeHz samples the cascade's response at 10 fixed frequencies
// to estimate the average gain auto-gain compensation should cancel.
var eqAutoGainProbeHz = [10]float64{40, 80, 160, 320, 630, 1250, 2500, 5000, 10000, 16000}

type eqBand struct {
	freq     float64
	q        float64
	gainDB   float64
	enabled  bool
	solo     bool
	bqL, bqR dsp.Biquad
}

// ParametricEQ7 is the master bus's 7-band parametric EQ: a cascade of RBJ
// biquads with per-band solo/bypass and optional auto-gain compensation
// so reshaping the spectrum doesn't silently change the overall level.
type ParametricEQ7 struct {
	sampleRate float64
	bands      [EQBandCount]eqBand
	autoGain   bool
	gainComp   float32
}

func NewParametricEQ7(sampleRate int) *ParametricEQ7 {
	eq := &ParametricEQ7{sampleRate: float64(sampleRate), gainComp: 1}
	for i := range eq.bands {
		eq.bands[i] = eqBand{freq: eqBandDefaultHz[i], q: 0.7, enabled: false}
		eq.bands[i].bqL.SetCoeffs(eqBandKind[i], eq.sampleRate, eq.bands[i].freq, eq.bands[i].q, 0)
		eq.bands[i].bqR.SetCoeffs(eqBandKind[i], eq.sampleRate, eq.bands[i].freq, eq.bands[i].q, 0)
	}
	return eq
}

// SetBand configures band i's frequency, Q, gain in dB, and enabled flag.
func (eq *ParametricEQ7) SetBand(i int, freqHz, q, gainDB float64, enabled bool) {
	if i < 0 || i >= EQBandCount {
		return
	}
	b := &eq.bands[i]
	b.freq, b.q, b.gainDB, b.enabled = freqHz, q, gainDB, enabled
	b.bqL.SetCoeffs(eqBandKind[i], eq.sampleRate, freqHz, q, gainDB)
	b.bqR.SetCoeffs(eqBandKind[i], eq.sampleRate, freqHz, q, gainDB)
	if eq.autoGain {
		eq.recomputeAutoGain()
	}
}

// SetSolo solos band i (all other bands are bypassed while any band is
// soloed); pass -1 to clear solo.
func (eq *ParametricEQ7) SetSolo(i int) {
	for b := range eq.bands {
		eq.bands[b].solo = b == i
	}
}

// SetAutoGain enables or disables automatic level compensation.
func (eq *ParametricEQ7) SetAutoGain(on bool) {
	eq.autoGain = on
	if on {
		eq.recomputeAutoGain()
	} else {
		eq.gainComp = 1
	}
}

func (eq *ParametricEQ7) anySolo() bool {
	for i := range eq.bands {
		if eq.bands[i].solo {
			return true
		}
	}
	return false
}

func (eq *ParametricEQ7) bandActive(i int) bool {
	b := &eq.bands[i]
	if !b.enabled {
		return false
	}
	if eq.anySolo() {
		return b.solo
	}
	return true
}

// recomputeAutoGain estimates the cascade's mean gain at 10 fixed probe
// frequencies and sets gainComp to -0.5*mean_gain_db worth of linear
// compensation, per the master bus's auto-gain contract.
func (eq *ParametricEQ7) recomputeAutoGain() {
	var sumDB float64
	for _, hz := range eqAutoGainProbeHz {
		sumDB += eq.responseDB(hz)
	}
	meanDB := sumDB / float64(len(eqAutoGainProbeHz))
	eq.gainComp = float32(dsp.DbToLinear(-0.5 * meanDB))
}

// responseDB estimates the cascade's magnitude response at hz in dB by
// feeding a short probe tone through a scratch copy of each active band's
// coefficients and comparing RMS in vs. out.
func (eq *ParametricEQ7) responseDB(hz float64) float64 {
	const n = 64
	in := make([]float64, n)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * hz * float64(i) / eq.sampleRate)
	}
	out := make([]float64, n)
	copy(out, in)
	for i := range eq.bands {
		if !eq.bandActive(i) {
			continue
		}
		var bq dsp.Biquad
		bq.SetCoeffs(eqBandKind[i], eq.sampleRate, eq.bands[i].freq, eq.bands[i].q, eq.bands[i].gainDB)
		for k := range out {
			out[k] = float64(bq.Process(float32(out[k])))
		}
	}
	var inSumSq, outSumSq float64
	for i := range in {
		inSumSq += in[i] * in[i]
		outSumSq += out[i] * out[i]
	}
	inRMS := math.Sqrt(inSumSq / n)
	outRMS := math.Sqrt(outSumSq / n)
	if inRMS < 1e-12 {
		return 0
	}
	return 20 * math.Log10(outRMS/inRMS)
}

func (eq *ParametricEQ7) Process(l, r float32) (float32, float32) {
	for i := range eq.bands {
		if !eq.bandActive(i) {
			continue
		}
		l = eq.bands[i].bqL.Process(l)
		r = eq.bands[i].bqR.Process(r)
	}
	return l * eq.gainComp, r * eq.gainComp
}

func (eq *ParametricEQ7) Reset() {
	for i := range eq.bands {
		eq.bands[i].bqL.Reset()
		eq.bands[i].bqR.Reset()
	}
}
