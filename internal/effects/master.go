package effects

// MasterBus wires the fixed master-chain order: tilt EQ, 7-band parametric
// EQ, compressor, lowpass, reverb, shimmer, limiter. Reverb and shimmer
// share a single overall wet/dry blend rather than each having their own,
// so the dry signal is split off before the reverb stage and recombined
// once at the end.
type MasterBus struct {
	Tilt      *Tilt
	EQ        *ParametricEQ7
	Comp      *Compressor
	LPF       *Lowpass
	Reverb    *Reverb
	Shimmer   *Shimmer
	Limiter   *Limiter
	ReverbWet float32
}

func NewMasterBus(sampleRate int) *MasterBus {
	return &MasterBus{
		Tilt:      NewTilt(sampleRate),
		EQ:        NewParametricEQ7(sampleRate),
		Comp:      NewCompressor(sampleRate, -18, 3, 10, 120, 0),
		LPF:       NewLowpass(sampleRate),
		Reverb:    NewReverb(sampleRate, 0.3),
		Shimmer:   NewShimmer(sampleRate),
		Limiter:   NewLimiter(),
		ReverbWet: 0.3,
	}
}

// SetReverbWet sets the single overall wet/dry blend shared by the reverb
// and shimmer stages.
func (m *MasterBus) SetReverbWet(wet float32) {
	m.ReverbWet = clamp(wet, 0, 1)
}

// Process runs the full fixed-order master chain: tilt -> parametric EQ ->
// compressor -> lowpass -> reverb+shimmer blend -> limiter.
func (m *MasterBus) Process(l, r float32) (float32, float32) {
	l, r = m.Tilt.Process(l, r)
	l, r = m.EQ.Process(l, r)
	l, r = m.Comp.Process(l, r)
	l, r = m.LPF.Process(l, r)

	dryL, dryR := l, r
	revL, revR := m.Reverb.ProcessWet(l, r)
	shimL, shimR := m.Shimmer.Process(l, r, m.ReverbWet)
	wet := m.ReverbWet
	l = dryL*(1-wet) + (revL+shimL)*wet
	r = dryR*(1-wet) + (revR+shimR)*wet

	return m.Limiter.Process(l, r)
}

func (m *MasterBus) Reset() {
	m.Tilt.Reset()
	m.EQ.Reset()
	m.Comp.Reset()
	m.LPF.Reset()
	m.Reverb.Reset()
	m.Shimmer.Reset()
}
