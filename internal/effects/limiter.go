package effects

import "github.com/grainlab/groove-core/internal/dsp"

// limiterCeiling is the hard clamp the master chain's final stage applies
// to guarantee the output never reaches full scale.
const limiterCeiling = 0.99

// Limiter is the last stage of the master chain: a hard clamp to
// [-0.99, 0.99], a safety net rather than a musical limiter.
type Limiter struct{}

func NewLimiter() *Limiter { return &Limiter{} }

func (Limiter) Process(l, r float32) (float32, float32) {
	return dsp.ClampUnit(l, limiterCeiling), dsp.ClampUnit(r, limiterCeiling)
}

func (Limiter) Reset() {}
