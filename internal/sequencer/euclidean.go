package sequencer

// Euclidean generates the most-even distribution of pulses pulses over n
// steps, anchored so pulse 0 always lands on step 0, then rotated by
// rotation mod n. Position i of the pulses (0-indexed) falls on step
// floor(i*n/pulses) — the same bucket-accumulator result the
// increment-by-pulses/subtract-by-n description produces, just read off by
// closed form instead of run step-by-step. Guarantees exactly
// min(pulses, n) pulses.
func Euclidean(n, pulses, rotation int) []bool {
	if n <= 0 {
		return nil
	}
	if pulses < 0 {
		pulses = 0
	}
	if pulses > n {
		pulses = n
	}
	out := make([]bool, n)
	for i := 0; i < pulses; i++ {
		pos := (i * n) / pulses
		out[pos] = true
	}
	return rotateBool(out, rotation)
}

// rotateBool rotates seq left by k (mod len(seq)), so that
// rotateBool(seq, 1) moves every element one position earlier, matching
// Euclidean(n,pulses,rot+1) against a rotation of Euclidean(n,pulses,rot).
func rotateBool(seq []bool, k int) []bool {
	n := len(seq)
	if n == 0 {
		return seq
	}
	k = ((k % n) + n) % n
	if k == 0 {
		return seq
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = seq[(i+k)%n]
	}
	return out
}
