package sequencer

import "sort"

// ArpMode selects the order held notes are cycled through.
type ArpMode int

const (
	ArpUp ArpMode = iota
	ArpDown
	ArpUpDown
	ArpRandom
)

// Arpeggiator sits between the held-note set a track's note-ons build up
// and the voice manager, cycling through them at a clock-divided rate.
// Grounded on original_source/'s Arpeggiator (see DESIGN.md).
type Arpeggiator struct {
	Mode          ArpMode
	ClockDivision float64 // steps per held-note advance; 1 = every step
	Enabled       bool
	Octaves       int // additional octave layers stacked on top, >=1

	held     []int
	pos      int
	dir      int
	stepsLeft float64
	rng      func() float64
}

// NewArpeggiator creates a disabled up-mode arpeggiator advancing once per
// step.
func NewArpeggiator(rng func() float64) *Arpeggiator {
	if rng == nil {
		rng = func() float64 { return 0 }
	}
	return &Arpeggiator{ClockDivision: 1, Octaves: 1, dir: 1, rng: rng}
}

// NoteHeld adds a note to the held set (sorted ascending for Up/Down modes).
func (a *Arpeggiator) NoteHeld(note int) {
	for _, n := range a.held {
		if n == note {
			return
		}
	}
	a.held = append(a.held, note)
	sort.Ints(a.held)
	if a.pos >= len(a.held) {
		a.pos = 0
	}
}

// NoteReleased removes a note from the held set.
func (a *Arpeggiator) NoteReleased(note int) {
	for i, n := range a.held {
		if n == note {
			a.held = append(a.held[:i], a.held[i+1:]...)
			break
		}
	}
	if a.pos >= len(a.held) && len(a.held) > 0 {
		a.pos = 0
	}
}

// sequence builds the full cycling sequence including octave
// layers, in the order Mode dictates.
func (a *Arpeggiator) sequence() []int {
	if len(a.held) == 0 {
		return nil
	}
	base := append([]int(nil), a.held...)
	var seq []int
	for o := 0; o < a.Octaves; o++ {
		for _, n := range base {
			seq = append(seq, n+12*o)
		}
	}
	switch a.Mode {
	case ArpDown:
		reverseInts(seq)
	case ArpUpDown:
		down := append([]int(nil), seq...)
		reverseInts(down)
		if len(down) > 1 {
			down = down[1 : len(down)-1]
		}
		seq = append(seq, down...)
	}
	return seq
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Advance consumes one step tick; every ClockDivision steps it returns the
// next note in sequence (ok=false if nothing is held or the clock hasn't
// reached its division yet).
func (a *Arpeggiator) Advance() (note int, ok bool) {
	if !a.Enabled || len(a.held) == 0 {
		return 0, false
	}
	a.stepsLeft -= 1
	if a.stepsLeft > 0 {
		return 0, false
	}
	a.stepsLeft = a.ClockDivision
	if a.stepsLeft <= 0 {
		a.stepsLeft = 1
	}

	seq := a.sequence()
	if len(seq) == 0 {
		return 0, false
	}
	if a.Mode == ArpRandom {
		idx := int(a.rng() * float64(len(seq)))
		if idx >= len(seq) {
			idx = len(seq) - 1
		}
		return seq[idx], true
	}
	if a.pos >= len(seq) {
		a.pos = 0
	}
	note = seq[a.pos]
	a.pos++
	return note, true
}
