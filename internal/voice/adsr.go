package voice

// EnvelopeStage is the ADSR state machine's current stage.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// ADSR is a sample-rate-relative amplitude envelope. Attack ramps by
// 1/(attack*fs) per sample until the level clamps to 1, Decay ramps down to
// the sustain level, Sustain holds, and Release ramps to 0 before the
// envelope returns to Idle. Retriggering while already sounding restarts at
// Attack from the current level instead of jumping back to 0, so there's no
// click on legato retrigger.
type ADSR struct {
	sampleRate float64
	attack     float64 // seconds
	decay      float64 // seconds
	sustain    float64 // level in [0,1]
	release    float64 // seconds

	stage EnvelopeStage
	level float64

	attackInc  float64
	decayDec   float64
	releaseDec float64
}

// NewADSR creates an idle envelope at the given sample rate.
func NewADSR(sampleRate float64) *ADSR {
	e := &ADSR{sampleRate: sampleRate, attack: 0.01, decay: 0.1, sustain: 0.7, release: 0.2}
	e.recompute()
	return e
}

// SetSampleRate updates the sample rate and recomputes per-sample rates.
func (e *ADSR) SetSampleRate(sr float64) {
	e.sampleRate = sr
	e.recompute()
}

// SetADSR sets all four stage parameters (attack/decay/release in seconds,
// sustain as a level in [0,1]) and recomputes per-sample rates.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	e.attack, e.decay, e.sustain, e.release = attack, decay, sustain, release
	if e.sustain < 0 {
		e.sustain = 0
	}
	if e.sustain > 1 {
		e.sustain = 1
	}
	e.recompute()
}

func (e *ADSR) recompute() {
	if e.sampleRate <= 0 {
		return
	}
	if e.attack > 0 {
		e.attackInc = 1 / (e.attack * e.sampleRate)
	} else {
		e.attackInc = 1
	}
	decaySpan := 1 - e.sustain
	if e.decay > 0 && decaySpan > 0 {
		e.decayDec = decaySpan / (e.decay * e.sampleRate)
	} else {
		e.decayDec = decaySpan
	}
	if e.release > 0 {
		e.releaseDec = 1 / (e.release * e.sampleRate)
	} else {
		e.releaseDec = 1
	}
}

// NoteOn (re)triggers the envelope. From any stage it restarts at Attack
// without resetting level to zero, so the amplitude ramps up from wherever
// it currently sits.
func (e *ADSR) NoteOn() {
	e.stage = StageAttack
}

// NoteOff moves the envelope into Release. A no-op from Idle.
func (e *ADSR) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	e.stage = StageRelease
}

// Stage returns the current envelope stage.
func (e *ADSR) Stage() EnvelopeStage { return e.stage }

// Level returns the current envelope level without advancing it.
func (e *ADSR) Level() float64 { return e.level }

// IsIdle reports whether the envelope has fully released.
func (e *ADSR) IsIdle() bool { return e.stage == StageIdle }

// Next advances the envelope by one sample and returns the new level.
func (e *ADSR) Next() float64 {
	switch e.stage {
	case StageIdle:
		e.level = 0
	case StageAttack:
		e.level += e.attackInc
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.decayDec
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.sustain
	case StageRelease:
		e.level -= e.releaseDec
		if e.level <= 0 {
			e.level = 0
			e.stage = StageIdle
		}
	}
	if e.level < 0 {
		e.level = 0
	}
	if e.level > 1 {
		e.level = 1
	}
	return e.level
}
