package effects

// TrackChainConfig selects which optional stages a track's effects chain
// includes. Chorus and GentleChorus are mutually exclusive; Filter and
// Drive are each independently optional.
type TrackChainConfig struct {
	UseChorus       bool
	UseGentleChorus bool
	UseFilter       bool
	UseDrive        bool
}

// TrackChain is the per-track effects path: optional chorus/gentle chorus,
// then an optional filter, then optional drive, distinct from the master
// bus chain every track feeds into afterward.
type TrackChain struct {
	chorus       *Chorus
	gentleChorus *GentleChorus
	filter       *Filter
	drive        *Distortion
}

// NewTrackChain builds a track's effects chain at sampleRate per cfg.
// Stages omitted by cfg are left nil and skipped in Process.
func NewTrackChain(sampleRate int, cfg TrackChainConfig) *TrackChain {
	tc := &TrackChain{}
	if cfg.UseChorus {
		tc.chorus = NewChorus(sampleRate, 15, 0.2, 3, 0.8, 0.5)
	} else if cfg.UseGentleChorus {
		tc.gentleChorus = NewGentleChorus(sampleRate, 15, 0.15, 2, 0.5, 0.35)
	}
	if cfg.UseFilter {
		tc.filter = NewFilter(sampleRate)
	}
	if cfg.UseDrive {
		tc.drive = NewDistortion(sampleRate, 1, 1, 0)
	}
	return tc
}

func (tc *TrackChain) Process(l, r float32) (float32, float32) {
	if tc.chorus != nil {
		l, r = tc.chorus.Process(l, r)
	}
	if tc.gentleChorus != nil {
		l, r = tc.gentleChorus.Process(l, r)
	}
	if tc.filter != nil {
		l, r = tc.filter.Process(l, r)
	}
	if tc.drive != nil {
		l, r = tc.drive.Process(l, r)
	}
	return l, r
}

func (tc *TrackChain) Reset() {
	if tc.chorus != nil {
		tc.chorus.Reset()
	}
	if tc.gentleChorus != nil {
		tc.gentleChorus.Reset()
	}
	if tc.filter != nil {
		tc.filter.Reset()
	}
	if tc.drive != nil {
		tc.drive.Reset()
	}
}

// Filter exposes the track's filter stage for parameter automation,
// if present.
func (tc *TrackChain) Filter() *Filter { return tc.filter }

// Drive exposes the track's drive stage for parameter automation,
// if present.
func (tc *TrackChain) Drive() *Distortion { return tc.drive }
