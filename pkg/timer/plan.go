package timer

import "time"

// Plan describes segment lengths in whole seconds. A Focus under one
// second means a single focus segment spanning the whole budget, with no breaks.
type Plan struct {
	Focus          time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
}

// DefaultPlan is the classic 25/5/15 cycle with a long break after every
// third focus segment
func DefaultPlan() Plan {
	return Plan{
		Focus:          25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 3,
	}
}

// SinglePlan runs one uninterrupted focus segment
func SinglePlan() Plan {
	return Plan{}
}

// Segmented reports whether the plan alternates focus and break segments
func (p Plan) Segmented() bool {
	return p.focusSeconds() > 0
}

func (p Plan) focusSeconds() int {
	return int(p.Focus / time.Second)
}

// breakSeconds returns the break length after focusCount completed focus segments
func (p Plan) breakSeconds(focusCount int) int {
	if p.LongBreakEvery > 0 && focusCount > 0 && focusCount%p.LongBreakEvery == 0 {
		return int(p.LongBreak / time.Second)
	}
	return int(p.ShortBreak / time.Second)
}
