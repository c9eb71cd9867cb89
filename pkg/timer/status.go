package timer

import "time"

// Status is a read-only view of the engine for display
type Status struct {
	State           State
	Phase           Phase
	FocusCount      int
	SegmentElapsed  time.Duration
	SegmentTarget   time.Duration
	TotalElapsed    time.Duration
	FocusElapsed    time.Duration
	Total           time.Duration
	SessionID       string
	CreditedMinutes int
}

// Used is the part of the budget consumed so far, capped at Total
func (s Status) Used() time.Duration {
	used := s.TotalElapsed + s.SegmentElapsed
	if used > s.Total {
		return s.Total
	}
	return used
}

// Remaining is the unused part of the budget
func (s Status) Remaining() time.Duration {
	if r := s.Total - s.Used(); r > 0 {
		return r
	}
	return 0
}

// SegmentRemaining is the time left in the current segment
func (s Status) SegmentRemaining() time.Duration {
	if r := s.SegmentTarget - s.SegmentElapsed; r > 0 {
		return r
	}
	return 0
}

// Percent is overall progress in [0, 100]
func (s Status) Percent() float64 {
	if s.Total <= 0 {
		if s.State == Finished {
			return 100
		}
		return 0
	}
	pct := float64(s.Used()) / float64(s.Total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Status reports the engine state as of the last Tick
func (e *Engine) Status() Status {
	return Status{
		State:           e.state(),
		Phase:           e.phase,
		FocusCount:      e.focusCount,
		SegmentElapsed:  seconds(e.segElapsed),
		SegmentTarget:   seconds(e.segTarget),
		TotalElapsed:    seconds(e.totalElapsed),
		FocusElapsed:    seconds(e.focusElapsed),
		Total:           seconds(e.totalSeconds),
		SessionID:       e.sessionID,
		CreditedMinutes: e.creditedMinutes,
	}
}

func (e *Engine) state() State {
	switch {
	case e.finished:
		return Finished
	case e.running:
		return Running
	case e.started:
		return Paused
	default:
		return Idle
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
