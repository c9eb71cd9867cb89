package utils

import (
	"fmt"
	"time"
)

// Layouts used across the CLI and TUI
const (
	DayLayout     = "2006-01-02"
	DisplayLayout = "Mon, Jan 2"
	ClockLayout   = "15:04"
)

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsDueToday reports whether due falls on the same day as now
func IsDueToday(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	return SameDay(now, *due)
}

// IsOverdue reports whether due is in the past and not today
func IsOverdue(due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	return due.Before(now) && !SameDay(now, *due)
}

// DayKey formats the local day of t as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// FormatDate renders t like "Mon, Jan 2", or "" when t is nil
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DisplayLayout)
}

// FormatTime renders t like "17:00", or "" when t is nil
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(ClockLayout)
}

// FormatClock renders a duration as MM:SS, with hours folded into minutes
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
