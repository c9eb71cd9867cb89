package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuePredicates(t *testing.T) {
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	earlierToday := now.Add(-2 * time.Hour)
	laterToday := now.Add(5 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		due     *time.Time
		overdue bool
		today   bool
	}{
		{"no due date", nil, false, false},
		{"earlier today", &earlierToday, false, true},
		{"later today", &laterToday, false, true},
		{"yesterday", &yesterday, true, false},
		{"tomorrow", &tomorrow, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overdue, IsOverdue(tt.due, now))
			assert.Equal(t, tt.today, IsDueToday(tt.due, now))
		})
	}
}

func TestFormatting(t *testing.T) {
	at := time.Date(2025, 9, 20, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "Sat, Sep 20", FormatDate(&at))
	assert.Equal(t, "23:59", FormatTime(&at))
	assert.Equal(t, "2025-09-20", DayKey(at))
	assert.Equal(t, "", FormatDate(nil))
	assert.Equal(t, "", FormatTime(nil))

	assert.Equal(t, "25:00", FormatClock(25*time.Minute))
	assert.Equal(t, "04:05", FormatClock(4*time.Minute+5*time.Second))
	assert.Equal(t, "90:00", FormatClock(90*time.Minute))
	assert.Equal(t, "00:00", FormatClock(-time.Second))
}
