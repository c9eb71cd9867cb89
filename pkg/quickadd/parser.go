// Package quickadd turns one line of free text into a task payload, e.g.
//
//	Math HW due tomorrow 17:00 ~90m #math #hw
//	Finish report due 2025-09-20 23:59 ~2h
package quickadd

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"stm/pkg/store"
)

// DefaultTitle is used when nothing but tokens was typed
const DefaultTitle = "New Task"

// DefaultHour is the due hour applied when only a date is given
const DefaultHour = 18

var (
	timeRe     = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
	dateRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	minutesRe  = regexp.MustCompile(`(?i)^(\d+)m$`)
	hoursRe    = regexp.MustCompile(`(?i)^(\d+)h$`)
	hoursMinRe = regexp.MustCompile(`(?i)^(\d+)h(\d+)m$`)
)

var relativeDays = map[string]int{
	"today":    0,
	"tomorrow": 1,
}

// Result is the parsed payload
type Result struct {
	Title            string
	DueAt            *time.Time
	EstimatedMinutes *int
	Tags             []string
}

// Parse extracts tags (#tag), a due day (today, tomorrow, YYYY-MM-DD), a due
// time (HH:MM), and an estimate (90m, 2h, 1h30m, optionally prefixed with ~).
// The word "due" is dropped and the remaining words form the title.
// Dates are interpreted in now's location.
func Parse(input string, now time.Time) Result {
	var (
		res    Result
		day    *time.Time
		minute int
		kept   []string
	)
	hour := -1

	for _, part := range strings.Fields(input) {
		if strings.HasPrefix(part, "#") {
			if tag := part[1:]; tag != "" {
				res.Tags = append(res.Tags, tag)
			}
			continue
		}
		if strings.EqualFold(part, "due") {
			continue
		}
		if d, ok := parseDay(part, now); ok {
			day = &d
			continue
		}
		if h, m, ok := parseClock(part); ok {
			hour, minute = h, m
			continue
		}
		if est, ok := parseEstimate(part); ok {
			res.EstimatedMinutes = &est
			continue
		}
		kept = append(kept, part)
	}

	if day != nil {
		h, m := DefaultHour, 0
		if hour >= 0 {
			h, m = hour, minute
		}
		due := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, now.Location())
		res.DueAt = &due
	}

	res.Title = strings.TrimSpace(strings.Join(kept, " "))
	if res.Title == "" {
		res.Title = DefaultTitle
	}
	return res
}

// NewTask converts the result into a creation payload
func (r Result) NewTask() store.NewTask {
	return store.NewTask{
		Title:            r.Title,
		DueAt:            r.DueAt,
		EstimatedMinutes: r.EstimatedMinutes,
		Tags:             r.Tags,
	}
}

func parseDay(word string, now time.Time) (time.Time, bool) {
	if delta, ok := relativeDays[strings.ToLower(word)]; ok {
		return now.AddDate(0, 0, delta), true
	}
	m := dateRe.FindStringSubmatch(word)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location()), true
}

func parseClock(word string) (int, int, bool) {
	m := timeRe.FindStringSubmatch(word)
	if m == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return h, minute, true
}

func parseEstimate(word string) (int, bool) {
	clean := strings.TrimPrefix(word, "~")
	if m := minutesRe.FindStringSubmatch(clean); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if m := hoursRe.FindStringSubmatch(clean); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 60, true
	}
	if m := hoursMinRe.FindStringSubmatch(clean); m != nil {
		h, _ := strconv.Atoi(m[1])
		n, _ := strconv.Atoi(m[2])
		return h*60 + n, true
	}
	return 0, false
}
