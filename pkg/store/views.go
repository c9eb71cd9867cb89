package store

import (
	"sort"
	"strings"
	"time"

	"stm/pkg/utils"
)

// Filter narrows a task list
type Filter struct {
	// Query matches the title or any tag, case-insensitively
	Query string
	// Priority keeps only one priority; zero keeps all
	Priority Priority
}

// Match reports whether t passes the filter
func (f Filter) Match(t Task) bool {
	if f.Priority != 0 && t.Priority != f.Priority {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Apply returns the tasks that pass the filter, in order
func (f Filter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Section is a named group of tasks
type Section struct {
	Name  string
	Tasks []Task
}

// Section names
const (
	SectionOverdue   = "Overdue"
	SectionToday     = "Today"
	SectionUpcoming  = "Upcoming"
	SectionCompleted = "Completed"
)

// SortByDue orders tasks by due date, undated last, then by priority, high first
func SortByDue(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.DueAt == nil && b.DueAt == nil:
		case a.DueAt == nil:
			return false
		case b.DueAt == nil:
			return true
		case !a.DueAt.Equal(*b.DueAt):
			return a.DueAt.Before(*b.DueAt)
		}
		return a.Priority > b.Priority
	})
	return sorted
}

// DoNow splits open tasks into overdue, due today and upcoming sections, each
// ordered by SortByDue. Completed tasks get their own trailing section when
// withCompleted is set. Empty sections are kept so callers can show a
// placeholder.
func DoNow(tasks []Task, f Filter, now time.Time, withCompleted bool) []Section {
	var overdue, today, upcoming, completed []Task
	for _, t := range f.Apply(tasks) {
		switch {
		case t.Done():
			completed = append(completed, t)
		case utils.IsOverdue(t.DueAt, now):
			overdue = append(overdue, t)
		case utils.IsDueToday(t.DueAt, now):
			today = append(today, t)
		default:
			upcoming = append(upcoming, t)
		}
	}

	sections := []Section{
		{Name: SectionOverdue, Tasks: SortByDue(overdue)},
		{Name: SectionToday, Tasks: SortByDue(today)},
		{Name: SectionUpcoming, Tasks: SortByDue(upcoming)},
	}
	if withCompleted {
		sections = append(sections, Section{Name: SectionCompleted, Tasks: SortByDue(completed)})
	}
	return sections
}
