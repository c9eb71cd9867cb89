package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"stm/pkg/store"
	"stm/pkg/utils"
)

var (
	// ErrTaskNotFound is returned when no task, or more than one, matches an id prefix
	ErrTaskNotFound = errors.New("no single task matches id")
	// ErrTaskTrashed is returned when an operation needs an active task
	ErrTaskTrashed = errors.New("task is in the trash")
)

// ListMode selects which tasks HandleList prints
type ListMode int

const (
	ListOpen ListMode = iota
	ListDone
	ListAll
)

// resolveActive finds an active task by id prefix
func resolveActive(st *store.Store, id string) (store.Task, error) {
	task, ok := st.Resolve(id)
	if !ok {
		return store.Task{}, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	if task.Trashed() {
		return store.Task{}, fmt.Errorf("%w: %s", ErrTaskTrashed, shortID(task.ID))
	}
	return task, nil
}

// HandleList prints tasks. Open tasks use the overdue/today/upcoming grouping.
func HandleList(st *store.Store, w io.Writer, mode ListMode, filter store.Filter, now time.Time) {
	var sections []store.Section
	switch mode {
	case ListDone:
		sections = []store.Section{{Name: store.SectionCompleted, Tasks: store.SortByDue(filter.Apply(st.CompletedTasks()))}}
	case ListAll:
		sections = store.DoNow(st.Tasks(), filter, now, true)
	default:
		sections = store.DoNow(st.OpenTasks(), filter, now, false)
	}

	printed := 0
	for _, section := range sections {
		if len(section.Tasks) == 0 {
			continue
		}
		if printed > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", section.Name, len(section.Tasks))
		for _, task := range section.Tasks {
			fmt.Fprintf(w, "  %s %s\n", shortID(task.ID), describe(task))
			printed++
		}
	}
	if printed == 0 {
		fmt.Fprintln(w, "No tasks.")
	}
}

// HandleDone marks a task done or reopens it
func HandleDone(st *store.Store, w io.Writer, id string, done bool) error {
	task, err := resolveActive(st, id)
	if err != nil {
		return err
	}
	st.ToggleDone(task.ID, done)
	state := "open"
	if done {
		state = "done"
	}
	fmt.Fprintf(w, "Marked %s %s: %s\n", shortID(task.ID), state, task.Title)
	return nil
}

// HandleDelete moves a task to the trash, or removes it for good when hard is set
func HandleDelete(st *store.Store, w io.Writer, id string, hard bool) error {
	task, ok := st.Resolve(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	if hard {
		st.DeleteTask(task.ID)
		fmt.Fprintf(w, "Deleted %s: %s\n", shortID(task.ID), task.Title)
		return nil
	}
	if task.Trashed() {
		return fmt.Errorf("%w: %s", ErrTaskTrashed, shortID(task.ID))
	}
	st.SoftDeleteTask(task.ID)
	fmt.Fprintf(w, "Moved %s to trash: %s (restore with `stm restore %s`)\n", shortID(task.ID), task.Title, shortID(task.ID))
	return nil
}

// HandleRestore moves a task out of the trash
func HandleRestore(st *store.Store, w io.Writer, id string) error {
	task, ok := st.Resolve(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	if !task.Trashed() {
		fmt.Fprintf(w, "%s is not in the trash\n", shortID(task.ID))
		return nil
	}
	st.RestoreTask(task.ID)
	fmt.Fprintf(w, "Restored %s: %s\n", shortID(task.ID), task.Title)
	return nil
}

// HandleTrash lists soft-deleted tasks with the time they expire
func HandleTrash(st *store.Store, w io.Writer) {
	trash := st.Trash()
	if len(trash) == 0 {
		fmt.Fprintln(w, "Trash is empty.")
		return
	}
	for _, task := range trash {
		expires := task.DeletedAt.Add(store.TrashRetention)
		fmt.Fprintf(w, "  %s %s (expires %s %s)\n", shortID(task.ID), task.Title, utils.FormatDate(&expires), utils.FormatTime(&expires))
	}
}

// HandlePurge drops trashed tasks past their retention
func HandlePurge(st *store.Store, w io.Writer) {
	before := len(st.Trash())
	st.PurgeExpiredTrash()
	fmt.Fprintf(w, "Purged %d task(s) from trash\n", before-len(st.Trash()))
}

// HandleCoeff stores the procrastination coefficient, clamped to its bounds
func HandleCoeff(st *store.Store, w io.Writer, value float64) {
	st.SetProcrastinationCoeff(value)
	fmt.Fprintf(w, "Procrastination coefficient: %.2f\n", st.Settings().ProcrastinationCoeff)
}

// HandleStats prints completion analytics and optionally applies the suggested coefficient
func HandleStats(st *store.Store, w io.Writer, apply bool) {
	stats := store.Analyze(st.Tasks())
	fmt.Fprintf(w, "Completed tasks:        %d\n", stats.Completed)
	fmt.Fprintf(w, "Average estimate:       %d min\n", stats.AvgEstimateMinutes)
	fmt.Fprintf(w, "Average actual:         %d min\n", stats.AvgActualMinutes)
	fmt.Fprintf(w, "Average lateness:       %d min\n", stats.AvgLatenessMinutes)
	fmt.Fprintf(w, "Suggested coefficient:  %.2f\n", stats.ProcrastinationCoeff)
	fmt.Fprintf(w, "Current coefficient:    %.2f\n", st.Settings().ProcrastinationCoeff)
	if apply {
		st.SetProcrastinationCoeff(stats.ProcrastinationCoeff)
		fmt.Fprintf(w, "Applied coefficient %.2f\n", st.Settings().ProcrastinationCoeff)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// describe renders a task on one line: checkbox, priority, title, due, estimate, tags
func describe(t store.Task) string {
	var b strings.Builder
	if t.Done() {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	fmt.Fprintf(&b, "(%s) %s", t.Priority, t.Title)
	if t.DueAt != nil {
		fmt.Fprintf(&b, "  due %s %s", utils.FormatDate(t.DueAt), utils.FormatTime(t.DueAt))
	}
	if t.EstimatedMinutes != nil {
		fmt.Fprintf(&b, "  ~%dm", *t.EstimatedMinutes)
	}
	if t.ActualMinutes > 0 {
		fmt.Fprintf(&b, "  spent %dm", t.ActualMinutes)
	}
	for _, tag := range t.Tags {
		b.WriteString("  #" + tag)
	}
	return b.String()
}
