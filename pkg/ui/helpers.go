package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"stm/pkg/config"
	"stm/pkg/quickadd"
	"stm/pkg/store"
	"stm/pkg/timer"
	"stm/pkg/utils"
)

// loadTasks rebuilds the table rows from the store
func (m *Model) loadTasks() {
	now := m.now()
	var rows []table.Row
	var ids []string

	addHeader := func(name string, count int) {
		header := fmt.Sprintf("== %s (%d) ==", name, count)
		rows = append(rows, table.Row{
			lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(m.styles.AccentColor)).
				Render(header),
		})
		ids = append(ids, "")
	}

	if m.viewMode == TrashView {
		trash := m.store.Trash()
		addHeader("Trash", len(trash))
		for _, task := range trash {
			rows = append(rows, table.Row{m.trashRow(task)})
			ids = append(ids, task.ID)
		}
	} else {
		groups := m.GroupTasks(m.store.Tasks(), now)
		for i, group := range groups {
			if group.GroupName != "" {
				addHeader(group.GroupName, len(group.Tasks))
			}
			if len(group.Tasks) == 0 && m.groupBy == GroupByDoNow {
				rows = append(rows, table.Row{m.muted("  nothing here")})
				ids = append(ids, "")
			}
			for _, task := range group.Tasks {
				rows = append(rows, table.Row{m.taskRow(task)})
				ids = append(ids, task.ID)
			}
			if i < len(groups)-1 {
				rows = append(rows, table.Row{""})
				ids = append(ids, "")
			}
		}
	}

	m.rowIDs = ids
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// selectedID returns the task under the cursor, or "" on headers and spacers
func (m Model) selectedID() string {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rowIDs) {
		return ""
	}
	return m.rowIDs[cursor]
}

// taskRow renders one task: status, priority, title, due, estimate, spent time, subtask progress and tags
func (m Model) taskRow(task store.Task) string {
	now := m.now()
	status := "[ ]"
	switch task.Status {
	case store.StatusDone:
		status = "[x]"
	case store.StatusInProgress:
		status = "[~]"
	}

	parts := []string{status, m.priorityStyle(task.Priority).Render(priorityMark(task.Priority)), task.Title}

	if task.DueAt != nil {
		due := "due " + utils.FormatDate(task.DueAt) + " " + utils.FormatTime(task.DueAt)
		if utils.IsOverdue(task.DueAt, now) && !task.Done() {
			due = lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.OverdueColor)).Render(due)
		}
		parts = append(parts, due)
	}
	if task.EstimatedMinutes != nil {
		parts = append(parts, m.muted(fmt.Sprintf("~%dm (plan %dm)", *task.EstimatedMinutes, planned(*task.EstimatedMinutes, m.store.Settings().ProcrastinationCoeff))))
	}
	if task.ActualMinutes > 0 {
		parts = append(parts, m.muted(fmt.Sprintf("spent %dm", task.ActualMinutes)))
	}
	if n := len(task.Subtasks); n > 0 {
		done := 0
		for _, sub := range task.Subtasks {
			if sub.Done {
				done++
			}
		}
		parts = append(parts, m.muted(fmt.Sprintf("%d/%d", done, n)))
	}
	if len(task.Tags) > 0 {
		parts = append(parts, highlightTags(task.Tags, m.styles))
	}
	if m.engine != nil && m.engine.TaskID() == task.ID {
		if s := m.engine.Status(); s.State == timer.Running {
			parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.FocusColor)).Render("● "+utils.FormatClock(s.SegmentRemaining())))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) trashRow(task store.Task) string {
	expires := task.DeletedAt.Add(store.TrashRetention)
	return fmt.Sprintf("%s %s", task.Title, m.muted("(expires "+utils.FormatDate(&expires)+")"))
}

// planned scales an estimate by the procrastination coefficient
func planned(estimate int, coeff float64) int {
	return int(float64(estimate)*coeff + 0.5)
}

func priorityMark(p store.Priority) string {
	return map[store.Priority]string{
		store.PriorityHigh:   "!!!",
		store.PriorityMedium: "!! ",
		store.PriorityLow:    "!  ",
	}[p]
}

func (m Model) priorityStyle(p store.Priority) lipgloss.Style {
	color := m.styles.MediumPriorityColor
	switch p {
	case store.PriorityHigh:
		color = m.styles.HighPriorityColor
	case store.PriorityLow:
		color = m.styles.LowPriorityColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (m Model) muted(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.MutedColor)).Render(s)
}

// highlightTags renders tags as colored #tag tokens
func highlightTags(tags []string, styles config.Styles) string {
	tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.TagColor))
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tagStyle.Render("#" + tag)
	}
	return strings.Join(out, " ")
}

// nextPriority cycles low -> medium -> high -> low
func nextPriority(p store.Priority) store.Priority {
	if p >= store.PriorityHigh {
		return store.PriorityLow
	}
	return p + 1
}

// nextPriorityFilter cycles all -> high -> medium -> low -> all
func nextPriorityFilter(p store.Priority) store.Priority {
	switch p {
	case 0:
		return store.PriorityHigh
	case store.PriorityLow:
		return 0
	default:
		return p - 1
	}
}

// fillEditForm loads a task into the edit inputs
func (m *Model) fillEditForm(task store.Task) {
	m.resetInputs()
	m.inputs[fieldTitle].SetValue(task.Title)
	m.inputs[fieldDesc].SetValue(task.Description)
	if task.DueAt != nil {
		m.inputs[fieldDue].SetValue(task.DueAt.Format(utils.DayLayout + " " + utils.ClockLayout))
	}
	if task.EstimatedMinutes != nil {
		m.inputs[fieldEstimate].SetValue(strconv.Itoa(*task.EstimatedMinutes))
	}
	m.inputs[fieldTags].SetValue(strings.Join(task.Tags, " "))
}

// editPatch turns the edit form into a patch. Due and estimate accept the
// quick-add notations.
func (m Model) editPatch() (store.TaskPatch, error) {
	var patch store.TaskPatch

	title := strings.TrimSpace(m.inputs[fieldTitle].Value())
	if title == "" {
		return patch, fmt.Errorf("title cannot be empty")
	}
	desc := strings.TrimSpace(m.inputs[fieldDesc].Value())
	patch.Title = &title
	patch.Description = &desc

	if due := strings.TrimSpace(m.inputs[fieldDue].Value()); due == "" {
		patch.ClearDueAt = true
	} else {
		parsed := quickadd.Parse(due, m.now())
		if parsed.DueAt == nil {
			return patch, fmt.Errorf("invalid due date: %q", due)
		}
		patch.DueAt = parsed.DueAt
	}

	if est := strings.TrimSpace(m.inputs[fieldEstimate].Value()); est != "" {
		minutes, err := strconv.Atoi(est)
		if err != nil {
			parsed := quickadd.Parse(est, m.now())
			if parsed.EstimatedMinutes == nil {
				return patch, fmt.Errorf("invalid estimate: %q", est)
			}
			minutes = *parsed.EstimatedMinutes
		}
		if minutes < 0 {
			return patch, fmt.Errorf("estimate cannot be negative")
		}
		patch.EstimatedMinutes = &minutes
	}

	patch.Tags = strings.FieldsFunc(m.inputs[fieldTags].Value(), func(r rune) bool {
		return r == ' ' || r == ','
	})
	for i, tag := range patch.Tags {
		patch.Tags[i] = strings.TrimPrefix(tag, "#")
	}
	patch.SetTags = true
	return patch, nil
}

func (m *Model) focusInput(i int) {
	m.inputs[m.activeInput].Blur()
	m.activeInput = (i + fieldCount) % fieldCount
	m.inputs[m.activeInput].Focus()
}

// subtasks returns the subtasks of the task open in subtask mode
func (m Model) subtasks() []store.Subtask {
	task, ok := m.store.Task(m.subtaskTaskID)
	if !ok {
		return nil
	}
	return task.Subtasks
}

func (m Model) selectedSubtask() (store.Subtask, bool) {
	subs := m.subtasks()
	if m.subtaskCursor < 0 || m.subtaskCursor >= len(subs) {
		return store.Subtask{}, false
	}
	return subs[m.subtaskCursor], true
}

func (m *Model) clampSubtaskCursor() {
	n := len(m.subtasks())
	if m.subtaskCursor >= n {
		m.subtaskCursor = n - 1
	}
	if m.subtaskCursor < 0 {
		m.subtaskCursor = 0
	}
}
