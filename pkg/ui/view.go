package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stm/pkg/quickadd"
	"stm/pkg/store"
	"stm/pkg/timer"
	"stm/pkg/utils"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		if m.viewMode == TrashView {
			sb.WriteString(m.titleBar(" Trash ", m.styles.ErrorColor))
		} else {
			sb.WriteString(m.titleBar(" STM - Tasks ", m.styles.AccentColor))
		}
		sb.WriteString("\n\n")
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(m.viewInfo()))
		sb.WriteString("\n")
		if line := m.timerLine(); line != "" {
			sb.WriteString(line)
			sb.WriteString("\n")
		}

	case QuickAddMode:
		sb.WriteString(m.titleBar(" Quick Add ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Title with optional due day, time, ~estimate and #tags:\n\n")
		sb.WriteString(m.quickInput.View())
		if preview := m.quickAddPreview(); preview != "" {
			sb.WriteString("\n\n")
			sb.WriteString(m.muted(preview))
		}

	case EditMode:
		sb.WriteString(m.titleBar(" Edit Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case SearchMode:
		sb.WriteString(m.titleBar(" Filter Tasks ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Show tasks whose title or tags contain:\n\n")
		sb.WriteString(m.searchInput.View())

	case DeleteConfirmMode:
		sb.WriteString(m.titleBar(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")
		if task, ok := m.store.Resolve(m.editingID); ok {
			sb.WriteString("Delete this task permanently? It will not go to the trash.\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", task.Title))
			if task.Description != "" {
				sb.WriteString(fmt.Sprintf("Description: %s\n", task.Description))
			}
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case SubtaskMode, SubtaskInputMode:
		sb.WriteString(m.renderSubtasks())

	case FocusMode:
		sb.WriteString(m.renderFocus())

	case StatsMode:
		sb.WriteString(m.renderStats())

	case HelpViewMode:
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")
		sb.WriteString(m.help.FullHelpView(m.keyMap.FullHelp()))
		sb.WriteString("\n")
	}

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Render(m.notice))
	}

	// Error message if any
	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.undoID != "" && m.mode == NormalMode {
		sb.WriteString("\n")
		sb.WriteString(m.snackbar())
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBar(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

// viewInfo summarizes the active filter and grouping
func (m Model) viewInfo() string {
	if m.viewMode == TrashView {
		return fmt.Sprintf("Trashed tasks are purged after %d days", int(store.TrashRetention.Hours()/24))
	}
	parts := []string{fmt.Sprintf("%d open", len(m.store.OpenTasks()))}
	if m.showCompleted {
		parts = append(parts, fmt.Sprintf("%d done", len(m.store.CompletedTasks())))
	}
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("filter: %q", m.filter.Query))
	}
	if m.filter.Priority != 0 {
		parts = append(parts, "priority: "+m.filter.Priority.String())
	}
	parts = append(parts, "grouped by "+m.groupBy.String())
	parts = append(parts, fmt.Sprintf("coeff %.2f", m.store.Settings().ProcrastinationCoeff))
	return strings.Join(parts, " | ")
}

// timerLine shows a background focus run in the list view
func (m Model) timerLine() string {
	if m.engine == nil {
		return ""
	}
	s := m.engine.Status()
	if s.State != timer.Running && s.State != timer.Paused {
		return ""
	}
	task, _ := m.store.Task(m.engine.TaskID())
	line := fmt.Sprintf("%s %s on %q (%s)", focusLabel(s, m.config.Timer.Plan()), utils.FormatClock(s.SegmentRemaining()), task.Title, s.State)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.FocusColor)).Render(line)
}

func (m Model) snackbar() string {
	title := ""
	for _, t := range m.store.Trash() {
		if t.ID == m.undoID {
			title = t.Title
		}
	}
	msg := fmt.Sprintf(" Moved %q to trash. Press %s to undo ", title, m.keyMap.Undo.Help().Key)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.BorderColor)).
		Render(msg)
}

func (m Model) quickAddPreview() string {
	text := strings.TrimSpace(m.quickInput.Value())
	if text == "" {
		return ""
	}
	task := store.Task{Priority: store.PriorityMedium}
	parsed := quickadd.Parse(text, m.now())
	task.Title = parsed.Title
	task.DueAt = parsed.DueAt
	task.EstimatedMinutes = parsed.EstimatedMinutes
	task.Tags = parsed.Tags
	return "→ " + m.taskRow(task)
}

// helpBar renders a status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}

	switch m.mode {
	case NormalMode:
		if m.viewMode == TrashView {
			addAction(m.keyMap.RestoreTask.Help().Key, "restore")
			addAction(m.keyMap.HardDelete.Help().Key, "delete")
			addAction(m.keyMap.PurgeTrash.Help().Key, "purge")
			addAction(m.keyMap.ToggleTrash.Help().Key, "back")
			addAction(m.keyMap.QuitApp.Help().Key, "quit")
		} else {
			return m.help.ShortHelpView(m.keyMap.ShortHelp())
		}

	case QuickAddMode, SearchMode, SubtaskInputMode:
		addAction("enter", "save")
		addAction("esc", "cancel")

	case EditMode:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case SubtaskMode:
		addAction(m.keyMap.QuickAdd.Help().Key, "add")
		addAction(m.keyMap.EditTask.Help().Key, "rename")
		addAction(m.keyMap.ToggleDone.Help().Key, "toggle")
		addAction(m.keyMap.DeleteTask.Help().Key, "delete")
		addAction(m.keyMap.Back.Help().Key, "back")

	case FocusMode:
		addAction(m.keyMap.PauseTimer.Help().Key, "pause/resume")
		addAction(m.keyMap.FinishTimer.Help().Key, "finish")
		addAction(m.keyMap.ResetTimer.Help().Key, "reset")
		addAction(m.keyMap.Back.Help().Key, "back to list")

	case StatsMode:
		addAction(m.keyMap.Confirm.Help().Key, "apply coefficient")
		addAction(m.keyMap.Back.Help().Key, "back")

	case HelpViewMode:
		addAction(m.keyMap.Back.Help().Key, "back")
		addAction(m.keyMap.QuitApp.Help().Key, "quit")
	}

	return strings.Join(actions, separator)
}

// renderForm renders the input form for editing tasks
func (m Model) renderForm() string {
	labels := [fieldCount]string{
		fieldTitle:    "Title:",
		fieldDesc:     "Description:",
		fieldDue:      "Due:",
		fieldEstimate: "Estimate (minutes):",
		fieldTags:     "Tags:",
	}

	var sb strings.Builder
	for i, input := range m.inputs {
		sb.WriteString(labels[i])
		sb.WriteString("\n")
		sb.WriteString(input.View())
		if i < len(m.inputs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func (m Model) renderSubtasks() string {
	var sb strings.Builder
	task, ok := m.store.Task(m.subtaskTaskID)
	if !ok {
		return "Task no longer exists."
	}

	sb.WriteString(m.titleBar(" Subtasks: "+task.Title+" ", m.styles.AccentColor))
	sb.WriteString("\n\n")

	if len(task.Subtasks) == 0 {
		sb.WriteString(m.muted("No subtasks yet."))
		sb.WriteString("\n")
	}
	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor))
	for i, sub := range task.Subtasks {
		box := "[ ]"
		if sub.Done {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, sub.Title)
		if i == m.subtaskCursor && m.mode == SubtaskMode {
			line = selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if m.mode == SubtaskInputMode {
		sb.WriteString("\n")
		if m.renamingID != "" {
			sb.WriteString("Rename subtask:\n")
		} else {
			sb.WriteString("New subtask:\n")
		}
		sb.WriteString(m.subtaskInput.View())
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderFocus() string {
	var sb strings.Builder
	if m.engine == nil {
		return "No focus session."
	}
	s := m.engine.Status()
	task, _ := m.store.Task(m.engine.TaskID())

	color := m.styles.FocusColor
	if s.Phase == timer.PhaseBreak && s.State != timer.Finished {
		color = m.styles.BreakColor
	}
	sb.WriteString(m.titleBar(" Focus: "+task.Title+" ", color))
	sb.WriteString("\n\n")

	clock := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).
		Render(utils.FormatClock(s.SegmentRemaining()))
	sb.WriteString(fmt.Sprintf("%s  %s  (%s)\n\n", focusLabel(s, m.config.Timer.Plan()), clock, s.State))

	sb.WriteString(m.progress.ViewAs(s.Percent() / 100))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Used %s of %s, remaining %s\n",
		utils.FormatClock(s.Used()), utils.FormatClock(s.Total), utils.FormatClock(s.Remaining())))
	sb.WriteString(fmt.Sprintf("Focus so far: %s across %d completed segment(s)\n",
		utils.FormatClock(s.FocusElapsed), s.FocusCount))
	if s.State == timer.Finished {
		sb.WriteString(fmt.Sprintf("Credited %d min. Task total: %d min\n", s.CreditedMinutes, task.ActualMinutes))
	}
	return sb.String()
}

func (m Model) renderStats() string {
	var sb strings.Builder
	stats := store.Analyze(m.store.Tasks())

	sb.WriteString(m.titleBar(" Stats ", m.styles.AccentColor))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Completed tasks:       %d\n", stats.Completed))
	sb.WriteString(fmt.Sprintf("Average estimate:      %d min\n", stats.AvgEstimateMinutes))
	sb.WriteString(fmt.Sprintf("Average actual:        %d min\n", stats.AvgActualMinutes))
	sb.WriteString(fmt.Sprintf("Average lateness:      %d min\n", stats.AvgLatenessMinutes))
	sb.WriteString(fmt.Sprintf("Suggested coefficient: %.2f\n", stats.ProcrastinationCoeff))
	sb.WriteString(fmt.Sprintf("Current coefficient:   %.2f\n", m.store.Settings().ProcrastinationCoeff))
	return sb.String()
}
