package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"stm/pkg/quickadd"
	"stm/pkg/store"
	"stm/pkg/utils"
)

// undoExpiredMsg hides the undo snackbar for the delete numbered seq
type undoExpiredMsg struct {
	seq int
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		return m, m.handleTick(msg)

	case undoExpiredMsg:
		if msg.seq == m.undoSeq {
			m.undoID = ""
		}
		return m, nil

	case tea.KeyMsg:
		// any key dismisses the last error and notice
		m.err = nil
		m.notice = ""

		switch m.mode {
		case NormalMode:
			if m.viewMode == TrashView {
				cmd = m.updateTrash(msg)
			} else {
				cmd = m.updateNormal(msg)
			}
			if cmd != nil || m.mode != NormalMode {
				return m, cmd
			}

		case QuickAddMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.quickInput.Reset()
				return m, nil
			case "enter":
				text := m.quickInput.Value()
				if strings.TrimSpace(text) != "" {
					parsed := quickadd.Parse(text, m.now())
					if id := m.store.CreateTask(parsed.NewTask()); id != "" {
						utils.L().Debug("task added from quick add")
					}
				}
				m.quickInput.Reset()
				m.mode = NormalMode
				m.loadTasks()
				return m, nil
			}
			m.quickInput, cmd = m.quickInput.Update(msg)
			return m, cmd

		case EditMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.editingID = ""
				return m, nil
			case "tab", "down":
				m.focusInput(m.activeInput + 1)
				return m, nil
			case "shift+tab", "up":
				m.focusInput(m.activeInput - 1)
				return m, nil
			case "enter":
				if m.activeInput < fieldCount-1 {
					m.focusInput(m.activeInput + 1)
					return m, nil
				}
				m.submitEdit()
				return m, nil
			}
			m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
			return m, cmd

		case SearchMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.filter.Query = ""
				m.loadTasks()
				return m, nil
			case "enter":
				m.filter.Query = m.searchInput.Value()
				utils.Log("Filtering tasks by: %s", m.filter.Query)
				m.mode = NormalMode
				m.loadTasks()
				return m, nil
			}
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd

		case DeleteConfirmMode:
			switch msg.String() {
			case "y", "Y":
				if m.editingID != "" {
					utils.Log("Deleting task ID: %s", m.editingID)
					m.finishFocusOn(m.editingID)
					m.store.DeleteTask(m.editingID)
					m.loadTasks()
				}
				m.mode = NormalMode
				m.editingID = ""
			case "n", "N", "esc":
				m.mode = NormalMode
				m.editingID = ""
			}
			return m, nil

		case SubtaskMode:
			return m, m.updateSubtasks(msg)

		case SubtaskInputMode:
			switch msg.String() {
			case "esc":
				m.mode = SubtaskMode
				m.subtaskInput.Reset()
				return m, nil
			case "enter":
				title := m.subtaskInput.Value()
				if m.renamingID != "" {
					m.store.UpdateSubtaskTitle(m.subtaskTaskID, m.renamingID, title)
				} else if m.store.AddSubtask(m.subtaskTaskID, title) != "" {
					m.subtaskCursor = len(m.subtasks()) - 1
				}
				m.subtaskInput.Reset()
				m.renamingID = ""
				m.mode = SubtaskMode
				m.loadTasks()
				return m, nil
			}
			m.subtaskInput, cmd = m.subtaskInput.Update(msg)
			return m, cmd

		case FocusMode:
			return m, m.updateFocus(msg)

		case StatsMode:
			switch {
			case key.Matches(msg, m.keyMap.Confirm):
				stats := store.Analyze(m.store.Tasks())
				m.store.SetProcrastinationCoeff(stats.ProcrastinationCoeff)
				m.notice = fmt.Sprintf("Procrastination coefficient set to %.2f", m.store.Settings().ProcrastinationCoeff)
				m.mode = NormalMode
				m.loadTasks()
			case key.Matches(msg, m.keyMap.Back), key.Matches(msg, m.keyMap.ShowStats):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				m.stopFocus()
				return m, tea.Quit
			}
			return m, nil

		case HelpViewMode:
			switch {
			case key.Matches(msg, m.keyMap.Back), key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				m.stopFocus()
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(max(msg.Height-8, 3))
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-10, 10), 80)
	}

	// Only update table in normal mode
	if m.mode == NormalMode {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateNormal handles keys on the task list. It returns a command when the
// key was consumed and needs one.
func (m *Model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	id := m.selectedID()

	switch {
	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.QuitApp):
		m.stopFocus()
		return tea.Quit

	case key.Matches(msg, m.keyMap.Back):
		m.filter = store.Filter{}
		m.loadTasks()

	case key.Matches(msg, m.keyMap.QuickAdd):
		m.mode = QuickAddMode
		m.quickInput.Reset()
		m.quickInput.Focus()

	case key.Matches(msg, m.keyMap.EditTask):
		if task, ok := m.store.Task(id); ok {
			m.mode = EditMode
			m.editingID = id
			m.fillEditForm(task)
		}

	case key.Matches(msg, m.keyMap.ToggleDone):
		if task, ok := m.store.Task(id); ok {
			m.store.ToggleDone(id, !task.Done())
			m.loadTasks()
		}

	case key.Matches(msg, m.keyMap.CyclePriority):
		if task, ok := m.store.Task(id); ok {
			p := nextPriority(task.Priority)
			m.store.UpdateTask(id, store.TaskPatch{Priority: &p})
			m.loadTasks()
		}

	case key.Matches(msg, m.keyMap.DeleteTask):
		if _, ok := m.store.Task(id); ok {
			m.finishFocusOn(id)
			m.store.SoftDeleteTask(id)
			m.loadTasks()
			m.undoID = id
			m.undoSeq++
			seq := m.undoSeq
			return tea.Tick(UndoWindow, func(_ time.Time) tea.Msg {
				return undoExpiredMsg{seq: seq}
			})
		}

	case key.Matches(msg, m.keyMap.HardDelete):
		if id != "" {
			m.mode = DeleteConfirmMode
			m.editingID = id
		}

	case key.Matches(msg, m.keyMap.Undo):
		if m.undoID != "" {
			m.store.RestoreTask(m.undoID)
			m.undoID = ""
			m.loadTasks()
		}

	case key.Matches(msg, m.keyMap.OpenSubtasks):
		if _, ok := m.store.Task(id); ok {
			m.mode = SubtaskMode
			m.subtaskTaskID = id
			m.subtaskCursor = 0
		}

	case key.Matches(msg, m.keyMap.ToggleTrash):
		m.viewMode = TrashView
		m.table.SetCursor(0)
		m.loadTasks()

	case key.Matches(msg, m.keyMap.SearchTasks):
		m.mode = SearchMode
		m.searchInput.SetValue(m.filter.Query)
		m.searchInput.Focus()

	case key.Matches(msg, m.keyMap.FilterPriority):
		m.filter.Priority = nextPriorityFilter(m.filter.Priority)
		m.loadTasks()

	case key.Matches(msg, m.keyMap.ShowCompleted):
		m.showCompleted = !m.showCompleted
		m.loadTasks()

	case key.Matches(msg, m.keyMap.ToggleGroupBy):
		m.groupBy = (m.groupBy + 1) % groupByCount
		m.loadTasks()

	case key.Matches(msg, m.keyMap.StartFocus):
		if id != "" {
			return m.startFocus(id)
		}
		if m.engine != nil {
			m.mode = FocusMode
		}

	case key.Matches(msg, m.keyMap.ShowStats):
		m.mode = StatsMode
	}
	return nil
}

// updateTrash handles keys on the trash list
func (m *Model) updateTrash(msg tea.KeyMsg) tea.Cmd {
	id := m.selectedID()

	switch {
	case key.Matches(msg, m.keyMap.QuitApp):
		m.stopFocus()
		return tea.Quit

	case key.Matches(msg, m.keyMap.ToggleTrash), key.Matches(msg, m.keyMap.Back):
		m.viewMode = TasksView
		m.table.SetCursor(0)
		m.loadTasks()

	case key.Matches(msg, m.keyMap.RestoreTask):
		if id != "" {
			m.store.RestoreTask(id)
			m.loadTasks()
		}

	case key.Matches(msg, m.keyMap.HardDelete):
		if id != "" {
			m.mode = DeleteConfirmMode
			m.editingID = id
		}

	case key.Matches(msg, m.keyMap.PurgeTrash):
		before := len(m.store.Trash())
		m.store.PurgeExpiredTrash()
		m.notice = fmt.Sprintf("Purged %d task(s)", before-len(m.store.Trash()))
		m.loadTasks()

	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode
	}
	return nil
}

// updateSubtasks handles keys on the subtask list of one task
func (m *Model) updateSubtasks(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.QuitApp):
		m.stopFocus()
		return tea.Quit

	case key.Matches(msg, m.keyMap.Back):
		m.mode = NormalMode
		m.subtaskTaskID = ""
		m.loadTasks()

	case key.Matches(msg, m.keyMap.Up):
		m.subtaskCursor--
		m.clampSubtaskCursor()

	case key.Matches(msg, m.keyMap.Down):
		m.subtaskCursor++
		m.clampSubtaskCursor()

	case key.Matches(msg, m.keyMap.QuickAdd):
		m.mode = SubtaskInputMode
		m.renamingID = ""
		m.subtaskInput.Reset()
		m.subtaskInput.Focus()

	case key.Matches(msg, m.keyMap.EditTask):
		if sub, ok := m.selectedSubtask(); ok {
			m.mode = SubtaskInputMode
			m.renamingID = sub.ID
			m.subtaskInput.SetValue(sub.Title)
			m.subtaskInput.Focus()
		}

	case key.Matches(msg, m.keyMap.ToggleDone):
		if sub, ok := m.selectedSubtask(); ok {
			m.store.ToggleSubtask(m.subtaskTaskID, sub.ID, !sub.Done)
		}

	case key.Matches(msg, m.keyMap.DeleteTask):
		if sub, ok := m.selectedSubtask(); ok {
			m.store.DeleteSubtask(m.subtaskTaskID, sub.ID)
			m.clampSubtaskCursor()
		}
	}
	return nil
}

// submitEdit applies the edit form to the task being edited
func (m *Model) submitEdit() {
	patch, err := m.editPatch()
	if err != nil {
		m.err = err
		return
	}
	m.store.UpdateTask(m.editingID, patch)
	m.mode = NormalMode
	m.editingID = ""
	m.loadTasks()
}
