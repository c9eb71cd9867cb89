package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"stm/pkg/timer"
	"stm/pkg/utils"
)

// tickMsg advances the focus timer. seq ties it to one run of the tick loop
// so a pause and resume never leaves two loops ticking.
type tickMsg struct {
	seq int
}

func tick(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

// startFocus replaces any current run with a fresh one on taskID and starts it.
// An unfinished run on another task is finished first so its focus time is credited.
func (m *Model) startFocus(taskID string) tea.Cmd {
	task, ok := m.store.Task(taskID)
	if !ok {
		return nil
	}
	if m.engine != nil {
		if m.engine.TaskID() == task.ID && m.engine.Status().State != timer.Finished {
			m.mode = FocusMode
			return m.resumeFocus()
		}
		m.engine.Finish()
	}

	m.engine = timer.New(m.store, task.ID, m.focusMinutes,
		timer.WithPlan(m.config.Timer.Plan()),
		timer.WithClock(m.clock),
		timer.WithLogger(utils.L()),
	)
	m.mode = FocusMode
	return m.resumeFocus()
}

// resumeFocus starts the engine and a new tick loop
func (m *Model) resumeFocus() tea.Cmd {
	m.engine.Start()
	m.loadTasks()
	if m.engine.Status().State != timer.Running {
		return nil
	}
	m.tickSeq++
	return tick(m.tickSeq)
}

// handleTick advances the engine and re-arms the loop while it runs
func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if m.engine == nil || msg.seq != m.tickSeq {
		return nil
	}
	m.engine.Tick()
	if m.engine.Status().State != timer.Running {
		// a finish credits minutes to the task
		m.loadTasks()
		return nil
	}
	return tick(m.tickSeq)
}

// stopFocus pauses a running timer so no session stays open after exit
func (m *Model) stopFocus() {
	if m.engine != nil {
		m.engine.Pause()
	}
}

// finishFocusOn finishes the run on taskID, if any, so its time is credited
// while the task is still active
func (m *Model) finishFocusOn(taskID string) {
	if m.engine != nil && m.engine.TaskID() == taskID {
		m.engine.Finish()
	}
}

func (m *Model) updateFocus(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.QuitApp):
		m.stopFocus()
		return tea.Quit

	case key.Matches(msg, m.keyMap.Back):
		// the timer keeps running in the background
		m.mode = NormalMode
		m.loadTasks()

	case key.Matches(msg, m.keyMap.PauseTimer):
		switch m.engine.Status().State {
		case timer.Running:
			m.engine.Pause()
			m.loadTasks()
		case timer.Idle, timer.Paused:
			return m.resumeFocus()
		}

	case key.Matches(msg, m.keyMap.FinishTimer):
		m.engine.Finish()
		m.loadTasks()
		status := m.engine.Status()
		m.notice = fmt.Sprintf("Session finished: %d min credited", status.CreditedMinutes)

	case key.Matches(msg, m.keyMap.ResetTimer):
		m.engine.ResetAll(m.focusMinutes)
		m.tickSeq++
		m.loadTasks()
	}
	return nil
}

// focusLabel describes the current segment, e.g. "Focus 2" or "Long break"
func focusLabel(s timer.Status, plan timer.Plan) string {
	switch {
	case s.State == timer.Finished:
		return "Done"
	case s.Phase == timer.PhaseFocus:
		return fmt.Sprintf("Focus %d", s.FocusCount+1)
	case plan.LongBreakEvery > 0 && s.FocusCount%plan.LongBreakEvery == 0:
		return "Long break"
	default:
		return "Short break"
	}
}
