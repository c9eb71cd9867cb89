package store

import (
	"math"
	"strings"
	"time"
)

// Action is one of the closed set of mutations Reduce understands.
// Every timestamp an action needs is carried on the action itself so
// Reduce stays a pure function of its inputs.
type Action interface {
	actionName() string
}

// CreateTask prepends a fully built task to the active list
type CreateTask struct {
	Task Task
}

// UpdateTask merges a patch onto the task with the given id
type UpdateTask struct {
	ID    string
	Patch TaskPatch
	At    time.Time
}

// DeleteTask removes a task from the active list without going through the trash
type DeleteTask struct {
	ID string
}

// SoftDeleteTask moves a task from the active list to the trash
type SoftDeleteTask struct {
	ID string
	At time.Time
}

// RestoreTask moves a task from the trash back to the active list
type RestoreTask struct {
	ID string
	At time.Time
}

// PurgeTrash drops every trashed task deleted before Cutoff
type PurgeTrash struct {
	Cutoff time.Time
}

// ToggleDone marks a task done or back to todo
type ToggleDone struct {
	ID   string
	Done bool
	At   time.Time
}

// AddSubtask appends a subtask to a task
type AddSubtask struct {
	TaskID  string
	Subtask Subtask
	At      time.Time
}

// ToggleSubtask sets the done flag of a subtask
type ToggleSubtask struct {
	TaskID    string
	SubtaskID string
	Done      bool
	At        time.Time
}

// RenameSubtask replaces the title of a subtask
type RenameSubtask struct {
	TaskID    string
	SubtaskID string
	Title     string
	At        time.Time
}

// DeleteSubtask removes a subtask from a task
type DeleteSubtask struct {
	TaskID    string
	SubtaskID string
	At        time.Time
}

// StartSession appends an open focus session
type StartSession struct {
	Session Session
}

// EndSession closes an open focus session
type EndSession struct {
	SessionID string
	At        time.Time
}

// UpdateSettings stores a new procrastination coefficient
type UpdateSettings struct {
	ProcrastinationCoeff float64
}

func (CreateTask) actionName() string     { return "create" }
func (UpdateTask) actionName() string     { return "update" }
func (DeleteTask) actionName() string     { return "delete" }
func (SoftDeleteTask) actionName() string { return "soft_delete" }
func (RestoreTask) actionName() string    { return "restore" }
func (PurgeTrash) actionName() string     { return "purge_trash" }
func (ToggleDone) actionName() string     { return "toggle_done" }
func (AddSubtask) actionName() string     { return "subtask:add" }
func (ToggleSubtask) actionName() string  { return "subtask:toggle" }
func (RenameSubtask) actionName() string  { return "subtask:rename" }
func (DeleteSubtask) actionName() string  { return "subtask:delete" }
func (StartSession) actionName() string   { return "session:start" }
func (EndSession) actionName() string     { return "session:end" }
func (UpdateSettings) actionName() string { return "settings:update" }

// Reduce applies action to state and returns the next snapshot.
// The input state is never modified. Actions that reference a missing
// task, subtask or session return an equivalent snapshot.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case CreateTask:
		next := state
		next.Tasks = append([]Task{a.Task.clone()}, state.Tasks...)
		return next

	case UpdateTask:
		return mapTask(state, a.ID, func(t *Task) {
			applyPatch(t, a.Patch, a.At)
			t.UpdatedAt = a.At
		})

	case DeleteTask:
		next := state
		next.Tasks = removeTask(state.Tasks, a.ID)
		return next

	case SoftDeleteTask:
		idx := indexOf(state.Tasks, a.ID)
		if idx < 0 {
			return state
		}
		t := state.Tasks[idx].clone()
		at := a.At
		t.DeletedAt = &at
		t.UpdatedAt = a.At
		next := state
		next.Tasks = removeTask(state.Tasks, a.ID)
		next.Trash = append([]Task{t}, state.Trash...)
		return next

	case RestoreTask:
		idx := indexOf(state.Trash, a.ID)
		if idx < 0 {
			return state
		}
		t := state.Trash[idx].clone()
		t.DeletedAt = nil
		t.UpdatedAt = a.At
		next := state
		next.Trash = removeTask(state.Trash, a.ID)
		next.Tasks = insertByCreated(state.Tasks, t)
		return next

	case PurgeTrash:
		kept := make([]Task, 0, len(state.Trash))
		for _, t := range state.Trash {
			if t.DeletedAt != nil && t.DeletedAt.Before(a.Cutoff) {
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) == len(state.Trash) {
			return state
		}
		next := state
		next.Trash = kept
		return next

	case ToggleDone:
		return mapTask(state, a.ID, func(t *Task) {
			if a.Done {
				if t.Status != StatusDone || t.CompletedAt == nil {
					at := a.At
					t.CompletedAt = &at
				}
				t.Status = StatusDone
			} else {
				t.Status = StatusTodo
				t.CompletedAt = nil
			}
			t.UpdatedAt = a.At
		})

	case AddSubtask:
		return mapTask(state, a.TaskID, func(t *Task) {
			t.Subtasks = append(t.Subtasks, a.Subtask)
			t.UpdatedAt = a.At
		})

	case ToggleSubtask:
		return mapSubtask(state, a.TaskID, a.SubtaskID, a.At, func(s *Subtask) {
			s.Done = a.Done
		})

	case RenameSubtask:
		title := strings.TrimSpace(a.Title)
		if title == "" {
			return state
		}
		return mapSubtask(state, a.TaskID, a.SubtaskID, a.At, func(s *Subtask) {
			s.Title = title
		})

	case DeleteSubtask:
		idx := indexOf(state.Tasks, a.TaskID)
		if idx < 0 || subtaskIndex(state.Tasks[idx].Subtasks, a.SubtaskID) < 0 {
			return state
		}
		return mapTask(state, a.TaskID, func(t *Task) {
			kept := t.Subtasks[:0]
			for _, s := range t.Subtasks {
				if s.ID != a.SubtaskID {
					kept = append(kept, s)
				}
			}
			t.Subtasks = kept
			t.UpdatedAt = a.At
		})

	case StartSession:
		next := state
		next.Sessions = append(append([]Session{}, state.Sessions...), a.Session)
		return next

	case EndSession:
		for i, s := range state.Sessions {
			if s.ID != a.SessionID {
				continue
			}
			if !s.Open() {
				return state
			}
			sessions := append([]Session{}, state.Sessions...)
			at := a.At
			sessions[i].EndedAt = &at
			sessions[i].Minutes = int(math.Round(at.Sub(s.StartedAt).Minutes()))
			if sessions[i].Minutes < 0 {
				sessions[i].Minutes = 0
			}
			next := state
			next.Sessions = sessions
			return next
		}
		return state

	case UpdateSettings:
		next := state
		next.Settings.ProcrastinationCoeff = clampCoeff(a.ProcrastinationCoeff)
		return next
	}
	return state
}

func applyPatch(t *Task, p TaskPatch, at time.Time) {
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			t.Title = title
		}
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil && p.Priority.Valid() {
		t.Priority = *p.Priority
	}
	if p.Status != nil && p.Status.Valid() {
		t.Status = *p.Status
		if t.Status == StatusDone && t.CompletedAt == nil {
			t.CompletedAt = &at
		} else if t.Status != StatusDone {
			t.CompletedAt = nil
		}
	}
	if p.ClearDueAt {
		t.DueAt = nil
	} else if p.DueAt != nil {
		t.DueAt = cloneTime(p.DueAt)
	}
	if p.ClearScheduledAt {
		t.ScheduledAt = nil
	} else if p.ScheduledAt != nil {
		t.ScheduledAt = cloneTime(p.ScheduledAt)
	}
	if p.EstimatedMinutes != nil {
		v := *p.EstimatedMinutes
		if v < 0 {
			v = 0
		}
		t.EstimatedMinutes = &v
	}
	if p.ActualMinutes != nil && *p.ActualMinutes >= 0 {
		t.ActualMinutes = *p.ActualMinutes
	}
	if p.SetTags {
		t.Tags = normalizeTags(p.Tags)
	}
}

// mapTask replaces the task with the given id by a modified clone
func mapTask(state State, id string, fn func(*Task)) State {
	idx := indexOf(state.Tasks, id)
	if idx < 0 {
		return state
	}
	tasks := append([]Task{}, state.Tasks...)
	t := tasks[idx].clone()
	fn(&t)
	tasks[idx] = t
	next := state
	next.Tasks = tasks
	return next
}

func mapSubtask(state State, taskID, subID string, at time.Time, fn func(*Subtask)) State {
	idx := indexOf(state.Tasks, taskID)
	if idx < 0 {
		return state
	}
	sidx := subtaskIndex(state.Tasks[idx].Subtasks, subID)
	if sidx < 0 {
		return state
	}
	return mapTask(state, taskID, func(t *Task) {
		fn(&t.Subtasks[sidx])
		t.UpdatedAt = at
	})
}

func indexOf(tasks []Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func subtaskIndex(subs []Subtask, id string) int {
	for i, s := range subs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func removeTask(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// insertByCreated puts t back before the first task created earlier than it,
// so a task restored into a newest-first list lands where it was removed from
func insertByCreated(tasks []Task, t Task) []Task {
	pos := len(tasks)
	for i, other := range tasks {
		if other.CreatedAt.Before(t.CreatedAt) {
			pos = i
			break
		}
	}
	out := make([]Task, 0, len(tasks)+1)
	out = append(out, tasks[:pos]...)
	out = append(out, t)
	out = append(out, tasks[pos:]...)
	return out
}

func normalizeTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
