package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Encode serializes a snapshot for persistence
func Encode(state State) ([]byte, error) {
	return json.Marshal(state)
}

// rawState mirrors State with every field left undecoded so that one
// malformed field does not take the others down with it
type rawState struct {
	Tasks    json.RawMessage `json:"tasks"`
	Sessions json.RawMessage `json:"sessions"`
	Settings json.RawMessage `json:"settings"`
	Trash    json.RawMessage `json:"trash"`
}

// Decode parses a persisted snapshot. It never fails: absent or malformed
// fields fall back to empty containers or default settings, and individual
// malformed entries are dropped. Trashed tasks missing their deletion
// timestamp are stamped with now so they age out normally.
func Decode(data []byte, now time.Time) State {
	state := EmptyState()

	var raw rawState
	if len(data) == 0 || json.Unmarshal(data, &raw) != nil {
		return state
	}

	// one id set across both lists: an id already active is dropped from the trash
	seen := make(map[string]bool)
	state.Tasks = decodeTasks(raw.Tasks, seen)
	for i := range state.Tasks {
		state.Tasks[i].DeletedAt = nil
	}

	state.Trash = decodeTasks(raw.Trash, seen)
	for i := range state.Trash {
		if state.Trash[i].DeletedAt == nil {
			at := now
			state.Trash[i].DeletedAt = &at
		}
	}

	state.Sessions = decodeSessions(raw.Sessions)

	var settings Settings
	if len(raw.Settings) > 0 && json.Unmarshal(raw.Settings, &settings) == nil && settings.ProcrastinationCoeff > 0 {
		state.Settings.ProcrastinationCoeff = clampCoeff(settings.ProcrastinationCoeff)
	}

	return state
}

func decodeTasks(data json.RawMessage, seen map[string]bool) []Task {
	tasks := []Task{}
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return tasks
	}

	for _, item := range items {
		var t Task
		if json.Unmarshal(item, &t) != nil {
			continue
		}
		t.Title = strings.TrimSpace(t.Title)
		if t.ID == "" || t.Title == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		normalizeTask(&t)
		tasks = append(tasks, t)
	}
	return tasks
}

func normalizeTask(t *Task) {
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if !t.Status.Valid() {
		t.Status = StatusTodo
	}
	if t.ActualMinutes < 0 {
		t.ActualMinutes = 0
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	subs := make([]Subtask, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		if s.ID != "" {
			subs = append(subs, s)
		}
	}
	t.Subtasks = subs
	if t.Status != StatusDone {
		t.CompletedAt = nil
	}
}

func decodeSessions(data json.RawMessage) []Session {
	sessions := []Session{}
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return sessions
	}
	for _, item := range items {
		var s Session
		if json.Unmarshal(item, &s) != nil || s.ID == "" {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions
}
