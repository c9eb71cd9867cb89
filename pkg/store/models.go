package store

import (
	"time"
)

// StorageKey is the namespaced key the snapshot is persisted under
const StorageKey = "student-time-manager:v1"

// TrashRetention is how long a soft-deleted task stays recoverable
const TrashRetention = 7 * 24 * time.Hour

// Procrastination coefficient bounds
const (
	MinProcrastinationCoeff     = 0.5
	MaxProcrastinationCoeff     = 5.0
	DefaultProcrastinationCoeff = 1.0
)

// Priority of a task, persisted as 1..3
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Status of a task
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Subtask is a checklist entry owned by a Task
type Subtask struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Done  bool   `json:"done" yaml:"done"`
}

// Task represents a single unit of trackable work
type Task struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	Priority         Priority   `json:"priority" yaml:"priority"`
	Status           Status     `json:"status" yaml:"status"`
	DueAt            *time.Time `json:"dueAt,omitempty" yaml:"due_at,omitempty"`
	ScheduledAt      *time.Time `json:"scheduledAt,omitempty" yaml:"scheduled_at,omitempty"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty" yaml:"estimated_minutes,omitempty"`
	ActualMinutes    int        `json:"actualMinutes" yaml:"actual_minutes"`
	Tags             []string   `json:"tags" yaml:"tags"`
	Subtasks         []Subtask  `json:"subtasks" yaml:"subtasks"`
	CreatedAt        time.Time  `json:"createdAt" yaml:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" yaml:"updated_at"`
	CompletedAt      *time.Time `json:"completedAt,omitempty" yaml:"completed_at,omitempty"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty" yaml:"deleted_at,omitempty"`
}

// Done reports whether the task is completed
func (t Task) Done() bool {
	return t.Status == StatusDone
}

// Trashed reports whether the task is soft-deleted
func (t Task) Trashed() bool {
	return t.DeletedAt != nil
}

// clone returns a copy that shares no slices or pointers with t
func (t Task) clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	c.DueAt = cloneTime(t.DueAt)
	c.ScheduledAt = cloneTime(t.ScheduledAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.DeletedAt = cloneTime(t.DeletedAt)
	if t.EstimatedMinutes != nil {
		v := *t.EstimatedMinutes
		c.EstimatedMinutes = &v
	}
	return c
}

// Session records one continuous interval of work on a task
type Session struct {
	ID        string     `json:"id" yaml:"id"`
	TaskID    string     `json:"taskId" yaml:"task_id"`
	StartedAt time.Time  `json:"startedAt" yaml:"started_at"`
	EndedAt   *time.Time `json:"endedAt,omitempty" yaml:"ended_at,omitempty"`
	Minutes   int        `json:"minutes" yaml:"minutes"`
}

// Open reports whether the session has not been ended yet
func (s Session) Open() bool {
	return s.EndedAt == nil
}

// Settings holds user preferences
type Settings struct {
	ProcrastinationCoeff float64 `json:"procrastinationCoeff" yaml:"procrastination_coeff"`
}

// DefaultSettings returns the settings used when nothing was persisted
func DefaultSettings() Settings {
	return Settings{ProcrastinationCoeff: DefaultProcrastinationCoeff}
}

// State is the full persisted snapshot
type State struct {
	Tasks    []Task    `json:"tasks"`
	Sessions []Session `json:"sessions"`
	Settings Settings  `json:"settings"`
	Trash    []Task    `json:"trash,omitempty"`
}

// EmptyState returns a snapshot with empty containers and default settings
func EmptyState() State {
	return State{
		Tasks:    []Task{},
		Sessions: []Session{},
		Settings: DefaultSettings(),
		Trash:    []Task{},
	}
}

// NewTask is the creation payload for CreateTask
type NewTask struct {
	Title            string
	Description      string
	Priority         Priority
	DueAt            *time.Time
	ScheduledAt      *time.Time
	EstimatedMinutes *int
	ActualMinutes    int
	Tags             []string
}

// TaskPatch holds a partial update; nil fields are left untouched
type TaskPatch struct {
	Title            *string
	Description      *string
	Priority         *Priority
	Status           *Status
	DueAt            *time.Time
	ClearDueAt       bool
	ScheduledAt      *time.Time
	ClearScheduledAt bool
	EstimatedMinutes *int
	ActualMinutes    *int
	Tags             []string
	SetTags          bool
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func clampCoeff(v float64) float64 {
	if v != v { // NaN
		return DefaultProcrastinationCoeff
	}
	if v < MinProcrastinationCoeff {
		return MinProcrastinationCoeff
	}
	if v > MaxProcrastinationCoeff {
		return MaxProcrastinationCoeff
	}
	return v
}
