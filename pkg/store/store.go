package store

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Persister is the durable key-value slot a Store reads on startup and
// writes after every change
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Clock supplies the current instant
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator overrides identity generation
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for dispatch tracing and persistence failures
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store owns the canonical snapshot. Every mutation goes through Dispatch,
// which runs the pure Reduce transition and persists the result.
// A Store is meant to be driven from a single goroutine.
type Store struct {
	state     State
	persister Persister
	clock     Clock
	newID     func() string
	logger    *zap.Logger

	open      []Task
	completed []Task

	// saved is the last snapshot known to be in the slot
	saved []byte
	// loadErr is set when the slot could not be read; nothing is saved then
	loadErr error
}

// New builds a store and synchronously loads the persisted snapshot before
// returning, so the first write can never clobber existing data. Expired
// trash is purged once here.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		clock:     systemClock{},
		newID:     uuid.NewString,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = s.load()
	s.refreshViews()
	s.PurgeExpiredTrash()
	return s
}

func (s *Store) load() State {
	if s.persister == nil {
		return EmptyState()
	}
	data, err := s.persister.Load()
	if err != nil {
		s.loadErr = err
		s.logger.Warn("failed to load snapshot, starting empty and not saving", zap.Error(err))
		return EmptyState()
	}
	state := Decode(data, s.clock.Now())
	// the slot already holds this state, so only a real change rewrites it
	s.saved, _ = Encode(state)
	s.logger.Debug("loaded snapshot",
		zap.Int("tasks", len(state.Tasks)),
		zap.Int("sessions", len(state.Sessions)),
		zap.Int("trash", len(state.Trash)))
	return state
}

// LoadError returns the error the persister reported on startup, if any.
// While it is set the store works in memory only.
func (s *Store) LoadError() error {
	return s.loadErr
}

// Dispatch applies an action and persists the new snapshot if it changed
func (s *Store) Dispatch(action Action) {
	s.state = Reduce(s.state, action)
	s.refreshViews()
	s.logger.Debug("dispatch", zap.String("action", action.actionName()))
	s.persist()
}

func (s *Store) persist() {
	if s.persister == nil || s.loadErr != nil {
		return
	}
	data, err := Encode(s.state)
	if err != nil {
		s.logger.Warn("failed to encode snapshot", zap.Error(err))
		return
	}
	if bytes.Equal(data, s.saved) {
		return
	}
	if err := s.persister.Save(data); err != nil {
		s.logger.Warn("failed to persist snapshot", zap.Error(err))
		return
	}
	s.saved = data
}

func (s *Store) refreshViews() {
	s.open = s.open[:0:0]
	s.completed = s.completed[:0:0]
	for _, t := range s.state.Tasks {
		if t.Done() {
			s.completed = append(s.completed, t)
		} else {
			s.open = append(s.open, t)
		}
	}
}

// CreateTask builds a task from the payload and prepends it to the active
// list. It returns the new id, or "" when the title is blank.
func (s *Store) CreateTask(p NewTask) string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return ""
	}
	now := s.clock.Now()
	priority := p.Priority
	if !priority.Valid() {
		priority = PriorityMedium
	}
	actual := p.ActualMinutes
	if actual < 0 {
		actual = 0
	}
	task := Task{
		ID:               s.newID(),
		Title:            title,
		Description:      strings.TrimSpace(p.Description),
		Priority:         priority,
		Status:           StatusTodo,
		DueAt:            cloneTime(p.DueAt),
		ScheduledAt:      cloneTime(p.ScheduledAt),
		EstimatedMinutes: p.EstimatedMinutes,
		ActualMinutes:    actual,
		Tags:             normalizeTags(p.Tags),
		Subtasks:         []Subtask{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.Dispatch(CreateTask{Task: task})
	return task.ID
}

// UpdateTask merges patch onto the task with the given id
func (s *Store) UpdateTask(id string, patch TaskPatch) {
	s.Dispatch(UpdateTask{ID: id, Patch: patch, At: s.clock.Now()})
}

// DeleteTask removes a task permanently, bypassing the trash
func (s *Store) DeleteTask(id string) {
	s.Dispatch(DeleteTask{ID: id})
}

// SoftDeleteTask moves a task to the trash
func (s *Store) SoftDeleteTask(id string) {
	s.Dispatch(SoftDeleteTask{ID: id, At: s.clock.Now()})
}

// RestoreTask moves a task out of the trash
func (s *Store) RestoreTask(id string) {
	s.Dispatch(RestoreTask{ID: id, At: s.clock.Now()})
}

// PurgeExpiredTrash drops trashed tasks deleted more than TrashRetention ago
func (s *Store) PurgeExpiredTrash() {
	cutoff := s.clock.Now().Add(-TrashRetention)
	expired := 0
	for _, t := range s.state.Trash {
		if t.DeletedAt != nil && t.DeletedAt.Before(cutoff) {
			expired++
		}
	}
	if expired == 0 {
		return
	}
	s.Dispatch(PurgeTrash{Cutoff: cutoff})
	s.logger.Info("purged expired trash", zap.Int("count", expired))
}

// ToggleDone marks a task done or reopens it
func (s *Store) ToggleDone(id string, done bool) {
	s.Dispatch(ToggleDone{ID: id, Done: done, At: s.clock.Now()})
}

// AddSubtask appends a subtask and returns its id, or "" if nothing was added
func (s *Store) AddSubtask(taskID, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	if _, ok := s.Task(taskID); !ok {
		return ""
	}
	sub := Subtask{ID: s.newID(), Title: title}
	s.Dispatch(AddSubtask{TaskID: taskID, Subtask: sub, At: s.clock.Now()})
	return sub.ID
}

// ToggleSubtask sets the done flag of a subtask
func (s *Store) ToggleSubtask(taskID, subID string, done bool) {
	s.Dispatch(ToggleSubtask{TaskID: taskID, SubtaskID: subID, Done: done, At: s.clock.Now()})
}

// UpdateSubtaskTitle renames a subtask
func (s *Store) UpdateSubtaskTitle(taskID, subID, title string) {
	s.Dispatch(RenameSubtask{TaskID: taskID, SubtaskID: subID, Title: title, At: s.clock.Now()})
}

// DeleteSubtask removes a subtask
func (s *Store) DeleteSubtask(taskID, subID string) {
	s.Dispatch(DeleteSubtask{TaskID: taskID, SubtaskID: subID, At: s.clock.Now()})
}

// StartSession opens a focus session for a task and returns its id
func (s *Store) StartSession(taskID string) string {
	session := Session{
		ID:        s.newID(),
		TaskID:    taskID,
		StartedAt: s.clock.Now(),
	}
	s.Dispatch(StartSession{Session: session})
	return session.ID
}

// EndSession closes a session; ended or unknown sessions are left alone
func (s *Store) EndSession(sessionID string) {
	s.Dispatch(EndSession{SessionID: sessionID, At: s.clock.Now()})
}

// SetProcrastinationCoeff stores v clamped to the allowed range
func (s *Store) SetProcrastinationCoeff(v float64) {
	s.Dispatch(UpdateSettings{ProcrastinationCoeff: v})
}

// State returns the current snapshot
func (s *Store) State() State {
	return s.state
}

// Settings returns the current settings
func (s *Store) Settings() Settings {
	return s.state.Settings
}

// Tasks returns the active list, newest first
func (s *Store) Tasks() []Task {
	return s.state.Tasks
}

// OpenTasks returns active tasks that are not done
func (s *Store) OpenTasks() []Task {
	return s.open
}

// CompletedTasks returns active tasks that are done
func (s *Store) CompletedTasks() []Task {
	return s.completed
}

// Trash returns soft-deleted tasks, most recently deleted first
func (s *Store) Trash() []Task {
	return s.state.Trash
}

// Sessions returns the focus session log in append order
func (s *Store) Sessions() []Session {
	return s.state.Sessions
}

// Task looks up an active task by id
func (s *Store) Task(id string) (Task, bool) {
	if i := indexOf(s.state.Tasks, id); i >= 0 {
		return s.state.Tasks[i], true
	}
	return Task{}, false
}

// Resolve finds an active or trashed task whose id starts with prefix.
// It reports false when nothing or more than one task matches.
func (s *Store) Resolve(prefix string) (Task, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return Task{}, false
	}
	var found Task
	matches := 0
	for _, list := range [][]Task{s.state.Tasks, s.state.Trash} {
		for _, t := range list {
			if t.ID == prefix {
				return t, true
			}
			if strings.HasPrefix(t.ID, prefix) {
				found = t
				matches++
			}
		}
	}
	return found, matches == 1
}
