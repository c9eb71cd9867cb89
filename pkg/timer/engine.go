package timer

import (
	"math"
	"time"

	"go.uber.org/zap"

	"stm/pkg/store"
)

// Tracker is the slice of the task store the engine drives
type Tracker interface {
	StartSession(taskID string) string
	EndSession(sessionID string)
	Task(id string) (store.Task, bool)
	UpdateTask(id string, patch store.TaskPatch)
}

// Phase of the current segment
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// State of the engine as a whole
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithPlan sets the segment plan
func WithPlan(p Plan) Option {
	return func(e *Engine) { e.plan = p }
}

// WithClock sets the time source
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger for phase transitions and credits
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine runs one focus timer against one task. It alternates focus and
// break segments until the total budget is used, holding at most one open
// session in the tracker at any time. All durations are tracked in whole
// seconds. The engine owns no goroutines: callers advance it with Tick.
type Engine struct {
	tracker Tracker
	clock   Clock
	plan    Plan
	logger  *zap.Logger
	taskID  string

	totalSeconds int
	totalElapsed int
	focusElapsed int

	phase      Phase
	focusCount int
	segTarget  int
	segElapsed int
	// segBase is the segment time accumulated before anchor
	segBase int
	anchor  time.Time

	sessionID string
	running   bool
	started   bool
	finished  bool

	credited        bool
	creditedMinutes int
}

// New creates an idle engine for taskID with a budget of totalMinutes
func New(tracker Tracker, taskID string, totalMinutes int, opts ...Option) *Engine {
	e := &Engine{
		tracker: tracker,
		clock:   SystemClock{},
		plan:    DefaultPlan(),
		logger:  zap.NewNop(),
		taskID:  taskID,
		phase:   PhaseFocus,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.totalSeconds = minutesToSeconds(totalMinutes)
	return e
}

// TaskID returns the task the engine credits
func (e *Engine) TaskID() string {
	return e.taskID
}

// Start begins or resumes counting. A new session is opened in the tracker.
// It does nothing while running or after finishing.
func (e *Engine) Start() {
	if e.running || e.finished {
		return
	}
	if !e.started {
		e.started = true
		if !e.beginSegment() {
			e.finish()
			return
		}
	}

	if e.sessionID == "" {
		e.sessionID = e.tracker.StartSession(e.taskID)
	}
	e.markInProgress()
	e.anchor = e.clock.Now()
	e.segBase = e.segElapsed
	e.running = true
	e.logger.Debug("timer started",
		zap.String("task", e.taskID),
		zap.String("phase", string(e.phase)),
		zap.Int("segment_elapsed", e.segElapsed),
		zap.Int("segment_target", e.segTarget))
}

// Tick recomputes elapsed time from the clock and performs any segment
// transitions that became due, however many, since the previous call.
func (e *Engine) Tick() {
	if !e.running {
		return
	}
	now := e.clock.Now()
	for e.running {
		delta := int(now.Sub(e.anchor) / time.Second)
		if delta < 0 {
			delta = 0
		}
		e.segElapsed = e.segBase + delta
		if e.segElapsed < e.segTarget {
			return
		}

		// the next segment starts at the instant this one hit its target
		e.anchor = e.anchor.Add(time.Duration(e.segTarget-e.segBase) * time.Second)
		e.commitSegment(e.segTarget)
		if e.totalElapsed >= e.totalSeconds {
			e.finish()
			return
		}
		e.togglePhase()
		if !e.beginSegment() {
			e.finish()
			return
		}
	}
}

// Pause stops counting and closes the open session. Progress within the
// current segment is kept for the next Start.
func (e *Engine) Pause() {
	if !e.running {
		return
	}
	e.Tick()
	if !e.running {
		return
	}
	e.segBase = e.segElapsed
	e.running = false
	e.closeSession()
	e.logger.Debug("timer paused",
		zap.String("task", e.taskID),
		zap.Int("segment_elapsed", e.segElapsed))
}

// Finish ends the run early, crediting focus time accumulated so far.
// It does nothing when idle or already finished.
func (e *Engine) Finish() {
	if e.finished || !e.started {
		return
	}
	if e.running {
		e.Tick()
		if e.finished {
			return
		}
	}
	e.finish()
}

// ResetAll pauses and returns the engine to idle with a new budget
func (e *Engine) ResetAll(totalMinutes int) {
	e.Pause()
	e.closeSession()
	e.totalSeconds = minutesToSeconds(totalMinutes)
	e.totalElapsed = 0
	e.focusElapsed = 0
	e.phase = PhaseFocus
	e.focusCount = 0
	e.segTarget = 0
	e.segElapsed = 0
	e.segBase = 0
	e.running = false
	e.started = false
	e.finished = false
	e.credited = false
	e.creditedMinutes = 0
}

func (e *Engine) beginSegment() bool {
	remaining := e.totalSeconds - e.totalElapsed
	if remaining <= 0 {
		return false
	}

	target := remaining
	switch {
	case e.phase == PhaseBreak:
		target = min(e.plan.breakSeconds(e.focusCount), remaining)
	case e.plan.Segmented():
		target = min(e.plan.focusSeconds(), remaining)
	}
	e.segTarget = target
	e.segElapsed = 0
	e.segBase = 0
	return true
}

func (e *Engine) commitSegment(seconds int) {
	e.totalElapsed += seconds
	if e.phase == PhaseFocus {
		e.focusElapsed += seconds
	}
	e.segElapsed = 0
	e.segBase = 0
}

func (e *Engine) togglePhase() {
	if e.phase == PhaseFocus {
		e.focusCount++
		e.phase = PhaseBreak
	} else {
		e.phase = PhaseFocus
	}
	e.logger.Debug("timer phase changed",
		zap.String("task", e.taskID),
		zap.String("phase", string(e.phase)),
		zap.Int("focus_count", e.focusCount))
}

func (e *Engine) finish() {
	if e.segElapsed > 0 {
		e.commitSegment(e.segElapsed)
	}
	e.running = false
	e.finished = true
	e.closeSession()
	e.credit()
}

// credit adds the rounded focus minutes to the task exactly once per run
func (e *Engine) credit() {
	if e.credited {
		return
	}
	e.credited = true
	e.creditedMinutes = int(math.Round(float64(e.focusElapsed) / 60))
	if e.creditedMinutes <= 0 {
		return
	}
	task, ok := e.tracker.Task(e.taskID)
	if !ok {
		return
	}
	actual := task.ActualMinutes + e.creditedMinutes
	e.tracker.UpdateTask(e.taskID, store.TaskPatch{ActualMinutes: &actual})
	e.logger.Info("focus time credited",
		zap.String("task", e.taskID),
		zap.Int("minutes", e.creditedMinutes),
		zap.Int("actual_minutes", actual))
}

func (e *Engine) closeSession() {
	if e.sessionID == "" {
		return
	}
	e.tracker.EndSession(e.sessionID)
	e.sessionID = ""
}

func (e *Engine) markInProgress() {
	task, ok := e.tracker.Task(e.taskID)
	if !ok || task.Status != store.StatusTodo {
		return
	}
	status := store.StatusInProgress
	e.tracker.UpdateTask(e.taskID, store.TaskPatch{Status: &status})
}

func minutesToSeconds(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes * 60
}
