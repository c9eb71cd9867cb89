package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stm/pkg/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T, totalMinutes int, opts ...Option) (*Engine, *store.Store, *fakeClock, string) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)}
	s := store.New(&store.MemoryPersister{}, store.WithClock(clock))
	id := s.CreateTask(store.NewTask{Title: "Essay"})
	require.NotEmpty(t, id)
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(s, id, totalMinutes, opts...), s, clock, id
}

func advance(e *Engine, c *fakeClock, d time.Duration) {
	c.Advance(d)
	e.Tick()
}

func TestEngine_FocusRollsIntoBreak(t *testing.T) {
	e, _, clock, _ := newFixture(t, 60)

	e.Start()
	assert.Equal(t, Running, e.Status().State)
	assert.Equal(t, 25*time.Minute, e.Status().SegmentTarget)

	advance(e, clock, 25*time.Minute+time.Second)

	st := e.Status()
	assert.Equal(t, PhaseBreak, st.Phase)
	assert.Equal(t, 1, st.FocusCount)
	assert.Equal(t, 5*time.Minute, st.SegmentTarget)
	assert.Equal(t, time.Second, st.SegmentElapsed)
	assert.Equal(t, 25*time.Minute, st.TotalElapsed)
}

func TestEngine_EveryThirdBreakIsLong(t *testing.T) {
	e, _, clock, _ := newFixture(t, 600)
	e.Start()

	type segment struct {
		phase  Phase
		target time.Duration
	}
	var got []segment
	for i := 0; i < 6; i++ {
		st := e.Status()
		got = append(got, segment{st.Phase, st.SegmentTarget})
		advance(e, clock, st.SegmentTarget)
	}

	assert.Equal(t, []segment{
		{PhaseFocus, 25 * time.Minute},
		{PhaseBreak, 5 * time.Minute},
		{PhaseFocus, 25 * time.Minute},
		{PhaseBreak, 5 * time.Minute},
		{PhaseFocus, 25 * time.Minute},
		{PhaseBreak, 15 * time.Minute},
	}, got)
}

func TestEngine_SegmentsShrinkToRemainingBudget(t *testing.T) {
	e, _, clock, _ := newFixture(t, 28)
	e.Start()
	advance(e, clock, 25*time.Minute)

	st := e.Status()
	assert.Equal(t, PhaseBreak, st.Phase)
	assert.Equal(t, 3*time.Minute, st.SegmentTarget)
}

func TestEngine_PauseResumeKeepsSegmentProgress(t *testing.T) {
	e, s, clock, id := newFixture(t, 60)

	e.Start()
	first := e.Status().SessionID
	require.NotEmpty(t, first)

	advance(e, clock, 10*time.Minute)
	e.Pause()
	assert.Equal(t, Paused, e.Status().State)
	assert.Empty(t, e.Status().SessionID)
	assert.Equal(t, 10*time.Minute, e.Status().SegmentElapsed)

	// time spent paused does not count
	clock.Advance(time.Hour)
	e.Tick()
	assert.Equal(t, 10*time.Minute, e.Status().SegmentElapsed)

	e.Start()
	second := e.Status().SessionID
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	advance(e, clock, 5*time.Minute)
	assert.Equal(t, 15*time.Minute, e.Status().SegmentElapsed)
	assert.Equal(t, PhaseFocus, e.Status().Phase)

	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, first, sessions[0].ID)
	assert.False(t, sessions[0].Open())
	assert.Equal(t, 10, sessions[0].Minutes)
	assert.True(t, sessions[1].Open())
	assert.Equal(t, id, sessions[1].TaskID)
}

func TestEngine_SessionStaysOpenAcrossSegments(t *testing.T) {
	e, s, clock, _ := newFixture(t, 60)
	e.Start()
	session := e.Status().SessionID

	advance(e, clock, 26*time.Minute)
	assert.Equal(t, PhaseBreak, e.Status().Phase)
	assert.Equal(t, session, e.Status().SessionID)
	assert.Len(t, s.Sessions(), 1)
}

func TestEngine_FinishesAtBudgetAndCreditsOnce(t *testing.T) {
	e, s, clock, id := newFixture(t, 30)
	e.Start()

	advance(e, clock, 25*time.Minute)
	advance(e, clock, 5*time.Minute)

	st := e.Status()
	assert.Equal(t, Finished, st.State)
	assert.Equal(t, 25, st.CreditedMinutes)
	assert.Equal(t, 100.0, st.Percent())
	assert.Equal(t, time.Duration(0), st.Remaining())

	task, ok := s.Task(id)
	require.True(t, ok)
	assert.Equal(t, 25, task.ActualMinutes)

	e.Finish()
	e.Finish()
	e.Tick()
	task, _ = s.Task(id)
	assert.Equal(t, 25, task.ActualMinutes)

	for _, session := range s.Sessions() {
		assert.False(t, session.Open())
	}
}

func TestEngine_MissedTicksAreCaughtUp(t *testing.T) {
	e, _, clock, _ := newFixture(t, 60)
	e.Start()

	// one late tick covering a full focus and break segment
	advance(e, clock, 31*time.Minute)

	st := e.Status()
	assert.Equal(t, PhaseFocus, st.Phase)
	assert.Equal(t, 1, st.FocusCount)
	assert.Equal(t, 30*time.Minute, st.TotalElapsed)
	assert.Equal(t, time.Minute, st.SegmentElapsed)
	assert.Equal(t, 25*time.Minute, st.FocusElapsed)
}

func TestEngine_ExplicitFinishCreditsPartialFocus(t *testing.T) {
	e, s, clock, id := newFixture(t, 60)
	e.Start()
	advance(e, clock, 10*time.Minute+20*time.Second)

	e.Finish()

	st := e.Status()
	assert.Equal(t, Finished, st.State)
	assert.Equal(t, 10, st.CreditedMinutes)
	task, _ := s.Task(id)
	assert.Equal(t, 10, task.ActualMinutes)
}

func TestEngine_BreakTimeIsNotCredited(t *testing.T) {
	e, s, clock, id := newFixture(t, 60)
	e.Start()
	advance(e, clock, 28*time.Minute)
	e.Pause()
	e.Finish()

	task, _ := s.Task(id)
	assert.Equal(t, 25, task.ActualMinutes)
	assert.Equal(t, 28*time.Minute, e.Status().TotalElapsed)
}

func TestEngine_ZeroBudgetFinishesImmediately(t *testing.T) {
	e, s, _, id := newFixture(t, 0)

	e.Start()

	st := e.Status()
	assert.Equal(t, Finished, st.State)
	assert.Equal(t, 0, st.CreditedMinutes)
	assert.Empty(t, s.Sessions())
	task, _ := s.Task(id)
	assert.Equal(t, 0, task.ActualMinutes)
}

func TestEngine_NoOpsWhenIdle(t *testing.T) {
	e, s, _, _ := newFixture(t, 25)

	e.Pause()
	e.Finish()
	e.Tick()

	assert.Equal(t, Idle, e.Status().State)
	assert.Empty(t, s.Sessions())
}

func TestEngine_StartTwiceKeepsOneSession(t *testing.T) {
	e, s, _, _ := newFixture(t, 25)
	e.Start()
	e.Start()
	assert.Len(t, s.Sessions(), 1)
}

func TestEngine_SinglePlanRunsWholeBudget(t *testing.T) {
	e, s, clock, id := newFixture(t, 50, WithPlan(SinglePlan()))
	e.Start()
	assert.Equal(t, 50*time.Minute, e.Status().SegmentTarget)

	advance(e, clock, 40*time.Minute)
	assert.Equal(t, PhaseFocus, e.Status().Phase)

	advance(e, clock, 10*time.Minute)
	assert.Equal(t, Finished, e.Status().State)
	task, _ := s.Task(id)
	assert.Equal(t, 50, task.ActualMinutes)
}

func TestEngine_SubSecondFocusRunsAsSinglePlan(t *testing.T) {
	e, s, clock, id := newFixture(t, 10, WithPlan(Plan{Focus: 500 * time.Millisecond}))
	e.Start()
	assert.Equal(t, 10*time.Minute, e.Status().SegmentTarget)

	advance(e, clock, 10*time.Minute)
	assert.Equal(t, Finished, e.Status().State)
	task, _ := s.Task(id)
	assert.Equal(t, 10, task.ActualMinutes)
}

func TestEngine_ZeroBreaksStillAdvance(t *testing.T) {
	e, s, clock, id := newFixture(t, 3, WithPlan(Plan{Focus: time.Minute}))
	e.Start()

	advance(e, clock, 90*time.Second)
	st := e.Status()
	assert.Equal(t, Running, st.State)
	assert.Equal(t, PhaseFocus, st.Phase)
	assert.Equal(t, 1, st.FocusCount)

	advance(e, clock, 2*time.Minute)
	assert.Equal(t, Finished, e.Status().State)
	task, _ := s.Task(id)
	assert.Equal(t, 3, task.ActualMinutes)
}

func TestEngine_ResetAll(t *testing.T) {
	e, s, clock, _ := newFixture(t, 60)
	e.Start()
	advance(e, clock, 30*time.Minute)

	e.ResetAll(90)

	st := e.Status()
	assert.Equal(t, Idle, st.State)
	assert.Equal(t, PhaseFocus, st.Phase)
	assert.Equal(t, 0, st.FocusCount)
	assert.Equal(t, time.Duration(0), st.TotalElapsed)
	assert.Equal(t, time.Duration(0), st.SegmentElapsed)
	assert.Equal(t, 90*time.Minute, st.Total)
	for _, session := range s.Sessions() {
		assert.False(t, session.Open())
	}

	e.Start()
	assert.Equal(t, Running, e.Status().State)
	assert.Equal(t, 25*time.Minute, e.Status().SegmentTarget)
}

func TestEngine_StartMarksTaskInProgress(t *testing.T) {
	e, s, _, id := newFixture(t, 25)
	e.Start()
	task, _ := s.Task(id)
	assert.Equal(t, store.StatusInProgress, task.Status)
}

func TestStatus_Progress(t *testing.T) {
	e, _, clock, _ := newFixture(t, 40)
	e.Start()
	advance(e, clock, 10*time.Minute)

	st := e.Status()
	assert.InDelta(t, 25.0, st.Percent(), 0.001)
	assert.Equal(t, 30*time.Minute, st.Remaining())
	assert.Equal(t, 15*time.Minute, st.SegmentRemaining())
}
