package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_DoesNotMutateInput(t *testing.T) {
	at := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	state := EmptyState()
	state.Tasks = []Task{{
		ID:       "t1",
		Title:    "original",
		Status:   StatusTodo,
		Tags:     []string{"a"},
		Subtasks: []Subtask{{ID: "s1", Title: "step"}},
	}}

	title := "changed"
	next := Reduce(state, UpdateTask{ID: "t1", Patch: TaskPatch{Title: &title, Tags: []string{"b"}, SetTags: true}, At: at})
	next = Reduce(next, ToggleSubtask{TaskID: "t1", SubtaskID: "s1", Done: true, At: at})
	next = Reduce(next, SoftDeleteTask{ID: "t1", At: at})

	assert.Equal(t, "original", state.Tasks[0].Title)
	assert.Equal(t, []string{"a"}, state.Tasks[0].Tags)
	assert.False(t, state.Tasks[0].Subtasks[0].Done)
	assert.Nil(t, state.Tasks[0].DeletedAt)

	require.Len(t, next.Trash, 1)
	assert.Equal(t, "changed", next.Trash[0].Title)
	assert.True(t, next.Trash[0].Subtasks[0].Done)
	assert.Empty(t, next.Tasks)
}

func TestReduce_StatusPatchKeepsCompletionCoherent(t *testing.T) {
	at := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	state := EmptyState()
	state.Tasks = []Task{{ID: "t1", Title: "x", Status: StatusTodo}}

	done := StatusDone
	next := Reduce(state, UpdateTask{ID: "t1", Patch: TaskPatch{Status: &done}, At: at})
	require.NotNil(t, next.Tasks[0].CompletedAt)
	assert.Equal(t, at, *next.Tasks[0].CompletedAt)

	inProgress := StatusInProgress
	next = Reduce(next, UpdateTask{ID: "t1", Patch: TaskPatch{Status: &inProgress}, At: at})
	assert.Nil(t, next.Tasks[0].CompletedAt)
	assert.Equal(t, StatusInProgress, next.Tasks[0].Status)
}

func TestReduce_ClearDue(t *testing.T) {
	at := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	due := at.Add(time.Hour)
	state := EmptyState()
	state.Tasks = []Task{{ID: "t1", Title: "x", DueAt: &due}}

	next := Reduce(state, UpdateTask{ID: "t1", Patch: TaskPatch{ClearDueAt: true}, At: at})
	assert.Nil(t, next.Tasks[0].DueAt)
	assert.NotNil(t, state.Tasks[0].DueAt)
}

func TestReduce_InvalidPatchValuesAreIgnored(t *testing.T) {
	at := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	state := EmptyState()
	state.Tasks = []Task{{ID: "t1", Title: "x", Priority: PriorityLow, ActualMinutes: 30}}

	bogus := Priority(9)
	negative := -5
	next := Reduce(state, UpdateTask{ID: "t1", Patch: TaskPatch{Priority: &bogus, ActualMinutes: &negative}, At: at})
	assert.Equal(t, PriorityLow, next.Tasks[0].Priority)
	assert.Equal(t, 30, next.Tasks[0].ActualMinutes)
}

func TestReduce_PurgeKeepsBoundary(t *testing.T) {
	cutoff := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	exact := cutoff
	older := cutoff.Add(-time.Second)
	state := EmptyState()
	state.Trash = []Task{{ID: "keep", DeletedAt: &exact}, {ID: "drop", DeletedAt: &older}}

	next := Reduce(state, PurgeTrash{Cutoff: cutoff})
	require.Len(t, next.Trash, 1)
	assert.Equal(t, "keep", next.Trash[0].ID)
}
