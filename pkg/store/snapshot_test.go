package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FallsBackToDefaults(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "{{{"},
		{"wrong shape", `[1, 2, 3]`},
		{"null fields", `{"tasks": null, "sessions": null, "settings": null}`},
		{"wrong field types", `{"tasks": "nope", "sessions": {}, "settings": 4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Decode([]byte(tt.data), now)
			assert.NotNil(t, state.Tasks)
			assert.Empty(t, state.Tasks)
			assert.NotNil(t, state.Sessions)
			assert.Empty(t, state.Sessions)
			assert.Equal(t, DefaultSettings(), state.Settings)
		})
	}
}

func TestDecode_DropsMalformedEntries(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	data := `{
		"tasks": [
			{"id": "t1", "title": "good", "priority": 3, "status": "done", "createdAt": "2025-08-30T10:00:00Z", "updatedAt": "2025-08-30T10:00:00Z"},
			{"id": "t2", "title": "   "},
			{"id": "", "title": "no id"},
			{"id": "t3", "title": 42},
			{"id": "t4", "title": "odd values", "priority": 7, "status": "paused", "actualMinutes": -3},
			{"id": "t1", "title": "duplicate"}
		],
		"sessions": [{"id": "s1", "taskId": "t1", "startedAt": "2025-08-30T10:00:00Z", "minutes": 0}, {"taskId": "t1"}, 5],
		"settings": {"procrastinationCoeff": 12},
		"trash": [{"id": "t9", "title": "trashed without stamp"}]
	}`

	state := Decode([]byte(data), now)

	require.Len(t, state.Tasks, 2)
	assert.Equal(t, "good", state.Tasks[0].Title)
	assert.Equal(t, PriorityHigh, state.Tasks[0].Priority)
	assert.Equal(t, StatusDone, state.Tasks[0].Status)

	odd := state.Tasks[1]
	assert.Equal(t, PriorityMedium, odd.Priority)
	assert.Equal(t, StatusTodo, odd.Status)
	assert.Equal(t, 0, odd.ActualMinutes)
	assert.NotNil(t, odd.Tags)

	require.Len(t, state.Sessions, 1)
	assert.Equal(t, "s1", state.Sessions[0].ID)

	assert.Equal(t, MaxProcrastinationCoeff, state.Settings.ProcrastinationCoeff)

	require.Len(t, state.Trash, 1)
	require.NotNil(t, state.Trash[0].DeletedAt)
	assert.Equal(t, now, *state.Trash[0].DeletedAt)
}

func TestDecode_MissingTrashIsEmpty(t *testing.T) {
	state := Decode([]byte(`{"tasks": [], "sessions": [], "settings": {"procrastinationCoeff": 1.5}}`), time.Now())
	assert.NotNil(t, state.Trash)
	assert.Empty(t, state.Trash)
	assert.Equal(t, 1.5, state.Settings.ProcrastinationCoeff)
}

func TestDecode_TaskIsNeverActiveAndTrashed(t *testing.T) {
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	data := `{
		"tasks": [{"id": "a", "title": "active copy"}],
		"trash": [
			{"id": "a", "title": "trashed copy", "deletedAt": "2025-08-31T08:00:00Z"},
			{"id": "b", "title": "only trashed", "deletedAt": "2025-08-31T08:00:00Z"}
		]
	}`
	state := Decode([]byte(data), now)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "active copy", state.Tasks[0].Title)
	require.Len(t, state.Trash, 1)
	assert.Equal(t, "b", state.Trash[0].ID)

	s := New(&MemoryPersister{Data: []byte(data)}, WithClock(&fakeClock{now: now}))
	s.RestoreTask("a")
	s.RestoreTask("b")
	ids := make([]string, 0, len(s.Tasks()))
	for _, task := range s.Tasks() {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
	assert.Empty(t, s.Trash())
}
