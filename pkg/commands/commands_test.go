package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"stm/pkg/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T) (*store.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)}
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("%02d-task", n)
	}
	return store.New(&store.MemoryPersister{}, store.WithClock(clock), store.WithIDGenerator(ids)), clock
}

func TestHandleAddTask(t *testing.T) {
	st, clock := newTestStore(t)
	var out bytes.Buffer

	id, err := HandleAddTask(st, &out, "Math HW due tomorrow 17:00 ~90m #math", clock.now)
	require.NoError(t, err)

	task, ok := st.Task(id)
	require.True(t, ok)
	assert.Equal(t, "Math HW", task.Title)
	require.NotNil(t, task.DueAt)
	assert.Equal(t, time.Date(2025, 9, 11, 17, 0, 0, 0, time.UTC), *task.DueAt)
	require.NotNil(t, task.EstimatedMinutes)
	assert.Equal(t, 90, *task.EstimatedMinutes)
	assert.Equal(t, []string{"math"}, task.Tags)
	assert.Contains(t, out.String(), "Added 01-task")

	_, err = HandleAddTask(st, &out, "   ", clock.now)
	assert.Error(t, err)
}

func TestHandleList(t *testing.T) {
	st, clock := newTestStore(t)
	yesterday := clock.now.Add(-24 * time.Hour)
	st.CreateTask(store.NewTask{Title: "late essay", DueAt: &yesterday})
	st.CreateTask(store.NewTask{Title: "someday"})
	doneID := st.CreateTask(store.NewTask{Title: "finished"})
	st.ToggleDone(doneID, true)

	var out bytes.Buffer
	HandleList(st, &out, ListOpen, store.Filter{}, clock.now)
	assert.Contains(t, out.String(), "Overdue (1)")
	assert.Contains(t, out.String(), "Upcoming (1)")
	assert.NotContains(t, out.String(), "finished")

	out.Reset()
	HandleList(st, &out, ListDone, store.Filter{}, clock.now)
	assert.Contains(t, out.String(), "Completed (1)")
	assert.Contains(t, out.String(), "[x] (medium) finished")

	out.Reset()
	HandleList(st, &out, ListOpen, store.Filter{Query: "nothing matches"}, clock.now)
	assert.Equal(t, "No tasks.\n", out.String())
}

func TestHandleDeleteAndRestore(t *testing.T) {
	st, _ := newTestStore(t)
	id := st.CreateTask(store.NewTask{Title: "draft"})
	var out bytes.Buffer

	require.NoError(t, HandleDelete(st, &out, "01", false))
	assert.Empty(t, st.Tasks())
	require.Len(t, st.Trash(), 1)

	err := HandleDone(st, &out, id, true)
	assert.ErrorIs(t, err, ErrTaskTrashed)
	assert.ErrorIs(t, HandleDelete(st, &out, id, false), ErrTaskTrashed)

	require.NoError(t, HandleRestore(st, &out, id))
	require.Len(t, st.Tasks(), 1)
	assert.Empty(t, st.Trash())

	require.NoError(t, HandleDelete(st, &out, id, true))
	assert.Empty(t, st.Tasks())
	assert.Empty(t, st.Trash())

	assert.ErrorIs(t, HandleRestore(st, &out, "missing"), ErrTaskNotFound)
}

func TestHandleDone_AmbiguousPrefix(t *testing.T) {
	st, _ := newTestStore(t)
	st.CreateTask(store.NewTask{Title: "one"})
	st.CreateTask(store.NewTask{Title: "two"})
	var out bytes.Buffer

	assert.ErrorIs(t, HandleDone(st, &out, "0", true), ErrTaskNotFound)
	require.NoError(t, HandleDone(st, &out, "02", true))
	task, _ := st.Task("02-task")
	assert.True(t, task.Done())

	require.NoError(t, HandleDone(st, &out, "02", false))
	task, _ = st.Task("02-task")
	assert.False(t, task.Done())
}

func TestHandlePurge(t *testing.T) {
	st, clock := newTestStore(t)
	old := st.CreateTask(store.NewTask{Title: "old"})
	st.SoftDeleteTask(old)
	clock.now = clock.now.Add(store.TrashRetention + time.Hour)
	fresh := st.CreateTask(store.NewTask{Title: "fresh"})
	st.SoftDeleteTask(fresh)

	var out bytes.Buffer
	HandlePurge(st, &out)
	assert.Equal(t, "Purged 1 task(s) from trash\n", out.String())
	require.Len(t, st.Trash(), 1)
	assert.Equal(t, fresh, st.Trash()[0].ID)
}

func TestHandleStats_Apply(t *testing.T) {
	st, _ := newTestStore(t)
	est := 30
	actual := 60
	id := st.CreateTask(store.NewTask{Title: "lab", EstimatedMinutes: &est, ActualMinutes: actual})
	st.ToggleDone(id, true)

	var out bytes.Buffer
	HandleStats(st, &out, false)
	assert.Equal(t, store.DefaultProcrastinationCoeff, st.Settings().ProcrastinationCoeff)
	assert.Contains(t, out.String(), "Suggested coefficient:  2.00")

	HandleStats(st, &out, true)
	assert.Equal(t, 2.0, st.Settings().ProcrastinationCoeff)
}

func TestHandleCoeff_Clamps(t *testing.T) {
	st, _ := newTestStore(t)
	var out bytes.Buffer
	HandleCoeff(st, &out, 42)
	assert.Equal(t, store.MaxProcrastinationCoeff, st.Settings().ProcrastinationCoeff)
}

func TestExportFormats(t *testing.T) {
	st, clock := newTestStore(t)
	due := clock.now.Add(6 * time.Hour)
	st.CreateTask(store.NewTask{Title: "Math HW", DueAt: &due, Tags: []string{"math"}})
	st.CreateTask(store.NewTask{Title: "Read"})
	dir := t.TempDir()
	var out bytes.Buffer

	jsonPath := filepath.Join(dir, "out", "tasks.json")
	require.NoError(t, HandleExportCommand(st, &out, jsonPath, ExportJSON))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []store.Task
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Len(t, fromJSON, 2)

	yamlPath := filepath.Join(dir, "tasks.yaml")
	require.NoError(t, HandleExportCommand(st, &out, yamlPath, ExportYAML))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 2)
	assert.Contains(t, []any{fromYAML[0]["title"], fromYAML[1]["title"]}, "Math HW")

	txtPath := filepath.Join(dir, "tasks.txt")
	require.NoError(t, HandleExportCommand(st, &out, txtPath, ExportTXT))
	data, err = os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Equal(t, "- [ ] Read\n\n10.09.2025:\n- [ ] Math HW #math", string(data))

	assert.Error(t, HandleExportCommand(st, &out, filepath.Join(dir, "x.csv"), "csv"))
}

func TestImportTxt(t *testing.T) {
	st, _ := newTestStore(t)
	content := `
- [ ] Read chapter 4 #reading
07.09.2025:
- [x] Math HW #math #hw
not a task line
2025-09-12:
- Lab report
`
	added := importTxt(st, content, time.UTC)
	assert.Equal(t, 3, added)

	tasks := store.SortByDue(st.Tasks())
	require.Len(t, tasks, 3)

	assert.Equal(t, "Math HW", tasks[0].Title)
	assert.Equal(t, []string{"math", "hw"}, tasks[0].Tags)
	assert.True(t, tasks[0].Done())
	assert.Equal(t, time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC), *tasks[0].DueAt)

	assert.Equal(t, "Lab report", tasks[1].Title)
	assert.False(t, tasks[1].Done())

	assert.Equal(t, "Read chapter 4", tasks[2].Title)
	assert.Nil(t, tasks[2].DueAt)
}

func TestImportFile(t *testing.T) {
	st, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] one\n- [ ] two"), 0644))

	var out bytes.Buffer
	require.NoError(t, HandleImportCommand(st, &out, path))
	assert.Len(t, st.Tasks(), 2)
	assert.Contains(t, out.String(), "imported 2 task(s)")

	assert.Error(t, HandleImportCommand(st, &out, filepath.Join(t.TempDir(), "missing.txt")))
}
