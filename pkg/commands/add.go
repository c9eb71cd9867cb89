package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"stm/pkg/quickadd"
	"stm/pkg/store"
)

// HandleAddTask creates a task from quick-add text such as
// "Math HW due tomorrow 17:00 ~90m #math" and returns its id
func HandleAddTask(st *store.Store, w io.Writer, text string, now time.Time) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("task text is empty")
	}

	parsed := quickadd.Parse(text, now)
	id := st.CreateTask(parsed.NewTask())
	if id == "" {
		return "", fmt.Errorf("could not create task from %q", text)
	}

	task, _ := st.Task(id)
	fmt.Fprintf(w, "Added %s %s\n", shortID(id), describe(task))
	return id, nil
}
