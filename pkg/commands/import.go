package commands

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stm/pkg/quickadd"
	"stm/pkg/store"
)

var (
	// DD.MM.YYYY: or YYYY-MM-DD:
	dateHeaderRe = regexp.MustCompile(`^(?:(\d{2})\.(\d{2})\.(\d{4})|(\d{4})-(\d{2})-(\d{2})):?$`)
	tagRe        = regexp.MustCompile(`#(\w+)`)
	tagStripRe   = regexp.MustCompile(`\s*#\w+`)
)

// HandleImportCommand reads the txt export format and creates a task per item.
// Tasks under a date header are due on that day at the quick-add default hour.
func HandleImportCommand(st *store.Store, w io.Writer, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	tasksAdded := importTxt(st, string(content), time.Local)
	fmt.Fprintf(w, "Successfully imported %d task(s) from %s\n", tasksAdded, filename)
	return nil
}

func importTxt(st *store.Store, content string, loc *time.Location) int {
	var currentDate *time.Time
	var tasksAdded int

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := dateHeaderRe.FindStringSubmatch(line); m != nil {
			var day, month, year int
			if m[1] != "" {
				day, _ = strconv.Atoi(m[1])
				month, _ = strconv.Atoi(m[2])
				year, _ = strconv.Atoi(m[3])
			} else {
				year, _ = strconv.Atoi(m[4])
				month, _ = strconv.Atoi(m[5])
				day, _ = strconv.Atoi(m[6])
			}
			due := time.Date(year, time.Month(month), day, quickadd.DefaultHour, 0, 0, 0, loc)
			currentDate = &due
			continue
		}

		if !strings.HasPrefix(line, "- ") {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "- "))

		done := false
		if strings.HasPrefix(text, "[x]") {
			done = true
			text = strings.TrimSpace(strings.TrimPrefix(text, "[x]"))
		} else if strings.HasPrefix(text, "[ ]") {
			text = strings.TrimSpace(strings.TrimPrefix(text, "[ ]"))
		}

		var tags []string
		for _, match := range tagRe.FindAllStringSubmatch(text, -1) {
			tags = append(tags, match[1])
		}
		title := strings.TrimSpace(tagStripRe.ReplaceAllString(text, ""))

		id := st.CreateTask(store.NewTask{Title: title, DueAt: currentDate, Tags: tags})
		if id == "" {
			continue
		}
		if done {
			st.ToggleDone(id, true)
		}
		tasksAdded++
	}
	return tasksAdded
}
