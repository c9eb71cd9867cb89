package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"stm/pkg/store"
)

// Export formats
const (
	ExportJSON = "json"
	ExportYAML = "yaml"
	ExportTXT  = "txt"
)

// txtDateLayout is the day header of the txt format, e.g. "07.09.2025:"
const txtDateLayout = "02.01.2006"

// HandleExportCommand writes the active tasks to filename
func HandleExportCommand(st *store.Store, w io.Writer, filename, exportType string) error {
	tasks := st.Tasks()

	content, err := encodeTasks(tasks, exportType)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	fmt.Fprintf(w, "Successfully exported %d task(s) to %s\n", len(tasks), filename)
	return nil
}

func encodeTasks(tasks []store.Task, exportType string) ([]byte, error) {
	switch strings.ToLower(exportType) {
	case ExportJSON:
		content, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling tasks to JSON: %w", err)
		}
		return content, nil
	case ExportYAML, "yml":
		content, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("marshaling tasks to YAML: %w", err)
		}
		return content, nil
	case ExportTXT:
		return encodeTxt(tasks), nil
	default:
		return nil, fmt.Errorf("unknown export type: %s", exportType)
	}
}

// encodeTxt writes undated tasks first, then one block per due day:
//
//	- [ ] Read chapter 4 #reading
//
//	07.09.2025:
//	- [x] Math HW #math
func encodeTxt(tasks []store.Task) []byte {
	var undated, dated []store.Task
	for _, task := range store.SortByDue(tasks) {
		if task.DueAt == nil {
			undated = append(undated, task)
		} else {
			dated = append(dated, task)
		}
	}

	var lines []string
	for _, task := range undated {
		lines = append(lines, txtLine(task))
	}
	var lastDate string
	for _, task := range dated {
		dateStr := task.DueAt.Format(txtDateLayout)
		if dateStr != lastDate {
			lines = append(lines, fmt.Sprintf("\n%s:", dateStr))
			lastDate = dateStr
		}
		lines = append(lines, txtLine(task))
	}
	return []byte(strings.TrimSpace(strings.Join(lines, "\n")))
}

func txtLine(task store.Task) string {
	status := " "
	if task.Done() {
		status = "x"
	}
	line := fmt.Sprintf("- [%s] %s", status, task.Title)
	for _, tag := range task.Tags {
		line += " #" + tag
	}
	return line
}
