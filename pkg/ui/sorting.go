package ui

import (
	"sort"
	"strings"
	"time"

	"stm/pkg/store"
)

// GroupBy selects how the task list is split into sections
type GroupBy int

const (
	GroupByDoNow GroupBy = iota
	GroupByPriority
	GroupByTag
	GroupByNone
	groupByCount
)

func (g GroupBy) String() string {
	return [...]string{"do now", "priority", "tag", "none"}[g]
}

// GroupedTasks represents tasks grouped by a common attribute
type GroupedTasks struct {
	GroupName string
	Tasks     []store.Task
}

// GroupTasks groups tasks based on the current grouping. Do-now grouping
// puts completed tasks in a trailing section when they are shown.
func (m *Model) GroupTasks(tasks []store.Task, now time.Time) []GroupedTasks {
	switch m.groupBy {
	case GroupByDoNow:
		var groups []GroupedTasks
		for _, s := range store.DoNow(tasks, m.filter, now, m.showCompleted) {
			groups = append(groups, GroupedTasks{GroupName: s.Name, Tasks: s.Tasks})
		}
		return groups

	case GroupByNone:
		return []GroupedTasks{{Tasks: store.SortByDue(m.visible(tasks))}}
	}

	groups := make(map[string][]store.Task)
	for _, task := range m.visible(tasks) {
		switch m.groupBy {
		case GroupByPriority:
			groups[task.Priority.String()] = append(groups[task.Priority.String()], task)
		case GroupByTag:
			if len(task.Tags) == 0 {
				groups["No Tag"] = append(groups["No Tag"], task)
			}
			for _, tag := range task.Tags {
				name := "#" + strings.ToLower(tag)
				groups[name] = append(groups[name], task)
			}
		}
	}

	var names []string
	for name := range groups {
		names = append(names, name)
	}
	if m.groupBy == GroupByPriority {
		// high before medium before low
		rank := map[string]int{"high": 0, "medium": 1, "low": 2}
		sort.Slice(names, func(i, j int) bool { return rank[names[i]] < rank[names[j]] })
	} else {
		sort.Strings(names)
	}

	var result []GroupedTasks
	for _, name := range names {
		result = append(result, GroupedTasks{
			GroupName: name,
			Tasks:     store.SortByDue(groups[name]),
		})
	}
	return result
}

// visible applies the filter and the completed toggle
func (m *Model) visible(tasks []store.Task) []store.Task {
	var out []store.Task
	for _, task := range m.filter.Apply(tasks) {
		if task.Done() && !m.showCompleted {
			continue
		}
		out = append(out, task)
	}
	return out
}
