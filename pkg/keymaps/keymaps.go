package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":       {"?", "show/hide commands"},
	"QuitApp":        {"q,ctrl+c", "quit"},
	"Back":           {"esc", "back"},
	"Up":             {"up,k", "move up"},
	"Down":           {"down,j", "move down"},
	"Confirm":        {"enter", "confirm"},
	"QuickAdd":       {"a", "quick add task"},
	"EditTask":       {"e", "edit task"},
	"DeleteTask":     {"d", "move task to trash"},
	"HardDelete":     {"X", "delete task permanently"},
	"Undo":           {"u", "undo delete"},
	"ToggleDone":     {"space", "toggle done"},
	"CyclePriority":  {"p", "cycle task priority"},
	"OpenSubtasks":   {"enter", "open subtasks"},
	"ToggleTrash":    {"t", "show/hide trash"},
	"RestoreTask":    {"r", "restore from trash"},
	"PurgeTrash":     {"P", "purge expired trash"},
	"SearchTasks":    {"/", "filter by title or tag"},
	"FilterPriority": {"f", "cycle priority filter"},
	"ShowCompleted":  {"c", "show/hide completed"},
	"ToggleGroupBy":  {"g", "cycle group by"},
	"StartFocus":     {"s", "start focus session"},
	"PauseTimer":     {"space", "pause/resume timer"},
	"FinishTimer":    {"x", "finish session"},
	"ResetTimer":     {"R", "reset timer"},
	"ShowStats":      {"i", "show stats"},
}

type KeyMap struct {
	ShowHelp       key.Binding
	QuitApp        key.Binding
	Back           key.Binding
	Up             key.Binding
	Down           key.Binding
	Confirm        key.Binding
	QuickAdd       key.Binding
	EditTask       key.Binding
	DeleteTask     key.Binding
	HardDelete     key.Binding
	Undo           key.Binding
	ToggleDone     key.Binding
	CyclePriority  key.Binding
	OpenSubtasks   key.Binding
	ToggleTrash    key.Binding
	RestoreTask    key.Binding
	PurgeTrash     key.Binding
	SearchTasks    key.Binding
	FilterPriority key.Binding
	ShowCompleted  key.Binding
	ToggleGroupBy  key.Binding
	StartFocus     key.Binding
	PauseTimer     key.Binding
	FinishTimer    key.Binding
	ResetTimer     key.Binding
	ShowStats      key.Binding
}

func (km *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"ShowHelp":       &km.ShowHelp,
		"QuitApp":        &km.QuitApp,
		"Back":           &km.Back,
		"Up":             &km.Up,
		"Down":           &km.Down,
		"Confirm":        &km.Confirm,
		"QuickAdd":       &km.QuickAdd,
		"EditTask":       &km.EditTask,
		"DeleteTask":     &km.DeleteTask,
		"HardDelete":     &km.HardDelete,
		"Undo":           &km.Undo,
		"ToggleDone":     &km.ToggleDone,
		"CyclePriority":  &km.CyclePriority,
		"OpenSubtasks":   &km.OpenSubtasks,
		"ToggleTrash":    &km.ToggleTrash,
		"RestoreTask":    &km.RestoreTask,
		"PurgeTrash":     &km.PurgeTrash,
		"SearchTasks":    &km.SearchTasks,
		"FilterPriority": &km.FilterPriority,
		"ShowCompleted":  &km.ShowCompleted,
		"ToggleGroupBy":  &km.ToggleGroupBy,
		"StartFocus":     &km.StartFocus,
		"PauseTimer":     &km.PauseTimer,
		"FinishTimer":    &km.FinishTimer,
		"ResetTimer":     &km.ResetTimer,
		"ShowStats":      &km.ShowStats,
	}
}

// BuildKeyMap applies configOverrides on top of the defaults. Action names
// match case-insensitively because config keys come back lowercased.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, binding := range km.bindings() {
		def := KeyDefinitions[action]
		keyStr := def.DefaultKey
		if override := overrides[strings.ToLower(action)]; override != "" {
			keyStr = override
		}
		*binding = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
	}
	return km
}

// ShortHelp is shown in the footer
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.QuickAdd, km.ToggleDone, km.StartFocus, km.DeleteTask, km.ShowHelp, km.QuitApp}
}

// FullHelp is shown when help is expanded
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Up, km.Down, km.QuickAdd, km.EditTask, km.ToggleDone, km.CyclePriority, km.OpenSubtasks},
		{km.DeleteTask, km.HardDelete, km.Undo, km.ToggleTrash, km.RestoreTask, km.PurgeTrash},
		{km.SearchTasks, km.FilterPriority, km.ShowCompleted, km.ToggleGroupBy, km.ShowStats},
		{km.StartFocus, km.PauseTimer, km.FinishTimer, km.ResetTimer, km.Back, km.QuitApp},
	}
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		keys = append(keys, k)
		// terminals report the space bar as a literal blank
		if k == "space" {
			keys = append(keys, " ")
		}
	}
	if len(keys) == 0 {
		if keyStr != defaultKey {
			return parseKeyBinding(defaultKey, defaultKey, helpText)
		}
		return key.NewBinding(key.WithDisabled())
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
