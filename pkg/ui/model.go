package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stm/pkg/config"
	"stm/pkg/keymaps"
	"stm/pkg/store"
	"stm/pkg/timer"
)

// UndoWindow is how long the undo snackbar stays after a delete
const UndoWindow = 4500 * time.Millisecond

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	QuickAddMode
	EditMode
	SearchMode
	DeleteConfirmMode
	SubtaskMode
	SubtaskInputMode
	FocusMode
	StatsMode
	HelpViewMode
)

// ViewMode selects the list shown in normal mode
type ViewMode int

const (
	TasksView ViewMode = iota
	TrashView
)

// edit form fields, in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldDue
	fieldEstimate
	fieldTags
	fieldCount
)

// Model represents the application state
type Model struct {
	table         table.Model
	rowIDs        []string // task id per table row, "" for headers and spacers
	store         *store.Store
	clock         timer.Clock
	width, height int
	err           error
	notice        string

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap
	help   help.Model

	// View state
	viewMode      ViewMode
	filter        store.Filter
	groupBy       GroupBy
	showCompleted bool

	// Form state
	mode        InputMode
	quickInput  textinput.Model
	searchInput textinput.Model
	inputs      []textinput.Model
	activeInput int
	editingID   string

	// Subtask state
	subtaskTaskID string
	subtaskCursor int
	subtaskInput  textinput.Model
	renamingID    string

	// Undo snackbar
	undoID  string
	undoSeq int

	// Focus timer
	engine       *timer.Engine
	progress     progress.Model
	tickSeq      int
	focusMinutes int
	initialFocus string
}

// Option configures a Model
type Option func(*Model)

// WithClock sets the time source shared by the list and the focus timer
func WithClock(c timer.Clock) Option {
	return func(m *Model) { m.clock = c }
}

// WithFocus opens the focus view on taskID and starts the timer at once.
// A non-positive minutes value uses the configured budget.
func WithFocus(taskID string, minutes int) Option {
	return func(m *Model) {
		if minutes > 0 {
			m.focusMinutes = minutes
		}
		m.initialFocus = taskID
	}
}

// NewModel creates a new UI model with the provided configuration
func NewModel(st *store.Store, cfg config.Config, styles config.Styles, opts ...Option) Model {
	// A single header-less column; rows carry their own styling
	columns := []table.Column{
		{Title: "", Width: 80},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderBottom(false).
		Bold(false).
		Foreground(lipgloss.NoColor{})
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	// The table only navigates; letter keys belong to the app keymap
	keyMap := keymaps.BuildKeyMap(cfg.KeyMap)
	t.KeyMap = table.KeyMap{
		LineUp:     keyMap.Up,
		LineDown:   keyMap.Down,
		PageUp:     key.NewBinding(key.WithKeys("pgup")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown")),
		GotoTop:    key.NewBinding(key.WithKeys("home")),
		GotoBottom: key.NewBinding(key.WithKeys("end")),
	}

	quickInput := textinput.New()
	quickInput.Placeholder = "Math HW due tomorrow 17:00 ~90m #math"
	quickInput.Width = 60

	searchInput := textinput.New()
	searchInput.Placeholder = "Filter by title or #tag"
	searchInput.Width = 40

	subtaskInput := textinput.New()
	subtaskInput.Placeholder = "Subtask title"
	subtaskInput.Width = 40

	placeholders := [fieldCount]string{
		fieldTitle:    "Title",
		fieldDesc:     "Description",
		fieldDue:      "Due (YYYY-MM-DD HH:MM, today, tomorrow 17:00; empty clears)",
		fieldEstimate: "Estimate in minutes (90, 90m, 1h30m)",
		fieldTags:     "Tags, space separated",
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].Width = 60
	}

	bar := progress.New(
		progress.WithSolidFill(styles.FocusColor),
		progress.WithWidth(50),
	)

	m := Model{
		table:        t,
		store:        st,
		clock:        timer.SystemClock{},
		config:       cfg,
		styles:       styles,
		keyMap:       keyMap,
		help:         help.New(),
		mode:         NormalMode,
		quickInput:   quickInput,
		searchInput:  searchInput,
		subtaskInput: subtaskInput,
		inputs:       inputs,
		viewMode:     TasksView,
		groupBy:      GroupByDoNow,
		progress:     bar,
		focusMinutes: cfg.Timer.TotalMinutes,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.loadTasks()
	if m.initialFocus != "" {
		m.startFocus(m.initialFocus)
	}
	return m
}

// Init starts the tick loop when a focus session was requested up front
func (m Model) Init() tea.Cmd {
	if m.engine != nil && m.engine.Status().State == timer.Running {
		return tick(m.tickSeq)
	}
	return nil
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.activeInput = fieldTitle
	m.inputs[fieldTitle].Focus()
}

func (m Model) now() time.Time {
	return m.clock.Now()
}
