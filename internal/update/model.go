// Package update owns the TUI event loop. It is the engine's calling UI:
// selector tabs drive the filter, the complete key drives the lifecycle, and
// rows are re-derived from classification on every change.
package update

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"taskcycle/internal/api"
	"taskcycle/internal/dates"
	"taskcycle/internal/engine"
	"taskcycle/internal/model"
)

// Selectors in tab order.
var selectorTabs = []engine.Selector{
	engine.SelectorUnassignedAndDue,
	engine.SelectorToday,
	engine.SelectorWeek,
	engine.SelectorMonth,
	engine.SelectorAll,
}

var tabLabels = map[engine.Selector]string{
	engine.SelectorUnassignedAndDue: "Due & Unassigned",
	engine.SelectorToday:            "Today",
	engine.SelectorWeek:             "Week",
	engine.SelectorMonth:            "Month",
	engine.SelectorAll:              "All",
}

type StatusBar struct {
	Text    string
	IsError bool
}

type KeyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Add      key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Add, k.Refresh, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down},
		{k.Complete, k.Add, k.Refresh, k.Help, k.Quit},
	}
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		NextTab:  key.NewBinding(key.WithKeys("tab", "l"), key.WithHelp("tab", "next view")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "h"), key.WithHelp("shift+tab", "prev view")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Complete: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "complete task")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type Model struct {
	Selector engine.Selector
	Tasks    []model.Task
	Rows     []engine.View
	Done     []engine.View
	Cursor   int

	Status      StatusBar
	Loading     bool
	Completing  map[string]bool
	Unsynced    map[string]bool
	HelpVisible bool
	Quitting    bool

	Keys     KeyMap
	QuickAdd textinput.Model
	Adding   bool
	Spinner  spinner.Model
	HelpView help.Model

	store     api.Store
	lifecycle *engine.Lifecycle
	clock     dates.Clock
	helpText  string
}

func NewModel(store api.Store, lifecycle *engine.Lifecycle, clock dates.Clock) Model {
	input := textinput.New()
	input.Placeholder = "task title"
	input.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	if clock == nil {
		clock = dates.SystemClock()
	}

	return Model{
		Selector:   engine.SelectorUnassignedAndDue,
		Keys:       defaultKeyMap(),
		QuickAdd:   input,
		Spinner:    spin,
		HelpView:   help.New(),
		Loading:    true,
		Completing: make(map[string]bool),
		Unsynced:   make(map[string]bool),
		store:      store,
		lifecycle:  lifecycle,
		clock:      clock,
	}
}

// recompute re-derives the visible rows from the current task set. It runs
// after every data change; classification is pure, so this is always safe.
func (m *Model) recompute() {
	today := m.clock.Today()
	classifier := m.lifecycle.Classifier()

	rows, err := classifier.Filter(m.Tasks, m.Selector, today)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.Rows = rows
	m.Done = classifier.CompletedToday(m.Tasks, today)
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) replaceTask(task model.Task) {
	for i := range m.Tasks {
		if m.Tasks[i].ID == task.ID {
			m.Tasks[i] = task
			return
		}
	}
	m.Tasks = append(m.Tasks, task)
}

func (m Model) selectedRow() (engine.View, bool) {
	if len(m.Rows) == 0 || m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return engine.View{}, false
	}
	return m.Rows[m.Cursor], true
}

type TasksLoadedMsg struct {
	Tasks []model.Task
}

type TaskCompletedMsg struct {
	Result engine.Result
}

type TaskCreatedMsg struct {
	Task model.Task
}

type AppErrorMsg struct {
	Err error
}
