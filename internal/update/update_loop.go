package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"taskcycle/internal/engine"
	"taskcycle/internal/model"
	"taskcycle/internal/views"
)

const requestBudget = 30 * time.Second

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.loadTasksCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(typed)
		return m, cmd

	case TasksLoadedMsg:
		m.Loading = false
		m.Tasks = typed.Tasks
		m.Status = StatusBar{Text: fmt.Sprintf("%d tasks", len(typed.Tasks))}
		m.recompute()
		return m, nil

	case TaskCompletedMsg:
		delete(m.Completing, typed.Result.Task.ID)
		m.replaceTask(typed.Result.Task)
		switch typed.Result.Outcome {
		case engine.OutcomeCompleted:
			m.Status = StatusBar{Text: "completed: " + typed.Result.Task.Title}
			delete(m.Unsynced, typed.Result.Task.ID)
		case engine.OutcomeAlreadyComplete:
			m.Status = StatusBar{Text: "already complete: " + typed.Result.Task.Title}
		case engine.OutcomeCompletedUnsynced:
			m.Status = StatusBar{Text: "completed locally, will sync: " + typed.Result.Task.Title}
			m.Unsynced[typed.Result.Task.ID] = true
		}
		m.recompute()
		return m, nil

	case TaskCreatedMsg:
		m.replaceTask(typed.Task)
		m.Status = StatusBar{Text: "added: " + typed.Task.Title}
		m.recompute()
		return m, nil

	case AppErrorMsg:
		m.Loading = false
		m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Adding {
		return m.handleQuickAddKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible && m.helpText == "" {
			m.helpText = views.RenderMarkdown(helpMarkdown)
		}
		return m, nil

	case key.Matches(msg, m.Keys.NextTab):
		m.Selector = cycleSelector(m.Selector, 1)
		m.Cursor = 0
		m.recompute()
		return m, nil

	case key.Matches(msg, m.Keys.PrevTab):
		m.Selector = cycleSelector(m.Selector, -1)
		m.Cursor = 0
		m.recompute()
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}
		return m, nil

	case key.Matches(msg, m.Keys.Refresh):
		m.Loading = true
		return m, m.loadTasksCmd()

	case key.Matches(msg, m.Keys.Add):
		m.Adding = true
		m.QuickAdd.SetValue("")
		return m, m.QuickAdd.Focus()

	case key.Matches(msg, m.Keys.Complete):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if m.Completing[row.Task.ID] {
			// One completion per task at a time.
			return m, nil
		}
		m.Completing[row.Task.ID] = true
		m.Status = StatusBar{Text: "completing: " + row.Task.Title}
		return m, m.completeTaskCmd(row.Task)
	}

	if n := numberKey(msg.String()); n >= 1 && n <= len(selectorTabs) {
		m.Selector = selectorTabs[n-1]
		m.Cursor = 0
		m.recompute()
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Adding = false
		m.QuickAdd.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.QuickAdd.Value())
		m.Adding = false
		m.QuickAdd.Blur()
		if title == "" {
			return m, nil
		}
		return m, m.createTaskCmd(title)
	}
	var cmd tea.Cmd
	m.QuickAdd, cmd = m.QuickAdd.Update(msg)
	return m, cmd
}

func (m Model) loadTasksCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestBudget)
		defer cancel()
		tasks, err := store.ListTasks(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks}
	}
}

func (m Model) completeTaskCmd(task model.Task) tea.Cmd {
	lifecycle := m.lifecycle
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestBudget)
		defer cancel()
		result, err := lifecycle.Complete(ctx, task)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TaskCompletedMsg{Result: result}
	}
}

func (m Model) createTaskCmd(title string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestBudget)
		defer cancel()
		created, err := store.CreateTask(ctx, model.Task{Title: title, CreatedAt: time.Now()})
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return TaskCreatedMsg{Task: created}
	}
}

func cycleSelector(current engine.Selector, dir int) engine.Selector {
	for i, sel := range selectorTabs {
		if sel == current {
			next := (i + dir + len(selectorTabs)) % len(selectorTabs)
			return selectorTabs[next]
		}
	}
	return selectorTabs[0]
}

func numberKey(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0
	}
	return int(s[0] - '0')
}
