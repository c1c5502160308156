// Package views renders the TUI from plain data structs so the update layer
// stays free of presentation concerns.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"taskcycle/internal/engine"
)

type Tab struct {
	Label  string
	Active bool
}

type TaskRow struct {
	Title    string
	Due      string
	State    engine.DueState
	Virtual  bool
	Unsynced bool
	Selected bool
}

type AppData struct {
	Header    string
	Tabs      []Tab
	Rows      []TaskRow
	DoneRows  []TaskRow
	Status    string
	IsError   bool
	Footer    string
	Input     string
	InputOpen bool
	Spinner   string
	Loading   bool
	Help      string
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabActive     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	tabInactive   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var badgeStyles = map[engine.DueState]lipgloss.Style{
	engine.StateOverdue:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	engine.StateDueToday:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	engine.StateDueTomorrow:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	engine.StateDueThisWeek:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	engine.StateDueThisMonth: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	engine.StateFuture:       dimStyle,
	engine.StateUnassigned:   dimStyle,
}

var badgeLabels = map[engine.DueState]string{
	engine.StateOverdue:      "overdue",
	engine.StateDueToday:     "today",
	engine.StateDueTomorrow:  "tomorrow",
	engine.StateDueThisWeek:  "this week",
	engine.StateDueThisMonth: "this month",
	engine.StateFuture:       "later",
	engine.StateUnassigned:   "someday",
}

func Badge(state engine.DueState) string {
	label, ok := badgeLabels[state]
	if !ok {
		label = string(state)
	}
	style, ok := badgeStyles[state]
	if !ok {
		style = dimStyle
	}
	return style.Render("[" + label + "]")
}

func RenderApp(data AppData) string {
	lines := []string{headerStyle.Render(data.Header)}

	tabs := make([]string, 0, len(data.Tabs))
	for _, tab := range data.Tabs {
		if tab.Active {
			tabs = append(tabs, tabActive.Render(tab.Label))
		} else {
			tabs = append(tabs, tabInactive.Render(tab.Label))
		}
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	body := renderRows(data.Rows, data.Loading, data.Spinner)
	if len(data.DoneRows) > 0 {
		body += "\n\n" + dimStyle.Render("done today") + "\n" + renderDone(data.DoneRows)
	}
	lines = append(lines, panelStyle.Width(72).Render(body))

	if data.InputOpen {
		lines = append(lines, panelStyle.Render(data.Input))
	}

	status := statusStyle.Render(data.Status)
	if data.IsError {
		status = errorStyle.Render(data.Status)
	}
	lines = append(lines, status)

	if data.Help != "" {
		lines = append(lines, panelStyle.Render(data.Help))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func renderRows(rows []TaskRow, loading bool, spinnerView string) string {
	if loading {
		return spinnerView + " loading tasks..."
	}
	if len(rows) == 0 {
		return dimStyle.Render("nothing here")
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		cursor := "  "
		if row.Selected {
			cursor = "> "
		}
		title := row.Title
		if row.Selected {
			title = selectedStyle.Render(title)
		}
		line := cursor + Badge(row.State) + " " + title
		if row.Due != "" {
			line += dimStyle.Render(" · " + row.Due)
		}
		if row.Virtual {
			line += dimStyle.Render(" (missed occurrence)")
		}
		if row.Unsynced {
			line += errorStyle.Render(" ~unsynced")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func renderDone(rows []TaskRow) string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, dimStyle.Render("  ✓ "+row.Title))
	}
	return strings.Join(out, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
