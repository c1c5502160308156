package update

import (
	"taskcycle/internal/views"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	data := views.AppData{
		Header:    "taskcycle",
		Status:    m.Status.Text,
		IsError:   m.Status.IsError,
		Loading:   m.Loading,
		Spinner:   m.Spinner.View(),
		Footer:    m.HelpView.ShortHelpView(m.Keys.ShortHelp()),
		InputOpen: m.Adding,
		Input:     "add task: " + m.QuickAdd.View(),
	}
	if m.HelpVisible {
		data.Help = m.helpText
	}

	for _, sel := range selectorTabs {
		data.Tabs = append(data.Tabs, views.Tab{
			Label:  tabLabels[sel],
			Active: sel == m.Selector,
		})
	}

	for i, row := range m.Rows {
		due := row.Task.DueDate
		if !row.EffectiveDue.IsZero() {
			due = row.EffectiveDue.String()
		}
		data.Rows = append(data.Rows, views.TaskRow{
			Title:    row.Task.Title,
			Due:      due,
			State:    row.State,
			Virtual:  row.VirtualPending,
			Unsynced: m.Unsynced[row.Task.ID],
			Selected: i == m.Cursor,
		})
	}
	for _, row := range m.Done {
		data.DoneRows = append(data.DoneRows, views.TaskRow{
			Title: row.Task.Title,
			State: row.State,
		})
	}
	return views.RenderApp(data)
}
