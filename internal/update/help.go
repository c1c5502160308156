package update

const helpMarkdown = `# taskcycle

Tasks are bucketed against today: overdue, due today, due tomorrow, this
week, this month, later, or someday. A completed recurring task whose next
occurrence has already slipped shows up again as overdue.

## Keys

| Key | Action |
|-----|--------|
| tab / shift+tab | switch view |
| 1–5 | jump to view |
| ↑/k ↓/j | move cursor |
| enter / space | complete task |
| a | add task |
| r | refresh from server |
| ? | toggle this help |
| q | quit |

Completing a recurring task schedules its next occurrence automatically.
Tasks completed while offline are marked ~unsynced and retried in the
background.
`
