package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const columnWidth = 28

var (
	columnTitles = map[string]string{
		"notStarted": "Not Started",
		"inProgress": "In Progress",
		"inReview":   "In Review",
		"done":       "Done",
	}
	priorityColors = map[string]lipgloss.Color{
		"high":   lipgloss.Color("9"),
		"medium": lipgloss.Color("11"),
		"low":    lipgloss.Color("10"),
	}

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(columnWidth)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	projectStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderText draws the presentation selected by state for a terminal.
func RenderText(v View, state ViewState) string {
	if state.Mode == TableMode {
		return renderTableText(v.Table)
	}
	return renderKanbanText(v.Kanban)
}

func renderKanbanText(k Kanban) string {
	cols := make([]string, 0, len(k.Columns))
	for _, c := range k.Columns {
		parts := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[c.Key], len(c.Cards)))}
		for _, card := range c.Cards {
			parts = append(parts, renderCard(card))
		}
		cols = append(cols, columnStyle.Render(strings.Join(parts, "\n\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderCard(c Card) string {
	lines := []string{projectStyle.Render(fmt.Sprintf("#%d %s", c.ID, c.Project))}
	if c.Description != "" {
		lines = append(lines, c.Description)
	}
	prio := priorityStyle(c.PriorityClass).Render(string(c.Priority))
	lines = append(lines, mutedStyle.Render(c.DueLabel)+"  "+prio)
	return strings.Join(lines, "\n")
}

func renderTableText(t Table) string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			fmt.Sprint(r.ID), r.Project, r.Description, r.DueDate, string(r.Progress),
			string(r.Priority), r.Requester, r.Assignee, r.Category,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Project", "Description", "Due Date", "Progress", "Priority", "Requester", "Assignee", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 5 && row >= 0 && row < len(t.Rows) {
				return s.Inherit(priorityStyle(t.Rows[row].PriorityClass))
			}
			return s
		}).
		String()
}

func priorityStyle(class string) lipgloss.Style {
	if c, ok := priorityColors[class]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle()
}
