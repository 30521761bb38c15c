package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/konstanta-tech/tracker/internal/board"
	"github.com/konstanta-tech/tracker/internal/models"
)

const columnWidth = 28

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3b4261")).
			Padding(0, 1).
			Width(columnWidth)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))

	priorityStyles = map[string]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
	}
)

var columnTitles = map[string]string{
	models.TaskStatusTodo:       "To do",
	models.TaskStatusInProgress: "In progress",
	models.TaskStatusDone:       "Done",
}

// renderBoard draws the three columns side by side.
func renderBoard(cols board.Columns, userName func(uint) string) string {
	rendered := make([]string, 0, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		tasks := cols.ByStatus(status)
		lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[status], len(tasks)))}
		for _, t := range tasks {
			lines = append(lines, renderCard(t, userName))
		}
		if len(tasks) == 0 {
			lines = append(lines, dimStyle.Render("empty"))
		}
		rendered = append(rendered, columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderCard(t models.Task, userName func(uint) string) string {
	title := truncate(fmt.Sprintf("#%d %s", t.ID, t.Title), columnWidth-2)
	meta := priorityStyle(t.Priority).Render(t.Priority)
	if t.AssignedTo != nil {
		meta += dimStyle.Render(" @" + displayName(*t.AssignedTo, userName))
	}
	if t.Deadline != nil {
		meta += dimStyle.Render(" due " + t.Deadline.Format("Jan 02"))
	}
	return title + "\n" + meta
}

// renderList prints one task per line in the given order.
func renderList(tasks []models.Task, userName func(uint) string) string {
	var b strings.Builder
	for _, t := range tasks {
		assignee := "-"
		if t.AssignedTo != nil {
			assignee = displayName(*t.AssignedTo, userName)
		}
		deadline := "-"
		if t.Deadline != nil {
			deadline = t.Deadline.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "#%-4d %-12s %-7s %-10s %-14s %s\n",
			t.ID, t.Status, t.Priority, deadline, truncate(assignee, 14), t.Title)
	}
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("no tasks match") + "\n")
	}
	return b.String()
}

func renderComments(comments []models.Comment, userName func(uint) string) string {
	var b strings.Builder
	for _, c := range comments {
		fmt.Fprintf(&b, "%s %s\n  %s\n",
			headerStyle.Render(displayName(c.UserID, userName)),
			dimStyle.Render(c.CreatedAt.Format("2006-01-02 15:04")),
			c.Text)
		for _, att := range c.Attachments {
			fmt.Fprintf(&b, "  [%s, %d bytes]\n", att.Name, att.Size)
		}
	}
	if len(comments) == 0 {
		b.WriteString(dimStyle.Render("no comments") + "\n")
	}
	return b.String()
}

func priorityStyle(p string) lipgloss.Style {
	if s, ok := priorityStyles[p]; ok {
		return s
	}
	return dimStyle
}

func displayName(id uint, userName func(uint) string) string {
	if name := userName(id); name != "" {
		return name
	}
	return fmt.Sprintf("user %d", id)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
