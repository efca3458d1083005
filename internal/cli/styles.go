package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/humont/shikigami-sub001/internal/task"
)

var (
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		task.StatusReady:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		task.StatusInReview:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		task.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		task.StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

func renderStatus(st task.Status) string {
	style, ok := statusStyles[st]
	if !ok {
		return string(st)
	}
	return style.Render(string(st))
}

// padStatus pads before styling so ANSI codes don't skew column widths.
func padStatus(st task.Status) string {
	style, ok := statusStyles[st]
	padded := fmt.Sprintf("%-11s", string(st))
	if !ok {
		return padded
	}
	return style.Render(padded)
}

// renderTaskLine formats a single task for list output.
func renderTaskLine(t *task.Task) string {
	line := fmt.Sprintf("%s  %s p%d  %s",
		idStyle.Render(t.ID), padStatus(t.Status), t.Priority, titleStyle.Render(t.Title))
	if t.Assignee != "" {
		line += dimStyle.Render("  @" + t.Assignee)
	}
	if t.Deleted() {
		line += dimStyle.Render("  (deleted)")
	}
	return line
}
