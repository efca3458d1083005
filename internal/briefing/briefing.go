// Package briefing assembles the context a worker should read before
// starting a task: the task itself, its dependency state, and the handoff
// notes left behind by the finished tasks it was blocked on.
package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/humont/shikigami-sub001/internal/store"
	"github.com/humont/shikigami-sub001/internal/task"
)

// Briefing holds everything gathered for one task.
type Briefing struct {
	Task         *task.Task
	BlockingDeps []DepState
	Handoffs     []store.PredecessorHandoff
	Learnings    []task.LedgerEntry
}

// DepState is the readiness-relevant state of one blocking dependency.
type DepState struct {
	ID     string
	Title  string
	Status task.Status
}

// Generate collects the briefing for a task from the store.
func Generate(s *store.Store, taskID string) (*Briefing, error) {
	tk, err := s.Get(taskID, false)
	if err != nil {
		return nil, err
	}

	b := &Briefing{Task: tk}

	edges, err := s.BlockingEdges(tk.ID)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		dep, err := s.Get(e.ToID, true)
		if err != nil {
			return nil, err
		}
		b.BlockingDeps = append(b.BlockingDeps, DepState{
			ID:     dep.ID,
			Title:  dep.Title,
			Status: dep.Status,
		})
	}

	b.Handoffs, err = s.PredecessorHandoffs(tk.ID)
	if err != nil {
		return nil, err
	}

	// The task's own learnings round out the picture for a retry.
	b.Learnings, err = s.Ledger(tk.ID, task.LedgerLearning)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// Render converts the briefing to markdown.
func (b *Briefing) Render() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Briefing: %s (%s)\n\n", b.Task.Title, b.Task.ID))
	sb.WriteString(fmt.Sprintf("Status: %s", b.Task.Status))
	if b.Task.Assignee != "" {
		sb.WriteString(fmt.Sprintf(" (assigned to %s)", b.Task.Assignee))
	}
	sb.WriteString("\n\n")
	sb.WriteString(b.Task.Description)
	sb.WriteString("\n")

	if len(b.BlockingDeps) > 0 {
		sb.WriteString("\n## Dependencies\n\n")
		for _, d := range b.BlockingDeps {
			sb.WriteString(fmt.Sprintf("- %s %s [%s]\n", d.ID, d.Title, d.Status))
		}
	}

	if len(b.Handoffs) > 0 {
		sb.WriteString("\n## Handoffs from finished dependencies\n\n")
		for _, h := range b.Handoffs {
			sb.WriteString(fmt.Sprintf("### %s (%s, %s)\n\n", h.TaskTitle, h.TaskID,
				formatAge(time.Since(h.Entry.CreatedAt))))
			sb.WriteString(h.Entry.Content)
			sb.WriteString("\n\n")
		}
	}

	if len(b.Learnings) > 0 {
		sb.WriteString("\n## Learnings on this task\n\n")
		for _, l := range b.Learnings {
			sb.WriteString(fmt.Sprintf("- %s\n", l.Content))
		}
	}

	return sb.String()
}

func formatAge(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
