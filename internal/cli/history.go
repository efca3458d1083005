package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/task"
)

var auditCmd = &cobra.Command{
	Use:   "audit <id>",
	Short: "Show a task's mutation history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage handoff and learning notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <id> <content>",
	Short: "Attach a note to a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runNoteAdd,
}

var noteListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List a task's notes, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteList,
}

func init() {
	auditCmd.Flags().IntP("limit", "n", 0, "Show at most this many entries (0 for all)")
	noteAddCmd.Flags().StringP("type", "t", task.LedgerLearning, "Note type: handoff or learning")
	noteListCmd.Flags().StringP("type", "t", "", "Only notes of this type")

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], true)
	if err != nil {
		return err
	}

	entries, err := e.store.Audit(t.ID, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No history.")
		return nil
	}

	for _, entry := range entries {
		when := entry.CreatedAt.Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("%s  %-7s", when, entry.Operation)
		if entry.Field != "" {
			line += fmt.Sprintf(" %s: %q -> %q", entry.Field, entry.OldValue, entry.NewValue)
		}
		if entry.Actor != "" {
			line += dimStyle.Render("  by " + entry.Actor)
		}
		fmt.Println(line)
	}
	return nil
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	noteType, _ := cmd.Flags().GetString("type")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	entry, err := e.store.AppendLedger(t.ID, noteType, args[1], e.actor)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s note %s\n", entry.Type, entry.ID)
	return nil
}

func runNoteList(cmd *cobra.Command, args []string) error {
	typeFilter, _ := cmd.Flags().GetString("type")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	entries, err := e.store.Ledger(t.ID, typeFilter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No notes.")
		return nil
	}

	for _, entry := range entries {
		when := entry.CreatedAt.Format("2006-01-02 15:04")
		author := entry.AuthorID
		if author == "" {
			author = "unknown"
		}
		fmt.Printf("%s  [%s] %s: %s\n", when, entry.Type, author, entry.Content)
	}
	return nil
}
