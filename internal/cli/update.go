package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/task"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a task to another status",
	Long: `Apply a direct status transition, e.g. in_progress -> in_review.
Illegal transitions are rejected; use claim, done, fail and restart for
the transitions they cover.`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

var assignCmd = &cobra.Command{
	Use:   "assign <id> [worker]",
	Short: "Set or clear a task's assignee",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAssign,
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	next, err := task.ParseStatus(args[1])
	if err != nil {
		return err
	}

	updated, err := e.store.UpdateStatus(t.ID, next, e.actor)
	if err != nil {
		return err
	}
	fmt.Println(renderTaskLine(updated))
	return nil
}

func runAssign(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	worker := ""
	if len(args) == 2 {
		worker = args[1]
	}

	updated, err := e.store.UpdateAssignee(t.ID, worker, e.actor)
	if err != nil {
		return err
	}
	if worker == "" {
		fmt.Printf("Cleared assignee on %s\n", updated.ID)
		return nil
	}
	fmt.Println(renderTaskLine(updated))
	return nil
}
