package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/task"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List live tasks ordered by priority, oldest first within a priority.`,
	RunE:  runList,
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List claimable tasks",
	Long: `Promote every eligible blocked task, then list the ready ones.
The promotion pass is idempotent, so running ready repeatedly is safe.`,
	RunE: runReady,
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Only tasks with this status")
	listCmd.Flags().Bool("active", false, "Only tasks that are not done or failed")
}

func runList(cmd *cobra.Command, args []string) error {
	statusFilter, _ := cmd.Flags().GetString("status")
	active, _ := cmd.Flags().GetBool("active")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	var tasks []*task.Task
	switch {
	case statusFilter != "":
		st, err := task.ParseStatus(statusFilter)
		if err != nil {
			return err
		}
		tasks, err = e.store.ListByStatus(st)
		if err != nil {
			return err
		}
	case active:
		tasks, err = e.store.ListActive()
		if err != nil {
			return err
		}
	default:
		tasks, err = e.store.List()
		if err != nil {
			return err
		}
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	for _, t := range tasks {
		fmt.Println(renderTaskLine(t))
	}
	return nil
}

func runReady(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	promoted, err := e.store.PromoteEligible()
	if err != nil {
		return err
	}
	if promoted > 0 {
		fmt.Printf("Promoted %d task(s) to ready.\n", promoted)
	}

	tasks, err := e.store.ListByStatus(task.StatusReady)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("Nothing is ready.")
		return nil
	}
	for _, t := range tasks {
		fmt.Println(renderTaskLine(t))
	}
	return nil
}
