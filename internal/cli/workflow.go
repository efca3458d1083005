package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var claimCmd = &cobra.Command{
	Use:   "claim <id>",
	Short: "Claim a ready task",
	Long: `Atomically claim a ready task. Exactly one of several racing workers
wins; the others are told who holds the task.`,
	Args: cobra.ExactArgs(1),
	RunE: runClaim,
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Finish a task and promote whatever it unblocked",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var failCmd = &cobra.Command{
	Use:   "fail <id>",
	Short: "Mark a task failed",
	Args:  cobra.ExactArgs(1),
	RunE:  runFail,
}

var restartCmd = &cobra.Command{
	Use:   "restart <id>",
	Short: "Send a failed task back to ready",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestart,
}

func init() {
	doneCmd.Flags().String("ref", "", "Where the output landed: commit, PR, file path (required)")
	failCmd.Flags().StringP("reason", "r", "", "Why the task failed (recorded as a handoff note)")
}

func runClaim(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	claimed, err := e.store.Claim(t.ID, e.actor)
	if err != nil {
		return err
	}

	fmt.Println(renderTaskLine(claimed))

	// Surface predecessor context so the worker starts informed
	handoffs, err := e.store.PredecessorHandoffs(claimed.ID)
	if err != nil {
		return err
	}
	if len(handoffs) > 0 {
		fmt.Println()
		fmt.Println("Handoffs from dependencies:")
		for _, h := range handoffs {
			fmt.Printf("  [%s] %s: %s\n", h.TaskID, h.TaskTitle, h.Entry.Content)
		}
	}
	return nil
}

func runDone(cmd *cobra.Command, args []string) error {
	ref, _ := cmd.Flags().GetString("ref")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	finished, unblocked, err := e.store.Finish(t.ID, ref, e.actor)
	if err != nil {
		return err
	}

	fmt.Println(renderTaskLine(finished))
	for _, u := range unblocked {
		fmt.Printf("Unblocked: %s\n", renderTaskLine(u))
	}
	return nil
}

func runFail(cmd *cobra.Command, args []string) error {
	reason, _ := cmd.Flags().GetString("reason")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	failed, err := e.store.Fail(t.ID, reason, e.actor)
	if err != nil {
		return err
	}

	fmt.Println(renderTaskLine(failed))
	return nil
}

func runRestart(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	restarted, err := e.store.Restart(t.ID, e.actor)
	if err != nil {
		return err
	}

	fmt.Printf("%s (attempt %d)\n", renderTaskLine(restarted), restarted.Retries+1)
	return nil
}
