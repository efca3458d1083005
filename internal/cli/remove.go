package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Soft-delete a task",
	Long: `Soft-delete a task. The row survives as a tombstone for audit and can
be restored; --hard erases it permanently along with its edges and notes
(the audit trail is kept).`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a soft-deleted task",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	removeCmd.Flags().StringP("reason", "r", "", "Why the task is being removed")
	removeCmd.Flags().Bool("hard", false, "Erase the task permanently")
}

func runRemove(cmd *cobra.Command, args []string) error {
	reason, _ := cmd.Flags().GetString("reason")
	hard, _ := cmd.Flags().GetBool("hard")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], true)
	if err != nil {
		return err
	}

	if hard {
		if err := e.store.HardDelete(t.ID); err != nil {
			return err
		}
		fmt.Printf("Erased %s permanently.\n", t.ID)
		return nil
	}

	if err := e.store.SoftDelete(t.ID, reason, e.actor); err != nil {
		return err
	}
	fmt.Printf("Removed %s.\n", t.ID)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], true)
	if err != nil {
		return err
	}

	restored, err := e.store.Restore(t.ID)
	if err != nil {
		return err
	}
	fmt.Println(renderTaskLine(restored))
	return nil
}
