package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Bool("deleted", false, "Include soft-deleted tasks in the lookup")
}

func runShow(cmd *cobra.Command, args []string) error {
	includeDeleted, _ := cmd.Flags().GetBool("deleted")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], includeDeleted)
	if err != nil {
		return err
	}

	fmt.Println(renderTaskLine(t))
	fmt.Println()
	fmt.Println(t.Description)

	var meta []string
	if t.ParentID != "" {
		meta = append(meta, "parent: "+t.ParentID)
	}
	if t.DocID != "" {
		meta = append(meta, "doc: "+t.DocID)
	}
	if t.OutputRef != "" {
		meta = append(meta, "output: "+t.OutputRef)
	}
	if t.FailureNote != "" {
		meta = append(meta, "failure: "+t.FailureNote)
	}
	if t.Retries > 0 {
		meta = append(meta, fmt.Sprintf("retries: %d", t.Retries))
	}
	if t.Deleted() {
		meta = append(meta, fmt.Sprintf("deleted by %s: %s", t.DeletedBy, t.DeleteReason))
	}
	if len(meta) > 0 {
		fmt.Println()
		fmt.Println(dimStyle.Render(strings.Join(meta, "\n")))
	}

	edges, err := e.store.Edges(t.ID)
	if err != nil {
		return err
	}
	if len(edges) > 0 {
		fmt.Println()
		fmt.Println("Dependencies:")
		for _, edge := range edges {
			fmt.Printf("  %s -> %s (%s)\n", edge.FromID, edge.ToID, edge.Type)
		}
	}

	return nil
}
