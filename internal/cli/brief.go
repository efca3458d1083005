package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/briefing"
)

var briefCmd = &cobra.Command{
	Use:   "brief <id>",
	Short: "Generate a worker briefing for a task",
	Long: `Generate a markdown briefing for a task: its description, the state of
its blocking dependencies, the handoff notes those dependencies left, and
any learnings recorded on the task itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrief,
}

func runBrief(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	b, err := briefing.Generate(e.store, t.ID)
	if err != nil {
		return err
	}

	fmt.Print(b.Render())
	return nil
}
