package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/store"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task",
	Long: `Create a task. New tasks start blocked and are promoted to ready
immediately when they have no unfinished blocking dependencies, so a task
created without --dep is claimable at once.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringP("description", "d", "", "What the task is about (required)")
	createCmd.Flags().IntP("priority", "p", 0, "Scheduling weight, higher first")
	createCmd.Flags().String("parent", "", "Parent task id (adds a parent-child dependency)")
	createCmd.Flags().StringArray("dep", nil, "Task id this task depends on (repeatable)")
	createCmd.Flags().String("doc", "", "Requirements document id")
}

func runCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	priority, _ := cmd.Flags().GetInt("priority")
	parent, _ := cmd.Flags().GetString("parent")
	deps, _ := cmd.Flags().GetStringArray("dep")
	doc, _ := cmd.Flags().GetString("doc")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	// Resolve prefixes up front so errors name the bad reference
	if parent != "" {
		p, err := e.store.FindByPrefix(parent, false)
		if err != nil {
			return fmt.Errorf("parent %s: %w", parent, err)
		}
		parent = p.ID
	}
	resolved := make([]string, 0, len(deps))
	for _, d := range deps {
		t, err := e.store.FindByPrefix(d, false)
		if err != nil {
			return fmt.Errorf("dependency %s: %w", d, err)
		}
		resolved = append(resolved, t.ID)
	}

	t, err := e.store.Create(args[0], description, store.CreateOptions{
		Priority:  priority,
		ParentID:  parent,
		DocID:     doc,
		DependsOn: resolved,
		Actor:     e.actor,
	})
	if err != nil {
		return err
	}

	fmt.Println(renderTaskLine(t))
	return nil
}
