package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/config"
	"github.com/humont/shikigami-sub001/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize shikigami in current directory or globally",
	Long: `Initialize a shikigami workspace.

Without flags: Creates .shikigami/ in the current directory for project-specific configuration.
With --global: Creates ~/.shikigami/ with the global config and task database.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("global", false, "Initialize global installation at ~/.shikigami/")
	initCmd.Flags().Bool("force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	global, _ := cmd.Flags().GetBool("global")
	force, _ := cmd.Flags().GetBool("force")

	if global {
		return initGlobal(force)
	}
	return initProject(force)
}

func initGlobal(force bool) error {
	dir := config.GlobalDirPath()

	configPath := filepath.Join(dir, "config.yaml")
	if exists(configPath) && !force {
		return fmt.Errorf("~/.shikigami already initialized (use --force to overwrite)")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := config.WriteDefault(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Create the database so doctor passes immediately
	s, err := store.Open(filepath.Join(dir, "tasks.db"))
	if err != nil {
		return fmt.Errorf("failed to create task database: %w", err)
	}
	s.Close()

	fmt.Println("Initialized global shikigami at ~/.shikigami/")
	fmt.Println("")
	fmt.Println("Created:")
	fmt.Println("  ~/.shikigami/config.yaml  - Configuration")
	fmt.Println("  ~/.shikigami/tasks.db     - Task database")
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("  1. cd to a project directory")
	fmt.Println("  2. Run: shiki init")
	fmt.Println("  3. Create a task: shiki create \"First task\" -d \"what to do\"")

	return nil
}

func initProject(force bool) error {
	dir := config.ProjectDirPath()

	configPath := filepath.Join(dir, "config.yaml")
	if exists(configPath) && !force {
		return fmt.Errorf(".shikigami already initialized (use --force to overwrite)")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if err := config.WriteProjectDefault(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Println("Initialized shikigami in current project")
	fmt.Println("")
	fmt.Println("Created:")
	fmt.Println("  .shikigami/config.yaml  - Project configuration")
	fmt.Println("")
	fmt.Println("Tasks go to the global database unless store.path is overridden here.")

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
