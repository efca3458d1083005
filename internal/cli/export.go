package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/humont/shikigami-sub001/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the task graph as YAML",
	Long: `Dump every task, edge and note to YAML on stdout (or a file with -o).
Tombstones are included so a restored backup matches the original; the
audit trail is not exported.`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a YAML snapshot into the database",
	Long: `Load a snapshot produced by export. Ids, statuses and timestamps are
preserved. The import is all-or-nothing: a colliding task id rolls the
whole load back.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	snap, err := e.store.Export()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Exported %d task(s) to %s\n", len(snap.Tasks), output)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var snap store.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.Import(&snap); err != nil {
		return err
	}
	fmt.Printf("Imported %d task(s), %d edge(s), %d note(s)\n",
		len(snap.Tasks), len(snap.Edges), len(snap.Ledger))
	return nil
}
