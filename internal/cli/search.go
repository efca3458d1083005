package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over task titles and descriptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 10, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if e.index == nil {
		return fmt.Errorf("search is disabled (enable it in config: search.enabled)")
	}

	hits, err := e.index.Search(args[0], limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, h := range hits {
		fmt.Printf("%s  %-11s %s\n", idStyle.Render(h.ID), h.Status, h.Title)
	}
	return nil
}
