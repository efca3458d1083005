package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/task"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependency edges",
}

var depAddCmd = &cobra.Command{
	Use:   "add <from> <to>",
	Short: "Add or retype an edge between two tasks",
	Long: `Add a typed edge from one task to another. An existing edge between
the same pair is retyped rather than duplicated. Adding an edge never
demotes an already-ready task; attach dependencies at creation with
--dep when ordering matters.`,
	Args: cobra.ExactArgs(2),
	RunE: runDepAdd,
}

var depRmCmd = &cobra.Command{
	Use:   "rm <from> <to>",
	Short: "Remove the edge between two tasks",
	Args:  cobra.ExactArgs(2),
	RunE:  runDepRm,
}

var depTreeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the dependency graph under a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepTree,
}

func init() {
	depAddCmd.Flags().StringP("type", "t", string(task.EdgeBlocks), "Edge type: blocks, parent-child, related, discovered-from")
	depTreeCmd.Flags().Int("depth", -1, "Traversal depth limit (-1 for unbounded)")

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRmCmd)
	depCmd.AddCommand(depTreeCmd)
}

func runDepAdd(cmd *cobra.Command, args []string) error {
	edgeType, _ := cmd.Flags().GetString("type")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	from, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}
	to, err := e.store.FindByPrefix(args[1], false)
	if err != nil {
		return err
	}

	et, err := task.ParseEdgeType(edgeType)
	if err != nil {
		return err
	}
	if err := e.store.AddEdge(from.ID, to.ID, et); err != nil {
		return err
	}

	fmt.Printf("%s -> %s (%s)\n", from.ID, to.ID, et)
	return nil
}

func runDepRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	from, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}
	to, err := e.store.FindByPrefix(args[1], false)
	if err != nil {
		return err
	}

	if err := e.store.RemoveEdge(from.ID, to.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s -> %s\n", from.ID, to.ID)
	return nil
}

func runDepTree(cmd *cobra.Command, args []string) error {
	depth, _ := cmd.Flags().GetInt("depth")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	root, err := e.store.FindByPrefix(args[0], false)
	if err != nil {
		return err
	}

	graph, err := e.store.Traverse(root.ID, depth)
	if err != nil {
		return err
	}

	printTree(e, root.ID, graph, 0, map[string]bool{})
	return nil
}

// printTree renders the graph depth-first. A node already printed on the
// current walk shows as a back-reference, which keeps cycles finite.
func printTree(e *env, id string, graph map[string][]task.DepEdge, indent int, seen map[string]bool) {
	pad := strings.Repeat("  ", indent)
	t, err := e.store.Get(id, true)
	if err != nil {
		fmt.Printf("%s%s (missing)\n", pad, id)
		return
	}

	if seen[id] {
		fmt.Printf("%s%s %s (see above)\n", pad, idStyle.Render(t.ID), t.Title)
		return
	}
	seen[id] = true

	fmt.Printf("%s%s %s %s\n", pad, idStyle.Render(t.ID), renderStatus(t.Status), t.Title)

	edges := graph[id]
	sort.Slice(edges, func(i, j int) bool { return edges[i].ToID < edges[j].ToID })
	for _, edge := range edges {
		printTree(e, edge.ToID, graph, indent+1, seen)
	}
}
