// Package cli implements the shiki command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/config"
	"github.com/humont/shikigami-sub001/internal/search"
	"github.com/humont/shikigami-sub001/internal/store"
)

var (
	verbose   bool
	dbFlag    string
	actorFlag string
	rootCmd   *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "shiki",
		Short: "Shikigami - task dependency graph for agent swarms",
		Long: `Shikigami tracks units of work and the dependencies between them.

Tasks move from blocked to ready as their dependencies finish; workers claim
ready tasks atomically, record outcomes, and leave handoff notes for the
tasks they unblock.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to the task database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "Actor recorded on mutations (overrides config)")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(failCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(depCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// env bundles everything a command needs to talk to the datastore.
type env struct {
	cfg   *config.Config
	store *store.Store
	index *search.Index // nil when search is disabled
	log   *slog.Logger
	actor string
}

func (e *env) close() {
	if e.index != nil {
		e.index.Close()
	}
	e.store.Close()
}

// openEnv loads config, applies flag overrides and opens the datastore.
func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dbPath := cfg.StorePath()
	if dbFlag != "" {
		dbPath = dbFlag
	}
	actor := cfg.Actor
	if actorFlag != "" {
		actor = actorFlag
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var (
		ix   *search.Index
		opts = []store.Option{
			store.WithLogger(log),
			store.WithIDPrefix(cfg.Store.IDPrefix),
		}
	)
	if cfg.Search.Enabled {
		ix, err = search.Open(indexPath(dbPath))
		if err != nil {
			return nil, fmt.Errorf("open search index: %w", err)
		}
		opts = append(opts, store.WithIndexer(ix))
	}

	s, err := store.Open(dbPath, opts...)
	if err != nil {
		if ix != nil {
			ix.Close()
		}
		return nil, err
	}

	return &env{cfg: cfg, store: s, index: ix, log: log, actor: actor}, nil
}

// indexPath returns the FTS sidecar path for a given database path.
func indexPath(dbPath string) string {
	return dbPath + ".fts"
}
