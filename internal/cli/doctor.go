package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humont/shikigami-sub001/internal/config"
	"github.com/humont/shikigami-sub001/internal/docref"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check installation and database health",
	Long:  `Runs diagnostic checks on the shikigami installation and reports pass/fail for each component.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	passed := 0
	failed := 0

	check := func(name string, ok bool, detail string) {
		if ok {
			fmt.Printf("  ✓ %s\n", name)
			passed++
		} else {
			fmt.Printf("  ✗ %s — %s\n", name, detail)
			failed++
		}
	}

	fmt.Println("Installation:")
	check("~/.shikigami/ directory", exists(config.GlobalDirPath()), "run: shiki init --global")
	check("~/.shikigami/config.yaml", exists(config.GlobalConfigPath()), "run: shiki init --global")

	cfg, cfgErr := config.Load()

	fmt.Println()
	fmt.Println("Configuration:")
	if cfgErr != nil {
		check("config readable", false, cfgErr.Error())
	} else {
		check("config readable", true, "")
		fmt.Printf("  → database: %s\n", cfg.StorePath())
		fmt.Printf("  → id prefix: %s\n", cfg.Store.IDPrefix)
	}

	fmt.Println()
	fmt.Println("Database:")
	dbPath := ""
	if cfg != nil {
		dbPath = cfg.StorePath()
		if dbFlag != "" {
			dbPath = dbFlag
		}
	}
	check("database file", dbPath != "" && exists(dbPath), "created on first use")

	if dbPath != "" && exists(dbPath) {
		e, err := openEnv()
		if err != nil {
			check("database opens", false, err.Error())
		} else {
			defer e.close()
			check("database opens", true, "")

			tasks, err := e.store.List()
			check("tasks readable", err == nil, fmt.Sprintf("%v", err))
			if err == nil {
				fmt.Printf("  → %d live task(s)\n", len(tasks))
			}

			if e.index != nil {
				_, err := e.index.Search("doctor", 1)
				check("search index", err == nil, fmt.Sprintf("%v", err))
			}

			// Referenced documents that no longer exist on disk
			orphans, err := docref.FindOrphans(e.store, cfg.Docs.Dir, cfg.Docs.Ext)
			check("document references resolve", err == nil && len(orphans) == 0,
				orphanDetail(orphans, err))
		}
	}

	fmt.Println()
	fmt.Println("Project (current directory):")
	check(".shikigami/config.yaml", exists(config.ProjectConfigPath()), "run: shiki init")

	fmt.Println()
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)
	return nil
}

func orphanDetail(orphans []docref.Orphan, err error) string {
	if err != nil {
		return err.Error()
	}
	if len(orphans) == 0 {
		return ""
	}
	return fmt.Sprintf("%d task(s) reference missing documents, first: %s -> %s",
		len(orphans), orphans[0].TaskID, orphans[0].Path)
}
