package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/humont/shikigami-sub001/internal/store"
	"github.com/humont/shikigami-sub001/internal/task"
)

func TestRenderTaskLine(t *testing.T) {
	t.Parallel()

	tk := &task.Task{
		ID:        "sg-abcd",
		Title:     "wire the scheduler",
		Status:    task.StatusReady,
		Priority:  2,
		Assignee:  "kodama",
		CreatedAt: time.Now(),
	}

	line := renderTaskLine(tk)
	for _, want := range []string{"sg-abcd", "ready", "p2", "wire the scheduler", "@kodama"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "(deleted)") {
		t.Errorf("live task rendered as deleted: %q", line)
	}

	now := time.Now()
	tk.DeletedAt = &now
	if !strings.Contains(renderTaskLine(tk), "(deleted)") {
		t.Error("tombstone missing deleted marker")
	}
}

func TestPadStatusWidth(t *testing.T) {
	t.Parallel()

	// All statuses pad to the same printable width so columns line up
	for _, st := range task.AllStatuses {
		padded := fmt.Sprintf("%-11s", string(st))
		if !strings.Contains(padStatus(st), padded) {
			t.Errorf("padStatus(%s) = %q, want to contain %q", st, padStatus(st), padded)
		}
	}
}

func TestOpenEnvUsesDBFlag(t *testing.T) {
	dir := t.TempDir()
	dbFlag = filepath.Join(dir, "override.db")
	actorFlag = "tester"
	t.Cleanup(func() { dbFlag = ""; actorFlag = "" })

	e, err := openEnv()
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()

	if e.actor != "tester" {
		t.Errorf("actor = %q, want tester", e.actor)
	}

	tk, err := e.store.Create("flag routed", "lands in the override db", store.CreateOptions{Actor: e.actor})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tk.Status != task.StatusReady {
		t.Errorf("status = %s, want ready", tk.Status)
	}
}

func TestIndexPath(t *testing.T) {
	t.Parallel()

	if got := indexPath("/x/tasks.db"); got != "/x/tasks.db.fts" {
		t.Errorf("indexPath = %q", got)
	}
}
