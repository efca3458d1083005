package briefing

import (
	"strings"
	"testing"

	"github.com/humont/shikigami-sub001/internal/store"
	"github.com/humont/shikigami-sub001/internal/task"
	"github.com/humont/shikigami-sub001/internal/testutil"
)

func TestGenerateCollectsPredecessorContext(t *testing.T) {
	t.Parallel()
	s := testutil.NewStore(t)

	dep, err := s.Create("set up schema", "create the tables", store.CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	tk, err := s.Create("build queries", "write the query layer", store.CreateOptions{
		DependsOn: []string{dep.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Claim(dep.ID, "spirit-1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Finish(dep.ID, "abc123", "spirit-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendLedger(dep.ID, task.LedgerHandoff, "schema uses WITHOUT ROWID", "spirit-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendLedger(tk.ID, task.LedgerLearning, "query planner dislikes OR", "spirit-2"); err != nil {
		t.Fatal(err)
	}

	b, err := Generate(s, tk.ID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(b.BlockingDeps) != 1 || b.BlockingDeps[0].ID != dep.ID {
		t.Errorf("blocking deps = %+v", b.BlockingDeps)
	}
	if len(b.Handoffs) != 1 || b.Handoffs[0].Entry.Content != "schema uses WITHOUT ROWID" {
		t.Errorf("handoffs = %+v", b.Handoffs)
	}
	if len(b.Learnings) != 1 {
		t.Errorf("learnings = %+v", b.Learnings)
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()
	s := testutil.NewStore(t)

	dep, err := s.Create("groundwork", "lay it", store.CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	tk, err := s.Create("the real work", "do it properly", store.CreateOptions{
		DependsOn: []string{dep.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Claim(dep.ID, "spirit-1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Finish(dep.ID, "abc123", "spirit-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendLedger(dep.ID, task.LedgerHandoff, "watch out for the flaky test", "spirit-1"); err != nil {
		t.Fatal(err)
	}

	b, err := Generate(s, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	out := b.Render()

	if !strings.Contains(out, "# Briefing: the real work") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "do it properly") {
		t.Error("missing description")
	}
	if !strings.Contains(out, "## Dependencies") || !strings.Contains(out, dep.ID) {
		t.Error("missing dependency section")
	}
	if !strings.Contains(out, "watch out for the flaky test") {
		t.Error("missing handoff content")
	}
}

func TestGenerateMissingTask(t *testing.T) {
	t.Parallel()
	s := testutil.NewStore(t)

	if _, err := Generate(s, "sg-none"); err == nil {
		t.Fatal("expected error for unknown task")
	}
}
