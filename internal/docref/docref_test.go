package docref

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/humont/shikigami-sub001/internal/store"
	"github.com/humont/shikigami-sub001/internal/testutil"
)

func TestPath(t *testing.T) {
	t.Parallel()

	got := Path("/docs", "feature-auth", "md")
	want := filepath.Join("/docs", "feature-auth.md")
	if got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}

	if got := Path("/docs", "feature-auth", ""); got != want {
		t.Fatalf("Path with empty ext = %q, want %q", got, want)
	}
}

func TestFindOrphans(t *testing.T) {
	t.Parallel()

	s := testutil.NewStore(t)
	docsDir := t.TempDir()

	present, err := s.Create("has doc", "documented", store.CreateOptions{DocID: "present"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	missing, err := s.Create("missing doc", "undocumented", store.CreateOptions{DocID: "missing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create("no doc", "plain", store.CreateOptions{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := os.WriteFile(filepath.Join(docsDir, "present.md"), []byte("# doc"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	orphans, err := FindOrphans(s, docsDir, "md")
	if err != nil {
		t.Fatalf("find orphans: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("got %d orphans, want 1: %+v", len(orphans), orphans)
	}
	if orphans[0].TaskID != missing.ID || orphans[0].DocID != "missing" {
		t.Fatalf("unexpected orphan %+v", orphans[0])
	}
	_ = present
}
