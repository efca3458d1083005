package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/humont/shikigami-sub001/internal/task"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	src := newTestStore(t)

	a := mustCreate(t, src, "base", CreateOptions{})
	b, err := src.Create("on top", "second", CreateOptions{DependsOn: []string{a.ID}, Priority: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := src.AppendLedger(a.ID, task.LedgerLearning, "watch the fk pragma", "tester"); err != nil {
		t.Fatalf("append ledger: %v", err)
	}
	gone := mustCreate(t, src, "doomed", CreateOptions{})
	if err := src.SoftDelete(gone.ID, "obsolete", "tester"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	snap, err := src.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snap.Tasks) != 3 {
		t.Fatalf("exported %d tasks, want 3", len(snap.Tasks))
	}
	if len(snap.Edges) != 1 {
		t.Fatalf("exported %d edges, want 1", len(snap.Edges))
	}
	if len(snap.Ledger) != 1 {
		t.Fatalf("exported %d ledger entries, want 1", len(snap.Ledger))
	}

	dst, err := Open(filepath.Join(t.TempDir(), "copy.db"))
	if err != nil {
		t.Fatalf("open dst: %v", err)
	}
	t.Cleanup(func() { dst.Close() })

	if err := dst.Import(snap); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := dst.Get(b.ID, false)
	if err != nil {
		t.Fatalf("get after import: %v", err)
	}
	if got.Status != b.Status || got.Priority != 3 {
		t.Fatalf("imported task mismatch: %+v", got)
	}

	edges, err := dst.BlockingEdges(b.ID)
	if err != nil {
		t.Fatalf("edges after import: %v", err)
	}
	if len(edges) != 1 || edges[0].ToID != a.ID {
		t.Fatalf("imported edges = %+v", edges)
	}

	if _, err := dst.Get(gone.ID, false); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("tombstone should stay hidden, got %v", err)
	}
	tomb, err := dst.Get(gone.ID, true)
	if err != nil {
		t.Fatalf("tombstone lookup: %v", err)
	}
	if !tomb.Deleted() || tomb.DeleteReason != "obsolete" {
		t.Fatalf("tombstone fields lost: %+v", tomb)
	}

	entries, err := dst.Ledger(a.ID, "")
	if err != nil {
		t.Fatalf("ledger after import: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "watch the fk pragma" {
		t.Fatalf("imported ledger = %+v", entries)
	}
}

func TestImportCollisionRollsBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	existing := mustCreate(t, s, "already here", CreateOptions{})

	snap := &Snapshot{Tasks: []*task.Task{
		{ID: "sg-new1", Title: "fresh", Description: "x", Status: task.StatusReady,
			CreatedAt: existing.CreatedAt, UpdatedAt: existing.UpdatedAt},
		{ID: existing.ID, Title: "dupe", Description: "y", Status: task.StatusReady,
			CreatedAt: existing.CreatedAt, UpdatedAt: existing.UpdatedAt},
	}}

	if err := s.Import(snap); err == nil {
		t.Fatal("expected import to fail on id collision")
	}

	// The non-colliding task must not have been kept
	if _, err := s.Get("sg-new1", true); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("partial import leaked: %v", err)
	}
}
