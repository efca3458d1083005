package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/humont/shikigami-sub001/internal/task"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "shiki.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, title string, opts CreateOptions) *task.Task {
	t.Helper()
	tk, err := s.Create(title, "description of "+title, opts)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return tk
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.Create("", "desc", CreateOptions{}); !errors.Is(err, task.ErrValidation) {
		t.Errorf("empty title: want validation error, got %v", err)
	}
	if _, err := s.Create("title", "  ", CreateOptions{}); !errors.Is(err, task.ErrValidation) {
		t.Errorf("blank description: want validation error, got %v", err)
	}
}

func TestCreateStartsReadyWithoutDeps(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	tk := mustCreate(t, s, "standalone", CreateOptions{})
	if tk.Status != task.StatusReady {
		t.Errorf("zero-dependency task should be ready after create, got %s", tk.Status)
	}
	if !strings.HasPrefix(tk.ID, "sg-") {
		t.Errorf("unexpected id format %q", tk.ID)
	}
	if tk.CreatedAt.IsZero() || tk.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetExcludesDeletedByDefault(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	tk := mustCreate(t, s, "doomed", CreateOptions{})
	if err := s.SoftDelete(tk.ID, "obsolete", "tester"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	if _, err := s.Get(tk.ID, false); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("default Get should miss tombstoned task, got %v", err)
	}

	got, err := s.Get(tk.ID, true)
	if err != nil {
		t.Fatalf("Get with includeDeleted failed: %v", err)
	}
	if !got.Deleted() {
		t.Error("expected tombstone fields to be set")
	}
	if got.DeleteReason != "obsolete" || got.DeletedBy != "tester" {
		t.Errorf("tombstone fields wrong: %+v", got)
	}
}

func TestFindByPrefix(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	tk := mustCreate(t, s, "addressable", CreateOptions{})

	// Exact match always resolves.
	got, err := s.FindByPrefix(tk.ID, false)
	if err != nil {
		t.Fatalf("exact lookup failed: %v", err)
	}
	if got.ID != tk.ID {
		t.Errorf("resolved wrong task %s", got.ID)
	}

	// A unique prefix resolves too.
	got, err = s.FindByPrefix(tk.ID[:len(tk.ID)-1], false)
	if err != nil {
		t.Fatalf("prefix lookup failed: %v", err)
	}
	if got.ID != tk.ID {
		t.Errorf("prefix resolved wrong task %s", got.ID)
	}

	// "sg-" matches every task; with two tasks that is ambiguous, which is
	// reported as not found rather than a separate error class.
	mustCreate(t, s, "second", CreateOptions{})
	if _, err := s.FindByPrefix("sg-", false); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("ambiguous prefix: want not found, got %v", err)
	}

	if _, err := s.FindByPrefix("zz-none", false); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("missing prefix: want not found, got %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	low := mustCreate(t, s, "low priority", CreateOptions{Priority: -1})
	oldHigh := mustCreate(t, s, "older high", CreateOptions{Priority: 5})
	newHigh := mustCreate(t, s, "newer high", CreateOptions{Priority: 5})

	all, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}

	// Priority descending; equal priority favors the older task.
	if all[0].ID != oldHigh.ID || all[1].ID != newHigh.ID || all[2].ID != low.ID {
		t.Errorf("wrong order: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestListActiveExcludesTerminal(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	done := mustCreate(t, s, "done soon", CreateOptions{})
	if _, err := s.Claim(done.ID, "w1"); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if _, _, err := s.Finish(done.ID, "abc123", "w1"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	failed := mustCreate(t, s, "fails", CreateOptions{})
	if _, err := s.Fail(failed.ID, "broke", "w1"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	open := mustCreate(t, s, "still open", CreateOptions{})

	active, err := s.ListActive()
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != open.ID {
		t.Errorf("expected only the open task, got %d tasks", len(active))
	}

	byStatus, err := s.ListByStatus(task.StatusFailed)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != failed.ID {
		t.Errorf("expected the failed task, got %d tasks", len(byStatus))
	}
}

func TestUpdateStatusRejectsIllegalMoves(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	tk := mustCreate(t, s, "lifecycle", CreateOptions{})

	if _, err := s.UpdateStatus(tk.ID, "bogus", "tester"); !errors.Is(err, task.ErrValidation) {
		t.Errorf("unknown status: want validation error, got %v", err)
	}
	if _, err := s.UpdateStatus(tk.ID, task.StatusDone, "tester"); !errors.Is(err, task.ErrInvalidTransition) {
		t.Errorf("ready->done direct: want invalid transition, got %v", err)
	}

	got, err := s.UpdateStatus(tk.ID, task.StatusInProgress, "tester")
	if err != nil {
		t.Fatalf("ready->in_progress failed: %v", err)
	}
	if got.Status != task.StatusInProgress {
		t.Errorf("status not applied: %s", got.Status)
	}
}

func TestSingleFieldMutations(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	tk := mustCreate(t, s, "mutable", CreateOptions{})

	got, err := s.UpdateAssignee(tk.ID, "spirit-7", "tester")
	if err != nil {
		t.Fatalf("UpdateAssignee failed: %v", err)
	}
	if got.Assignee != "spirit-7" {
		t.Errorf("assignee = %q", got.Assignee)
	}

	got, err = s.UpdateAssignee(tk.ID, "", "tester")
	if err != nil {
		t.Fatalf("clearing assignee failed: %v", err)
	}
	if got.Assignee != "" {
		t.Errorf("assignee not cleared: %q", got.Assignee)
	}

	got, err = s.RecordFailure(tk.ID, "flaky network", "tester")
	if err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if got.FailureNote != "flaky network" {
		t.Errorf("failure note = %q", got.FailureNote)
	}

	got, err = s.IncrementRetry(tk.ID, "tester")
	if err != nil {
		t.Fatalf("IncrementRetry failed: %v", err)
	}
	if got.Retries != 1 {
		t.Errorf("retries = %d", got.Retries)
	}

	if !got.UpdatedAt.After(tk.UpdatedAt) && !got.UpdatedAt.Equal(tk.UpdatedAt) {
		t.Error("updated_at went backwards")
	}
}

func TestSoftDeleteRestoreCycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	tk := mustCreate(t, s, "phoenix", CreateOptions{Priority: 3})

	if err := s.SoftDelete(tk.ID, "cleanup", "tester"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	// Second delete on a tombstoned task is a distinct failure.
	if err := s.SoftDelete(tk.ID, "again", "tester"); !errors.Is(err, task.ErrAlreadyDeleted) {
		t.Errorf("double delete: want already deleted, got %v", err)
	}

	restored, err := s.Restore(tk.ID)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Deleted() || restored.DeletedBy != "" || restored.DeleteReason != "" {
		t.Errorf("tombstone fields not cleared: %+v", restored)
	}
	if restored.Title != tk.Title || restored.Priority != tk.Priority {
		t.Errorf("restore altered the record: %+v", restored)
	}
}

func TestHardDeleteCascades(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	dep := mustCreate(t, s, "dependency", CreateOptions{})
	tk := mustCreate(t, s, "to be purged", CreateOptions{Actor: "tester"})
	if err := s.AddEdge(tk.ID, dep.ID, task.EdgeBlocks); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if _, err := s.AppendLedger(tk.ID, task.LedgerLearning, "note", "tester"); err != nil {
		t.Fatalf("AppendLedger failed: %v", err)
	}

	if err := s.HardDelete(tk.ID); err != nil {
		t.Fatalf("HardDelete failed: %v", err)
	}

	if _, err := s.Get(tk.ID, true); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("task should be gone, got %v", err)
	}
	deps, err := s.Dependents(dep.ID)
	if err != nil {
		t.Fatalf("Dependents failed: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("edges should cascade away, got %v", deps)
	}
	entries, err := s.Ledger(tk.ID, "")
	if err != nil {
		t.Fatalf("Ledger failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ledger entries should cascade away, got %d", len(entries))
	}

	// The audit trail survives hard deletion.
	audit, err := s.Audit(tk.ID, 0)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if len(audit) == 0 {
		t.Error("audit trail should outlive the task")
	}
}
