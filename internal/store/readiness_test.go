package store

import (
	"testing"

	"github.com/humont/shikigami-sub001/internal/task"
)

// createBlockedOn inserts a task with blocking dependencies attached in the
// creation transaction, so it surfaces as blocked from the start.
func createBlockedOn(t *testing.T, s *Store, title string, depIDs ...string) *task.Task {
	t.Helper()
	tk, err := s.Create(title, "description of "+title, CreateOptions{DependsOn: depIDs})
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	if tk.Status != task.StatusBlocked {
		t.Fatalf("task with live dependencies should start blocked, got %s", tk.Status)
	}
	return tk
}

func TestPromoteEligibleCount(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// Nothing blocked: the pass is a no-op.
	n, err := s.PromoteEligible()
	if err != nil {
		t.Fatalf("PromoteEligible failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 promotions on empty store, got %d", n)
	}
}

func TestReadinessMonotonicity(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// A task with zero blocking edges is never blocked after one pass.
	tk := mustCreate(t, s, "free", CreateOptions{})
	if tk.Status == task.StatusBlocked {
		t.Fatalf("zero-dependency task still blocked after creation pass")
	}

	if _, err := s.PromoteEligible(); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(tk.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status == task.StatusBlocked {
		t.Error("promotion must be monotonic: task regressed to blocked")
	}
}

func TestFinishUnblocksDependent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := mustCreate(t, s, "A", CreateOptions{})
	b := createBlockedOn(t, s, "B", a.ID)

	if _, err := s.Claim(a.ID, "spirit-1"); err != nil {
		t.Fatalf("Claim(A) failed: %v", err)
	}
	_, unblocked, err := s.Finish(a.ID, "abc123", "spirit-1")
	if err != nil {
		t.Fatalf("Finish(A) failed: %v", err)
	}

	if len(unblocked) != 1 || unblocked[0].ID != b.ID {
		t.Fatalf("expected B in the newly unblocked set, got %v", unblocked)
	}
	got, err := s.Get(b.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusReady {
		t.Errorf("B should be ready after A is done, got %s", got.Status)
	}
}

func TestMultiDependencyJoin(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	d := mustCreate(t, s, "D", CreateOptions{})
	e := mustCreate(t, s, "E", CreateOptions{})
	c := createBlockedOn(t, s, "C", d.ID, e.ID)

	finish := func(id string) {
		t.Helper()
		if _, err := s.Claim(id, "w"); err != nil {
			t.Fatalf("Claim(%s) failed: %v", id, err)
		}
		if _, _, err := s.Finish(id, "abc123", "w"); err != nil {
			t.Fatalf("Finish(%s) failed: %v", id, err)
		}
	}

	finish(d.ID)
	got, err := s.Get(c.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusBlocked {
		t.Errorf("C should stay blocked with one of two deps done, got %s", got.Status)
	}

	finish(e.ID)
	got, err = s.Get(c.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusReady {
		t.Errorf("C should be ready once both deps are done, got %s", got.Status)
	}
}

func TestNonBlockingEdgesNeverGate(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	other := mustCreate(t, s, "unfinished other", CreateOptions{})
	tk, err := s.Create("informational only", "has only soft edges", CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(tk.ID, other.ID, task.EdgeRelated); err != nil {
		t.Fatal(err)
	}
	if err := s.AddEdge(other.ID, tk.ID, task.EdgeDiscoveredFrom); err != nil {
		t.Fatal(err)
	}

	if _, err := s.PromoteEligible(); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(tk.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusReady {
		t.Errorf("related/discovered-from edges must not gate readiness, got %s", got.Status)
	}
}

func TestPromotionSkipsTombstoned(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := mustCreate(t, s, "A", CreateOptions{})
	b := createBlockedOn(t, s, "B", a.ID)

	if err := s.SoftDelete(b.ID, "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Claim(a.ID, "w"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Finish(a.ID, "abc123", "w"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(b.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusBlocked {
		t.Errorf("tombstoned task must not be promoted, got %s", got.Status)
	}
}
