// Package testutil provides reusable fixtures for packages that test
// against a real datastore.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/humont/shikigami-sub001/internal/store"
	"github.com/humont/shikigami-sub001/internal/task"
)

// NewStore opens a throwaway store in a temp directory. Cleanup is
// automatic via t.Cleanup.
func NewStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"), opts...)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// MustCreate creates a task or fails the test.
func MustCreate(t *testing.T, s *store.Store, title string, opts store.CreateOptions) *task.Task {
	t.Helper()

	tk, err := s.Create(title, "description of "+title, opts)
	if err != nil {
		t.Fatalf("Failed to create task %q: %v", title, err)
	}
	return tk
}

// SeedChain creates a linear chain of n tasks where each task is blocked
// behind the previous one. The first task comes back ready, the rest
// blocked. Tasks are returned in chain order.
func SeedChain(t *testing.T, s *store.Store, n int) []*task.Task {
	t.Helper()

	tasks := make([]*task.Task, 0, n)
	for i := 0; i < n; i++ {
		opts := store.CreateOptions{}
		if i > 0 {
			opts.DependsOn = []string{tasks[i-1].ID}
		}
		tk := MustCreate(t, s, fmt.Sprintf("chain step %d", i+1), opts)
		tasks = append(tasks, tk)
	}
	return tasks
}
