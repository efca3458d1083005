package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/humont/shikigami-sub001/internal/task"
)

// Claim transitions a ready task to in_progress, optionally binding the
// claiming worker as assignee. The transition is a single conditional
// UPDATE: it succeeds only if the row is still ready when the statement
// runs, which collapses the check-then-act race between concurrent workers
// into one atomic step. A lost race comes back as AlreadyInProgressError so
// the caller can look for other work instead of retrying.
func (s *Store) Claim(id, worker string) (*task.Task, error) {
	var claimed *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE tasks SET status = ?, assignee = ?, updated_at = ?
			WHERE id = ? AND status = ? AND deleted_at IS NULL
		`, string(task.StatusInProgress), nullable(worker), time.Now().UTC(),
			id, string(task.StatusReady))
		if err != nil {
			return fmt.Errorf("claim: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// Decode why the conditional update missed.
			cur, err := getTask(tx, id, false)
			if err != nil {
				return err
			}
			if cur.Status == task.StatusInProgress {
				return &task.AlreadyInProgressError{ID: cur.ID, Assignee: cur.Assignee}
			}
			return &task.InvalidTransitionError{ID: cur.ID, From: cur.Status, To: task.StatusInProgress}
		}

		if worker != "" {
			if err := appendAudit(tx, id, "update", "status",
				string(task.StatusReady), string(task.StatusInProgress), worker); err != nil {
				return err
			}
			if err := appendAudit(tx, id, "update", "assignee", "", worker, worker); err != nil {
				return err
			}
		}

		claimed, err = getTask(tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(claimed)
	s.log.Debug("task claimed", "task", claimed.ID, "worker", worker)
	return claimed, nil
}

// Finish marks a task done, recording the non-blank output reference, and
// runs a readiness pass in the same transaction. It returns the finished
// task together with the dependents that moved from blocked to ready as a
// direct result, so the caller gets an immediate "what just unblocked"
// signal.
func (s *Store) Finish(id, outputRef, worker string) (*task.Task, []*task.Task, error) {
	if strings.TrimSpace(outputRef) == "" {
		return nil, nil, &task.ValidationError{Field: "output reference", Reason: "must not be blank"}
	}

	var finished *task.Task
	var unblocked []*task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, false)
		if err != nil {
			return err
		}
		if cur.Status == task.StatusDone {
			return &task.InvalidTransitionError{ID: cur.ID, From: cur.Status, To: task.StatusDone}
		}

		// Snapshot which dependents are blocked before the flip; the
		// difference after the promotion pass is the newly unblocked set.
		deps, err := dependents(tx, cur.ID)
		if err != nil {
			return err
		}
		wasBlocked := make(map[string]bool, len(deps))
		for _, depID := range deps {
			dep, err := getTask(tx, depID, false)
			if err != nil {
				if errors.Is(err, task.ErrNotFound) {
					continue // tombstoned dependent
				}
				return err
			}
			if dep.Status == task.StatusBlocked {
				wasBlocked[dep.ID] = true
			}
		}

		now := time.Now().UTC()
		_, err = tx.Exec(`
			UPDATE tasks SET status = ?, output_ref = ?, updated_at = ? WHERE id = ?
		`, string(task.StatusDone), outputRef, now, cur.ID)
		if err != nil {
			return fmt.Errorf("finish: %w", err)
		}

		if worker != "" {
			if err := appendAudit(tx, cur.ID, "update", "status",
				string(cur.Status), string(task.StatusDone), worker); err != nil {
				return err
			}
			if err := appendAudit(tx, cur.ID, "update", "output_ref",
				cur.OutputRef, outputRef, worker); err != nil {
				return err
			}
		}

		promoted, err := promoteEligible(tx)
		if err != nil {
			return err
		}
		for _, pid := range promoted {
			if !wasBlocked[pid] {
				continue
			}
			t, err := getTask(tx, pid, false)
			if err != nil {
				return err
			}
			unblocked = append(unblocked, t)
		}

		finished, err = getTask(tx, cur.ID, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifyIndex(finished)
	s.log.Debug("task finished", "task", finished.ID, "unblocked", len(unblocked))
	return finished, unblocked, nil
}

// Fail marks a task failed from any status. A non-empty reason is stored as
// failure context and also appended to the ledger as a handoff entry so the
// next worker picks up where this one left off.
func (s *Store) Fail(id, reason, worker string) (*task.Task, error) {
	var failed *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, false)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err = tx.Exec(`
			UPDATE tasks SET status = ?, failure_note = ?, updated_at = ? WHERE id = ?
		`, string(task.StatusFailed), nullable(reason), now, cur.ID)
		if err != nil {
			return fmt.Errorf("fail: %w", err)
		}

		if worker != "" {
			if err := appendAudit(tx, cur.ID, "update", "status",
				string(cur.Status), string(task.StatusFailed), worker); err != nil {
				return err
			}
		}
		if reason != "" {
			if err := appendLedger(tx, cur.ID, task.LedgerHandoff, reason, worker); err != nil {
				return err
			}
		}

		failed, err = getTask(tx, cur.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(failed)
	return failed, nil
}

// Restart resets a failed task to ready for another attempt and increments
// its retry counter. The reset is conditional on the task still being
// failed, mirroring the claim pattern.
func (s *Store) Restart(id, actor string) (*task.Task, error) {
	var restarted *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE tasks SET status = ?, retries = retries + 1, assignee = NULL, updated_at = ?
			WHERE id = ? AND status = ? AND deleted_at IS NULL
		`, string(task.StatusReady), time.Now().UTC(), id, string(task.StatusFailed))
		if err != nil {
			return fmt.Errorf("restart: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			cur, err := getTask(tx, id, false)
			if err != nil {
				return err
			}
			return &task.InvalidTransitionError{ID: cur.ID, From: cur.Status, To: task.StatusReady}
		}

		if actor != "" {
			if err := appendAudit(tx, id, "update", "status",
				string(task.StatusFailed), string(task.StatusReady), actor); err != nil {
				return err
			}
		}

		restarted, err = getTask(tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(restarted)
	return restarted, nil
}
