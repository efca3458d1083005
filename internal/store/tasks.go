package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/humont/shikigami-sub001/internal/ident"
	"github.com/humont/shikigami-sub001/internal/task"
)

const taskColumns = `id, title, description, status, priority, assignee,
	parent_id, doc_id, output_ref, failure_note, retries,
	created_at, updated_at, deleted_at, deleted_by, delete_reason`

// CreateOptions carries the optional fields of a new task. DependsOn lists
// existing task ids the new task is blocked behind; a ParentID additionally
// ordering-blocks the child behind its parent via a parent-child edge.
type CreateOptions struct {
	Priority  int
	ParentID  string
	DocID     string
	DependsOn []string
	Actor     string
}

// Create inserts a new task. The task starts blocked; its blocking edges
// (DependsOn plus the parent, if any) are attached and a readiness pass runs
// in the same transaction, so a task with no unsatisfied dependencies comes
// back ready. Readiness only ever moves forward -- edges added after
// creation do not demote a task that already went ready.
func (s *Store) Create(title, description string, opts CreateOptions) (*task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &task.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(description) == "" {
		return nil, &task.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	var created *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		id, err := ident.New(s.idPrefix, func(candidate string) (bool, error) {
			return existsID(tx, candidate)
		})
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}

		now := time.Now().UTC()
		_, err = tx.Exec(`
			INSERT INTO tasks (id, title, description, status, priority, parent_id, doc_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, title, description, task.StatusBlocked, opts.Priority,
			nullable(opts.ParentID), nullable(opts.DocID), now, now)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		for _, dep := range opts.DependsOn {
			if err := addEdge(tx, id, dep, task.EdgeBlocks); err != nil {
				return err
			}
		}
		if opts.ParentID != "" {
			if err := addEdge(tx, id, opts.ParentID, task.EdgeParentChild); err != nil {
				return err
			}
		}

		if opts.Actor != "" {
			if err := appendAudit(tx, id, "create", "", "", title, opts.Actor); err != nil {
				return err
			}
		}

		// Tasks whose dependencies are already satisfied (or absent) become
		// claimable immediately.
		if _, err := promoteEligible(tx); err != nil {
			return err
		}

		created, err = getTask(tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(created)
	s.log.Debug("task created", "task", created.ID, "status", created.Status)
	return created, nil
}

// Get returns a task by exact identifier. Tombstoned tasks are excluded
// unless includeDeleted is set.
func (s *Store) Get(id string, includeDeleted bool) (*task.Task, error) {
	return getTask(s.db, id, includeDeleted)
}

// FindByPrefix resolves a possibly abbreviated identifier: exact match
// first, then unique prefix. Zero or multiple candidates both come back as
// not found; callers cannot distinguish a missing id from an ambiguous one
// through this call.
func (s *Store) FindByPrefix(prefix string, includeDeleted bool) (*task.Task, error) {
	if t, err := getTask(s.db, prefix, includeDeleted); err == nil {
		return t, nil
	} else if !errors.Is(err, task.ErrNotFound) {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id LIKE ? ESCAPE '\'`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	rows, err := s.db.Query(query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("prefix query: %w", err)
	}
	defer rows.Close()

	var matches []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, t)
		if len(matches) > 1 {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(matches) != 1 {
		return nil, &task.NotFoundError{Kind: "task", Ref: prefix}
	}
	return matches[0], nil
}

// List returns all live tasks ordered by priority descending, then creation
// time ascending so older tasks win ties.
func (s *Store) List() ([]*task.Task, error) {
	return s.listWhere(`deleted_at IS NULL`)
}

// ListByStatus returns live tasks with exactly the given status.
func (s *Store) ListByStatus(st task.Status) ([]*task.Task, error) {
	return s.listWhere(`deleted_at IS NULL AND status = ?`, string(st))
}

// ListActive returns live tasks that are not in a terminal status.
func (s *Store) ListActive() ([]*task.Task, error) {
	return s.listWhere(`deleted_at IS NULL AND status NOT IN (?, ?)`,
		string(task.StatusDone), string(task.StatusFailed))
}

func (s *Store) listWhere(where string, args ...any) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
		` ORDER BY priority DESC, created_at ASC, id ASC`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus applies an explicit lifecycle transition. The target status
// must be legal from the task's current status; use Claim, Finish, Fail and
// Restart for the transitions with extra contracts.
func (s *Store) UpdateStatus(id string, next task.Status, actor string) (*task.Task, error) {
	if _, err := task.ParseStatus(string(next)); err != nil {
		return nil, err
	}

	var updated *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, false)
		if err != nil {
			return err
		}
		if !cur.Status.CanTransition(next) {
			return &task.InvalidTransitionError{ID: cur.ID, From: cur.Status, To: next}
		}

		if err := setField(tx, cur.ID, "status", string(next)); err != nil {
			return err
		}
		if actor != "" {
			if err := appendAudit(tx, cur.ID, "update", "status", string(cur.Status), string(next), actor); err != nil {
				return err
			}
		}

		updated, err = getTask(tx, cur.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(updated)
	return updated, nil
}

// UpdateAssignee binds or unbinds (empty string) the worker on a task.
func (s *Store) UpdateAssignee(id, assignee, actor string) (*task.Task, error) {
	return s.updateField(id, "assignee", assignee, actor)
}

// RecordOutcome stores the commit or artifact reference for a task without
// changing its status. Finish is the usual path; this exists for correcting
// a reference after the fact.
func (s *Store) RecordOutcome(id, outputRef, actor string) (*task.Task, error) {
	return s.updateField(id, "output_ref", outputRef, actor)
}

// RecordFailure stores structured failure context on a task.
func (s *Store) RecordFailure(id, failureNote, actor string) (*task.Task, error) {
	return s.updateField(id, "failure_note", failureNote, actor)
}

// IncrementRetry bumps the failed-attempt counter by one.
func (s *Store) IncrementRetry(id, actor string) (*task.Task, error) {
	var updated *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, false)
		if err != nil {
			return err
		}
		if err := setField(tx, cur.ID, "retries", cur.Retries+1); err != nil {
			return err
		}
		if actor != "" {
			old := strconv.Itoa(cur.Retries)
			next := strconv.Itoa(cur.Retries + 1)
			if err := appendAudit(tx, cur.ID, "update", "retries", old, next, actor); err != nil {
				return err
			}
		}
		updated, err = getTask(tx, cur.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete tombstones a task. The task stays addressable by exact id and
// restorable; default queries no longer see it.
func (s *Store) SoftDelete(id, reason, deletedBy string) error {
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, true)
		if err != nil {
			return err
		}
		if cur.Deleted() {
			return &task.AlreadyDeletedError{ID: cur.ID}
		}

		now := time.Now().UTC()
		_, err = tx.Exec(`
			UPDATE tasks SET deleted_at = ?, deleted_by = ?, delete_reason = ?, updated_at = ?
			WHERE id = ?
		`, now, nullable(deletedBy), nullable(reason), now, cur.ID)
		if err != nil {
			return fmt.Errorf("soft delete: %w", err)
		}

		if deletedBy != "" {
			return appendAudit(tx, cur.ID, "delete", "", "", reason, deletedBy)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyRemove(id)
	return nil
}

// Restore clears a task's tombstone fields.
func (s *Store) Restore(id string) (*task.Task, error) {
	var restored *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, true)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			UPDATE tasks SET deleted_at = NULL, deleted_by = NULL, delete_reason = NULL, updated_at = ?
			WHERE id = ?
		`, time.Now().UTC(), cur.ID)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}

		restored, err = getTask(tx, cur.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(restored)
	return restored, nil
}

// HardDelete physically removes a task. Dependency edges and ledger entries
// cascade away with it; the audit trail is kept.
func (s *Store) HardDelete(id string) error {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := getTask(tx, id, true); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("hard delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifyRemove(id)
	return nil
}

// updateField is the shared single-field mutation path: bump updated_at and,
// when an actor is supplied, record one audit entry with old and new value.
func (s *Store) updateField(id, field, value, actor string) (*task.Task, error) {
	var updated *task.Task
	err := s.withTx(func(tx *sql.Tx) error {
		cur, err := getTask(tx, id, false)
		if err != nil {
			return err
		}

		var old string
		switch field {
		case "assignee":
			old = cur.Assignee
		case "output_ref":
			old = cur.OutputRef
		case "failure_note":
			old = cur.FailureNote
		default:
			return fmt.Errorf("unsupported field %q", field)
		}

		if err := setField(tx, cur.ID, field, nullable(value)); err != nil {
			return err
		}
		if actor != "" {
			if err := appendAudit(tx, cur.ID, "update", field, old, value, actor); err != nil {
				return err
			}
		}

		updated, err = getTask(tx, cur.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyIndex(updated)
	return updated, nil
}

// setField writes one column and bumps updated_at.
func setField(q dbtx, id, field string, value any) error {
	_, err := q.Exec(`UPDATE tasks SET `+field+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	return nil
}

func getTask(q dbtx, id string, includeDeleted bool) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	t, err := scanTask(q.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &task.NotFoundError{Kind: "task", Ref: id}
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func existsID(q dbtx, id string) (bool, error) {
	var n int
	if err := q.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var t task.Task
	var status string
	var assignee, parentID, docID, outputRef, failureNote sql.NullString
	var deletedAt sql.NullTime
	var deletedBy, deleteReason sql.NullString

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &t.Priority, &assignee,
		&parentID, &docID, &outputRef, &failureNote, &t.Retries,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt, &deletedBy, &deleteReason,
	)
	if err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	t.Assignee = assignee.String
	t.ParentID = parentID.String
	t.DocID = docID.String
	t.OutputRef = outputRef.String
	t.FailureNote = failureNote.String
	if deletedAt.Valid {
		at := deletedAt.Time
		t.DeletedAt = &at
	}
	t.DeletedBy = deletedBy.String
	t.DeleteReason = deleteReason.String

	return &t, nil
}

// nullable maps "" to NULL so optional text columns stay NULL instead of
// storing empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// escapeLike escapes LIKE metacharacters in a user-supplied prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
