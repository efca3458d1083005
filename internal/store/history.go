package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/humont/shikigami-sub001/internal/task"
)

// AppendAudit inserts one immutable audit entry for a task. The task must
// exist (tombstoned is fine); field and values may be empty for whole-record
// operations like create and delete.
func (s *Store) AppendAudit(taskID, operation, field, oldValue, newValue, actor string) error {
	ok, err := existsID(s.db, taskID)
	if err != nil {
		return err
	}
	if !ok {
		return &task.NotFoundError{Kind: "task", Ref: taskID}
	}
	return appendAudit(s.db, taskID, operation, field, oldValue, newValue, actor)
}

func appendAudit(q dbtx, taskID, operation, field, oldValue, newValue, actor string) error {
	_, err := q.Exec(`
		INSERT INTO audit_log (task_id, operation, field, old_value, new_value, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, taskID, operation, nullable(field), nullable(oldValue), nullable(newValue),
		nullable(actor), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// AppendLedger inserts a handoff or learning note for a task. Content is
// stored verbatim; the core imposes no length limit.
func (s *Store) AppendLedger(taskID, entryType, content, authorID string) (*task.LedgerEntry, error) {
	if !task.ValidLedgerType(entryType) {
		return nil, &task.ValidationError{
			Field:  "ledger entry type",
			Reason: fmt.Sprintf("unknown type %q, want %q or %q", entryType, task.LedgerHandoff, task.LedgerLearning),
		}
	}

	ok, err := existsID(s.db, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &task.NotFoundError{Kind: "task", Ref: taskID}
	}

	entry := &task.LedgerEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Type:      entryType,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := insertLedger(s.db, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// appendLedger is the in-transaction insert used by Fail.
func appendLedger(q dbtx, taskID, entryType, content, authorID string) error {
	return insertLedger(q, &task.LedgerEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Type:      entryType,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	})
}

func insertLedger(q dbtx, e *task.LedgerEntry) error {
	_, err := q.Exec(`
		INSERT INTO ledger (id, task_id, type, content, author_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.TaskID, e.Type, e.Content, nullable(e.AuthorID), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}

// Audit returns a task's audit entries newest-first. A limit of zero or
// less means no limit.
func (s *Store) Audit(taskID string, limit int) ([]task.AuditEntry, error) {
	query := `
		SELECT id, task_id, operation, field, old_value, new_value, actor, created_at
		FROM audit_log WHERE task_id = ?
		ORDER BY id DESC
	`
	args := []any{taskID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit query: %w", err)
	}
	defer rows.Close()

	var entries []task.AuditEntry
	for rows.Next() {
		var e task.AuditEntry
		var field, oldValue, newValue, actor sql.NullString
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Operation, &field, &oldValue, &newValue, &actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Field = field.String
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		e.Actor = actor.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ledger returns a task's ledger entries oldest-first, so the handoff and
// learning notes read as a chronological narrative. typeFilter narrows to
// one entry kind; empty means both.
func (s *Store) Ledger(taskID, typeFilter string) ([]task.LedgerEntry, error) {
	if typeFilter != "" && !task.ValidLedgerType(typeFilter) {
		return nil, &task.ValidationError{
			Field:  "ledger entry type",
			Reason: fmt.Sprintf("unknown type %q", typeFilter),
		}
	}

	query := `
		SELECT id, task_id, type, content, author_id, created_at
		FROM ledger WHERE task_id = ?
	`
	args := []any{taskID}
	if typeFilter != "" {
		query += ` AND type = ?`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger query: %w", err)
	}
	defer rows.Close()

	var entries []task.LedgerEntry
	for rows.Next() {
		var e task.LedgerEntry
		var author sql.NullString
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Type, &e.Content, &author, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.AuthorID = author.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PredecessorHandoff is a handoff note inherited from a finished dependency,
// tagged with where it came from.
type PredecessorHandoff struct {
	TaskID    string           `json:"task_id"`
	TaskTitle string           `json:"task_title"`
	Entry     task.LedgerEntry `json:"entry"`
}

// PredecessorHandoffs collects the handoff notes left on every done
// blocking dependency of taskID: the context a worker should read before
// starting the task.
func (s *Store) PredecessorHandoffs(taskID string) ([]PredecessorHandoff, error) {
	edges, err := s.BlockingEdges(taskID)
	if err != nil {
		return nil, err
	}

	var out []PredecessorHandoff
	for _, e := range edges {
		dep, err := s.Get(e.ToID, false)
		if err != nil {
			if errors.Is(err, task.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if dep.Status != task.StatusDone {
			continue
		}

		entries, err := s.Ledger(dep.ID, task.LedgerHandoff)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			out = append(out, PredecessorHandoff{
				TaskID:    dep.ID,
				TaskTitle: dep.Title,
				Entry:     entry,
			})
		}
	}
	return out, nil
}
