// Package task defines the domain types shared by the store, the CLI, and the
// web API: the task record itself, its lifecycle status, typed dependency
// edges, and the append-only history records.
package task

import "time"

// Task is a unit of work tracked by shikigami.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Status      Status `json:"status" yaml:"status"`
	Priority    int    `json:"priority" yaml:"priority"`
	Assignee    string `json:"assignee,omitempty" yaml:"assignee,omitempty"`

	// ParentID groups this task under another task. DocID is
	// the identifier of the external requirements document the task was
	// spawned from; the core never reads the document itself.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	DocID    string `json:"doc_id,omitempty" yaml:"doc_id,omitempty"`

	// OutputRef records the commit or artifact reference supplied when the
	// task was finished. FailureNote carries structured context from the most
	// recent failure. Retries counts failed attempts.
	OutputRef   string `json:"output_ref,omitempty" yaml:"output_ref,omitempty"`
	FailureNote string `json:"failure_note,omitempty" yaml:"failure_note,omitempty"`
	Retries     int    `json:"retries" yaml:"retries"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Tombstone fields. All zero unless the task has been soft-deleted.
	DeletedAt    *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
	DeletedBy    string     `json:"deleted_by,omitempty" yaml:"deleted_by,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty" yaml:"delete_reason,omitempty"`
}

// Deleted reports whether the task carries a soft-delete tombstone.
func (t *Task) Deleted() bool {
	return t.DeletedAt != nil
}

// DepEdge is a directed, typed dependency relation. FromID depends on ToID.
// Exactly one edge exists per ordered pair; re-adding the pair replaces the
// type.
type DepEdge struct {
	FromID    string    `json:"from_id" yaml:"from_id"`
	ToID      string    `json:"to_id" yaml:"to_id"`
	Type      EdgeType  `json:"type" yaml:"type"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// AuditEntry is one immutable field-level mutation record. A logical update
// that touches two fields produces two entries.
type AuditEntry struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"task_id"`
	Operation string    `json:"operation"` // create, update, delete
	Field     string    `json:"field,omitempty"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger entry kinds. Handoff entries brief the next worker when a task is
// relinquished; learning entries capture incidental discoveries.
const (
	LedgerHandoff  = "handoff"
	LedgerLearning = "learning"
)

// LedgerEntry is a free-text note a worker attached to a task. Entries are
// never mutated; they are removed only by cascading hard delete of the task.
type LedgerEntry struct {
	ID        string    `json:"id" yaml:"id"`
	TaskID    string    `json:"task_id" yaml:"task_id"`
	Type      string    `json:"type" yaml:"type"` // handoff or learning
	Content   string    `json:"content" yaml:"content"`
	AuthorID  string    `json:"author_id,omitempty" yaml:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ValidLedgerType reports whether t names a known ledger entry kind.
func ValidLedgerType(t string) bool {
	return t == LedgerHandoff || t == LedgerLearning
}
