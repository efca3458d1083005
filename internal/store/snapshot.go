package store

import (
	"database/sql"
	"fmt"

	"github.com/humont/shikigami-sub001/internal/task"
)

// Snapshot is a portable dump of the task graph: every task (tombstones
// included), every edge and every ledger entry. The audit trail stays
// behind; it is local history, not graph state.
type Snapshot struct {
	Tasks  []*task.Task       `yaml:"tasks"`
	Edges  []task.DepEdge     `yaml:"edges,omitempty"`
	Ledger []task.LedgerEntry `yaml:"ledger,omitempty"`
}

// Export collects the full graph into a Snapshot.
func (s *Store) Export() (*Snapshot, error) {
	snap := &Snapshot{}

	tasks, err := s.listWhere(`1 = 1`)
	if err != nil {
		return nil, err
	}
	snap.Tasks = tasks

	rows, err := s.db.Query(`SELECT from_id, to_id, type, created_at FROM dep_edges ORDER BY from_id, to_id`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e task.DepEdge
		if err := rows.Scan(&e.FromID, &e.ToID, &e.Type, &e.CreatedAt); err != nil {
			return nil, err
		}
		snap.Edges = append(snap.Edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lrows, err := s.db.Query(`SELECT id, task_id, type, content, author_id, created_at FROM ledger ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer lrows.Close()
	for lrows.Next() {
		var (
			entry  task.LedgerEntry
			author sql.NullString
		)
		if err := lrows.Scan(&entry.ID, &entry.TaskID, &entry.Type, &entry.Content, &author, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.AuthorID = author.String
		snap.Ledger = append(snap.Ledger, entry)
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

// Import loads a Snapshot into the store, preserving ids, statuses and
// timestamps. It is all-or-nothing: a colliding task id rolls the whole
// import back.
func (s *Store) Import(snap *Snapshot) error {
	err := s.withTx(func(tx *sql.Tx) error {
		for _, t := range snap.Tasks {
			_, err := tx.Exec(`
				INSERT INTO tasks (`+taskColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, t.ID, t.Title, t.Description, t.Status, t.Priority, nullable(t.Assignee),
				nullable(t.ParentID), nullable(t.DocID), nullable(t.OutputRef),
				nullable(t.FailureNote), t.Retries, t.CreatedAt, t.UpdatedAt,
				t.DeletedAt, nullable(t.DeletedBy), nullable(t.DeleteReason))
			if err != nil {
				return fmt.Errorf("import task %s: %w", t.ID, err)
			}
		}
		for _, e := range snap.Edges {
			if _, err := tx.Exec(`
				INSERT INTO dep_edges (from_id, to_id, type, created_at)
				VALUES (?, ?, ?, ?)
			`, e.FromID, e.ToID, e.Type, e.CreatedAt); err != nil {
				return fmt.Errorf("import edge %s -> %s: %w", e.FromID, e.ToID, err)
			}
		}
		for _, entry := range snap.Ledger {
			if _, err := tx.Exec(`
				INSERT INTO ledger (id, task_id, type, content, author_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, entry.ID, entry.TaskID, entry.Type, entry.Content,
				nullable(entry.AuthorID), entry.CreatedAt); err != nil {
				return fmt.Errorf("import ledger entry %s: %w", entry.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, t := range snap.Tasks {
		if !t.Deleted() {
			s.notifyIndex(t)
		}
	}
	s.log.Info("snapshot imported", "tasks", len(snap.Tasks), "edges", len(snap.Edges))
	return nil
}
