package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/humont/shikigami-sub001/internal/task"
)

// AddEdge records that fromID depends on toID. The natural key is the
// ordered pair: adding an edge for a pair that already exists overwrites the
// stored type. Both tasks must exist (tombstoned tasks still count; an edge
// to a soft-deleted task simply never satisfies). No cycle check is done at
// write time; traversal is cycle-safe instead.
func (s *Store) AddEdge(fromID, toID string, et task.EdgeType) error {
	return s.withTx(func(tx *sql.Tx) error {
		return addEdge(tx, fromID, toID, et)
	})
}

// addEdge is the in-transaction insert shared with Create.
func addEdge(q dbtx, fromID, toID string, et task.EdgeType) error {
	if _, err := task.ParseEdgeType(string(et)); err != nil {
		return err
	}
	if fromID == toID {
		return &task.ValidationError{Field: "edge", Reason: "a task cannot depend on itself"}
	}

	for _, id := range []string{fromID, toID} {
		ok, err := existsID(q, id)
		if err != nil {
			return err
		}
		if !ok {
			return &task.NotFoundError{Kind: "task", Ref: id}
		}
	}

	_, err := q.Exec(`
		INSERT INTO dep_edges (from_id, to_id, type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(from_id, to_id) DO UPDATE SET type = excluded.type
	`, fromID, toID, string(et), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add edge: %w", err)
	}
	return nil
}

// RemoveEdge deletes the edge between the ordered pair. Removing an edge
// that does not exist is a no-op.
func (s *Store) RemoveEdge(fromID, toID string) error {
	_, err := s.db.Exec(`DELETE FROM dep_edges WHERE from_id = ? AND to_id = ?`, fromID, toID)
	if err != nil {
		return fmt.Errorf("remove edge: %w", err)
	}
	return nil
}

// BlockingEdges returns the edges out of taskID whose type gates readiness.
func (s *Store) BlockingEdges(taskID string) ([]task.DepEdge, error) {
	return blockingEdges(s.db, taskID)
}

// Edges returns every outgoing edge of taskID, any type.
func (s *Store) Edges(taskID string) ([]task.DepEdge, error) {
	return outgoingEdges(s.db, taskID)
}

// Dependents returns the ids of tasks with any edge pointing at taskID.
func (s *Store) Dependents(taskID string) ([]string, error) {
	return dependents(s.db, taskID)
}

// AllDependenciesSatisfied reports whether every blocking-edge target of
// taskID is done and not tombstoned. Vacuously true with no blocking edges.
func (s *Store) AllDependenciesSatisfied(taskID string) (bool, error) {
	return depsSatisfied(s.db, taskID)
}

// Traverse walks outgoing edges of any type breadth-first from rootID,
// returning each visited task id mapped to its outgoing edges. Shared
// descendants are visited once, so diamonds do not blow up and cycles
// terminate. Expansion stops at maxDepth hops from the root; the nodes at
// exactly maxDepth are still recorded. A negative maxDepth means unbounded.
func (s *Store) Traverse(rootID string, maxDepth int) (map[string][]task.DepEdge, error) {
	if _, err := s.Get(rootID, true); err != nil {
		return nil, err
	}

	type hop struct {
		id    string
		depth int
	}

	visited := make(map[string][]task.DepEdge)
	queue := []hop{{rootID, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, seen := visited[cur.id]; seen {
			continue
		}

		edges, err := outgoingEdges(s.db, cur.id)
		if err != nil {
			return nil, err
		}
		visited[cur.id] = edges

		if maxDepth >= 0 && cur.depth >= maxDepth {
			continue
		}
		for _, e := range edges {
			if _, seen := visited[e.ToID]; !seen {
				queue = append(queue, hop{e.ToID, cur.depth + 1})
			}
		}
	}

	return visited, nil
}

func outgoingEdges(q dbtx, taskID string) ([]task.DepEdge, error) {
	return queryEdges(q, `
		SELECT from_id, to_id, type, created_at FROM dep_edges
		WHERE from_id = ? ORDER BY created_at ASC, to_id ASC
	`, taskID)
}

func blockingEdges(q dbtx, taskID string) ([]task.DepEdge, error) {
	return queryEdges(q, `
		SELECT from_id, to_id, type, created_at FROM dep_edges
		WHERE from_id = ? AND type IN (?, ?) ORDER BY created_at ASC, to_id ASC
	`, taskID, string(task.EdgeBlocks), string(task.EdgeParentChild))
}

func queryEdges(q dbtx, query string, args ...any) ([]task.DepEdge, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("edge query: %w", err)
	}
	defer rows.Close()

	edges := []task.DepEdge{}
	for rows.Next() {
		var e task.DepEdge
		var et string
		if err := rows.Scan(&e.FromID, &e.ToID, &et, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = task.EdgeType(et)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func dependents(q dbtx, taskID string) ([]string, error) {
	rows, err := q.Query(`
		SELECT DISTINCT from_id FROM dep_edges WHERE to_id = ? ORDER BY from_id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("dependents query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// depsSatisfied counts blocking edges whose target is not done or is
// tombstoned; zero means satisfied.
func depsSatisfied(q dbtx, taskID string) (bool, error) {
	var unsatisfied int
	err := q.QueryRow(`
		SELECT COUNT(*)
		FROM dep_edges e
		JOIN tasks t ON t.id = e.to_id
		WHERE e.from_id = ?
		  AND e.type IN (?, ?)
		  AND (t.status != ? OR t.deleted_at IS NOT NULL)
	`, taskID, string(task.EdgeBlocks), string(task.EdgeParentChild), string(task.StatusDone)).Scan(&unsatisfied)
	if err != nil {
		return false, fmt.Errorf("dependency check: %w", err)
	}
	return unsatisfied == 0, nil
}
