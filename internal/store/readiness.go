package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/humont/shikigami-sub001/internal/task"
)

// PromoteEligible examines every live blocked task and moves those whose
// blocking dependencies are all done to ready. Returns the number of tasks
// promoted.
//
// Readiness is deliberately recomputed as a batch pass rather than
// maintained incrementally per edge: the scan is O(blocked tasks x their
// blocking edges), which is fine at human- and agent-paced task counts, and
// stays correct under diamonds and multi-parent joins. The pass only ever
// moves tasks forward, so running it redundantly or concurrently is safe; a
// stale read is a no-op on the next pass.
func (s *Store) PromoteEligible() (int, error) {
	var promoted []string
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		promoted, err = promoteEligible(tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("readiness pass", "promoted", len(promoted))
	return len(promoted), nil
}

// promoteEligible is the in-transaction promotion pass, returning the ids
// that moved from blocked to ready.
func promoteEligible(tx dbtx) ([]string, error) {
	rows, err := tx.Query(`
		SELECT id FROM tasks
		WHERE status = ? AND deleted_at IS NULL
		ORDER BY priority DESC, created_at ASC, id ASC
	`, string(task.StatusBlocked))
	if err != nil {
		return nil, fmt.Errorf("blocked scan: %w", err)
	}

	var blocked []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		blocked = append(blocked, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	var promoted []string
	for _, id := range blocked {
		ok, err := depsSatisfied(tx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		_, err = tx.Exec(`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(task.StatusReady), time.Now().UTC(), id, string(task.StatusBlocked))
		if err != nil {
			return nil, fmt.Errorf("promote %s: %w", id, err)
		}
		promoted = append(promoted, id)
	}

	return promoted, nil
}
