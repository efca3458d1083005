package task

import "fmt"

// Status is a task's lifecycle state.
type Status string

const (
	// StatusBlocked is the initial state: one or more blocking edges point at
	// tasks that are not yet done. A task with no blocking edges leaves this
	// state on the first readiness pass after creation.
	StatusBlocked    Status = "blocked"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// AllStatuses lists every legal status value, in lifecycle order.
var AllStatuses = []Status{
	StatusBlocked,
	StatusReady,
	StatusInProgress,
	StatusInReview,
	StatusDone,
	StatusFailed,
}

// transitions maps each status to the set of statuses it may move to.
// Readiness promotion (blocked -> ready) and claiming (ready -> in_progress)
// are the contested transitions; the rest exist so that explicit status
// updates are still checked against the lifecycle.
var transitions = map[Status]map[Status]struct{}{
	StatusBlocked: {
		StatusReady: {},
	},
	StatusReady: {
		StatusInProgress: {},
	},
	StatusInProgress: {
		StatusInReview: {},
		StatusDone:     {},
		StatusFailed:   {},
	},
	StatusInReview: {
		StatusDone:       {},
		StatusFailed:     {},
		StatusInProgress: {},
	},
	StatusFailed: {
		StatusReady: {}, // manual restart for retry
	},
}

// ParseStatus validates a raw status string at the boundary.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if Status(s) == st {
			return st, nil
		}
	}
	return "", &ValidationError{
		Field:  "status",
		Reason: fmt.Sprintf("unknown status %q, want one of %v", s, AllStatuses),
	}
}

// Terminal reports whether s is an end state for the active-work view.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step.
func (s Status) CanTransition(next Status) bool {
	_, ok := transitions[s][next]
	return ok
}
