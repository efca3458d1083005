package task

import "fmt"

// EdgeType classifies a dependency edge.
type EdgeType string

const (
	// EdgeBlocks is a hard ordering constraint: the source cannot become
	// ready until the target is done.
	EdgeBlocks EdgeType = "blocks"
	// EdgeParentChild is hierarchical grouping; the child is also
	// ordering-blocked by the parent.
	EdgeParentChild EdgeType = "parent-child"
	// EdgeRelated is informational and never gates readiness.
	EdgeRelated EdgeType = "related"
	// EdgeDiscoveredFrom records provenance and never gates readiness.
	EdgeDiscoveredFrom EdgeType = "discovered-from"
)

// AllEdgeTypes lists every legal edge type.
var AllEdgeTypes = []EdgeType{EdgeBlocks, EdgeParentChild, EdgeRelated, EdgeDiscoveredFrom}

// ParseEdgeType validates a raw edge type string at the boundary.
func ParseEdgeType(s string) (EdgeType, error) {
	for _, et := range AllEdgeTypes {
		if EdgeType(s) == et {
			return et, nil
		}
	}
	return "", &ValidationError{
		Field:  "edge type",
		Reason: fmt.Sprintf("unknown edge type %q, want one of %v", s, AllEdgeTypes),
	}
}

// Blocking reports whether edges of this type gate readiness.
func (e EdgeType) Blocking() bool {
	return e == EdgeBlocks || e == EdgeParentChild
}
