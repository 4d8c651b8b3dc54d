package tscn

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParent is returned when a node names a parent that is not
	// on the current ancestor chain.
	ErrUnknownParent = errors.New("parent not in context")

	// ErrMaxDepth is returned when external resources nest deeper than the
	// loader allows.
	ErrMaxDepth = errors.New("maximum resource depth exceeded")
)

// StructureError reports a structural fault that aborts a parse.
type StructureError struct {
	Line   int // 1-based line number
	Node   string
	Parent string
	Err    error
}

func (e *StructureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: node %q: parent %q: %v", e.Line, e.Node, e.Parent, e.Err)
	}
	return fmt.Sprintf("node %q: parent %q: %v", e.Node, e.Parent, e.Err)
}

func (e *StructureError) Unwrap() error { return e.Err }
