package astar

import (
	"errors"

	"github.com/katalvlaran/pathgrid/core"
	"github.com/katalvlaran/pathgrid/heappool"
)

// Status is the closed outcome taxonomy of every fallible engine operation.
// Searches return a Status alongside their output; a non-Success value never
// leaves a partially populated result.
type Status uint8

const (
	// Success: the operation produced its full result.
	Success Status = iota

	// NoPath: the search exhausted its frontier without reaching the goal.
	NoPath

	// StartGoalSame: start and goal are the same node; the path is empty.
	StartGoalSame

	// StartNodeInvalid: the start id does not address an active node.
	StartNodeInvalid

	// GoalNodeInvalid: the goal id does not address an active node.
	GoalNodeInvalid

	// NodeFull: no node slot is free.
	NodeFull

	// EdgeFull: the source's edge region is at capacity.
	EdgeFull

	// HeapFull: the search frontier outgrew its heap slice budget.
	HeapFull

	// PathTooLong is reserved; the engine grows the output buffer instead of
	// truncating, so it is never returned today.
	PathTooLong

	// GraphChanged: a version snapshot mismatch aborted one search attempt.
	// Internal — the public entry points retry before surfacing anything.
	GraphChanged

	// GraphChangedTooOften: three consecutive attempts were each aborted by
	// a reentrant mutation.
	GraphChangedTooOften

	// NoProjection: no edge exists to project the query point onto.
	NoProjection

	// VirtualNodeFailed: installing the transient projection node or its
	// edges failed; all partial work was rolled back.
	VirtualNodeFailed
)

// statusNames is indexed by Status and backs String.
var statusNames = [...]string{
	Success:              "SUCCESS",
	NoPath:               "NO_PATH",
	StartGoalSame:        "START_GOAL_NODE_SAME",
	StartNodeInvalid:     "START_NODE_INVALID",
	GoalNodeInvalid:      "GOAL_NODE_INVALID",
	NodeFull:             "NODE_FULL",
	EdgeFull:             "EDGE_FULL",
	HeapFull:             "HEAP_FULL",
	PathTooLong:          "PATH_TOO_LONG",
	GraphChanged:         "GRAPH_CHANGED",
	GraphChangedTooOften: "GRAPH_CHANGED_TOO_OFTEN",
	NoProjection:         "NO_PROJECTION",
	VirtualNodeFailed:    "VIRTUAL_NODE_FAILED",
}

// String returns the canonical upper-snake name of s, the form host bindings
// surface across language boundaries.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}

	return "UNKNOWN"
}

// OK reports whether s is Success.
func (s Status) OK() bool { return s == Success }

// StatusFromError maps core and heappool sentinel errors onto the status
// taxonomy. nil maps to Success; unrecognized errors map to NoPath, the most
// conservative "search failed" outcome.
func StatusFromError(err error) Status {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, core.ErrNodeFull):
		return NodeFull
	case errors.Is(err, core.ErrEdgeFull):
		return EdgeFull
	case errors.Is(err, core.ErrStartNodeInvalid):
		return StartNodeInvalid
	case errors.Is(err, core.ErrGoalNodeInvalid):
		return GoalNodeInvalid
	case errors.Is(err, heappool.ErrHeapFull):
		return HeapFull
	default:
		return NoPath
	}
}
