// Package core implements the dense-array graph store at the heart of
// pathgrid: positioned nodes in fixed slots, per-source contiguous edge
// regions, and the version counters every cache and search snapshot against.
//
// Overview:
//
//   - Node slots live in parallel arrays sized at construction; a slot is
//     addressed by its NodeID (the slot index), carries an active flag and a
//     per-node version that is bumped whenever the node's position changes.
//   - Edges are stored in one flat array split into per-source regions of
//     MaxEdgesPerNode slots each, so enumeration of a node's outgoing edges
//     is a contiguous scan and removal is swap-and-pop.
//   - Two global monotonic counters — the node version and the edge version —
//     advance on every structural mutation. Searches snapshot them to detect
//     reentrant mutation; caches stamp them into entries to detect staleness.
//
// The store performs no locking and no allocation after NewGraph, except for
// the result slice EdgesOf builds. It is the
// single-writer foundation the astar.Engine builds on; callers normally do
// not mutate a Graph directly once it is owned by an engine.
//
// Complexity of the main operations:
//
//   - AddNode:    O(MaxNodes) first-free-slot scan
//   - MoveNode:   O(1)
//   - RemoveNode: O(MaxNodes × MaxEdgesPerNode) incident-edge sweep
//   - AddEdge:    O(1) append (O(2) when bidirectional)
//   - RemoveEdge: O(MaxEdgesPerNode) region scan, swap-and-pop
//
// Errors (sentinel):
//
//	ErrNodeFull         - no inactive slot is left for AddNode.
//	ErrEdgeFull         - the source's edge region is at capacity.
//	ErrStartNodeInvalid - the edge source is not an active node.
//	ErrGoalNodeInvalid  - the edge destination is not an active node.
package core
