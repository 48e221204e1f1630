// Package spatial accelerates "nearest edge to point" queries with a uniform
// grid over the bounding box of all active nodes.
//
// Overview:
//
//   - Every edge is registered in each cell its axis-aligned bounding box
//     overlaps. Storage is a flat []EdgeRef with per-cell [start, count)
//     ranges — the same counting-sort layout the graph store uses for edge
//     regions.
//   - Cell size is either explicit or auto-selected as twice the mean active
//     edge length, clamped to [MinCellSize, MaxCellSize] world units. Grid
//     dimensions are clamped so the total cell count never exceeds
//     MaxCellCount; the cell grows until the product fits.
//   - NearestEdge searches the query point's cell plus its 3×3 neighborhood,
//     projecting the point onto every candidate segment. An empty
//     neighborhood falls back to a full linear scan over all active edges —
//     correctness over speed.
//
// Structural mutations do not patch the flat layout in place: the grid is
// marked dirty and rebuilt lazily before the next query. Swap-and-pop edge
// removal shifts slot indices, so stored EdgeRefs are only trusted between
// rebuild and the next mutation.
//
// The grid is optional. The engine enables it automatically once the graph
// crosses AutoEnableThreshold active nodes.
package spatial
