// Package astar provides the pathgrid Engine: budgeted A* shortest-path
// search over the core graph store, fronted by the path and distance caches,
// the pooled open-set heap, and the spatial projection machinery.
//
// Overview:
//
//   - The Engine owns every component instance and serializes all access; it
//     is a single-threaded actor. Callers needing parallel query throughput
//     shard engines (see package shardpool).
//   - FindPath answers node-to-node queries. The search snapshots the graph
//     version counters and aborts with GraphChanged when a reentrant
//     mutation (a scripted callback inside an embedding event loop) races
//     the expansion; the public entry point restarts the search and reports
//     GraphChangedTooOften once three attempts in a row have been aborted.
//   - FindPathFromPoint, FindPathToPoint, and FindPathBetweenPoints accept
//     arbitrary world positions: the nearest edge is located through the
//     spatial grid, a transient virtual node is installed at the projection,
//     the search runs, and the virtual geometry is removed on every exit
//     path — success, failure, or abort.
//   - Search outcomes are a closed Status enumeration, not errors: NoPath is
//     as ordinary a result as Success. Graph mutation failures remain
//     sentinel errors from core; StatusFromError bridges the two at language
//     boundaries.
//
// Complexity:
//
//   - Time:  O((V + E) log V) per uncached search, V and E counting only the
//     visited frontier; cached queries are O(path length).
//   - Space: no allocation on the query path — scoring arrays are stamped
//     with a per-search generation instead of being cleared, and the open
//     set lives in a pooled slice.
//
// The heuristic is the Euclidean distance between node positions, served by
// the distance cache. It is admissible while every edge cost is at least the
// straight-line distance between its endpoints — the callers' convention.
// Terrain-weighted graphs whose costs can undercut the metric distance
// should scale the heuristic down with WithHeuristicScale to keep optimal
// results.
//
// Options follow the functional-options pattern; logging is zap-based and
// silent by default; WithMetrics plugs a Prometheus registry.
package astar
