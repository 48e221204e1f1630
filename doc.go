// Package pathgrid is a high-performance 2D graph pathfinding engine for
// real-time simulations and games routing hundreds to thousands of agents.
//
// 🚀 What is pathgrid?
//
//	A single-threaded, allocation-free-on-the-hot-path engine that maintains a
//	mutable weighted directed graph of positioned nodes and answers budgeted
//	shortest-path queries between node IDs — or from arbitrary world positions
//	projected onto the graph first.
//
// ✨ Why choose pathgrid?
//
//   - Deterministic latency — every capacity is fixed at construction; the
//     query path allocates nothing beyond the caller's output buffer
//   - Amortized cost      — an LRU path cache and a pairwise distance cache
//     with fine-grained, version-based invalidation
//   - Mutation-tolerant   — searches snapshot the graph version and retry
//     when a reentrant mutation races the expansion loop
//   - Off-graph queries   — a uniform spatial grid projects arbitrary points
//     onto the nearest edge and injects transient virtual nodes into A*
//
// Everything is organized under focused subpackages:
//
//	core/      — dense-array graph store: nodes, per-node edge regions, version counters
//	heappool/  — pre-allocated binary min-heap buffer sliced per search, LIFO discipline
//	distcache/ — commutative-hash pairwise distance cache with per-node invalidation chains
//	spatial/   — uniform grid over edge bounding boxes for nearest-edge projection
//	pathcache/ — fixed-capacity LRU tables for node-to-node and point-to-node routes
//	astar/     — the Engine: A* search, retry protocol, projection, status taxonomy
//	shardpool/ — multi-instance sharding for callers that need concurrency
//
// Quick ASCII example:
//
//	    (0,0)───(10,0)───(20,0)───(30,0)
//
//	four nodes on a line; FindPath(0, 3) walks all of them at cost 30.
//
// The engine itself is not safe for concurrent use; shardpool replicates the
// graph across instances when parallel query throughput is required.
package pathgrid
