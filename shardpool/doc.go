// Package shardpool lifts the single-threaded pathgrid engine to concurrent
// callers by sharding: N full engine replicas, mutations broadcast to all,
// queries routed to one.
//
// Overview:
//
//   - Every replica applies the identical mutation sequence, and the store's
//     first-free-slot allocation is deterministic, so node IDs agree across
//     shards. The pool verifies this on every AddNode and fails loudly on
//     divergence.
//   - Each shard is guarded by its own mutex; queries for different agents
//     land on different shards and proceed in parallel, while queries within
//     a shard serialize.
//   - Identical concurrent (start, goal) queries on a shard are collapsed
//     through a singleflight group: one search runs, every waiter gets a
//     private copy of the result.
//   - FindPaths resolves a whole batch of agent requests with one errgroup
//     goroutine per shard — the fan-out shape of a simulation tick.
//
// Memory cost is N× the engine's footprint; pick the shard count from query
// parallelism, not agent count.
package shardpool
