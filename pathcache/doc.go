// Package pathcache amortizes repeated route queries with two fixed-capacity
// LRU tables: node-to-node routes keyed by (start, goal) and point-to-node
// routes keyed by (quantized start point, goal).
//
// Overview:
//
//   - Entries live in a slab pre-allocated at construction — capacity entries
//     of at most maxPathLen nodes each. Inserting never allocates; paths
//     longer than maxPathLen are refused (the search still returns them to
//     the caller, they just aren't cached).
//   - Every entry snapshots the graph's edge version plus the per-node
//     version of every node on the path. Lookup re-validates the snapshot:
//     any bumped edge version, moved node, or deactivated slot marks the
//     entry invalid and misses. This is the lazy invalidation strategy — no
//     inverted node→entries index is maintained.
//   - Recency is an intrusive doubly-linked list over slab indices; a full
//     table evicts the tail.
//
// Point keys quantize coordinates by an epsilon so a caller whose start
// drifts less than the quantum still hits. Point entries additionally carry
// the projection entry point recorded at insertion: the cached route is tied
// to the virtual geometry that existed then, and the version snapshot
// guarantees it is discarded the moment that geometry changes.
package pathcache
