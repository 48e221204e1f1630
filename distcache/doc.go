// Package distcache caches pairwise Euclidean node distances behind a
// commutative hash, so the A* heuristic pays for a square root only once per
// unordered node pair.
//
// Overview:
//
//   - The table is open-addressed with linear probing of at most MaxProbes
//     slots. Table size is next_power_of_two(min(node_count*8, 65536)); the
//     probe mask is size-1.
//   - The hash is commutative by construction: the pair is canonicalized to
//     (min(a,b), max(a,b)) before hashing with xxhash, so GetOrCompute(a,b)
//     and GetOrCompute(b,a) land on the same slot.
//   - Every entry is threaded onto two intrusive singly-linked chains — one
//     per endpoint — so a node move invalidates exactly the distances that
//     mention it, never the whole table.
//   - When all probed slots hold valid unrelated pairs, the lookup falls
//     through to a raw computation and caches nothing. Correctness over
//     completeness; the table is an accelerator, not a registry.
//
// The cache reads positions through the PositionSource interface; core.Graph
// satisfies it directly. The InvalidNode sentinel short-circuits to distance
// zero and is never cached.
package distcache
