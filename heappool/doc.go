// Package heappool provides the pre-allocated open-set storage for A*
// searches: one contiguous buffer of heap entries, sliced out per search and
// returned in strict LIFO order.
//
// Overview:
//
//   - The Pool owns a single []Entry buffer of fixed capacity and a
//     water-mark cursor. Acquire carves the next block off the cursor;
//     Release restores the cursor to the block's start.
//   - LIFO discipline matters because searches nest: the retry protocol and
//     projected queries start an inner search while an outer slice is still
//     held. Releasing out of order is a programming error and is reported as
//     ErrBadRelease rather than silently corrupting the cursor.
//   - Each acquired slice operates as a binary min-heap ordered by F score,
//     ties resolved by heap position (no stable tiebreak). Push returns
//     ErrHeapFull when the frontier outgrows the slice — the caller's search
//     budget, not a fatal condition for the pool.
//
// Operations on a slice: Push O(log n), Pop O(log n), Peek O(1), Len, Empty,
// BuildFrom (Floyd's O(n) heapify for bulk seeding), and a linear
// DecreaseKey. The A* engine does not use DecreaseKey on the hot path — it
// pushes duplicates and skips stale pops via its closed set ("lazy
// decrease-key").
package heappool
