package heappool

import (
	"errors"

	"github.com/katalvlaran/pathgrid/core"
)

// Sentinel errors for pool and heap operations.
var (
	// ErrHeapFull indicates the pool cannot carve another block, or a heap
	// slice has no room for another entry.
	ErrHeapFull = errors.New("heappool: heap capacity exhausted")

	// ErrBadBlockSize indicates Acquire was called with a non-positive block.
	ErrBadBlockSize = errors.New("heappool: block size must be positive")

	// ErrBadRelease indicates a Release that violates the LIFO discipline.
	ErrBadRelease = errors.New("heappool: release out of LIFO order")
)

// Entry is one open-set element: a node and its f-score.
type Entry struct {
	Node core.NodeID
	F    float32
}

// Pool owns the contiguous entry buffer all searches slice their open sets
// from. Not safe for concurrent use; the engine serializes access.
type Pool struct {
	buf    []Entry
	cursor int

	// starts records the start offset of every outstanding slice so Release
	// can verify LIFO nesting.
	starts []int
}

// NewPool allocates a pool of the given entry capacity (clamped to 1).
// Complexity: O(capacity) allocation, zero afterwards.
func NewPool(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}

	return &Pool{
		buf:    make([]Entry, capacity),
		starts: make([]int, 0, 8),
	}
}

// Acquire carves a block-sized slice off the cursor and returns it as an
// empty min-heap. Returns ErrHeapFull when the block would overflow the
// buffer. Complexity: O(1).
func (p *Pool) Acquire(block int) (*Heap, error) {
	if block <= 0 {
		return nil, ErrBadBlockSize
	}
	if p.cursor+block > len(p.buf) {
		return nil, ErrHeapFull
	}

	h := &Heap{
		pool:  p,
		start: p.cursor,
		buf:   p.buf[p.cursor : p.cursor+block],
	}
	p.starts = append(p.starts, p.cursor)
	p.cursor += block

	return h, nil
}

// Release returns h's block to the pool, restoring the cursor to the block's
// start. Only the most recently acquired slice may be released; anything else
// is ErrBadRelease. Complexity: O(1).
func (p *Pool) Release(h *Heap) error {
	if h == nil || h.pool != p || h.released {
		return ErrBadRelease
	}
	if len(p.starts) == 0 || p.starts[len(p.starts)-1] != h.start {
		return ErrBadRelease
	}

	p.starts = p.starts[:len(p.starts)-1]
	p.cursor = h.start
	h.released = true
	h.n = 0

	return nil
}

// Cursor returns the current water-mark offset. Scope guards assert cursor
// equality across acquire/release pairs.
func (p *Pool) Cursor() int { return p.cursor }

// Capacity returns the total entry capacity of the pool.
func (p *Pool) Capacity() int { return len(p.buf) }

// Outstanding returns the number of slices currently held.
func (p *Pool) Outstanding() int { return len(p.starts) }

// Heap is one acquired slice operating as a binary min-heap ordered by F.
type Heap struct {
	pool     *Pool
	start    int
	buf      []Entry
	n        int
	released bool
}

// Len returns the number of live entries.
func (h *Heap) Len() int { return h.n }

// Empty reports whether the heap holds no entries.
func (h *Heap) Empty() bool { return h.n == 0 }

// Cap returns the slice's entry capacity.
func (h *Heap) Cap() int { return len(h.buf) }

// Push inserts (node, f) and bubbles it up. Returns ErrHeapFull when the
// slice is at capacity — the search frontier outgrew its budget.
// Complexity: O(log n).
func (h *Heap) Push(node core.NodeID, f float32) error {
	if h.n == len(h.buf) {
		return ErrHeapFull
	}

	h.buf[h.n] = Entry{Node: node, F: f}
	h.siftUp(h.n)
	h.n++

	return nil
}

// Pop removes and returns the minimum entry. ok is false on an empty heap.
// Complexity: O(log n).
func (h *Heap) Pop() (Entry, bool) {
	if h.n == 0 {
		return Entry{}, false
	}

	top := h.buf[0]
	h.n--
	if h.n > 0 {
		h.buf[0] = h.buf[h.n]
		h.siftDown(0)
	}

	return top, true
}

// Peek returns the minimum entry without removing it.
// Complexity: O(1).
func (h *Heap) Peek() (Entry, bool) {
	if h.n == 0 {
		return Entry{}, false
	}

	return h.buf[0], true
}

// BuildFrom replaces the heap content with the given entries using Floyd's
// bottom-up heapify — bulk seeding in O(n) instead of n pushes at O(n log n).
// Returns ErrHeapFull when the entries exceed the slice capacity.
func (h *Heap) BuildFrom(entries []Entry) error {
	if len(entries) > len(h.buf) {
		return ErrHeapFull
	}

	copy(h.buf, entries)
	h.n = len(entries)
	for i := h.n/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}

	return nil
}

// DecreaseKey lowers node's f-score in place and restores heap order.
// The lookup is a linear scan; reports whether the node was found with a
// strictly larger score. A* does not call this on the hot path — it prefers
// lazy duplicates — but bulk-seeded consumers use it.
// Complexity: O(n) scan + O(log n) sift.
func (h *Heap) DecreaseKey(node core.NodeID, f float32) bool {
	for i := 0; i < h.n; i++ {
		if h.buf[i].Node != node {
			continue
		}
		if h.buf[i].F <= f {
			return false
		}
		h.buf[i].F = f
		h.siftUp(i)

		return true
	}

	return false
}

func (h *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.buf[parent].F <= h.buf[i].F {
			return
		}
		h.buf[parent], h.buf[i] = h.buf[i], h.buf[parent]
		i = parent
	}
}

func (h *Heap) siftDown(i int) {
	for {
		left := 2*i + 1
		if left >= h.n {
			return
		}
		least := left
		if right := left + 1; right < h.n && h.buf[right].F < h.buf[left].F {
			least = right
		}
		if h.buf[i].F <= h.buf[least].F {
			return
		}
		h.buf[i], h.buf[least] = h.buf[least], h.buf[i]
		i = least
	}
}
