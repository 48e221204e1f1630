package pathcache

import (
	"math"

	"github.com/katalvlaran/pathgrid/core"
)

// DefaultPointEpsilon is the quantization step for point-to-node keys: start
// positions within the same epsilon cell share a cache entry.
const DefaultPointEpsilon float32 = 0.25

// nilIdx terminates the intrusive LRU list.
const nilIdx int32 = -1

// GraphView is the read-only surface Lookup validates snapshots against.
// core.Graph satisfies it.
type GraphView interface {
	Active(id core.NodeID) bool
	NodeVersionOf(id core.NodeID) uint64
	EdgeVersion() uint64
}

// Key is the uniform 128-bit table key. Node keys pack (start, goal); point
// keys pack (quantized x, quantized y, goal).
type Key struct {
	hi uint64
	lo uint64
}

// NodeKey builds the key for a node-to-node route.
func NodeKey(start, goal core.NodeID) Key {
	return Key{hi: uint64(uint32(start)), lo: uint64(uint32(goal))}
}

// PointKey builds the key for a point-to-node route, quantizing p by epsilon.
func PointKey(p core.Position, epsilon float32, goal core.NodeID) Key {
	if epsilon <= 0 {
		epsilon = DefaultPointEpsilon
	}
	qx := int64(math.Round(float64(p.X / epsilon)))
	qy := int64(math.Round(float64(p.Y / epsilon)))

	return Key{
		hi: uint64(qx)<<32 | uint64(uint32(qy)),
		lo: uint64(uint32(goal)) | 1<<63, // point-keyspace marker
	}
}

// entry is one cached route in the slab.
type entry struct {
	key      Key
	nodes    []core.NodeID // slab-backed, cap maxPathLen
	nodeVers []uint64      // slab-backed, parallel to nodes
	edgeVer  uint64
	entryPt  core.Position

	prev, next int32 // LRU neighbors
}

// Table is one LRU route table. Not safe for concurrent use.
type Table struct {
	capacity   int
	maxPathLen int

	entries   []entry
	index     map[Key]int32
	head      int32 // most recently used
	tail      int32 // eviction candidate
	free      []int32
	nodeSlab  []core.NodeID
	verSlab   []uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewTable pre-allocates a table of capacity entries holding at most
// maxPathLen nodes each. Arguments below 1 are clamped to 1.
// Complexity: O(capacity × maxPathLen) allocation, zero afterwards.
func NewTable(capacity, maxPathLen int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	if maxPathLen < 1 {
		maxPathLen = 1
	}

	t := &Table{
		capacity:   capacity,
		maxPathLen: maxPathLen,
		entries:    make([]entry, capacity),
		index:      make(map[Key]int32, capacity),
		head:       nilIdx,
		tail:       nilIdx,
		free:       make([]int32, 0, capacity),
		nodeSlab:   make([]core.NodeID, capacity*maxPathLen),
		verSlab:    make([]uint64, capacity*maxPathLen),
	}
	for i := capacity - 1; i >= 0; i-- {
		t.entries[i].nodes = t.nodeSlab[i*maxPathLen : i*maxPathLen][:0:maxPathLen]
		t.entries[i].nodeVers = t.verSlab[i*maxPathLen : i*maxPathLen][:0:maxPathLen]
		t.entries[i].prev, t.entries[i].next = nilIdx, nilIdx
		t.free = append(t.free, int32(i))
	}

	return t
}

// Lookup returns the cached route for k when its snapshot still matches the
// graph: the edge version is unchanged and every node on the path is active
// at its recorded per-node version. A stale entry is dropped and the lookup
// misses. A hit bumps recency.
//
// The returned slice aliases table storage and is valid until the next
// mutation of the table; callers copy it out immediately.
// Complexity: O(path length).
func (t *Table) Lookup(k Key, gv GraphView) ([]core.NodeID, core.Position, bool) {
	idx, ok := t.index[k]
	if !ok {
		t.misses++

		return nil, core.Position{}, false
	}

	e := &t.entries[idx]
	if !t.consistent(e, gv) {
		t.drop(idx)
		t.misses++

		return nil, core.Position{}, false
	}

	t.touch(idx)
	t.hits++

	return e.nodes, e.entryPt, true
}

// consistent re-validates e's version snapshot against the live graph.
func (t *Table) consistent(e *entry, gv GraphView) bool {
	if e.edgeVer != gv.EdgeVersion() {
		return false
	}
	for i, n := range e.nodes {
		if !gv.Active(n) || gv.NodeVersionOf(n) != e.nodeVers[i] {
			return false
		}
	}

	return true
}

// Insert caches path under k, snapshotting the current edge version and every
// node's version. Paths longer than the configured maximum are refused and
// reported false. An existing entry for k is overwritten in place; a full
// table evicts the least recently used entry.
// Complexity: O(path length).
func (t *Table) Insert(k Key, path []core.NodeID, entryPt core.Position, gv GraphView) bool {
	if len(path) > t.maxPathLen {
		return false
	}

	idx, exists := t.index[k]
	if !exists {
		idx = t.claim()
		t.index[k] = idx
	}

	e := &t.entries[idx]
	e.key = k
	e.edgeVer = gv.EdgeVersion()
	e.entryPt = entryPt
	e.nodes = e.nodes[:len(path)]
	e.nodeVers = e.nodeVers[:len(path)]
	for i, n := range path {
		e.nodes[i] = n
		e.nodeVers[i] = gv.NodeVersionOf(n)
	}

	if exists {
		t.touch(idx)
	} else {
		t.pushHead(idx)
	}

	return true
}

// claim returns a free slab slot, evicting the LRU tail when none is left.
func (t *Table) claim() int32 {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]

		return idx
	}

	idx := t.tail
	t.evictions++
	delete(t.index, t.entries[idx].key)
	t.unlink(idx)

	return idx
}

// drop removes a stale entry and recycles its slot.
func (t *Table) drop(idx int32) {
	delete(t.index, t.entries[idx].key)
	t.unlink(idx)
	t.free = append(t.free, idx)
}

// Clear empties the table, keeping counters.
func (t *Table) Clear() {
	for idx := t.head; idx != nilIdx; {
		next := t.entries[idx].next
		t.entries[idx].prev, t.entries[idx].next = nilIdx, nilIdx
		t.free = append(t.free, idx)
		idx = next
	}
	t.head, t.tail = nilIdx, nilIdx
	clear(t.index)
}

// touch moves idx to the head of the recency list.
func (t *Table) touch(idx int32) {
	if t.head == idx {
		return
	}
	t.unlink(idx)
	t.pushHead(idx)
}

// pushHead links idx as the most recently used entry.
func (t *Table) pushHead(idx int32) {
	e := &t.entries[idx]
	e.prev = nilIdx
	e.next = t.head
	if t.head != nilIdx {
		t.entries[t.head].prev = idx
	}
	t.head = idx
	if t.tail == nilIdx {
		t.tail = idx
	}
}

// unlink removes idx from the recency list.
func (t *Table) unlink(idx int32) {
	e := &t.entries[idx]
	if e.prev != nilIdx {
		t.entries[e.prev].next = e.next
	} else if t.head == idx {
		t.head = e.next
	}
	if e.next != nilIdx {
		t.entries[e.next].prev = e.prev
	} else if t.tail == idx {
		t.tail = e.prev
	}
	e.prev, e.next = nilIdx, nilIdx
}

// Len returns the number of live entries.
func (t *Table) Len() int { return len(t.index) }

// Capacity returns the slab capacity.
func (t *Table) Capacity() int { return t.capacity }

// MaxPathLen returns the longest cacheable path.
func (t *Table) MaxPathLen() int { return t.maxPathLen }

// Stats returns the lifetime hit, miss, and eviction counters.
func (t *Table) Stats() (hits, misses, evictions uint64) {
	return t.hits, t.misses, t.evictions
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (t *Table) HitRate() float64 {
	total := t.hits + t.misses
	if total == 0 {
		return 0
	}

	return float64(t.hits) / float64(total)
}
