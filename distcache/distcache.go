package distcache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/katalvlaran/pathgrid/core"
)

const (
	// MaxProbes bounds the linear probe sequence. Beyond it the lookup
	// computes raw and caches nothing.
	MaxProbes = 8

	// maxTableSize caps the slot count regardless of node count.
	maxTableSize = 65536

	// maxStackReinsert is the largest valid-entry count Resize carries over;
	// larger populations are dropped wholesale.
	maxStackReinsert = 1024

	// nilLink terminates an intrusive chain.
	nilLink int32 = -1
)

// PositionSource supplies node positions to the cache. core.Graph implements
// it; tests substitute fixtures.
type PositionSource interface {
	Position(id core.NodeID) core.Position
}

// entry is one cached unordered pair. a <= b after canonicalization.
// next[0] continues a's chain, next[1] continues b's chain.
type entry struct {
	a, b  core.NodeID
	dist  float32
	valid bool
	next  [2]int32
}

// Cache is the pairwise distance table. Not safe for concurrent use.
type Cache struct {
	src PositionSource

	slots []entry
	mask  uint32

	// heads[n] is the first slot index of n's invalidation chain.
	heads []int32

	valid  int
	hits   uint64
	misses uint64
}

// New builds a cache sized for nodeCount nodes, with per-node chain heads for
// maxNodes slots. Complexity: O(table size) allocation.
func New(src PositionSource, maxNodes, nodeCount int) *Cache {
	c := &Cache{src: src, heads: make([]int32, maxNodes)}
	for i := range c.heads {
		c.heads[i] = nilLink
	}
	c.alloc(nodeCount)

	return c
}

// alloc sizes the slot array for nodeCount nodes.
func (c *Cache) alloc(nodeCount int) {
	size := nodeCount * 8
	if size > maxTableSize {
		size = maxTableSize
	}
	size = nextPow2(size)

	c.slots = make([]entry, size)
	c.mask = uint32(size - 1)
	c.valid = 0
}

// nextPow2 rounds up to a power of two, minimum 1.
func nextPow2(v int) int {
	n := 1
	for n < v {
		n <<= 1
	}

	return n
}

// pairHash hashes the canonical (lo, hi) pair. Commutativity follows from
// canonicalization: h(a,b) == h(b,a) by construction.
func pairHash(lo, hi core.NodeID) uint64 {
	var key [8]byte
	binary.LittleEndian.PutUint32(key[0:4], uint32(lo))
	binary.LittleEndian.PutUint32(key[4:8], uint32(hi))

	return xxhash.Sum64(key[:])
}

// GetOrCompute returns the Euclidean distance between a and b, consulting the
// table first. On a miss the distance is computed, stored in the first free
// probed slot, and linked into both endpoints' invalidation chains. When all
// probed slots hold valid unrelated pairs, the result is computed raw and not
// cached.
//
// The InvalidNode sentinel (either side) returns 0 and touches nothing.
// Complexity: O(MaxProbes).
func (c *Cache) GetOrCompute(a, b core.NodeID) float32 {
	if a == core.InvalidNode || b == core.InvalidNode {
		return 0
	}
	if a == b {
		return 0
	}

	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}

	idx := uint32(pairHash(lo, hi)) & c.mask
	free := nilLink
	for probe := 0; probe < MaxProbes; probe++ {
		slot := (idx + uint32(probe)) & c.mask
		e := &c.slots[slot]
		if e.valid {
			if e.a == lo && e.b == hi {
				c.hits++

				return e.dist
			}

			continue
		}
		if free == nilLink {
			free = int32(slot)
		}
	}

	c.misses++
	dist := c.src.Position(lo).Distance(c.src.Position(hi))

	if free != nilLink {
		c.store(free, lo, hi, dist)
	}

	return dist
}

// store writes a fresh entry into slot and links it onto both chains.
func (c *Cache) store(slot int32, lo, hi core.NodeID, dist float32) {
	e := &c.slots[slot]
	e.a, e.b, e.dist, e.valid = lo, hi, dist, true

	e.next[0] = c.heads[lo]
	c.heads[lo] = slot
	e.next[1] = c.heads[hi]
	c.heads[hi] = slot

	c.valid++
}

// Invalidate walks node's chain, marks every reached entry invalid, and
// unlinks it from the partner's chain as well, leaving both chains
// consistent. Called on every node move or removal.
// Complexity: O(chain length × partner chain length).
func (c *Cache) Invalidate(node core.NodeID) {
	if node < 0 || int(node) >= len(c.heads) {
		return
	}

	idx := c.heads[node]
	for idx != nilLink {
		e := &c.slots[idx]

		side := 0
		partner := e.b
		if e.b == node {
			side = 1
			partner = e.a
		}
		next := e.next[side]

		c.unlinkFromChain(partner, idx)
		e.valid = false
		e.next[0], e.next[1] = nilLink, nilLink
		c.valid--

		idx = next
	}
	c.heads[node] = nilLink
}

// unlinkFromChain removes slot from node's singly-linked chain.
func (c *Cache) unlinkFromChain(node core.NodeID, slot int32) {
	if node < 0 || int(node) >= len(c.heads) {
		return
	}

	prev := nilLink
	idx := c.heads[node]
	for idx != nilLink {
		e := &c.slots[idx]
		side := 0
		if e.b == node {
			side = 1
		}
		if idx == slot {
			if prev == nilLink {
				c.heads[node] = e.next[side]
			} else {
				p := &c.slots[prev]
				pside := 0
				if p.b == node {
					pside = 1
				}
				p.next[pside] = e.next[side]
			}

			return
		}
		prev = idx
		idx = e.next[side]
	}
}

// Resize reallocates the table for a new node count. Populations up to
// maxStackReinsert valid entries are carried over through a stack buffer;
// anything larger is dropped — recomputing is cheaper than rehashing a large
// table that is about to churn anyway.
func (c *Cache) Resize(newNodeCount int) {
	var keep []entry
	if c.valid <= maxStackReinsert {
		var buf [maxStackReinsert]entry
		n := 0
		for i := range c.slots {
			if c.slots[i].valid {
				buf[n] = c.slots[i]
				n++
			}
		}
		keep = buf[:n]
	}

	for i := range c.heads {
		c.heads[i] = nilLink
	}
	c.alloc(newNodeCount)

	for i := range keep {
		c.reinsert(keep[i].a, keep[i].b, keep[i].dist)
	}
}

// reinsert places a carried-over pair without touching hit/miss counters.
func (c *Cache) reinsert(lo, hi core.NodeID, dist float32) {
	idx := uint32(pairHash(lo, hi)) & c.mask
	for probe := 0; probe < MaxProbes; probe++ {
		slot := (idx + uint32(probe)) & c.mask
		if !c.slots[slot].valid {
			c.store(int32(slot), lo, hi, dist)

			return
		}
	}
	// All probed slots taken: the pair is simply not carried over.
}

// Len returns the number of valid cached pairs.
func (c *Cache) Len() int { return c.valid }

// Size returns the slot capacity of the table.
func (c *Cache) Size() int { return len(c.slots) }

// Stats returns the lifetime hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) { return c.hits, c.misses }
