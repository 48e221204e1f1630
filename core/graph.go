package core

// graph.go holds the dense-array store: parallel node arrays, flat per-source
// edge regions, and the global version counters. All mutation entry points
// live here; read-only accessors used by caches and the spatial index are in
// this file as well since they share the same layout knowledge.

// Graph is the mutable weighted directed graph of positioned nodes.
//
// All storage is allocated once in NewGraph; no method allocates afterwards
// (EdgesOf is the documented exception — it builds the enumeration slice the
// caller asked for). A Graph is not safe for concurrent use.
type Graph struct {
	maxNodes        int
	maxEdgesPerNode int

	// Parallel node arrays, indexed by NodeID.
	pos     []Position
	active  []bool
	nodeVer []uint64

	// Flat edge storage: node i owns edges[i*maxEdgesPerNode : ... + edgeCount[i]].
	edges     []Edge
	edgeCount []int32

	activeCount int

	// Global monotonic counters. Any structural mutation bumps at least one.
	nodeVersion uint64
	edgeVersion uint64
}

// NewGraph allocates a store for at most maxNodes nodes with at most
// maxEdgesPerNode outgoing edges each. Arguments below 1 are clamped to 1.
// Complexity: O(maxNodes × maxEdgesPerNode) allocation, zero afterwards.
func NewGraph(maxNodes, maxEdgesPerNode int) *Graph {
	if maxNodes < 1 {
		maxNodes = 1
	}
	if maxEdgesPerNode < 1 {
		maxEdgesPerNode = 1
	}

	return &Graph{
		maxNodes:        maxNodes,
		maxEdgesPerNode: maxEdgesPerNode,
		pos:             make([]Position, maxNodes),
		active:          make([]bool, maxNodes),
		nodeVer:         make([]uint64, maxNodes),
		edges:           make([]Edge, maxNodes*maxEdgesPerNode),
		edgeCount:       make([]int32, maxNodes),
	}
}

// regionStart returns the first flat-array slot of id's edge region.
func (g *Graph) regionStart(id NodeID) int {
	return int(id) * g.maxEdgesPerNode
}

// valid reports whether id addresses a slot at all (active or not).
func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < g.maxNodes
}

// AddNode activates the first inactive slot at the given position and
// returns its NodeID. The slot's per-node version is seeded past the global
// node version so reused slots never alias stale cache entries.
// Returns ErrNodeFull when every slot is active.
// Complexity: O(MaxNodes).
func (g *Graph) AddNode(p Position) (NodeID, error) {
	for i := 0; i < g.maxNodes; i++ {
		if g.active[i] {
			continue
		}

		g.nodeVersion++
		g.active[i] = true
		g.pos[i] = p
		g.nodeVer[i] = g.nodeVersion
		g.edgeCount[i] = 0
		g.activeCount++

		return NodeID(i), nil
	}

	return InvalidNode, ErrNodeFull
}

// MoveNode updates id's position. Displacements below MoveEpsilon are no-ops;
// invalid or inactive ids are silently ignored. Reports whether the node
// actually moved so the owner can invalidate dependent caches.
// Complexity: O(1).
func (g *Graph) MoveNode(id NodeID, p Position) bool {
	if !g.valid(id) || !g.active[id] {
		return false
	}
	if g.pos[id].Distance(p) < MoveEpsilon {
		return false
	}

	g.pos[id] = p
	g.nodeVersion++
	g.nodeVer[id] = g.nodeVersion

	return true
}

// RemoveNode deactivates id and removes every incident edge, incoming ones
// included. Idempotent: invalid or inactive ids are ignored.
// Complexity: O(MaxNodes × MaxEdgesPerNode) — every source region is swept
// for edges pointing at id.
func (g *Graph) RemoveNode(id NodeID) {
	if !g.valid(id) || !g.active[id] {
		return
	}

	// 1) Drop incoming edges: sweep every other active source's region.
	for w := 0; w < g.maxNodes; w++ {
		if NodeID(w) == id || !g.active[w] {
			continue
		}
		start := g.regionStart(NodeID(w))
		for s := 0; s < int(g.edgeCount[w]); {
			if g.edges[start+s].To != id {
				s++
				continue
			}
			// Swap-and-pop; do not advance s, the swapped-in edge needs a look.
			last := int(g.edgeCount[w]) - 1
			g.edges[start+s] = g.edges[start+last]
			g.edgeCount[w] = int32(last)
		}
	}

	// 2) Drop the node's own outgoing region and the slot itself.
	g.edgeCount[id] = 0
	g.active[id] = false
	g.activeCount--

	// 3) Structural change on both axes: positions referencing the slot are
	//    gone and the edge set shrank.
	g.nodeVersion++
	g.nodeVer[id] = g.nodeVersion
	g.edgeVersion++
}

// AddEdge appends a directed edge u→v with the given cost. When bidirectional
// is set, v→u is appended as well and both halves carry the flag; capacity of
// both regions is verified before either append, so a failure leaves the
// graph untouched.
//
// Duplicate edges are not detected: adding u→v twice stores two entries and
// the search will relax both.
//
// Returns ErrStartNodeInvalid / ErrGoalNodeInvalid for inactive endpoints and
// ErrEdgeFull when a region is at capacity.
// Complexity: O(1).
func (g *Graph) AddEdge(u, v NodeID, cost float32, bidirectional bool) error {
	if !g.valid(u) || !g.active[u] {
		return ErrStartNodeInvalid
	}
	if !g.valid(v) || !g.active[v] {
		return ErrGoalNodeInvalid
	}

	if int(g.edgeCount[u]) >= g.maxEdgesPerNode {
		return ErrEdgeFull
	}
	if bidirectional && int(g.edgeCount[v]) >= g.maxEdgesPerNode {
		return ErrEdgeFull
	}
	if bidirectional && u == v && int(g.edgeCount[u])+2 > g.maxEdgesPerNode {
		// A bidirectional self-loop consumes two slots of the same region.
		return ErrEdgeFull
	}

	g.edges[g.regionStart(u)+int(g.edgeCount[u])] = Edge{To: v, Cost: cost, Bidirectional: bidirectional}
	g.edgeCount[u]++

	if bidirectional {
		g.edges[g.regionStart(v)+int(g.edgeCount[v])] = Edge{To: u, Cost: cost, Bidirectional: true}
		g.edgeCount[v]++
	}

	g.edgeVersion++

	return nil
}

// RemoveEdge removes the first edge u→v found in u's region. The operation is
// unidirectional — callers remove the reverse half explicitly — but when the
// removed edge carried the bidirectional flag, the surviving reverse edge's
// flag is cleared so the flag always agrees with reverse existence.
// A missing edge (or invalid u) is a no-op. Reports whether an edge was removed.
// Complexity: O(MaxEdgesPerNode).
func (g *Graph) RemoveEdge(u, v NodeID) bool {
	if !g.valid(u) || !g.active[u] {
		return false
	}

	start := g.regionStart(u)
	for s := 0; s < int(g.edgeCount[u]); s++ {
		if g.edges[start+s].To != v {
			continue
		}

		wasBidirectional := g.edges[start+s].Bidirectional

		last := int(g.edgeCount[u]) - 1
		g.edges[start+s] = g.edges[start+last]
		g.edgeCount[u] = int32(last)

		if wasBidirectional && g.valid(v) && g.active[v] {
			g.clearReverseFlag(v, u)
		}

		g.edgeVersion++

		return true
	}

	return false
}

// clearReverseFlag unsets the bidirectional flag on the first flagged v→u
// edge, keeping the O(1) reverse-existence invariant truthful after a
// one-sided removal.
func (g *Graph) clearReverseFlag(v, u NodeID) {
	start := g.regionStart(v)
	for s := 0; s < int(g.edgeCount[v]); s++ {
		if g.edges[start+s].To == u && g.edges[start+s].Bidirectional {
			g.edges[start+s].Bidirectional = false

			return
		}
	}
}

// EdgesOf enumerates id's edges as read-only records.
//
//   - includeBidirectional=false filters out edges carrying the pairwise flag,
//     leaving only strictly one-way connections.
//   - includeIncoming=true additionally sweeps every source region for edges
//     pointing at id — a full O(MaxNodes × MaxEdgesPerNode) scan.
//
// Invalid or inactive ids yield nil.
func (g *Graph) EdgesOf(id NodeID, includeBidirectional, includeIncoming bool) []EdgeInfo {
	if !g.valid(id) || !g.active[id] {
		return nil
	}

	out := make([]EdgeInfo, 0, g.edgeCount[id])

	start := g.regionStart(id)
	for s := 0; s < int(g.edgeCount[id]); s++ {
		e := g.edges[start+s]
		if !includeBidirectional && e.Bidirectional {
			continue
		}
		out = append(out, EdgeInfo{From: id, To: e.To, Cost: e.Cost, Bidirectional: e.Bidirectional})
	}

	if includeIncoming {
		for w := 0; w < g.maxNodes; w++ {
			if NodeID(w) == id || !g.active[w] {
				continue
			}
			ws := g.regionStart(NodeID(w))
			for s := 0; s < int(g.edgeCount[w]); s++ {
				e := g.edges[ws+s]
				if e.To != id {
					continue
				}
				if !includeBidirectional && e.Bidirectional {
					continue
				}
				out = append(out, EdgeInfo{From: NodeID(w), To: id, Cost: e.Cost, Bidirectional: e.Bidirectional})
			}
		}
	}

	return out
}

// ForEachEdge invokes fn for every outgoing edge of id without allocating.
// This is the search-loop iteration primitive. Inactive ids iterate nothing.
func (g *Graph) ForEachEdge(id NodeID, fn func(e Edge)) {
	if !g.valid(id) || !g.active[id] {
		return
	}
	start := g.regionStart(id)
	for s := 0; s < int(g.edgeCount[id]); s++ {
		fn(g.edges[start+s])
	}
}

// EdgeAt returns the edge in slot s of id's region. The (id, s) pair is the
// stable reference format the spatial index stores.
func (g *Graph) EdgeAt(id NodeID, s int) (Edge, bool) {
	if !g.valid(id) || !g.active[id] || s < 0 || s >= int(g.edgeCount[id]) {
		return Edge{}, false
	}

	return g.edges[g.regionStart(id)+s], true
}

// PositionOf returns id's position. The second result is false for invalid or
// inactive ids; the position is then the zero value.
func (g *Graph) PositionOf(id NodeID) (Position, bool) {
	if !g.valid(id) || !g.active[id] {
		return Position{}, false
	}

	return g.pos[id], true
}

// Position implements the distcache.PositionSource contract: it returns the
// slot position without an activity check, and the zero position for the
// InvalidNode sentinel.
func (g *Graph) Position(id NodeID) Position {
	if !g.valid(id) {
		return Position{}
	}

	return g.pos[id]
}

// Active reports whether id addresses an active slot.
func (g *Graph) Active(id NodeID) bool {
	return g.valid(id) && g.active[id]
}

// NodeVersionOf returns id's per-node version, zero for invalid ids.
func (g *Graph) NodeVersionOf(id NodeID) uint64 {
	if !g.valid(id) {
		return 0
	}

	return g.nodeVer[id]
}

// NodeVersion returns the global node version counter.
func (g *Graph) NodeVersion() uint64 { return g.nodeVersion }

// EdgeVersion returns the global edge version counter.
func (g *Graph) EdgeVersion() uint64 { return g.edgeVersion }

// ActiveCount returns the number of active node slots.
func (g *Graph) ActiveCount() int { return g.activeCount }

// EdgeCountOf returns the number of outgoing edges stored for id.
func (g *Graph) EdgeCountOf(id NodeID) int {
	if !g.valid(id) {
		return 0
	}

	return int(g.edgeCount[id])
}

// TotalEdgeCount returns the number of stored directed edges across all
// active sources. Bidirectional pairs count twice.
func (g *Graph) TotalEdgeCount() int {
	total := 0
	for i := 0; i < g.maxNodes; i++ {
		if g.active[i] {
			total += int(g.edgeCount[i])
		}
	}

	return total
}

// MaxNodes returns the node slot capacity.
func (g *Graph) MaxNodes() int { return g.maxNodes }

// MaxEdgesPerNode returns the per-source edge region capacity.
func (g *Graph) MaxEdgesPerNode() int { return g.maxEdgesPerNode }

// Bounds returns the axis-aligned bounding box of all active node positions.
// ok is false when the graph has no active node.
func (g *Graph) Bounds() (min, max Position, ok bool) {
	for i := 0; i < g.maxNodes; i++ {
		if !g.active[i] {
			continue
		}
		p := g.pos[i]
		if !ok {
			min, max, ok = p, p, true

			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}

	return min, max, ok
}

// MeanEdgeLength returns the average Euclidean length of stored edges between
// active endpoints, or 0 when there are none. The spatial index derives its
// automatic cell size from this figure.
// Complexity: O(MaxNodes × MaxEdgesPerNode).
func (g *Graph) MeanEdgeLength() float32 {
	var sum float64
	var n int
	for i := 0; i < g.maxNodes; i++ {
		if !g.active[i] {
			continue
		}
		from := g.pos[i]
		start := g.regionStart(NodeID(i))
		for s := 0; s < int(g.edgeCount[i]); s++ {
			to := g.edges[start+s].To
			if !g.valid(to) || !g.active[to] {
				continue
			}
			sum += float64(from.Distance(g.pos[to]))
			n++
		}
	}
	if n == 0 {
		return 0
	}

	return float32(sum / float64(n))
}
