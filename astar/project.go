package astar

// project.go implements the virtual-node protocol: off-graph query points
// are projected onto the nearest edge, a transient node is installed at the
// projection and wired to the segment endpoints, the search runs, and the
// transient geometry is removed on every exit path — the graph returns to
// its pre-call shape (version counters excepted) no matter how the query
// ends.

import (
	"math"

	"github.com/katalvlaran/pathgrid/core"
	"github.com/katalvlaran/pathgrid/pathcache"
)

// FindPathFromPoint routes from an arbitrary world position to a goal node.
//
// The returned path holds real node IDs only — the transient start is
// excluded; entry is its projection on the nearest edge, the position the
// agent should walk to first. Successful results are cached under the
// quantized start point, so nearby repeats skip both projection and search.
//
// Status values beyond FindPath's: NoProjection when the graph has no edge
// to project onto, VirtualNodeFailed when node or edge capacity blocks the
// transient wiring (rolled back before returning).
func (e *Engine) FindPathFromPoint(p core.Position, goal core.NodeID, buf []core.NodeID) ([]core.NodeID, core.Position, Status) {
	// 1) Quantized-point cache.
	key := pathcache.PointKey(p, e.opts.PointEpsilon, goal)
	if path, entry, ok := e.pointRoutes.Lookup(key, e.graph); ok {
		e.metrics.incCacheHit(tablePointRoutes)
		e.metrics.observeSearch(Success)

		return append(buf[:0], path...), entry, Success
	}
	e.metrics.incCacheMiss(tablePointRoutes)

	// 2) Project onto the nearest edge. An edgeless graph has nothing to
	//    project onto, which outranks goal validation.
	e.metrics.incProjection()
	u, v, bidi, proj, ok := e.nearestEdge(p)
	if !ok {
		e.metrics.observeSearch(NoProjection)

		return buf[:0], core.Position{}, NoProjection
	}
	if !e.graph.Active(goal) {
		e.metrics.observeSearch(GoalNodeInvalid)

		return buf[:0], core.Position{}, GoalNodeInvalid
	}

	// 3) Transient start node at the projection.
	vid, err := e.installVirtualStart(proj, u, v, bidi)
	if err != nil {
		e.metrics.observeSearch(VirtualNodeFailed)

		return buf[:0], core.Position{}, VirtualNodeFailed
	}
	removed := false
	removeVirtual := func() {
		if !removed {
			removed = true
			e.discardVirtual(vid, false)
		}
	}
	defer removeVirtual()

	// 4) Budgeted search from the virtual node. Results are not cached in
	//    the node table: the start id dies with this call.
	path, st := e.findPathRetrying(vid, goal, e.opts.VirtualMaxPath, buf, false)
	if st != Success {
		return buf[:0], core.Position{}, st
	}

	path = stripLeading(path, vid)

	// 5) Restore the graph before snapshotting cache versions: the entry
	//    must validate against the state future lookups will see.
	removeVirtual()
	e.pointRoutes.Insert(key, path, proj, e.graph)

	return path, proj, Success
}

// FindPathToPoint routes from a start node to an arbitrary world position.
// exit is the projection of p onto the nearest edge — where the agent leaves
// the graph. The transient end node is excluded from the returned path.
func (e *Engine) FindPathToPoint(start core.NodeID, p core.Position, buf []core.NodeID) ([]core.NodeID, core.Position, Status) {
	e.metrics.incProjection()
	u, v, bidi, proj, ok := e.nearestEdge(p)
	if !ok {
		e.metrics.observeSearch(NoProjection)

		return buf[:0], core.Position{}, NoProjection
	}
	if !e.graph.Active(start) {
		e.metrics.observeSearch(StartNodeInvalid)

		return buf[:0], core.Position{}, StartNodeInvalid
	}

	vid, err := e.installVirtualEnd(proj, u, v, bidi)
	if err != nil {
		e.metrics.observeSearch(VirtualNodeFailed)

		return buf[:0], core.Position{}, VirtualNodeFailed
	}
	defer e.discardVirtual(vid, true)

	path, st := e.findPathRetrying(start, vid, e.opts.VirtualMaxPath, buf, false)
	if st != Success {
		return buf[:0], core.Position{}, st
	}

	return stripTrailing(path, vid), proj, Success
}

// FindPathBetweenPoints routes between two arbitrary world positions,
// installing a transient node at each projection. Both projections are
// returned; the path holds only real nodes. The two transient nodes are never
// connected to each other, so a successful path always contains at least one
// real node, even when both points project onto the same segment.
func (e *Engine) FindPathBetweenPoints(a, b core.Position, buf []core.NodeID) ([]core.NodeID, core.Position, core.Position, Status) {
	// Project both points before installing anything: transient edges must
	// not influence the second projection.
	e.metrics.incProjection()
	ua, va, bidiA, projA, okA := e.nearestEdge(a)
	if !okA {
		e.metrics.observeSearch(NoProjection)

		return buf[:0], core.Position{}, core.Position{}, NoProjection
	}
	e.metrics.incProjection()
	ub, vb, bidiB, projB, okB := e.nearestEdge(b)
	if !okB {
		e.metrics.observeSearch(NoProjection)

		return buf[:0], core.Position{}, core.Position{}, NoProjection
	}

	vidA, err := e.installVirtualStart(projA, ua, va, bidiA)
	if err != nil {
		e.metrics.observeSearch(VirtualNodeFailed)

		return buf[:0], core.Position{}, core.Position{}, VirtualNodeFailed
	}
	defer e.discardVirtual(vidA, false)

	vidB, err := e.installVirtualEnd(projB, ub, vb, bidiB)
	if err != nil {
		e.metrics.observeSearch(VirtualNodeFailed)

		return buf[:0], core.Position{}, core.Position{}, VirtualNodeFailed
	}
	defer e.discardVirtual(vidB, true)

	path, st := e.findPathRetrying(vidA, vidB, e.opts.VirtualMaxPath, buf, false)
	if st != Success {
		return buf[:0], core.Position{}, core.Position{}, st
	}

	path = stripTrailing(stripLeading(path, vidA), vidB)

	return path, projA, projB, st
}

// nearestEdge locates the edge closest to p, through the grid when enabled
// or a full linear scan otherwise. bidi reports whether the reverse
// direction exists (the O(1) pairwise flag).
func (e *Engine) nearestEdge(p core.Position) (u, v core.NodeID, bidi bool, proj core.Position, ok bool) {
	if e.grid != nil {
		ref, pr, found := e.grid.NearestEdge(p)
		if !found {
			return core.InvalidNode, core.InvalidNode, false, core.Position{}, false
		}
		edge, _ := e.graph.EdgeAt(ref.From, int(ref.Slot))

		return ref.From, edge.To, edge.Bidirectional, pr, true
	}

	bestSq := float32(math.MaxFloat32)
	for i := 0; i < e.graph.MaxNodes(); i++ {
		id := core.NodeID(i)
		from, active := e.graph.PositionOf(id)
		if !active {
			continue
		}
		for s := 0; s < e.graph.EdgeCountOf(id); s++ {
			edge, _ := e.graph.EdgeAt(id, s)
			to, activeTo := e.graph.PositionOf(edge.To)
			if !activeTo {
				continue
			}
			cand := p.ClosestPointOnSegment(from, to)
			if d := p.DistanceSquared(cand); d < bestSq {
				bestSq = d
				u, v, bidi, proj, ok = id, edge.To, edge.Bidirectional, cand, true
			}
		}
	}

	return u, v, bidi, proj, ok
}

// installVirtualStart places a transient node at proj and wires it onto the
// segment (u, v): always toward v (the one-way direction), and toward u as
// well when the reverse edge exists. Partial wiring is rolled back.
func (e *Engine) installVirtualStart(proj core.Position, u, v core.NodeID, bidi bool) (core.NodeID, error) {
	vid, err := e.graph.AddNode(proj)
	if err != nil {
		return core.InvalidNode, err
	}

	pv := e.graph.Position(v)
	if err = e.graph.AddEdge(vid, v, proj.Distance(pv), false); err != nil {
		e.graph.RemoveNode(vid)

		return core.InvalidNode, err
	}
	if bidi {
		pu := e.graph.Position(u)
		if err = e.graph.AddEdge(vid, u, proj.Distance(pu), false); err != nil {
			e.graph.RemoveNode(vid)

			return core.InvalidNode, err
		}
	}

	return vid, nil
}

// installVirtualEnd mirrors installVirtualStart for a transient destination:
// the segment flows into it — from u along the one-way direction, and from v
// as well when the reverse edge exists.
func (e *Engine) installVirtualEnd(proj core.Position, u, v core.NodeID, bidi bool) (core.NodeID, error) {
	vid, err := e.graph.AddNode(proj)
	if err != nil {
		return core.InvalidNode, err
	}

	pu := e.graph.Position(u)
	if err = e.graph.AddEdge(u, vid, proj.Distance(pu), false); err != nil {
		e.graph.RemoveNode(vid)

		return core.InvalidNode, err
	}
	if bidi {
		pv := e.graph.Position(v)
		if err = e.graph.AddEdge(v, vid, proj.Distance(pv), false); err != nil {
			e.graph.RemoveNode(vid)

			return core.InvalidNode, err
		}
	}

	return vid, nil
}

// discardVirtual removes a transient node and its edges. dirtyGrid is set
// for end-virtual nodes: their removal swap-pops real regions and renumbers
// slots the grid may reference.
func (e *Engine) discardVirtual(vid core.NodeID, dirtyGrid bool) {
	if !e.graph.Active(vid) {
		return
	}
	e.graph.RemoveNode(vid)
	e.dists.Invalidate(vid)
	if dirtyGrid && e.grid != nil {
		e.grid.MarkDirty()
	}
}

// stripLeading drops id from the front of path, in place.
func stripLeading(path []core.NodeID, id core.NodeID) []core.NodeID {
	if len(path) > 0 && path[0] == id {
		copy(path, path[1:])
		path = path[:len(path)-1]
	}

	return path
}

// stripTrailing drops id from the back of path.
func stripTrailing(path []core.NodeID, id core.NodeID) []core.NodeID {
	if n := len(path); n > 0 && path[n-1] == id {
		path = path[:n-1]
	}

	return path
}
