package astar

// search.go holds FindPath and the single-attempt A* loop. The loop never
// zeroes its scoring arrays: a per-search generation stamp marks which slots
// are live, so restarting costs O(visited) instead of O(MaxNodes).

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/pathgrid/core"
	"github.com/katalvlaran/pathgrid/pathcache"
)

// FindPath computes the cheapest route from start to goal, both node IDs.
//
// The returned slice is built in buf (grown as needed — the buffer size is
// advisory, the result is never truncated) and runs from start to goal
// inclusive. The Status is Success, StartNodeInvalid, GoalNodeInvalid,
// StartGoalSame (empty path), NoPath, HeapFull, or GraphChangedTooOften.
//
// Results no longer than the configured cache length are stored in the route
// cache; a repeated query is O(path length).
// Complexity: O((V + E) log V) over the visited frontier on a miss.
func (e *Engine) FindPath(start, goal core.NodeID, buf []core.NodeID) ([]core.NodeID, Status) {
	// 1) Validate endpoints, start first.
	if !e.graph.Active(start) {
		e.metrics.observeSearch(StartNodeInvalid)

		return buf[:0], StartNodeInvalid
	}
	if !e.graph.Active(goal) {
		e.metrics.observeSearch(GoalNodeInvalid)

		return buf[:0], GoalNodeInvalid
	}
	if start == goal {
		e.metrics.observeSearch(StartGoalSame)

		return buf[:0], StartGoalSame
	}

	// 2) Route cache. The lookup re-validates the entry's version snapshot.
	if path, _, ok := e.routes.Lookup(pathcache.NodeKey(start, goal), e.graph); ok {
		e.metrics.incCacheHit(tableNodeRoutes)
		e.metrics.observeSearch(Success)

		return append(buf[:0], path...), Success
	}
	e.metrics.incCacheMiss(tableNodeRoutes)

	// 3) Full search with the restart protocol.
	return e.findPathRetrying(start, goal, e.opts.HeapBlockSize, buf, true)
}

// findPathRetrying runs search attempts until one completes or the retry
// budget is spent. Every attempt aborted by a version mismatch is restarted
// against the new graph state; after maxGraphChangedRetries consecutive
// aborts the query fails with GraphChangedTooOften.
func (e *Engine) findPathRetrying(start, goal core.NodeID, block int, buf []core.NodeID, cache bool) ([]core.NodeID, Status) {
	for attempt := 0; attempt < maxGraphChangedRetries; attempt++ {
		out, st := e.search(start, goal, block, buf, cache)
		if st != GraphChanged {
			e.metrics.observeSearch(st)

			return out, st
		}

		e.metrics.incRetry()
		e.log.Debug("search attempt aborted by graph change",
			zap.Int32("start", int32(start)),
			zap.Int32("goal", int32(goal)),
			zap.Int("attempt", attempt+1))
	}

	e.metrics.observeSearch(GraphChangedTooOften)

	return buf[:0], GraphChangedTooOften
}

// search is one A* attempt over a freshly acquired heap slice.
func (e *Engine) search(start, goal core.NodeID, block int, buf []core.NodeID, cache bool) ([]core.NodeID, Status) {
	// 1) Snapshot both version counters; any mismatch mid-loop aborts.
	snapNode := e.graph.NodeVersion()
	snapEdge := e.graph.EdgeVersion()

	// 2) Carve the open-set budget. Releasing restores the pool cursor; a
	//    LIFO violation here is a bug in the engine itself, so it panics.
	h, err := e.pool.Acquire(block)
	if err != nil {
		return buf[:0], HeapFull
	}
	defer func() {
		if rerr := e.pool.Release(h); rerr != nil {
			panic(rerr)
		}
	}()

	// 3) Fresh generation: previous searches' scores become garbage without
	//    touching memory. The value is kept local — a reentrant search from
	//    a callback advances e.gen, which this attempt detects below.
	gen := e.nextGeneration()

	// 4) Seed with the start node.
	e.gScore[start] = 0
	e.openGen[start] = gen
	e.cameFrom[start] = core.InvalidNode
	if err = h.Push(start, e.heuristic(start, goal)); err != nil {
		return buf[:0], HeapFull
	}

	// 5) Expansion loop.
	for {
		cur, ok := h.Pop()
		if !ok {
			return buf[:0], NoPath
		}
		if e.closedGen[cur.Node] == gen {
			// Stale lazy-decrease-key duplicate.
			continue
		}
		if cur.Node == goal {
			return e.reconstruct(start, goal, buf, cache), Success
		}
		e.closedGen[cur.Node] = gen

		if e.expandHook != nil {
			e.expandHook(cur.Node)
		}
		// A version mismatch means a callback mutated the graph; a moved
		// generation means a callback ran its own search over the shared
		// scratch arrays. Either way this attempt's state is garbage.
		if e.graph.NodeVersion() != snapNode || e.graph.EdgeVersion() != snapEdge || e.gen != gen {
			return buf[:0], GraphChanged
		}

		// Relax every outgoing edge. Duplicate edges both relax; only a
		// strictly better g-score pushes.
		curG := e.gScore[cur.Node]
		var pushErr error
		e.graph.ForEachEdge(cur.Node, func(edge core.Edge) {
			if pushErr != nil {
				return
			}
			v := edge.To
			if e.closedGen[v] == gen {
				return
			}
			tentative := curG + edge.Cost
			if e.openGen[v] == gen && tentative >= e.gScore[v] {
				return
			}
			e.gScore[v] = tentative
			e.openGen[v] = gen
			e.cameFrom[v] = cur.Node
			pushErr = h.Push(v, tentative+e.heuristic(v, goal))
		})
		if pushErr != nil {
			return buf[:0], HeapFull
		}
	}
}

// reconstruct walks cameFrom from goal back to start, reverses in place, and
// optionally stores the route in the node cache.
func (e *Engine) reconstruct(start, goal core.NodeID, buf []core.NodeID, cache bool) []core.NodeID {
	out := buf[:0]
	for n := goal; ; n = e.cameFrom[n] {
		out = append(out, n)
		if n == start {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	if cache {
		// Insert refuses overlong routes; the caller still gets them.
		e.routes.Insert(pathcache.NodeKey(start, goal), out, core.Position{}, e.graph)
	}

	return out
}

// heuristic estimates the remaining cost from a to b: the cached Euclidean
// distance, optionally scaled down for non-metric edge costs.
func (e *Engine) heuristic(a, b core.NodeID) float32 {
	return e.dists.GetOrCompute(a, b) * e.opts.HeuristicScale
}

// nextGeneration advances the scratch stamp and returns it, clearing the
// arrays only on the uint32 wraparound.
func (e *Engine) nextGeneration() uint32 {
	e.gen++
	if e.gen == 0 {
		for i := range e.openGen {
			e.openGen[i] = 0
			e.closedGen[i] = 0
		}
		e.gen = 1
	}

	return e.gen
}

// PathCost sums the cheapest-edge cost along consecutive pairs of path.
// Mirrors the relaxation rule, which always follows the cheapest parallel
// edge. Returns 0 for paths shorter than two nodes.
func (e *Engine) PathCost(path []core.NodeID) float32 {
	var total float32
	for i := 0; i+1 < len(path); i++ {
		best := float32(0)
		found := false
		e.graph.ForEachEdge(path[i], func(edge core.Edge) {
			if edge.To != path[i+1] {
				return
			}
			if !found || edge.Cost < best {
				best = edge.Cost
				found = true
			}
		})
		total += best
	}

	return total
}
