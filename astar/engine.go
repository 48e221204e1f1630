package astar

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/pathgrid/core"
	"github.com/katalvlaran/pathgrid/distcache"
	"github.com/katalvlaran/pathgrid/heappool"
	"github.com/katalvlaran/pathgrid/pathcache"
	"github.com/katalvlaran/pathgrid/spatial"
)

// Engine is one pathfinding instance: the graph store plus every cache and
// budget that serves it. All state is pre-allocated in New; the query path
// allocates nothing beyond the caller's output buffer.
//
// An Engine is a single-threaded actor — neither queries nor mutations are
// safe to issue concurrently. Shard instances (package shardpool) when
// parallel throughput is required.
type Engine struct {
	opts    Options
	log     *zap.Logger
	metrics metricsSink

	graph       *core.Graph
	pool        *heappool.Pool
	dists       *distcache.Cache
	routes      *pathcache.Table
	pointRoutes *pathcache.Table
	grid        *spatial.Grid // nil until enabled

	// Per-search scratch, generation-stamped so reset is O(visited).
	gScore    []float32
	cameFrom  []core.NodeID
	openGen   []uint32
	closedGen []uint32
	gen       uint32

	// expandHook, when set, observes every node expansion. Test
	// instrumentation for the reentrant-mutation protocol.
	expandHook func(core.NodeID)
}

// New constructs an Engine with the given options. The heap block size is
// silently clamped to MaxNodes, the pool capacity.
// Complexity: O(MaxNodes × MaxEdgesPerNode + cache capacities).
func New(opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.HeapBlockSize > o.MaxNodes {
		o.HeapBlockSize = o.MaxNodes
	}
	if o.VirtualMaxPath > o.MaxNodes {
		o.VirtualMaxPath = o.MaxNodes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	e := &Engine{
		opts:        o,
		log:         o.Logger,
		metrics:     newMetricsSink(o.Registry),
		graph:       core.NewGraph(o.MaxNodes, o.MaxEdgesPerNode),
		pool:        heappool.NewPool(o.MaxNodes),
		routes:      pathcache.NewTable(o.PathCacheCapacity, o.MaxCachePathLength),
		pointRoutes: pathcache.NewTable(o.PathCacheCapacity, o.MaxCachePathLength),
		gScore:      make([]float32, o.MaxNodes),
		cameFrom:    make([]core.NodeID, o.MaxNodes),
		openGen:     make([]uint32, o.MaxNodes),
		closedGen:   make([]uint32, o.MaxNodes),
	}
	e.dists = distcache.New(e.graph, o.MaxNodes, o.MaxNodes)

	if !o.DisableSpatialIndex && o.SpatialCellSize > 0 {
		e.grid = spatial.New(e.graph, o.SpatialCellSize)
	}

	return e
}

// Graph exposes the underlying store read-only by convention: mutate only
// through the engine so cache invalidation stays wired.
func (e *Engine) Graph() *core.Graph { return e.graph }

// Shutdown releases the caches and the spatial index. The engine must not be
// used afterwards; this is the only irrecoverable transition.
func (e *Engine) Shutdown() {
	e.routes.Clear()
	e.pointRoutes.Clear()
	if e.grid != nil {
		e.grid.Shutdown()
		e.grid = nil
	}
	e.log.Info("pathgrid engine shut down",
		zap.Int("nodes", e.graph.ActiveCount()))
}

// ------------------------------------------------------------------------
// Mutation façade: every structural change funnels through here so the
// distance cache chains and the spatial index stay consistent.
// ------------------------------------------------------------------------

// AddNode activates a node at p. Returns core.ErrNodeFull when every slot is
// taken.
func (e *Engine) AddNode(p core.Position) (core.NodeID, error) {
	id, err := e.graph.AddNode(p)
	if err != nil {
		return id, err
	}

	if e.grid != nil {
		e.grid.MarkDirty()
	}
	e.maybeEnableSpatial()
	e.log.Debug("node added", zap.Int32("id", int32(id)))

	return id, nil
}

// MoveNode repositions id. Sub-epsilon displacements and invalid ids are
// silently ignored; a real move invalidates the node's distance-cache chain
// and dirties the spatial index. Cached routes touching the node die lazily
// at their next lookup through the per-node version snapshot.
func (e *Engine) MoveNode(id core.NodeID, p core.Position) {
	if !e.graph.MoveNode(id, p) {
		return
	}

	e.dists.Invalidate(id)
	if e.grid != nil {
		e.grid.UpdateNodePosition(id)
	}
}

// RemoveNode deactivates id and its incident edges. Idempotent.
func (e *Engine) RemoveNode(id core.NodeID) {
	if !e.graph.Active(id) {
		return
	}

	e.graph.RemoveNode(id)
	e.dists.Invalidate(id)
	if e.grid != nil {
		e.grid.InvalidateNode(id)
	}
	e.log.Debug("node removed", zap.Int32("id", int32(id)))
}

// AddEdge connects u→v (and v→u when bidirectional) at the given cost.
func (e *Engine) AddEdge(u, v core.NodeID, cost float32, bidirectional bool) error {
	if err := e.graph.AddEdge(u, v, cost, bidirectional); err != nil {
		return err
	}

	if e.grid != nil {
		e.grid.AddEdge(u, v)
	}

	return nil
}

// RemoveEdge removes the first u→v edge. Missing edges are a no-op.
func (e *Engine) RemoveEdge(u, v core.NodeID) {
	if !e.graph.RemoveEdge(u, v) {
		return
	}

	if e.grid != nil {
		e.grid.RemoveEdge(u, v)
	}
}

// NodePosition returns id's position; ok is false for invalid or inactive ids.
func (e *Engine) NodePosition(id core.NodeID) (core.Position, bool) {
	return e.graph.PositionOf(id)
}

// NodeEdges enumerates id's connections. See core.Graph.EdgesOf for the
// filter semantics.
func (e *Engine) NodeEdges(id core.NodeID, includeBidirectional, includeIncoming bool) []core.EdgeInfo {
	return e.graph.EdgesOf(id, includeBidirectional, includeIncoming)
}

// maybeEnableSpatial turns the grid on once the graph is big enough to repay
// indexed projection.
func (e *Engine) maybeEnableSpatial() {
	if e.grid != nil || e.opts.DisableSpatialIndex {
		return
	}
	if e.graph.ActiveCount() < spatial.AutoEnableThreshold {
		return
	}

	e.grid = spatial.New(e.graph, e.opts.SpatialCellSize)
	e.log.Debug("spatial index enabled", zap.Int("nodes", e.graph.ActiveCount()))
}

// ------------------------------------------------------------------------
// Introspection.
// ------------------------------------------------------------------------

// CacheStats describes one route table.
type CacheStats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// DistCacheStats describes the pairwise distance table.
type DistCacheStats struct {
	Entries int
	Size    int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Stats is the full introspection snapshot.
type Stats struct {
	PathCache  CacheStats
	PointCache CacheStats
	DistCache  DistCacheStats

	// Spatial is nil while the grid is disabled or not yet enabled.
	Spatial *spatial.Stats
}

// Stats returns current cache and index statistics.
func (e *Engine) Stats() Stats {
	st := Stats{
		PathCache:  tableStats(e.routes),
		PointCache: tableStats(e.pointRoutes),
	}

	hits, misses := e.dists.Stats()
	st.DistCache = DistCacheStats{
		Entries: e.dists.Len(),
		Size:    e.dists.Size(),
		Hits:    hits,
		Misses:  misses,
	}
	if total := hits + misses; total > 0 {
		st.DistCache.HitRate = float64(hits) / float64(total)
	}

	if e.grid != nil {
		snap := e.grid.Snapshot()
		st.Spatial = &snap
	}

	return st
}

func tableStats(t *pathcache.Table) CacheStats {
	hits, misses, evictions := t.Stats()

	return CacheStats{
		Entries:   t.Len(),
		Capacity:  t.Capacity(),
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		HitRate:   t.HitRate(),
	}
}
