package spatial

import (
	"math"

	"github.com/katalvlaran/pathgrid/core"
)

const (
	// MinCellSize and MaxCellSize clamp the auto-computed cell edge, in
	// world units.
	MinCellSize float32 = 10
	MaxCellSize float32 = 500

	// MaxCellCount caps width × height; the cell size grows until the
	// product fits.
	MaxCellCount = 1_000_000

	// AutoEnableThreshold is the active-node count at which the engine turns
	// the grid on by itself.
	AutoEnableThreshold = 100
)

// EdgeRef identifies a stored edge as (source node, region slot). Refs are
// only valid while the grid is clean: swap-and-pop removal renumbers slots.
type EdgeRef struct {
	From core.NodeID
	Slot int32
}

// Grid is the uniform spatial index. Not safe for concurrent use.
type Grid struct {
	g *core.Graph

	// requestedCellSize is the caller's explicit size; 0 means auto.
	requestedCellSize float32

	cellSize float32
	origin   core.Position
	w, h     int

	refs      []EdgeRef
	cellStart []int32
	cellCount []int32

	dirty bool
	built bool
}

// New creates a grid over g. cellSize 0 selects the size automatically at
// build time. The grid builds lazily on first query.
func New(g *core.Graph, cellSize float32) *Grid {
	return &Grid{g: g, requestedCellSize: cellSize, dirty: true}
}

// MarkDirty schedules a rebuild before the next query. All mutation hooks
// funnel here: patching the flat counting-sort layout in place would cost as
// much as rebuilding it.
func (gr *Grid) MarkDirty() { gr.dirty = true }

// UpdateNodePosition records that id moved.
func (gr *Grid) UpdateNodePosition(core.NodeID) { gr.MarkDirty() }

// InvalidateNode records that id was removed.
func (gr *Grid) InvalidateNode(core.NodeID) { gr.MarkDirty() }

// AddEdge records that an edge appeared.
func (gr *Grid) AddEdge(core.NodeID, core.NodeID) { gr.MarkDirty() }

// RemoveEdge records that an edge disappeared.
func (gr *Grid) RemoveEdge(core.NodeID, core.NodeID) { gr.MarkDirty() }

// Shutdown releases the index storage. The grid rebuilds from scratch if
// queried again.
func (gr *Grid) Shutdown() {
	gr.refs, gr.cellStart, gr.cellCount = nil, nil, nil
	gr.w, gr.h = 0, 0
	gr.built = false
	gr.dirty = true
}

// Rebuild reconstructs the index from the graph's current state.
// Complexity: O(MaxNodes × MaxEdgesPerNode + cells).
func (gr *Grid) Rebuild() {
	gr.dirty = false
	gr.built = true
	gr.refs = gr.refs[:0]
	gr.w, gr.h = 0, 0

	min, max, ok := gr.g.Bounds()
	if !ok {
		return
	}
	gr.origin = min

	// 1) Pick the cell size: explicit, or 2× mean edge length clamped.
	size := gr.requestedCellSize
	if size <= 0 {
		size = 2 * gr.g.MeanEdgeLength()
	}
	if size < MinCellSize {
		size = MinCellSize
	}
	if size > MaxCellSize {
		size = MaxCellSize
	}

	// 2) Grow the cell until the grid fits the cell-count budget.
	for {
		gr.w = int(math.Floor(float64((max.X-min.X)/size))) + 1
		gr.h = int(math.Floor(float64((max.Y-min.Y)/size))) + 1
		if gr.w*gr.h <= MaxCellCount {
			break
		}
		size *= 2
	}
	gr.cellSize = size

	cells := gr.w * gr.h
	if cap(gr.cellStart) < cells {
		gr.cellStart = make([]int32, cells)
		gr.cellCount = make([]int32, cells)
	} else {
		gr.cellStart = gr.cellStart[:cells]
		gr.cellCount = gr.cellCount[:cells]
		for i := range gr.cellStart {
			gr.cellStart[i], gr.cellCount[i] = 0, 0
		}
	}

	// 3) Counting pass: how many refs land in each cell.
	total := 0
	gr.forEachEdgeCellRange(func(_ EdgeRef, cx0, cy0, cx1, cy1 int) {
		for cy := cy0; cy <= cy1; cy++ {
			for cx := cx0; cx <= cx1; cx++ {
				gr.cellCount[cy*gr.w+cx]++
				total++
			}
		}
	})

	// 4) Prefix sums into cellStart.
	var cursor int32
	for i := range gr.cellStart {
		gr.cellStart[i] = cursor
		cursor += gr.cellCount[i]
		gr.cellCount[i] = 0 // reused as a fill cursor below
	}

	if cap(gr.refs) < total {
		gr.refs = make([]EdgeRef, total)
	} else {
		gr.refs = gr.refs[:total]
	}

	// 5) Fill pass.
	gr.forEachEdgeCellRange(func(ref EdgeRef, cx0, cy0, cx1, cy1 int) {
		for cy := cy0; cy <= cy1; cy++ {
			for cx := cx0; cx <= cx1; cx++ {
				cell := cy*gr.w + cx
				gr.refs[gr.cellStart[cell]+gr.cellCount[cell]] = ref
				gr.cellCount[cell]++
			}
		}
	})
}

// forEachEdgeCellRange visits every stored edge with the cell rectangle its
// AABB overlaps.
func (gr *Grid) forEachEdgeCellRange(fn func(ref EdgeRef, cx0, cy0, cx1, cy1 int)) {
	for i := 0; i < gr.g.MaxNodes(); i++ {
		id := core.NodeID(i)
		from, ok := gr.g.PositionOf(id)
		if !ok {
			continue
		}
		for s := 0; s < gr.g.EdgeCountOf(id); s++ {
			e, ok := gr.g.EdgeAt(id, s)
			if !ok {
				continue
			}
			to, ok := gr.g.PositionOf(e.To)
			if !ok {
				continue
			}

			minX, maxX := from.X, to.X
			if minX > maxX {
				minX, maxX = maxX, minX
			}
			minY, maxY := from.Y, to.Y
			if minY > maxY {
				minY, maxY = maxY, minY
			}

			cx0, cy0 := gr.cellOf(minX, minY)
			cx1, cy1 := gr.cellOf(maxX, maxY)
			fn(EdgeRef{From: id, Slot: int32(s)}, cx0, cy0, cx1, cy1)
		}
	}
}

// cellOf maps world coordinates to clamped cell coordinates.
func (gr *Grid) cellOf(x, y float32) (int, int) {
	cx := int(math.Floor(float64((x - gr.origin.X) / gr.cellSize)))
	cy := int(math.Floor(float64((y - gr.origin.Y) / gr.cellSize)))
	if cx < 0 {
		cx = 0
	}
	if cx >= gr.w {
		cx = gr.w - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= gr.h {
		cy = gr.h - 1
	}

	return cx, cy
}

// NearestEdge returns the edge closest to p and p's projection onto it.
// The query scans p's cell and its 3×3 neighborhood; when the neighborhood
// holds no edges it falls back to a full linear scan. ok is false only when
// the graph has no traversable edge at all.
// Complexity: O(neighborhood refs), O(total edges) on fallback.
func (gr *Grid) NearestEdge(p core.Position) (EdgeRef, core.Position, bool) {
	if gr.dirty || !gr.built {
		gr.Rebuild()
	}

	best := EdgeRef{From: core.InvalidNode}
	var bestProj core.Position
	bestDistSq := float32(math.MaxFloat32)
	found := false

	if gr.w > 0 && gr.h > 0 {
		cx, cy := gr.cellOf(p.X, p.Y)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := cx+dx, cy+dy
				if nx < 0 || nx >= gr.w || ny < 0 || ny >= gr.h {
					continue
				}
				cell := ny*gr.w + nx
				start := gr.cellStart[cell]
				for k := int32(0); k < gr.cellCount[cell]; k++ {
					ref := gr.refs[start+k]
					if proj, distSq, ok := gr.project(p, ref); ok && distSq < bestDistSq {
						best, bestProj, bestDistSq, found = ref, proj, distSq, true
					}
				}
			}
		}
	}

	if found {
		return best, bestProj, true
	}

	// Fallback: exhaustive scan. The neighborhood was empty (sparse graph or
	// far-away query point), so correctness demands looking everywhere.
	for i := 0; i < gr.g.MaxNodes(); i++ {
		id := core.NodeID(i)
		if !gr.g.Active(id) {
			continue
		}
		for s := 0; s < gr.g.EdgeCountOf(id); s++ {
			ref := EdgeRef{From: id, Slot: int32(s)}
			if proj, distSq, ok := gr.project(p, ref); ok && distSq < bestDistSq {
				best, bestProj, bestDistSq, found = ref, proj, distSq, true
			}
		}
	}

	return best, bestProj, found
}

// project resolves ref to its segment and projects p onto it.
func (gr *Grid) project(p core.Position, ref EdgeRef) (core.Position, float32, bool) {
	e, ok := gr.g.EdgeAt(ref.From, int(ref.Slot))
	if !ok {
		return core.Position{}, 0, false
	}
	from, ok := gr.g.PositionOf(ref.From)
	if !ok {
		return core.Position{}, 0, false
	}
	to, ok := gr.g.PositionOf(e.To)
	if !ok {
		return core.Position{}, 0, false
	}

	proj := p.ClosestPointOnSegment(from, to)

	return proj, p.DistanceSquared(proj), true
}

// Stats describes the built index for introspection.
type Stats struct {
	Built     bool
	CellSize  float32
	Width     int
	Height    int
	CellCount int
	EdgeRefs  int

	// Occupancy distribution over non-empty storage.
	MinRefsPerCell  int
	MaxRefsPerCell  int
	MeanRefsPerCell float64
}

// Snapshot returns the current index statistics without triggering a rebuild.
func (gr *Grid) Snapshot() Stats {
	st := Stats{
		Built:     gr.built && !gr.dirty,
		CellSize:  gr.cellSize,
		Width:     gr.w,
		Height:    gr.h,
		CellCount: gr.w * gr.h,
		EdgeRefs:  len(gr.refs),
	}
	if st.CellCount == 0 {
		return st
	}

	min, max := int(gr.cellCount[0]), int(gr.cellCount[0])
	total := 0
	for _, c := range gr.cellCount {
		n := int(c)
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
		total += n
	}
	st.MinRefsPerCell = min
	st.MaxRefsPerCell = max
	st.MeanRefsPerCell = float64(total) / float64(st.CellCount)

	return st
}
