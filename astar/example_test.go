// Package astar_test provides runnable examples for the engine's two query
// families: node-to-node and projected.
package astar_test

import (
	"fmt"

	"github.com/katalvlaran/pathgrid/astar"
	"github.com/katalvlaran/pathgrid/core"
)

// ExampleEngine_FindPath routes across a small road chain and shows the
// cache paying off on the second query.
func ExampleEngine_FindPath() {
	// 1) One engine instance owns all state; defaults are fine here.
	e := astar.New()

	// 2) Four waypoints on a straight road, ten units apart.
	var ids []core.NodeID
	for i := 0; i < 4; i++ {
		id, _ := e.AddNode(core.Position{X: float32(i) * 10, Y: 0})
		ids = append(ids, id)
	}
	for i := 0; i+1 < len(ids); i++ {
		_ = e.AddEdge(ids[i], ids[i+1], 10, true)
	}

	// 3) First query searches; the repeat is served from the route cache.
	path, status := e.FindPath(ids[0], ids[3], nil)
	fmt.Println(status, path, e.PathCost(path))

	_, _ = e.FindPath(ids[0], ids[3], nil)
	fmt.Printf("cache hit rate: %.2f\n", e.Stats().PathCache.HitRate)
	// Output:
	// SUCCESS [0 1 2 3] 30
	// cache hit rate: 0.50
}

// ExampleEngine_FindPathFromPoint routes an agent standing off the graph:
// the start position is projected onto the nearest edge first.
func ExampleEngine_FindPathFromPoint() {
	e := astar.New()

	n1, _ := e.AddNode(core.Position{X: 0, Y: 0})
	n2, _ := e.AddNode(core.Position{X: 100, Y: 0})
	_ = e.AddEdge(n1, n2, 100, true)

	// The agent stands five units off the road at x=50.
	path, entry, status := e.FindPathFromPoint(core.Position{X: 50, Y: 5}, n2, nil)
	fmt.Println(status, path)
	fmt.Printf("walk to (%.0f,%.0f) first\n", entry.X, entry.Y)
	// Output:
	// SUCCESS [1]
	// walk to (50,0) first
}
