package astar

// Internal tests for the reentrant-mutation protocol and the pool
// discipline. They use the expansion hook to mutate the graph from inside
// the search loop, the way a scripted callback in an embedding event loop
// would.

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pathgrid/core"
)

// buildTriangle wires three nodes a→b→c plus a direct a→c detour.
func buildTriangle(t *testing.T, e *Engine) (a, b, c core.NodeID) {
	t.Helper()
	var err error
	a, err = e.AddNode(core.Position{X: 0, Y: 0})
	require.NoError(t, err)
	b, err = e.AddNode(core.Position{X: 10, Y: 0})
	require.NoError(t, err)
	c, err = e.AddNode(core.Position{X: 20, Y: 0})
	require.NoError(t, err)
	require.NoError(t, e.AddEdge(a, b, 10, true))
	require.NoError(t, e.AddEdge(b, c, 10, true))
	require.NoError(t, e.AddEdge(a, c, 25, true))

	return a, b, c
}

func TestSearch_GraphChangedTooOften(t *testing.T) {
	// A hook that bumps the edge version on every expansion
	// forces each attempt to abort; after three aborted attempts the query
	// fails with GraphChangedTooOften and stops retrying.
	e := New(WithMaxNodes(16), WithMaxEdgesPerNode(16))
	a, b, _ := buildTriangle(t, e)

	mutations := 0
	e.expandHook = func(core.NodeID) {
		mutations++
		// A duplicate edge is the cheapest mutation bumping edge_version.
		require.NoError(t, e.graph.AddEdge(a, b, 10, false))
	}

	path, st := e.FindPath(a, b, nil)
	require.Equal(t, GraphChangedTooOften, st)
	require.Empty(t, path)
	require.Equal(t, maxGraphChangedRetries, mutations, "exactly one expansion per attempt")

	// The pool must be fully drained despite the aborted attempts.
	require.Zero(t, e.pool.Cursor())
	require.Zero(t, e.pool.Outstanding())
}

func TestSearch_RetrySucceedsAfterTransientMutation(t *testing.T) {
	// The first attempt is aborted by a single mutation; the restarted
	// attempt runs against the settled graph and succeeds.
	e := New(WithMaxNodes(16), WithMaxEdgesPerNode(16))
	a, _, c := buildTriangle(t, e)

	fired := false
	e.expandHook = func(core.NodeID) {
		if fired {
			return
		}
		fired = true
		require.NoError(t, e.graph.AddEdge(a, c, 26, false))
	}

	path, st := e.FindPath(a, c, nil)
	require.Equal(t, Success, st)
	require.Equal(t, a, path[0])
	require.Equal(t, c, path[len(path)-1])
	require.Zero(t, e.pool.Cursor())
}

func TestSearch_NestedSearchReleasesLIFO(t *testing.T) {
	// An inner search started while the outer one is suspended
	// acquires and fully releases its slice before the outer resumes; the
	// cursor returns to the outer slice's watermark and finally to zero.
	e := New(WithMaxNodes(32), WithMaxEdgesPerNode(8), WithHeapBlockSize(8))
	a, b, c := buildTriangle(t, e)

	sawNested := false
	e.expandHook = func(core.NodeID) {
		if sawNested {
			return
		}
		sawNested = true

		outerMark := e.pool.Cursor()
		require.Equal(t, 1, e.pool.Outstanding(), "outer slice held during callback")

		// Reentrant query over the shared scratch arrays. The outer attempt
		// detects the generation move and restarts cleanly.
		e.expandHook = nil
		inner, st := e.FindPath(b, c, nil)
		require.Equal(t, Success, st)
		require.Equal(t, []core.NodeID{b, c}, inner)

		require.Equal(t, outerMark, e.pool.Cursor(), "inner slice fully released")
		require.Equal(t, 1, e.pool.Outstanding())
	}

	path, st := e.FindPath(a, c, nil)
	require.Equal(t, Success, st)
	require.True(t, sawNested)
	require.Equal(t, a, path[0])
	require.Equal(t, c, path[len(path)-1])
	require.Zero(t, e.pool.Cursor())
	require.Zero(t, e.pool.Outstanding())
}

func TestSearch_GenerationWraparound(t *testing.T) {
	// Force the generation stamp to the wrap boundary and verify the scratch
	// arrays reset instead of aliasing a stale search.
	e := New(WithMaxNodes(8), WithMaxEdgesPerNode(4))
	a, _, c := buildTriangle(t, e)

	e.gen = ^uint32(0) - 1

	for i := 0; i < 4; i++ {
		// Bypass the route cache so every iteration really searches.
		e.routes.Clear()
		path, st := e.FindPath(a, c, nil)
		require.Equal(t, Success, st, "iteration %d", i)
		require.Equal(t, []core.NodeID{a, 1, c}, path, "iteration %d", i)
	}
}
