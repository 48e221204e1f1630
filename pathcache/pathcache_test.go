// Package pathcache_test verifies snapshot validation, LRU eviction order,
// length refusal, and point-key quantization.
package pathcache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pathgrid/core"
	"github.com/katalvlaran/pathgrid/pathcache"
)

// fakeGraph is a minimal GraphView fixture with hand-rolled versions.
type fakeGraph struct {
	active  map[core.NodeID]bool
	nodeVer map[core.NodeID]uint64
	edgeVer uint64
}

func newFakeGraph(nodes ...core.NodeID) *fakeGraph {
	fg := &fakeGraph{
		active:  make(map[core.NodeID]bool),
		nodeVer: make(map[core.NodeID]uint64),
		edgeVer: 1,
	}
	for _, n := range nodes {
		fg.active[n] = true
		fg.nodeVer[n] = 1
	}

	return fg
}

func (f *fakeGraph) Active(id core.NodeID) bool          { return f.active[id] }
func (f *fakeGraph) NodeVersionOf(id core.NodeID) uint64 { return f.nodeVer[id] }
func (f *fakeGraph) EdgeVersion() uint64                 { return f.edgeVer }

func TestTable_InsertLookupRoundtrip(t *testing.T) {
	fg := newFakeGraph(0, 1, 2)
	tb := pathcache.NewTable(4, 8)

	key := pathcache.NodeKey(0, 2)
	require.True(t, tb.Insert(key, []core.NodeID{0, 1, 2}, core.Position{}, fg))

	path, _, ok := tb.Lookup(key, fg)
	require.True(t, ok)
	require.Equal(t, []core.NodeID{0, 1, 2}, path)

	hits, misses, _ := tb.Stats()
	require.Equal(t, uint64(1), hits)
	require.Zero(t, misses)
}

func TestTable_MissOnUnknownKey(t *testing.T) {
	fg := newFakeGraph(0, 1)
	tb := pathcache.NewTable(4, 8)

	_, _, ok := tb.Lookup(pathcache.NodeKey(0, 1), fg)
	require.False(t, ok)
	require.Zero(t, tb.HitRate())
}

func TestTable_EdgeVersionBumpInvalidates(t *testing.T) {
	// Any mutation bumping the edge version makes stored entries miss.
	fg := newFakeGraph(0, 1)
	tb := pathcache.NewTable(4, 8)
	key := pathcache.NodeKey(0, 1)
	require.True(t, tb.Insert(key, []core.NodeID{0, 1}, core.Position{}, fg))

	fg.edgeVer++
	_, _, ok := tb.Lookup(key, fg)
	require.False(t, ok)
	// The stale entry is gone, not merely skipped.
	require.Zero(t, tb.Len())
}

func TestTable_NodeMoveInvalidates(t *testing.T) {
	fg := newFakeGraph(0, 1, 2)
	tb := pathcache.NewTable(4, 8)
	key := pathcache.NodeKey(0, 2)
	require.True(t, tb.Insert(key, []core.NodeID{0, 1, 2}, core.Position{}, fg))

	fg.nodeVer[1]++ // node 1 moved
	_, _, ok := tb.Lookup(key, fg)
	require.False(t, ok)
}

func TestTable_NodeRemovalInvalidates(t *testing.T) {
	fg := newFakeGraph(0, 1)
	tb := pathcache.NewTable(4, 8)
	key := pathcache.NodeKey(0, 1)
	require.True(t, tb.Insert(key, []core.NodeID{0, 1}, core.Position{}, fg))

	fg.active[1] = false
	_, _, ok := tb.Lookup(key, fg)
	require.False(t, ok)
}

func TestTable_RefusesOverlongPath(t *testing.T) {
	fg := newFakeGraph(0, 1, 2, 3)
	tb := pathcache.NewTable(4, 3)

	require.False(t, tb.Insert(pathcache.NodeKey(0, 3), []core.NodeID{0, 1, 2, 3}, core.Position{}, fg))
	require.Zero(t, tb.Len())
}

func TestTable_EvictsLeastRecentlyUsed(t *testing.T) {
	fg := newFakeGraph(0, 1, 2, 3, 4)
	tb := pathcache.NewTable(2, 4)

	k01 := pathcache.NodeKey(0, 1)
	k02 := pathcache.NodeKey(0, 2)
	k03 := pathcache.NodeKey(0, 3)

	require.True(t, tb.Insert(k01, []core.NodeID{0, 1}, core.Position{}, fg))
	require.True(t, tb.Insert(k02, []core.NodeID{0, 2}, core.Position{}, fg))

	// Refresh k01 so k02 becomes the tail.
	_, _, ok := tb.Lookup(k01, fg)
	require.True(t, ok)

	require.True(t, tb.Insert(k03, []core.NodeID{0, 3}, core.Position{}, fg))

	_, _, ok = tb.Lookup(k02, fg)
	require.False(t, ok, "k02 should have been evicted")
	_, _, ok = tb.Lookup(k01, fg)
	require.True(t, ok, "k01 was refreshed and must survive")

	_, _, evictions := tb.Stats()
	require.Equal(t, uint64(1), evictions)
}

func TestTable_OverwriteSameKey(t *testing.T) {
	fg := newFakeGraph(0, 1, 2)
	tb := pathcache.NewTable(2, 4)
	key := pathcache.NodeKey(0, 2)

	require.True(t, tb.Insert(key, []core.NodeID{0, 1, 2}, core.Position{}, fg))
	require.True(t, tb.Insert(key, []core.NodeID{0, 2}, core.Position{}, fg))
	require.Equal(t, 1, tb.Len())

	path, _, ok := tb.Lookup(key, fg)
	require.True(t, ok)
	require.Equal(t, []core.NodeID{0, 2}, path)
}

func TestPointKey_Quantization(t *testing.T) {
	goal := core.NodeID(7)
	eps := float32(0.25)

	base := pathcache.PointKey(core.Position{X: 10, Y: 20}, eps, goal)
	near := pathcache.PointKey(core.Position{X: 10.05, Y: 19.96}, eps, goal)
	far := pathcache.PointKey(core.Position{X: 11, Y: 20}, eps, goal)
	otherGoal := pathcache.PointKey(core.Position{X: 10, Y: 20}, eps, core.NodeID(8))

	require.Equal(t, base, near, "sub-epsilon drift must share the key")
	require.NotEqual(t, base, far)
	require.NotEqual(t, base, otherGoal)
}

func TestTable_PointEntryCarriesEntryPoint(t *testing.T) {
	fg := newFakeGraph(3, 4)
	tb := pathcache.NewTable(4, 4)

	key := pathcache.PointKey(core.Position{X: 50, Y: 5}, 0.25, 4)
	entryPt := core.Position{X: 50, Y: 0}
	require.True(t, tb.Insert(key, []core.NodeID{3, 4}, entryPt, fg))

	path, got, ok := tb.Lookup(key, fg)
	require.True(t, ok)
	require.Equal(t, entryPt, got)
	require.Equal(t, []core.NodeID{3, 4}, path)
}

func TestTable_ClearRecyclesEverything(t *testing.T) {
	fg := newFakeGraph(0, 1, 2, 3)
	tb := pathcache.NewTable(2, 4)
	require.True(t, tb.Insert(pathcache.NodeKey(0, 1), []core.NodeID{0, 1}, core.Position{}, fg))
	require.True(t, tb.Insert(pathcache.NodeKey(0, 2), []core.NodeID{0, 2}, core.Position{}, fg))

	tb.Clear()
	require.Zero(t, tb.Len())

	// The full capacity is available again.
	require.True(t, tb.Insert(pathcache.NodeKey(0, 3), []core.NodeID{0, 3}, core.Position{}, fg))
	require.True(t, tb.Insert(pathcache.NodeKey(1, 3), []core.NodeID{1, 3}, core.Position{}, fg))
	_, _, evictions := tb.Stats()
	require.Zero(t, evictions)
}
