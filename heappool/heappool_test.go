// Package heappool_test exercises the pooled min-heap: ordering, capacity
// budgets, Floyd heapify, and the LIFO slice discipline nested searches rely
// on.
package heappool_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/katalvlaran/pathgrid/core"
	"github.com/katalvlaran/pathgrid/heappool"
)

// ------------------------------------------------------------------------
// 1. Heap ordering.
// ------------------------------------------------------------------------

func TestHeap_PopsInAscendingOrder(t *testing.T) {
	pool := heappool.NewPool(64)
	h, err := pool.Acquire(64)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(42))
	want := make([]float32, 0, 50)
	for i := 0; i < 50; i++ {
		f := rng.Float32() * 1000
		want = append(want, f)
		if err = h.Push(core.NodeID(i), f); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	for i, w := range want {
		e, ok := h.Pop()
		if !ok {
			t.Fatalf("pop %d: heap empty early", i)
		}
		if e.F != w {
			t.Fatalf("pop %d: f=%v, want %v", i, e.F, w)
		}
	}
	if !h.Empty() {
		t.Fatal("heap should be empty after popping everything")
	}
}

func TestHeap_PeekDoesNotRemove(t *testing.T) {
	pool := heappool.NewPool(8)
	h, _ := pool.Acquire(8)
	_ = h.Push(1, 3.0)
	_ = h.Push(2, 1.0)

	e, ok := h.Peek()
	if !ok || e.Node != 2 {
		t.Fatalf("peek = %+v, want node 2", e)
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d after peek, want 2", h.Len())
	}
}

func TestHeap_PushFullReturnsHeapFull(t *testing.T) {
	pool := heappool.NewPool(16)
	h, _ := pool.Acquire(2)
	_ = h.Push(0, 1)
	_ = h.Push(1, 2)

	if err := h.Push(2, 3); err != heappool.ErrHeapFull {
		t.Fatalf("expected ErrHeapFull, got %v", err)
	}
}

// ------------------------------------------------------------------------
// 2. Floyd heapify and decrease-key.
// ------------------------------------------------------------------------

func TestHeap_BuildFrom(t *testing.T) {
	pool := heappool.NewPool(16)
	h, _ := pool.Acquire(16)

	entries := []heappool.Entry{
		{Node: 0, F: 9}, {Node: 1, F: 2}, {Node: 2, F: 7},
		{Node: 3, F: 1}, {Node: 4, F: 5},
	}
	if err := h.BuildFrom(entries); err != nil {
		t.Fatal(err)
	}

	prev := float32(-1)
	for !h.Empty() {
		e, _ := h.Pop()
		if e.F < prev {
			t.Fatalf("heap order violated: %v after %v", e.F, prev)
		}
		prev = e.F
	}
}

func TestHeap_BuildFromOverflow(t *testing.T) {
	pool := heappool.NewPool(4)
	h, _ := pool.Acquire(2)
	err := h.BuildFrom(make([]heappool.Entry, 3))
	if err != heappool.ErrHeapFull {
		t.Fatalf("expected ErrHeapFull, got %v", err)
	}
}

func TestHeap_DecreaseKey(t *testing.T) {
	pool := heappool.NewPool(8)
	h, _ := pool.Acquire(8)
	_ = h.Push(0, 10)
	_ = h.Push(1, 20)
	_ = h.Push(2, 30)

	if !h.DecreaseKey(2, 5) {
		t.Fatal("DecreaseKey(2, 5) should succeed")
	}
	if h.DecreaseKey(2, 50) {
		t.Fatal("raising a key must be refused")
	}
	if h.DecreaseKey(99, 1) {
		t.Fatal("unknown node must be refused")
	}

	e, _ := h.Pop()
	if e.Node != 2 {
		t.Fatalf("min node = %d after decrease, want 2", e.Node)
	}
}

// ------------------------------------------------------------------------
// 3. Pool slicing and LIFO discipline.
// ------------------------------------------------------------------------

func TestPool_AcquireOverflow(t *testing.T) {
	pool := heappool.NewPool(10)
	if _, err := pool.Acquire(11); err != heappool.ErrHeapFull {
		t.Fatalf("expected ErrHeapFull, got %v", err)
	}

	h1, err := pool.Acquire(6)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = pool.Acquire(5); err != heappool.ErrHeapFull {
		t.Fatalf("expected ErrHeapFull on second slice, got %v", err)
	}
	if err = pool.Release(h1); err != nil {
		t.Fatal(err)
	}
}

func TestPool_LIFONesting(t *testing.T) {
	// Mirrors the retry path: an inner search acquires while the outer slice
	// is held, and must release first; the cursor returns to its old value.
	pool := heappool.NewPool(16)

	outer, err := pool.Acquire(8)
	if err != nil {
		t.Fatal(err)
	}
	mark := pool.Cursor()

	inner, err := pool.Acquire(4)
	if err != nil {
		t.Fatal(err)
	}

	// Releasing the outer slice while the inner one is live is a violation.
	if err = pool.Release(outer); err != heappool.ErrBadRelease {
		t.Fatalf("expected ErrBadRelease, got %v", err)
	}

	if err = pool.Release(inner); err != nil {
		t.Fatal(err)
	}
	if pool.Cursor() != mark {
		t.Fatalf("cursor = %d after inner release, want %d", pool.Cursor(), mark)
	}

	if err = pool.Release(outer); err != nil {
		t.Fatal(err)
	}
	if pool.Cursor() != 0 || pool.Outstanding() != 0 {
		t.Fatalf("pool not fully drained: cursor=%d outstanding=%d", pool.Cursor(), pool.Outstanding())
	}
}

func TestPool_DoubleReleaseRejected(t *testing.T) {
	pool := heappool.NewPool(8)
	h, _ := pool.Acquire(4)
	if err := pool.Release(h); err != nil {
		t.Fatal(err)
	}
	if err := pool.Release(h); err != heappool.ErrBadRelease {
		t.Fatalf("expected ErrBadRelease on double release, got %v", err)
	}
}

func TestPool_BadBlockSize(t *testing.T) {
	pool := heappool.NewPool(8)
	if _, err := pool.Acquire(0); err != heappool.ErrBadBlockSize {
		t.Fatalf("expected ErrBadBlockSize, got %v", err)
	}
}
