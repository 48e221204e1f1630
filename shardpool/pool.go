package shardpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/katalvlaran/pathgrid/astar"
	"github.com/katalvlaran/pathgrid/core"
)

// Sentinel errors for pool construction and replication.
var (
	// ErrBadShardCount indicates New was called with a non-positive count.
	ErrBadShardCount = errors.New("shardpool: shard count must be positive")

	// ErrReplicaDiverged indicates the replicas no longer agree on node
	// allocation — a broadcast was skipped or applied out of order.
	ErrReplicaDiverged = errors.New("shardpool: replica state diverged")
)

// shard is one engine replica with its own lock and query dedup group.
type shard struct {
	mu     sync.Mutex
	eng    *astar.Engine
	flight singleflight.Group
}

// Pool is a set of engine replicas. Mutations go to every shard; queries go
// to one, selected by the caller's agent key.
type Pool struct {
	shards []*shard
}

// New builds count replicas, each constructed with the same options.
func New(count int, opts ...astar.Option) (*Pool, error) {
	if count <= 0 {
		return nil, ErrBadShardCount
	}

	p := &Pool{shards: make([]*shard, count)}
	for i := range p.shards {
		p.shards[i] = &shard{eng: astar.New(opts...)}
	}

	return p, nil
}

// ShardCount returns the number of replicas.
func (p *Pool) ShardCount() int { return len(p.shards) }

// route selects the shard serving an agent key.
func (p *Pool) route(agent uint64) *shard {
	return p.shards[agent%uint64(len(p.shards))]
}

// ------------------------------------------------------------------------
// Broadcast mutations.
// ------------------------------------------------------------------------

// AddNode activates a node on every replica and returns its id, verifying
// that all replicas allocated the same slot.
func (p *Pool) AddNode(pos core.Position) (core.NodeID, error) {
	var id core.NodeID
	for i, sh := range p.shards {
		sh.mu.Lock()
		got, err := sh.eng.AddNode(pos)
		sh.mu.Unlock()
		if err != nil {
			return core.InvalidNode, err
		}
		if i == 0 {
			id = got

			continue
		}
		if got != id {
			return core.InvalidNode, fmt.Errorf("%w: shard %d allocated node %d, shard 0 allocated %d",
				ErrReplicaDiverged, i, got, id)
		}
	}

	return id, nil
}

// MoveNode repositions id on every replica.
func (p *Pool) MoveNode(id core.NodeID, pos core.Position) {
	for _, sh := range p.shards {
		sh.mu.Lock()
		sh.eng.MoveNode(id, pos)
		sh.mu.Unlock()
	}
}

// RemoveNode deactivates id on every replica.
func (p *Pool) RemoveNode(id core.NodeID) {
	for _, sh := range p.shards {
		sh.mu.Lock()
		sh.eng.RemoveNode(id)
		sh.mu.Unlock()
	}
}

// AddEdge connects u→v on every replica. Replicas are deterministic, so the
// first error is every replica's error; the broadcast stops there.
func (p *Pool) AddEdge(u, v core.NodeID, cost float32, bidirectional bool) error {
	for _, sh := range p.shards {
		sh.mu.Lock()
		err := sh.eng.AddEdge(u, v, cost, bidirectional)
		sh.mu.Unlock()
		if err != nil {
			return err
		}
	}

	return nil
}

// RemoveEdge removes u→v on every replica.
func (p *Pool) RemoveEdge(u, v core.NodeID) {
	for _, sh := range p.shards {
		sh.mu.Lock()
		sh.eng.RemoveEdge(u, v)
		sh.mu.Unlock()
	}
}

// ------------------------------------------------------------------------
// Queries.
// ------------------------------------------------------------------------

// pathResult is what a singleflight execution shares between waiters.
type pathResult struct {
	path   []core.NodeID
	status astar.Status
}

// FindPath routes the query to agent's shard. Identical concurrent
// (start, goal) queries on that shard collapse into one search; each caller
// receives its own copy of the path.
func (p *Pool) FindPath(agent uint64, start, goal core.NodeID) ([]core.NodeID, astar.Status) {
	sh := p.route(agent)
	key := fmt.Sprintf("%d:%d", start, goal)

	v, _, _ := sh.flight.Do(key, func() (interface{}, error) {
		sh.mu.Lock()
		defer sh.mu.Unlock()

		path, st := sh.eng.FindPath(start, goal, nil)

		return pathResult{path: append([]core.NodeID(nil), path...), status: st}, nil
	})

	r := v.(pathResult)

	return append([]core.NodeID(nil), r.path...), r.status
}

// FindPathFromPoint routes a projected query to agent's shard.
func (p *Pool) FindPathFromPoint(agent uint64, from core.Position, goal core.NodeID) ([]core.NodeID, core.Position, astar.Status) {
	sh := p.route(agent)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	path, entry, st := sh.eng.FindPathFromPoint(from, goal, nil)

	return append([]core.NodeID(nil), path...), entry, st
}

// Request is one agent's route query in a batch.
type Request struct {
	Agent uint64
	Start core.NodeID
	Goal  core.NodeID
}

// Result is the resolved batch entry, index-aligned with the request slice.
type Result struct {
	Path   []core.NodeID
	Status astar.Status
}

// FindPaths resolves a batch of queries with one goroutine per shard —
// shards run in parallel, requests within a shard run in order. The context
// is checked between queries; cancellation abandons the remainder and
// returns the context error.
func (p *Pool) FindPaths(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))

	// Partition request indices by shard.
	byShard := make([][]int, len(p.shards))
	for i, req := range reqs {
		s := int(req.Agent % uint64(len(p.shards)))
		byShard[s] = append(byShard[s], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	for s, indices := range byShard {
		if len(indices) == 0 {
			continue
		}
		sh := p.shards[s]
		idxs := indices
		g.Go(func() error {
			for _, i := range idxs {
				if err := gctx.Err(); err != nil {
					return err
				}

				sh.mu.Lock()
				path, st := sh.eng.FindPath(reqs[i].Start, reqs[i].Goal, nil)
				results[i] = Result{Path: append([]core.NodeID(nil), path...), Status: st}
				sh.mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Stats returns the statistics of one replica.
func (p *Pool) Stats(shard int) astar.Stats {
	sh := p.shards[shard%len(p.shards)]

	sh.mu.Lock()
	defer sh.mu.Unlock()

	return sh.eng.Stats()
}
