// Package astar configuration: the Options struct, its functional option
// constructors, and the engine-wide defaults and limits.
package astar

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Engine-wide defaults and limits.
const (
	// DefaultMaxNodes is the node slot capacity when none is configured.
	DefaultMaxNodes = 1024

	// DefaultMaxEdgesPerNode is the per-source edge region capacity.
	DefaultMaxEdgesPerNode = 8

	// DefaultHeapBlockSize is the open-set budget per search. It is silently
	// clamped to MaxNodes — the pool's capacity — at construction.
	DefaultHeapBlockSize = 512

	// DefaultMaxCachePathLength is the longest route the path cache stores.
	// Longer results are still returned to the caller, just not cached.
	DefaultMaxCachePathLength = 64

	// DefaultPathCacheCapacity is the entry count of each route table.
	DefaultPathCacheCapacity = 256

	// DefaultVirtualMaxPath is the search budget of projected queries: the
	// heap slice carved for a virtual-node search.
	DefaultVirtualMaxPath = 64

	// maxGraphChangedRetries bounds how many search attempts, each aborted by
	// a reentrant mutation, run before GraphChangedTooOften surfaces.
	maxGraphChangedRetries = 3
)

// Sentinel errors for invalid option arguments. Option constructors panic
// with these — misconfiguration is a programming error, not a runtime state.
var (
	// ErrBadCapacity indicates a non-positive capacity option.
	ErrBadCapacity = errors.New("astar: capacity options must be positive")

	// ErrBadEpsilon indicates a non-positive point quantization epsilon.
	ErrBadEpsilon = errors.New("astar: point epsilon must be positive")

	// ErrBadHeuristicScale indicates a heuristic scale outside (0, 1].
	ErrBadHeuristicScale = errors.New("astar: heuristic scale must be in (0, 1]")
)

// Options configures an Engine. Zero values select the defaults above;
// construct via DefaultOptions or let New apply functional options.
type Options struct {
	// MaxNodes is the node slot capacity; also the heap pool capacity.
	MaxNodes int

	// MaxEdgesPerNode is the per-source edge region capacity.
	MaxEdgesPerNode int

	// HeapBlockSize is the open-set slice carved per node-to-node search,
	// clamped to MaxNodes.
	HeapBlockSize int

	// MaxCachePathLength caps the length of cached routes.
	MaxCachePathLength int

	// PathCacheCapacity is the entry count of each of the two route tables.
	PathCacheCapacity int

	// PointEpsilon quantizes point-to-node cache keys. Start positions
	// within one epsilon share an entry.
	PointEpsilon float32

	// VirtualMaxPath is the heap budget of projected (virtual node) searches.
	VirtualMaxPath int

	// HeuristicScale multiplies the Euclidean heuristic. Keep at 1 for
	// metric edge costs; lower it when terrain weights can undercut the
	// straight-line distance, to preserve admissibility.
	HeuristicScale float32

	// SpatialCellSize fixes the grid cell edge in world units; 0 selects the
	// automatic size (2× mean edge length, clamped).
	SpatialCellSize float32

	// DisableSpatialIndex turns the grid off entirely; projection queries
	// fall back to linear scans.
	DisableSpatialIndex bool

	// Logger receives structural mutation and retry diagnostics. Defaults to
	// a no-op logger.
	Logger *zap.Logger

	// Registry, when set, receives the engine's Prometheus collectors.
	Registry *prometheus.Registry
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxNodes:           DefaultMaxNodes,
		MaxEdgesPerNode:    DefaultMaxEdgesPerNode,
		HeapBlockSize:      DefaultHeapBlockSize,
		MaxCachePathLength: DefaultMaxCachePathLength,
		PathCacheCapacity:  DefaultPathCacheCapacity,
		PointEpsilon:       0.25,
		VirtualMaxPath:     DefaultVirtualMaxPath,
		HeuristicScale:     1,
	}
}

// Option is a functional option for New.
type Option func(*Options)

// WithMaxNodes sets the node slot capacity. Panics on non-positive values.
func WithMaxNodes(n int) Option {
	if n <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.MaxNodes = n }
}

// WithMaxEdgesPerNode sets the per-source edge capacity. Panics on
// non-positive values.
func WithMaxEdgesPerNode(n int) Option {
	if n <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.MaxEdgesPerNode = n }
}

// WithHeapBlockSize sets the per-search open-set budget. Values above
// MaxNodes are clamped at construction. Panics on non-positive values.
func WithHeapBlockSize(n int) Option {
	if n <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.HeapBlockSize = n }
}

// WithMaxCachePathLength caps cacheable route length. Panics on non-positive
// values.
func WithMaxCachePathLength(n int) Option {
	if n <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.MaxCachePathLength = n }
}

// WithPathCacheCapacity sets each route table's entry count. Panics on
// non-positive values.
func WithPathCacheCapacity(n int) Option {
	if n <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.PathCacheCapacity = n }
}

// WithPointEpsilon sets the point-key quantization step. Panics on
// non-positive values.
func WithPointEpsilon(eps float32) Option {
	if eps <= 0 {
		panic(ErrBadEpsilon.Error())
	}

	return func(o *Options) { o.PointEpsilon = eps }
}

// WithVirtualMaxPath sets the projected-search budget. Panics on
// non-positive values.
func WithVirtualMaxPath(n int) Option {
	if n <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.VirtualMaxPath = n }
}

// WithHeuristicScale scales the Euclidean heuristic into (0, 1]. Panics
// outside that range.
func WithHeuristicScale(s float32) Option {
	if s <= 0 || s > 1 {
		panic(ErrBadHeuristicScale.Error())
	}

	return func(o *Options) { o.HeuristicScale = s }
}

// WithSpatialCellSize fixes the grid cell edge. Panics on non-positive
// values; use WithoutSpatialIndex to disable the grid.
func WithSpatialCellSize(size float32) Option {
	if size <= 0 {
		panic(ErrBadCapacity.Error())
	}

	return func(o *Options) { o.SpatialCellSize = size }
}

// WithoutSpatialIndex disables the spatial grid. Projection queries scan all
// active edges linearly.
func WithoutSpatialIndex() Option {
	return func(o *Options) { o.DisableSpatialIndex = true }
}

// WithLogger plugs an external zap logger. The engine never logs above Debug
// on the query path.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics registers the engine's collectors with reg.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(o *Options) { o.Registry = reg }
}
