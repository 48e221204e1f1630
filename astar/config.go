package astar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors Options as a YAML document, so embedding hosts can tune the
// engine without recompiling. Zero fields keep their defaults.
//
// Example:
//
//	max_nodes: 4096
//	max_edges_per_node: 8
//	heap_block_size: 1024
//	max_cache_path_length: 64
//	path_cache_capacity: 512
//	point_epsilon: 0.25
//	virtual_max_path: 64
//	heuristic_scale: 1.0
//	spatial_cell_size: 0       # 0 = auto
//	disable_spatial_index: false
type Config struct {
	MaxNodes            int     `yaml:"max_nodes"`
	MaxEdgesPerNode     int     `yaml:"max_edges_per_node"`
	HeapBlockSize       int     `yaml:"heap_block_size"`
	MaxCachePathLength  int     `yaml:"max_cache_path_length"`
	PathCacheCapacity   int     `yaml:"path_cache_capacity"`
	PointEpsilon        float32 `yaml:"point_epsilon"`
	VirtualMaxPath      int     `yaml:"virtual_max_path"`
	HeuristicScale      float32 `yaml:"heuristic_scale"`
	SpatialCellSize     float32 `yaml:"spatial_cell_size"`
	DisableSpatialIndex bool    `yaml:"disable_spatial_index"`
}

// LoadConfig reads and validates a YAML engine configuration.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("astar: read config: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("astar: parse config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects values the option constructors would panic on. Zero
// means "use the default" and always passes.
func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"max_nodes", c.MaxNodes},
		{"max_edges_per_node", c.MaxEdgesPerNode},
		{"heap_block_size", c.HeapBlockSize},
		{"max_cache_path_length", c.MaxCachePathLength},
		{"path_cache_capacity", c.PathCacheCapacity},
		{"virtual_max_path", c.VirtualMaxPath},
	} {
		if f.value < 0 {
			return fmt.Errorf("astar: config %s must not be negative, got %d", f.name, f.value)
		}
	}
	if c.PointEpsilon < 0 {
		return fmt.Errorf("astar: config point_epsilon must not be negative, got %v", c.PointEpsilon)
	}
	if c.HeuristicScale < 0 || c.HeuristicScale > 1 {
		return fmt.Errorf("astar: config heuristic_scale must be in [0, 1], got %v", c.HeuristicScale)
	}
	if c.SpatialCellSize < 0 {
		return fmt.Errorf("astar: config spatial_cell_size must not be negative, got %v", c.SpatialCellSize)
	}

	return nil
}

// Options translates the set fields into functional options for New.
func (c Config) Options() []Option {
	var opts []Option

	if c.MaxNodes > 0 {
		opts = append(opts, WithMaxNodes(c.MaxNodes))
	}
	if c.MaxEdgesPerNode > 0 {
		opts = append(opts, WithMaxEdgesPerNode(c.MaxEdgesPerNode))
	}
	if c.HeapBlockSize > 0 {
		opts = append(opts, WithHeapBlockSize(c.HeapBlockSize))
	}
	if c.MaxCachePathLength > 0 {
		opts = append(opts, WithMaxCachePathLength(c.MaxCachePathLength))
	}
	if c.PathCacheCapacity > 0 {
		opts = append(opts, WithPathCacheCapacity(c.PathCacheCapacity))
	}
	if c.PointEpsilon > 0 {
		opts = append(opts, WithPointEpsilon(c.PointEpsilon))
	}
	if c.VirtualMaxPath > 0 {
		opts = append(opts, WithVirtualMaxPath(c.VirtualMaxPath))
	}
	if c.HeuristicScale > 0 {
		opts = append(opts, WithHeuristicScale(c.HeuristicScale))
	}
	if c.SpatialCellSize > 0 {
		opts = append(opts, WithSpatialCellSize(c.SpatialCellSize))
	}
	if c.DisableSpatialIndex {
		opts = append(opts, WithoutSpatialIndex())
	}

	return opts
}
