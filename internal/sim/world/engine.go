// Package world runs the chunk streaming lifecycle: a square window of
// generated content follows the viewer, records spawn when their chunk
// first enters the window and despawn when it leaves.
package world

import (
	"sync"

	"corsair.world/internal/sim/biome"
	"corsair.world/internal/sim/collision"
	"corsair.world/internal/sim/content"
	"corsair.world/internal/sim/grid"
	"corsair.world/internal/sim/rng"
)

// Engine owns all mutable streaming state for one world session. The
// tick and every gameplay-facing query run under one mutex because the
// generated set, biome cache, active registry and collision index mutate
// as a single logical unit.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	gen       *content.Generator
	genFn     func(grid.Coord) []content.Record
	biomes    *biome.Engine
	colliders *collision.Registry

	// generated is append-only: a chunk generated once is never
	// regenerated this session, even after its content is culled. This
	// mirrors the streaming behavior the game shipped with (culled
	// content stays gone) and bounds memory to the visited area.
	generated map[grid.Key]struct{}

	active  map[string]content.Record
	byChunk map[grid.Key][]string

	water map[grid.Key]struct{}

	viewer    grid.Coord
	viewerX   float64
	viewerZ   float64
	ticks     uint64
	genCalls  uint64
	biomeSeed int64

	safeStream *rng.Stream
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: cfg,
		gen: &content.Generator{
			Seed:          cfg.Seed,
			ChunkSize:     cfg.ChunkSize,
			ItemsPerChunk: cfg.ItemsPerChunk,
		},
		biomes:     biome.NewEngine(cfg.Seed),
		colliders:  collision.NewRegistry(),
		generated:  map[grid.Key]struct{}{},
		active:     map[string]content.Record{},
		byChunk:    map[grid.Key][]string{},
		water:      map[grid.Key]struct{}{},
		safeStream: rng.At(cfg.Seed, -1, -1),
		biomeSeed:  cfg.Seed,
	}
	e.genFn = e.gen.Generate
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Ticks returns how many lifecycle ticks have run.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// GenerateCalls counts how many chunks have gone through the content
// generator, culled or not.
func (e *Engine) GenerateCalls() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.genCalls
}

func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

func (e *Engine) GeneratedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.generated)
}

// ActiveRecords returns a copy of the currently materialized content.
func (e *Engine) ActiveRecords() []content.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]content.Record, 0, len(e.active))
	for _, r := range e.active {
		out = append(out, r)
	}
	return out
}
