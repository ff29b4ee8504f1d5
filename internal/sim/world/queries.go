package world

import (
	"corsair.world/internal/sim/biome"
	"corsair.world/internal/sim/collision"
	"corsair.world/internal/sim/grid"
)

// Gameplay-facing queries. Each takes the engine lock so a reader sees
// either fully-pre-tick or fully-post-tick state, never a partial one.

// OverlapsAny reports whether a world point lies inside any active
// collider grown by extra.
func (e *Engine) OverlapsAny(x, z, extra float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.colliders.OverlapsAny(x, z, extra)
}

// FindSafePoint samples for a point clear of all active content, e.g.
// for teleport or spawn placement. ok is false after maxAttempts misses;
// callers choose their own retry policy.
func (e *Engine) FindSafePoint(b collision.Bounds, extra float64, maxAttempts int) (x, z float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.colliders.FindSafePoint(b, extra, maxAttempts, e.safeStream)
}

// RegisterBiome adds a biome profile to the registry.
func (e *Engine) RegisterBiome(d biome.Def) biome.Def {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.biomes.Register(d)
}

// AssignBiome resolves the biome of a chunk, memoized until ReseedBiomes.
func (e *Engine) AssignBiome(k grid.Key) biome.Def {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.biomes.Assign(k)
}

// SetBiomePlaceHook installs a per-biome callback fired when a chunk of
// that biome first produces content.
func (e *Engine) SetBiomePlaceHook(id string, fn func(grid.Key)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.biomes.SetPlaceHook(id, fn)
}

// ReseedBiomes swaps the biome seed and drops all cached assignments.
func (e *Engine) ReseedBiomes(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.biomes.Reseed(seed)
	e.biomeSeed = seed
}

// ViewerChunk returns the chunk recorded by the last tick.
func (e *Engine) ViewerChunk() grid.Coord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewer
}
