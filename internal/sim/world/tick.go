package world

import (
	"sort"

	"corsair.world/internal/sim/collision"
	"corsair.world/internal/sim/content"
	"corsair.world/internal/sim/grid"
)

// Result summarizes one lifecycle tick for the host. Slices are nil when
// nothing happened.
type Result struct {
	Spawned   []content.Record `json:"spawned,omitempty"`
	Despawned []string         `json:"despawned,omitempty"`

	WaterSpawned   []grid.Key `json:"water_spawned,omitempty"`
	WaterDespawned []grid.Key `json:"water_despawned,omitempty"`

	Generated int `json:"generated"`
	Deferred  int `json:"deferred"`
	Skipped   int `json:"skipped"`
}

// Tick advances the streaming window to the viewer position. All
// newly-entered chunks generate before any despawn runs, so crossing a
// chunk boundary never shows a frame with neither side present.
// Per-chunk trouble is contained and counted; Tick itself never fails.
func (e *Engine) Tick(viewerX, viewerZ float64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res Result
	center := grid.CoordAt(viewerX, viewerZ, e.cfg.ChunkSize)

	e.generatePass(center, &res)
	e.despawnPass(center, &res)
	e.waterPass(center, &res)

	e.viewer = center
	e.viewerX, e.viewerZ = viewerX, viewerZ
	e.ticks++
	return res
}

func (e *Engine) generatePass(center grid.Coord, res *Result) {
	budget := e.cfg.GenBudgetPerTick
	grid.ForWindow(center, e.cfg.ViewDistance, func(c grid.Coord) {
		k := c.Key()
		if _, done := e.generated[k]; done {
			return
		}
		if budget > 0 && res.Generated >= budget {
			res.Deferred++
			return
		}
		e.generateChunk(c, k, res)
	})
}

func (e *Engine) generateChunk(c grid.Coord, k grid.Key, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			// One bad chunk must not stall the window. It still spends a
			// slot of the tick's generation budget.
			res.Skipped++
			res.Generated++
			e.generated[k] = struct{}{}
		}
	}()

	before := e.gen.Skipped
	records := e.genFn(c)
	res.Skipped += e.gen.Skipped - before
	e.genCalls++

	biomeID := e.biomes.Assign(k).ID
	if len(records) > 0 {
		e.biomes.FirePlace(biomeID, k)
	}
	for _, rec := range records {
		if _, exists := e.active[rec.ID]; exists {
			// Re-entrant double placement guard.
			res.Skipped++
			continue
		}
		rec.Biome = biomeID
		if e.colliders.OverlapsAny(rec.X, rec.Z, rec.Radius) {
			// Placement conflict with already-materialized content.
			res.Skipped++
			continue
		}
		if !e.colliders.Insert(collision.Circle{ID: rec.ID, X: rec.X, Z: rec.Z, Radius: rec.Radius}) {
			res.Skipped++
			continue
		}
		e.active[rec.ID] = rec
		e.byChunk[k] = append(e.byChunk[k], rec.ID)
		res.Spawned = append(res.Spawned, rec)
	}
	e.generated[k] = struct{}{}
	res.Generated++
}

func (e *Engine) despawnPass(center grid.Coord, res *Result) {
	var gone []grid.Key
	for k := range e.byChunk {
		if grid.Chebyshev(k.Coord(), center) > e.cfg.ViewDistance {
			gone = append(gone, k)
		}
	}
	// Map order is not deterministic; the host-facing despawn list is.
	sort.Slice(gone, func(i, j int) bool { return gone[i] < gone[j] })
	for _, k := range gone {
		for _, id := range e.byChunk[k] {
			// Record and collider leave together, never one without
			// the other.
			delete(e.active, id)
			e.colliders.Remove(id)
			res.Despawned = append(res.Despawned, id)
		}
		delete(e.byChunk, k)
	}
}

func (e *Engine) waterPass(center grid.Coord, res *Result) {
	grid.ForWindow(center, e.cfg.WaterViewDistance, func(c grid.Coord) {
		k := c.Key()
		if _, ok := e.water[k]; !ok {
			e.water[k] = struct{}{}
			res.WaterSpawned = append(res.WaterSpawned, k)
		}
	})
	var gone []grid.Key
	for k := range e.water {
		if grid.Chebyshev(k.Coord(), center) > e.cfg.WaterViewDistance {
			gone = append(gone, k)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i] < gone[j] })
	for _, k := range gone {
		delete(e.water, k)
		res.WaterDespawned = append(res.WaterDespawned, k)
	}
}
