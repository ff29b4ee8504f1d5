package world

import (
	"fmt"
	"sort"

	"corsair.world/internal/persistence/snapshot"
	"corsair.world/internal/sim/collision"
	"corsair.world/internal/sim/content"
	"corsair.world/internal/sim/grid"
)

// ExportSnapshot captures the engine's persistent state.
func (e *Engine) ExportSnapshot(worldID string) snapshot.SnapshotV1 {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := snapshot.SnapshotV1{
		Header:            snapshot.Header{Version: 1, WorldID: worldID, Tick: e.ticks},
		Seed:              e.cfg.Seed,
		ChunkSize:         e.cfg.ChunkSize,
		ViewDistance:      e.cfg.ViewDistance,
		WaterViewDistance: e.cfg.WaterViewDistance,
		ItemsPerChunk:     e.cfg.ItemsPerChunk,
		ViewerX:           e.viewerX,
		ViewerZ:           e.viewerZ,
		BiomeSeed:         e.biomeSeed,
		Biomes:            e.biomes.Defs(),
	}
	for k := range e.generated {
		snap.Generated = append(snap.Generated, int64(k))
	}
	for k := range e.water {
		snap.Water = append(snap.Water, int64(k))
	}
	sort.Slice(snap.Generated, func(i, j int) bool { return snap.Generated[i] < snap.Generated[j] })
	sort.Slice(snap.Water, func(i, j int) bool { return snap.Water[i] < snap.Water[j] })

	snap.Active = make([]content.Record, 0, len(e.active))
	for _, r := range e.active {
		snap.Active = append(snap.Active, r)
	}
	sort.Slice(snap.Active, func(i, j int) bool { return snap.Active[i].ID < snap.Active[j].ID })
	return snap
}

// ImportSnapshot rebuilds engine state from a snapshot. The engine must
// be freshly constructed with the same seed and chunk size.
func (e *Engine) ImportSnapshot(snap snapshot.SnapshotV1) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if snap.Seed != e.cfg.Seed {
		return fmt.Errorf("snapshot seed %d does not match engine seed %d", snap.Seed, e.cfg.Seed)
	}
	if snap.ChunkSize != e.cfg.ChunkSize {
		return fmt.Errorf("snapshot chunk size %v does not match engine %v", snap.ChunkSize, e.cfg.ChunkSize)
	}
	if e.ticks != 0 || len(e.generated) != 0 {
		return fmt.Errorf("import into a used engine")
	}

	if snap.BiomeSeed != 0 && snap.BiomeSeed != e.biomeSeed {
		e.biomes.Reseed(snap.BiomeSeed)
		e.biomeSeed = snap.BiomeSeed
	}
	for _, d := range snap.Biomes {
		e.biomes.Register(d)
	}
	for _, k := range snap.Generated {
		e.generated[grid.Key(k)] = struct{}{}
	}
	for _, k := range snap.Water {
		e.water[grid.Key(k)] = struct{}{}
	}
	for _, r := range snap.Active {
		if _, exists := e.active[r.ID]; exists {
			return fmt.Errorf("duplicate active record %s", r.ID)
		}
		if !e.colliders.Insert(collision.Circle{ID: r.ID, X: r.X, Z: r.Z, Radius: r.Radius}) {
			return fmt.Errorf("duplicate collider %s", r.ID)
		}
		e.active[r.ID] = r
		e.byChunk[r.Chunk] = append(e.byChunk[r.Chunk], r.ID)
	}
	e.ticks = snap.Header.Tick
	e.viewerX, e.viewerZ = snap.ViewerX, snap.ViewerZ
	e.viewer = grid.CoordAt(snap.ViewerX, snap.ViewerZ, e.cfg.ChunkSize)
	return nil
}
