// Package content deterministically places world objects inside a chunk.
// It emits placement records only; mesh expansion is the renderer's job.
package content

import (
	"fmt"
	"math"

	"corsair.world/internal/sim/grid"
	"corsair.world/internal/sim/rng"
)

// Archetype is a category of placeable content.
type Archetype string

const (
	ArchetypeIsland     Archetype = "island"
	ArchetypeFortress   Archetype = "fortress"
	ArchetypeLighthouse Archetype = "lighthouse"
	ArchetypeShipwreck  Archetype = "shipwreck"
)

// structures are the notable archetypes, drawn uniformly once the
// structure roll passes.
var structures = []Archetype{ArchetypeFortress, ArchetypeLighthouse, ArchetypeShipwreck}

const (
	// structureChance is the per-item probability of a notable structure
	// instead of a plain island.
	structureChance = 0.20

	// edgeInsetFrac keeps items away from chunk seams so no item can
	// straddle two chunks.
	edgeInsetFrac = 0.10
)

// Record is one placed world object. Identity derives from the rounded
// position, so it is reproducible independent of active status.
type Record struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Z         float64   `json:"z"`
	Chunk     grid.Key  `json:"chunk"`
	Archetype Archetype `json:"archetype"`
	Variant   int       `json:"variant"`
	DecorSeed uint64    `json:"decor_seed"`
	Radius    float64   `json:"radius"`
	Biome     string    `json:"biome,omitempty"`
}

// Generator owns the constants of deterministic placement. It is
// stateless beyond configuration; Generate is pure.
type Generator struct {
	Seed          int64
	ChunkSize     float64
	ItemsPerChunk int

	// Skipped counts per-item anomalies contained during generation.
	Skipped int
}

// RecordID formats the deterministic id for a position.
func RecordID(x, z float64) string {
	return fmt.Sprintf("isle_%d_%d", int(math.Round(x)), int(math.Round(z)))
}

func radiusFor(a Archetype, s *rng.Stream) float64 {
	switch a {
	case ArchetypeFortress:
		return s.NextRange(70, 90)
	case ArchetypeLighthouse:
		return s.NextRange(40, 55)
	case ArchetypeShipwreck:
		return s.NextRange(30, 45)
	default:
		return s.NextRange(45, 70)
	}
}

func variantsFor(a Archetype) int {
	switch a {
	case ArchetypeFortress:
		return 3
	case ArchetypeLighthouse:
		return 2
	case ArchetypeShipwreck:
		return 4
	default:
		return 5
	}
}

// Generate produces the content records for one chunk. Calling it twice
// with the same coordinate yields byte-identical records; the once-ever
// guard lives in the lifecycle manager, not here.
func (g *Generator) Generate(c grid.Coord) []Record {
	minX, minZ, maxX, maxZ := c.Bounds(g.ChunkSize)
	inset := g.ChunkSize * edgeInsetFrac
	minX, minZ = minX+inset, minZ+inset
	maxX, maxZ = maxX-inset, maxZ-inset

	// Chunk stream decides where items go; per-item streams decide what
	// each item is, keyed by its own position.
	chunkStream := rng.At(g.Seed, c.X, c.Z)
	key := c.Key()

	out := make([]Record, 0, g.ItemsPerChunk)
	for i := 0; i < g.ItemsPerChunk; i++ {
		x := chunkStream.NextRange(minX, maxX)
		z := chunkStream.NextRange(minZ, maxZ)

		rec, ok := g.itemAt(x, z, key)
		if !ok {
			g.Skipped++
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (g *Generator) itemAt(x, z float64, key grid.Key) (Record, bool) {
	ix := int(math.Round(x))
	iz := int(math.Round(z))
	item := rng.At(g.Seed, ix, iz)

	arch := ArchetypeIsland
	if item.Next() < structureChance {
		arch = structures[item.NextN(len(structures))]
	}
	nv := variantsFor(arch)
	if nv <= 0 {
		return Record{}, false
	}
	return Record{
		ID:        RecordID(x, z),
		X:         x,
		Z:         z,
		Chunk:     key,
		Archetype: arch,
		Variant:   item.NextN(nv),
		DecorSeed: rng.SeedFor(g.Seed+1, ix, iz),
		Radius:    radiusFor(arch, item),
	}, true
}
