// Package tuning loads the world configuration file.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"corsair.world/internal/sim/biome"
	"corsair.world/internal/sim/world"
)

type Tuning struct {
	Seed      int64   `yaml:"seed"`
	ChunkSize float64 `yaml:"chunk_size"`

	ViewDistance      int `yaml:"view_distance"`
	WaterViewDistance int `yaml:"water_view_distance"`
	ItemsPerChunk     int `yaml:"items_per_chunk"`
	GenBudgetPerTick  int `yaml:"gen_budget_per_tick"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Biomes []BiomeEntry `yaml:"biomes"`
}

type BiomeEntry struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Weight  float64            `yaml:"weight"`
	Default bool               `yaml:"default"`
	Props   map[string]float64 `yaml:"props"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate applies the fail-fast configuration checks that cannot wait
// until the first tick.
func (t Tuning) Validate() error {
	if t.ChunkSize <= 0 {
		return fmt.Errorf("tuning: chunk_size must be positive, got %v", t.ChunkSize)
	}
	if t.TickRateHz < 0 {
		return fmt.Errorf("tuning: tick_rate_hz must be >= 0, got %d", t.TickRateHz)
	}
	seen := map[string]bool{}
	for _, b := range t.Biomes {
		if b.ID == "" {
			return fmt.Errorf("tuning: biome with empty id")
		}
		if seen[b.ID] {
			return fmt.Errorf("tuning: duplicate biome id %q", b.ID)
		}
		seen[b.ID] = true
		if b.Weight < 0 {
			return fmt.Errorf("tuning: biome %q has negative weight", b.ID)
		}
	}
	return nil
}

// WorldConfig maps the file onto the engine's config.
func (t Tuning) WorldConfig() world.Config {
	return world.Config{
		Seed:              t.Seed,
		ChunkSize:         t.ChunkSize,
		ViewDistance:      t.ViewDistance,
		WaterViewDistance: t.WaterViewDistance,
		ItemsPerChunk:     t.ItemsPerChunk,
		GenBudgetPerTick:  t.GenBudgetPerTick,
	}
}

// BiomeDefs converts the biome table in file order, which is also the
// registration (and therefore draw) order.
func (t Tuning) BiomeDefs() []biome.Def {
	out := make([]biome.Def, 0, len(t.Biomes))
	for _, b := range t.Biomes {
		out = append(out, biome.Def{
			ID:      b.ID,
			Name:    b.Name,
			Weight:  b.Weight,
			Default: b.Default,
			Props:   b.Props,
		})
	}
	return out
}
