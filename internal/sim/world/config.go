package world

import "fmt"

// Config fixes the streaming parameters for one world session. Validated
// once at construction; configuration errors are the only hard failures
// the engine produces.
type Config struct {
	Seed      int64
	ChunkSize float64

	// ViewDistance is the content window radius in chunks. The water
	// window runs one chunk wider by default so background tiles never
	// show a seam at the content boundary.
	ViewDistance      int
	WaterViewDistance int

	ItemsPerChunk int

	// GenBudgetPerTick caps how many new chunks one tick may generate.
	// Zero means unlimited. Deferred chunks are picked up on following
	// ticks; generation order never changes what gets generated.
	GenBudgetPerTick int
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %v", c.ChunkSize)
	}
	if c.ViewDistance < 0 {
		return fmt.Errorf("view distance must be >= 0, got %d", c.ViewDistance)
	}
	if c.ItemsPerChunk < 0 {
		return fmt.Errorf("items per chunk must be >= 0, got %d", c.ItemsPerChunk)
	}
	if c.GenBudgetPerTick < 0 {
		return fmt.Errorf("generation budget must be >= 0, got %d", c.GenBudgetPerTick)
	}
	if c.WaterViewDistance == 0 {
		c.WaterViewDistance = c.ViewDistance + 1
	}
	if c.WaterViewDistance < c.ViewDistance {
		return fmt.Errorf("water view distance %d smaller than view distance %d", c.WaterViewDistance, c.ViewDistance)
	}
	return nil
}
