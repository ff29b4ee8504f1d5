// Package biome assigns a weighted biome profile to each chunk cell.
package biome

import (
	"corsair.world/internal/sim/grid"
	"corsair.world/internal/sim/rng"
)

// Def is a registered biome profile. Props is a closed property bag the
// host reads (e.g. fog density, loot multipliers); the engine itself only
// cares about Weight and Default.
type Def struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Weight  float64            `json:"weight"`
	Default bool               `json:"default,omitempty"`
	Props   map[string]float64 `json:"props,omitempty"`
}

// Engine owns the biome registry and the memoized chunk assignment cache.
// One instance per world; not safe for concurrent use on its own (the
// world engine serializes access).
type Engine struct {
	seed      int64
	defs      []Def // registration order matters for the cumulative draw
	byID      map[string]int
	defaultID string
	claimed   bool // a def explicitly requested default status
	cache     map[grid.Key]int
	hooks     map[string]func(grid.Key)
}

func NewEngine(seed int64) *Engine {
	return &Engine{
		seed:  seed,
		byID:  map[string]int{},
		cache: map[grid.Key]int{},
		hooks: map[string]func(grid.Key){},
	}
}

// Register inserts a biome. Duplicate IDs are a no-op returning the
// existing def. The first registration becomes the default as a fallback;
// a later def with Default set takes the slot over an implicit first, but
// once a def has explicitly claimed it, further claims are dropped.
func (e *Engine) Register(d Def) Def {
	if i, ok := e.byID[d.ID]; ok {
		return e.defs[i]
	}
	if d.Weight < 0 {
		d.Weight = 0
	}
	switch {
	case d.Default && !e.claimed:
		e.claimed = true
		if i, ok := e.byID[e.defaultID]; ok {
			e.defs[i].Default = false
		}
		e.defaultID = d.ID
	case d.Default:
		d.Default = false
	case len(e.defs) == 0:
		d.Default = true
		e.defaultID = d.ID
	}
	e.byID[d.ID] = len(e.defs)
	e.defs = append(e.defs, d)
	return d
}

func (e *Engine) Len() int { return len(e.defs) }

// Defs returns the registry in registration order.
func (e *Engine) Defs() []Def {
	out := make([]Def, len(e.defs))
	copy(out, e.defs)
	return out
}

// Assign picks the biome for a chunk, memoized until the next Reseed.
func (e *Engine) Assign(k grid.Key) Def {
	if len(e.defs) == 0 {
		return Def{}
	}
	if i, ok := e.cache[k]; ok {
		return e.defs[i]
	}
	i := e.pick(k)
	e.cache[k] = i
	return e.defs[i]
}

func (e *Engine) pick(k grid.Key) int {
	total := 0.0
	for _, d := range e.defs {
		total += d.Weight
	}
	fallback := 0
	if i, ok := e.byID[e.defaultID]; ok {
		fallback = i
	}
	if total <= 0 {
		return fallback
	}
	c := k.Coord()
	r := rng.At(e.seed, c.X, c.Z).Next() * total
	acc := 0.0
	for i, d := range e.defs {
		acc += d.Weight
		if r < acc {
			return i
		}
	}
	// Floating error left no candidate selected.
	return fallback
}

// Reseed replaces the assignment seed and clears the cache. The registry
// is kept; previously returned Defs stay valid values.
func (e *Engine) Reseed(seed int64) {
	e.seed = seed
	e.cache = map[grid.Key]int{}
}

// SetPlaceHook installs a callback fired the first time a chunk of the
// given biome generates content. Hooks live outside Def so defs stay
// plain serializable data.
func (e *Engine) SetPlaceHook(id string, fn func(grid.Key)) {
	e.hooks[id] = fn
}

// FirePlace invokes the biome's placement hook, if any.
func (e *Engine) FirePlace(id string, k grid.Key) {
	if fn, ok := e.hooks[id]; ok && fn != nil {
		fn(k)
	}
}
