// Package collision keeps the flat registry of circular footprints used
// for placement rejection and movement validation.
package collision

import "corsair.world/internal/sim/rng"

// Circle is one collider footprint in the world plane.
type Circle struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
}

// Bounds is an axis-aligned sampling region for FindSafePoint.
type Bounds struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Registry indexes colliders by owner id and keeps a parallel flat slice
// for query iteration. Writes happen only inside the world tick.
type Registry struct {
	byID  map[string]int
	items []Circle
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]int{}}
}

func (r *Registry) Len() int { return len(r.items) }

// Insert adds a collider. A second insert under the same id is refused so
// a re-entrant placement cannot double-register a footprint.
func (r *Registry) Insert(c Circle) bool {
	if _, ok := r.byID[c.ID]; ok {
		return false
	}
	r.byID[c.ID] = len(r.items)
	r.items = append(r.items, c)
	return true
}

// Remove drops the collider owned by id, swapping the tail into its slot.
func (r *Registry) Remove(id string) bool {
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	last := len(r.items) - 1
	if i != last {
		r.items[i] = r.items[last]
		r.byID[r.items[i].ID] = i
	}
	r.items = r.items[:last]
	delete(r.byID, id)
	return true
}

// OverlapsAny reports whether the point is inside any collider grown by
// extra. The boundary is inclusive: a point at exactly radius+extra
// overlaps.
func (r *Registry) OverlapsAny(x, z, extra float64) bool {
	for i := range r.items {
		c := &r.items[i]
		dx := x - c.X
		dz := z - c.Z
		reach := c.Radius + extra
		if dx*dx+dz*dz <= reach*reach {
			return true
		}
	}
	return false
}

// FindSafePoint rejection-samples a point clear of all colliders. The
// draw order comes from the caller's stream, so a seeded stream makes the
// result reproducible. ok is false when attempts are exhausted; callers
// treat that as "no safe position found", not a failure of the registry.
func (r *Registry) FindSafePoint(b Bounds, extra float64, maxAttempts int, s *rng.Stream) (x, z float64, ok bool) {
	for i := 0; i < maxAttempts; i++ {
		px := s.NextRange(b.MinX, b.MaxX)
		pz := s.NextRange(b.MinZ, b.MaxZ)
		if !r.OverlapsAny(px, pz, extra) {
			return px, pz, true
		}
	}
	return 0, 0, false
}
