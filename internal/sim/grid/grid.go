// Package grid maps continuous world positions onto the discrete chunk
// lattice and back.
package grid

import (
	"fmt"
	"math"
)

// Coord is a discrete chunk cell.
type Coord struct {
	X int
	Z int
}

// Key packs a Coord into a single int64 so it can live in hot-path maps
// without allocation. High 32 bits X, low 32 bits Z.
type Key int64

// CoordAt floors a world position onto the chunk lattice.
func CoordAt(wx, wz, chunkSize float64) Coord {
	return Coord{
		X: int(math.Floor(wx / chunkSize)),
		Z: int(math.Floor(wz / chunkSize)),
	}
}

func (c Coord) Key() Key {
	return Key(int64(uint64(uint32(int32(c.X)))<<32 | uint64(uint32(int32(c.Z)))))
}

func (k Key) Coord() Coord {
	return Coord{
		X: int(int32(uint64(k) >> 32)),
		Z: int(int32(uint64(k) & 0xffffffff)),
	}
}

// String is the "x,z" form used in logs and snapshots.
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Z)
}

func (k Key) String() string {
	return k.Coord().String()
}

// Chebyshev is the square-window distance between two cells.
func Chebyshev(a, b Coord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dz := a.Z - b.Z
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// ForWindow visits every cell of the square window of the given radius
// around center, row by row.
func ForWindow(center Coord, radius int, fn func(Coord)) {
	for z := center.Z - radius; z <= center.Z+radius; z++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			fn(Coord{X: x, Z: z})
		}
	}
}

// Bounds returns the world-space extent of a chunk cell.
func (c Coord) Bounds(chunkSize float64) (minX, minZ, maxX, maxZ float64) {
	minX = float64(c.X) * chunkSize
	minZ = float64(c.Z) * chunkSize
	return minX, minZ, minX + chunkSize, minZ + chunkSize
}
