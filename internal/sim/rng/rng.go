// Package rng provides the deterministic value streams that drive world
// generation. All state lives in the caller's hands; for a fixed
// (seed, x, z) the same sequence of draws is produced on every platform
// and across restarts.
package rng

const (
	mulX = 0x9e3779b97f4a7c15
	mulZ = 0xbf58476d1ce4e5b9

	// Knuth MMIX LCG constants for subsequent draws.
	lcgMul = 6364136223846793005
	lcgInc = 1442695040888963407
)

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// SeedFor mixes a world seed with a pair of grid coordinates into an
// initial stream state. Distinct odd multipliers per axis plus XOR keep
// neighboring coordinates uncorrelated.
func SeedFor(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * mulX) ^ (uz * mulZ))
}

// Stream is an LCG over a mixed seed state. Value type: copying a Stream
// forks it, which is intentional (the chunk stream and each item stream
// are independent forks).
type Stream struct {
	state uint64
}

func New(state uint64) *Stream {
	if state == 0 {
		state = 1
	}
	return &Stream{state: state}
}

// At builds the stream for a grid position directly.
func At(seed int64, x, z int) *Stream {
	return New(SeedFor(seed, x, z))
}

// Next returns a value in [0,1) and advances the stream.
func (s *Stream) Next() float64 {
	s.state = s.state*lcgMul + lcgInc
	// Top 53 bits give a full-precision float64 mantissa.
	return float64(s.state>>11) / (1 << 53)
}

// NextN returns an integer in [0,n). n must be positive.
func (s *Stream) NextN(n int) int {
	return int(s.Next() * float64(n))
}

// NextRange returns a value in [lo,hi).
func (s *Stream) NextRange(lo, hi float64) float64 {
	return lo + s.Next()*(hi-lo)
}
