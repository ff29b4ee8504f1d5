package grid

import "testing"

func TestCoordAt_FloorsNegatives(t *testing.T) {
	cases := []struct {
		wx, wz float64
		want   Coord
	}{
		{0, 0, Coord{0, 0}},
		{599.9, 599.9, Coord{0, 0}},
		{600, 0, Coord{1, 0}},
		{-0.1, -0.1, Coord{-1, -1}},
		{-600, -600.1, Coord{-1, -2}},
		{1799.9, -1.0, Coord{2, -1}},
	}
	for _, c := range cases {
		if got := CoordAt(c.wx, c.wz, 600); got != c.want {
			t.Errorf("CoordAt(%v,%v) = %v, want %v", c.wx, c.wz, got, c.want)
		}
	}
}

func TestKey_RoundTrip(t *testing.T) {
	coords := []Coord{
		{0, 0}, {1, -1}, {-1, 1}, {1 << 20, -(1 << 20)},
		{-2147483648, 2147483647},
	}
	seen := map[Key]bool{}
	for _, c := range coords {
		k := c.Key()
		if seen[k] {
			t.Fatalf("key collision for %v", c)
		}
		seen[k] = true
		if back := k.Coord(); back != c {
			t.Errorf("round trip %v -> %v -> %v", c, k, back)
		}
	}
}

func TestKey_String(t *testing.T) {
	if s := (Coord{-3, 7}).Key().String(); s != "-3,7" {
		t.Fatalf("got %q", s)
	}
}

func TestChebyshev(t *testing.T) {
	if d := Chebyshev(Coord{0, 0}, Coord{2, -1}); d != 2 {
		t.Fatalf("got %d", d)
	}
	if d := Chebyshev(Coord{5, 5}, Coord{5, 5}); d != 0 {
		t.Fatalf("got %d", d)
	}
}

func TestForWindow_Count(t *testing.T) {
	var cells []Coord
	ForWindow(Coord{10, -4}, 2, func(c Coord) { cells = append(cells, c) })
	if len(cells) != 25 {
		t.Fatalf("want 25 cells, got %d", len(cells))
	}
	for _, c := range cells {
		if Chebyshev(c, Coord{10, -4}) > 2 {
			t.Fatalf("cell %v outside window", c)
		}
	}
}

func TestBounds(t *testing.T) {
	minX, minZ, maxX, maxZ := (Coord{-1, 2}).Bounds(600)
	if minX != -600 || minZ != 1200 || maxX != 0 || maxZ != 1800 {
		t.Fatalf("got %v %v %v %v", minX, minZ, maxX, maxZ)
	}
}
