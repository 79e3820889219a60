// Package grid holds the integer XZ primitives shared by the rasterizer and
// its collaborators: cell keys, bounds, degree counting.
package grid

import "fmt"

// Key identifies a column of the block grid by its X and Z coordinates.
type Key struct {
	X, Z int
}

// K is shorthand for Key{X: x, Z: z}.
func K(x, z int) Key {
	return Key{X: x, Z: z}
}

func (k Key) String() string {
	return fmt.Sprintf("(%d,%d)", k.X, k.Z)
}

// Add returns k shifted by (dx, dz).
func (k Key) Add(dx, dz int) Key {
	return Key{X: k.X + dx, Z: k.Z + dz}
}

// Adjacent reports whether a and b share a face: they differ by exactly one
// unit along exactly one axis.
func Adjacent(a, b Key) bool {
	return Abs(a.X-b.X)+Abs(a.Z-b.Z) == 1
}

// Chebyshev returns the chessboard distance between a and b.
func Chebyshev(a, b Key) int {
	return max(Abs(a.X-b.X), Abs(a.Z-b.Z))
}

// Abs returns the absolute value of v.
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Sign returns -1, 0 or 1 according to the sign of v.
func Sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ring calls fn for every key within Chebyshev distance r of center, nearest
// rings first and the center itself first of all. Iteration stops early when
// fn returns false.
func Ring(center Key, r int, fn func(Key) bool) {
	if !fn(center) {
		return
	}
	for d := 1; d <= r; d++ {
		for dx := -d; dx <= d; dx++ {
			for dz := -d; dz <= d; dz++ {
				if Abs(dx) != d && Abs(dz) != d {
					continue
				}
				if !fn(center.Add(dx, dz)) {
					return
				}
			}
		}
	}
}
