package grid

// Bounds is an inclusive XZ rectangle. The zero value is treated as
// unbounded by Contains.
type Bounds struct {
	MinX, MaxX int
	MinZ, MaxZ int
	Set        bool
}

// NewBounds builds bounds spanning the two corners in any order.
func NewBounds(a, b Key) Bounds {
	return Bounds{
		MinX: min(a.X, b.X), MaxX: max(a.X, b.X),
		MinZ: min(a.Z, b.Z), MaxZ: max(a.Z, b.Z),
		Set: true,
	}
}

// Contains reports whether (x, z) lies inside b. Unset bounds contain
// everything.
func (b Bounds) Contains(x, z int) bool {
	if !b.Set {
		return true
	}
	return x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

// ContainsKey is Contains for a Key.
func (b Bounds) ContainsKey(k Key) bool {
	return b.Contains(k.X, k.Z)
}
