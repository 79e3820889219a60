package raster

import "github.com/StoreStation/linecraft/pkg/grid"

// Registry is the read-only view of one generation run: the known support
// nodes, how many segments touch each waypoint, and the largest plateau
// offset of any network through it. It is built once before rasterization
// starts and may then be shared by concurrent network walks.
type Registry struct {
	supports map[grid.Key]Support
	degrees  grid.Degrees
	offsets  grid.MaxOffsets
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		supports: map[grid.Key]Support{},
		degrees:  grid.Degrees{},
		offsets:  grid.MaxOffsets{},
	}
}

// AddSupport registers s; a later support at the same column replaces it.
func (r *Registry) AddSupport(s Support) {
	r.supports[s.Pos] = s
}

// AddNetwork counts the segments of n and records its plateau at every
// waypoint.
func (r *Registry) AddNetwork(n Network) {
	pts := n.Normalized().Waypoints
	r.degrees.AddPolyline(pts)
	for _, p := range pts {
		r.offsets.Observe(p, n.Plateau)
	}
}

// Len returns the number of registered supports.
func (r *Registry) Len() int {
	return len(r.supports)
}

// Supports returns every registered support.
func (r *Registry) Supports() []Support {
	out := make([]Support, 0, len(r.supports))
	for _, s := range r.supports {
		out = append(out, s)
	}
	return out
}

// SupportAt returns the support registered exactly at k.
func (r *Registry) SupportAt(k grid.Key) (Support, bool) {
	s, ok := r.supports[k]
	return s, ok
}

// SupportNear returns the support at k or, failing that, the nearest one
// within Chebyshev distance radius. Waypoints of a line are often a block
// off the node that carries it.
func (r *Registry) SupportNear(k grid.Key, radius int) (Support, bool) {
	var found Support
	ok := false
	grid.Ring(k, max(radius, 0), func(c grid.Key) bool {
		found, ok = r.supports[c]
		return !ok
	})
	return found, ok
}

// Degree returns how many segments touch k. A support node at or near k
// counts as one more attachment.
func (r *Registry) Degree(k grid.Key, snap int) int {
	d := r.degrees.Of(k)
	if _, ok := r.SupportNear(k, snap); ok {
		d++
	}
	return d
}

// Resolve returns the attachment offset at waypoint k for a network with
// the given plateau. Free ends come down to the style's ground offset;
// junctions take the tallest offset of everything attached there.
func (r *Registry) Resolve(k grid.Key, plateau int, style Style) int {
	if r.Degree(k, style.SnapRadius) <= 1 {
		return style.GroundOffset
	}
	best, ok := r.offsets.Get(k)
	if s, found := r.SupportNear(k, style.SnapRadius); found {
		if !ok || s.RequiredOffset > best {
			best, ok = s.RequiredOffset, true
		}
	}
	if !ok {
		return plateau
	}
	return best
}

// ResolveTargets resolves every waypoint of n up front.
func (r *Registry) ResolveTargets(n Network, style Style) []int {
	out := make([]int, len(n.Waypoints))
	for i, p := range n.Waypoints {
		out[i] = r.Resolve(p, n.Plateau, style)
	}
	return out
}
