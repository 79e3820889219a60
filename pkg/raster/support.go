package raster

import "github.com/StoreStation/linecraft/pkg/grid"

// SupportKind tells what physical structure carries the line at a node.
type SupportKind int

const (
	SupportGeneric SupportKind = iota
	SupportPole
	SupportTower
	SupportStation
	SupportPylon
)

var supportKindNames = map[SupportKind]string{
	SupportGeneric: "generic",
	SupportPole:    "pole",
	SupportTower:   "tower",
	SupportStation: "station",
	SupportPylon:   "pylon",
}

func (k SupportKind) String() string {
	if s, ok := supportKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Support is a known attachment point: the line must pass RequiredOffset
// blocks above the local ground at Pos.
type Support struct {
	Pos            grid.Key
	RequiredOffset int
	Kind           SupportKind
}

// RejectReason explains why a support could not be placed.
type RejectReason int

const (
	Accepted RejectReason = iota
	RejectDuplicate
	RejectOutOfBounds
	RejectNoGround
	RejectNoClearance
	RejectSurface
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectDuplicate:
		return "duplicate"
	case RejectOutOfBounds:
		return "out_of_bounds"
	case RejectNoGround:
		return "no_ground"
	case RejectNoClearance:
		return "no_clearance"
	case RejectSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// PlacedSet records the columns that already hold a physical support.
type PlacedSet map[grid.Key]struct{}

// Has reports whether k already holds a support.
func (s PlacedSet) Has(k grid.Key) bool {
	_, ok := s[k]
	return ok
}

// Add records k.
func (s PlacedSet) Add(k grid.Key) {
	s[k] = struct{}{}
}

// SupportPlacer drops supports under a line. It counts column transitions
// and tries to place a plain support column every Spacing transitions; the
// counter only resets when a placement succeeds, so a rejected site is
// retried at the very next transition. Registered nodes get the structure
// of their kind instead.
type SupportPlacer struct {
	terrain  Terrain
	blocks   BlockReader
	out      boundedPlacer
	material Material
	lattice  Material
	detail   Material
	spacing  int

	disallowedGround map[Material]bool
	disallowedAbove  map[Material]bool

	placed  PlacedSet
	counter int

	// OnPlaced and OnRejected, when set, observe every attempt.
	OnPlaced   func(at grid.Key, ground, top int)
	OnRejected func(at grid.Key, reason RejectReason)

	stats Stats
}

// NewSupportPlacer builds a placer for one network. blocks may be nil, in
// which case the surface check always passes.
func NewSupportPlacer(t Terrain, blocks BlockReader, p Placer, m Material, spacing int) *SupportPlacer {
	return &SupportPlacer{
		terrain:          t,
		blocks:           blocks,
		out:              boundedPlacer{dst: p},
		material:         m,
		lattice:          m,
		detail:           m,
		spacing:          spacing,
		disallowedGround: map[Material]bool{},
		disallowedAbove:  map[Material]bool{},
		placed:           PlacedSet{},
	}
}

// SetBounds limits support placement to b.
func (p *SupportPlacer) SetBounds(b grid.Bounds) {
	p.out.bounds = b
}

// SetShapeMaterials sets the material of tower and pylon lattices and of
// the crossarms, platforms and caps on top. Empty values keep the support
// material.
func (p *SupportPlacer) SetShapeMaterials(lattice, detail Material) {
	if lattice != "" {
		p.lattice = lattice
	}
	if detail != "" {
		p.detail = detail
	}
}

// Disallow rejects sites whose ground block is one of ground, or whose
// block directly on top of the ground is one of above.
func (p *SupportPlacer) Disallow(ground, above []Material) {
	for _, m := range ground {
		p.disallowedGround[m] = true
	}
	for _, m := range above {
		p.disallowedAbove[m] = true
	}
}

// Placed returns the set of columns holding a support.
func (p *SupportPlacer) Placed() PlacedSet {
	return p.placed
}

// Stats returns the counters accumulated so far.
func (p *SupportPlacer) Stats() Stats {
	return p.stats
}

// Transition registers one column change of the line at c with the line at
// height lineY, and places a support when one is due.
func (p *SupportPlacer) Transition(c grid.Key, lineY int) bool {
	if p.spacing <= 0 {
		return false
	}
	p.counter++
	if p.counter < p.spacing {
		return false
	}
	if !p.MaybePlace(c.X, c.Z, lineY) {
		return false
	}
	p.counter = 0
	return true
}

// Advance counts a transition without attempting a placement, for a
// column that already had its attempt.
func (p *SupportPlacer) Advance() {
	if p.spacing > 0 {
		p.counter++
	}
}

// Force attempts a support of the given kind at c regardless of the
// transition count, used when the line crosses a registered support node.
// Success restarts the spacing count.
func (p *SupportPlacer) Force(c grid.Key, lineY int, kind SupportKind) bool {
	if !p.PlaceKind(c.X, c.Z, lineY, kind) {
		return false
	}
	p.counter = 0
	return true
}

// MaybePlace fills a support column from ground+1 up to just under lineY
// when the site is suitable.
func (p *SupportPlacer) MaybePlace(x, z, lineY int) bool {
	return p.PlaceKind(x, z, lineY, SupportGeneric)
}

// PlaceKind builds the structure of kind at (x, z) when the centre column
// passes Check. Parts of the footprint outside the bounds are dropped.
func (p *SupportPlacer) PlaceKind(x, z, lineY int, kind SupportKind) bool {
	k := grid.K(x, z)
	ground, reason := p.Check(x, z, lineY)
	if reason != Accepted {
		p.stats.SupportsRejected++
		if p.OnRejected != nil {
			p.OnRejected(k, reason)
		}
		return false
	}

	p.shape(kind, x, z, ground, lineY)
	p.placed.Add(k)
	p.stats.SupportsPlaced++
	if p.OnPlaced != nil {
		p.OnPlaced(k, ground, lineY-1)
	}
	return true
}

// Check evaluates the placement rules without placing anything and returns
// the ground height of the site.
func (p *SupportPlacer) Check(x, z, lineY int) (int, RejectReason) {
	k := grid.K(x, z)
	if !p.out.bounds.ContainsKey(k) {
		return 0, RejectOutOfBounds
	}
	if p.placed.Has(k) {
		return 0, RejectDuplicate
	}
	ground, ok := p.terrain.GroundHeight(x, z)
	if !ok {
		return 0, RejectNoGround
	}
	if lineY <= ground+1 {
		return ground, RejectNoClearance
	}
	if p.blocks != nil {
		if p.disallowedGround[p.blocks.BlockAt(x, ground, z)] {
			return ground, RejectSurface
		}
		if p.disallowedAbove[p.blocks.BlockAt(x, ground+1, z)] {
			return ground, RejectSurface
		}
	}
	return ground, Accepted
}
