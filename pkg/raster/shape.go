package raster

import "math"

// Support structure dimensions, in blocks.
const (
	crossarmWidth  = 3
	towerBaseWidth = 8
	towerTopWidth  = 4
	platformWidth  = 6
	stationWidth   = 4
	pylonBaseWidth = 4
	pylonTopWidth  = 2
)

// span returns the offsets covered by a footprint w blocks wide centred on
// the support column. Even widths lean towards +x/+z.
func span(w int) (lo, hi int) {
	if w <= 1 {
		return 0, 0
	}
	if w%2 == 1 {
		return -w / 2, w / 2
	}
	return -(w/2 - 1), w / 2
}

// roundHalfUp rounds half-way values towards +inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// taper returns the width of level i of n, shrinking linearly from base to
// top and never going under top.
func taper(i, n, base, top int) int {
	t := 1.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}
	return max(top, roundHalfUp(float64(base)-float64(base-top)*t))
}

// shape places the structure for kind at (x, z). ground is the ground
// height of the centre column and lineY the height of the line above it;
// the top of every structure sits at lineY-1, right under the line.
func (p *SupportPlacer) shape(kind SupportKind, x, z, ground, lineY int) {
	top := lineY - 1
	levels := top - ground - 1 // ground+1 .. lineY-2

	switch kind {
	case SupportPole:
		p.column(x, z, ground+1, top-1, p.material)
		p.square(x, z, crossarmWidth, top, p.detail)
	case SupportTower:
		for h := 0; h < levels; h++ {
			w := taper(h, levels, towerBaseWidth, towerTopWidth)
			p.ring(x, z, w, h, top, p.lattice)
		}
		p.square(x, z, platformWidth, top, p.detail)
	case SupportStation:
		for h := 0; h < levels; h++ {
			p.ring(x, z, stationWidth, h, top, p.lattice)
		}
		p.square(x, z, stationWidth, top, p.detail)
	case SupportPylon:
		for h := 0; h < levels; h++ {
			w := taper(h, levels, pylonBaseWidth, pylonTopWidth)
			p.ring(x, z, w, h, top, p.lattice)
		}
		p.square(x, z, pylonTopWidth, top, p.detail)
	default:
		p.column(x, z, ground+1, top, p.material)
	}
}

func (p *SupportPlacer) column(x, z, from, to int, m Material) {
	for y := from; y <= to; y++ {
		p.put(x, y, z, m)
	}
}

// square fills a w by w layer at height y.
func (p *SupportPlacer) square(x, z, w, y int, m Material) {
	lo, hi := span(w)
	for dx := lo; dx <= hi; dx++ {
		for dz := lo; dz <= hi; dz++ {
			p.put(x+dx, y, z+dz, m)
		}
	}
}

// ring places the outline of a w by w level h blocks above the local
// ground of each column, so legs follow the terrain. Blocks reaching the
// top layer or landing on unknown ground are left out.
func (p *SupportPlacer) ring(x, z, w, h, top int, m Material) {
	lo, hi := span(w)
	for dx := lo; dx <= hi; dx++ {
		for dz := lo; dz <= hi; dz++ {
			if dx != lo && dx != hi && dz != lo && dz != hi {
				continue
			}
			g, ok := p.terrain.GroundHeight(x+dx, z+dz)
			if !ok {
				continue
			}
			if y := g + 1 + h; y < top {
				p.put(x+dx, y, z+dz, m)
			}
		}
	}
}

func (p *SupportPlacer) put(x, y, z int, m Material) {
	if p.out.place(x, y, z, m) {
		p.stats.SupportVoxels++
	}
}
