package raster

import (
	"math"

	"github.com/StoreStation/linecraft/pkg/grid"
)

// Profile is the vertical offset above ground along one segment: a ramp
// from the start target up (or down) to the plateau, a flat middle, and a
// ramp from the plateau to the end target. Indices run from 0 to N.
type Profile struct {
	Start, End, Plateau int
	N                   int
	LStart, LEnd        int
}

// BuildProfile lays out the ramps for a segment of n steps. Each ramp wants
// rampMax steps when its end differs from the plateau; when the segment is
// too short for both, the length is split in proportion to the height each
// ramp has to cover.
func BuildProfile(startTarget, endTarget, plateau, n, rampMax int) Profile {
	n = max(n, 0)
	rampMax = max(rampMax, 0)

	dStart := grid.Abs(plateau - startTarget)
	dEnd := grid.Abs(endTarget - plateau)

	wantStart, wantEnd := 0, 0
	if dStart > 0 {
		wantStart = rampMax
	}
	if dEnd > 0 {
		wantEnd = rampMax
	}

	var lStart, lEnd int
	switch {
	case n >= wantStart+wantEnd:
		lStart, lEnd = wantStart, wantEnd
	case dStart == 0 && dEnd == 0:
	case dStart == 0:
		lEnd = min(rampMax, n)
	case dEnd == 0:
		lStart = min(rampMax, n)
	default:
		lStart = min(n*dStart/(dStart+dEnd), rampMax)
		lEnd = min(n-lStart, rampMax)
	}

	return Profile{
		Start:   startTarget,
		End:     endTarget,
		Plateau: plateau,
		N:       n,
		LStart:  lStart,
		LEnd:    lEnd,
	}
}

// PlateauRange returns the first and last index held flat at the plateau.
func (p Profile) PlateauRange() (first, last int) {
	return p.LStart, p.N - p.LEnd
}

// Offset returns the offset above ground at step idx.
func (p Profile) Offset(idx int) int {
	first, last := p.PlateauRange()
	switch {
	case idx < first:
		t := float64(idx) / float64(p.LStart)
		return lerpRound(p.Start, p.Plateau, grid.Clamp01(t))
	case idx <= last:
		return p.Plateau
	default:
		t := 1.0
		if p.LEnd > 0 {
			t = float64(idx-last) / float64(p.LEnd)
		}
		return lerpRound(p.Plateau, p.End, grid.Clamp01(t))
	}
}

// lerpRound interpolates and rounds half up.
func lerpRound(a, b int, t float64) int {
	return int(math.Floor(float64(a) + float64(b-a)*t + 0.5))
}
