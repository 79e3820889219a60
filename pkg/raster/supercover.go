package raster

import "github.com/StoreStation/linecraft/pkg/grid"

// Trace rasterizes the segment (x0,z0)-(x1,z1) with Bresenham stepping and
// inserts a bridge cell (newX, oldZ) before every diagonal step, so each
// consecutive pair of cells shares a face.
func Trace(x0, z0, x1, z1 int) []grid.Key {
	dx, dz := grid.Abs(x1-x0), grid.Abs(z1-z0)
	sx, sz := grid.Sign(x1-x0), grid.Sign(z1-z0)
	err := dx - dz

	cells := make([]grid.Key, 0, dx+dz+1)
	cells = append(cells, grid.K(x0, z0))

	x, z := x0, z0
	for x != x1 || z != z1 {
		e2 := err * 2
		px, pz := x, z
		if e2 > -dz {
			err -= dz
			x += sx
		}
		if e2 < dx {
			err += dx
			z += sz
		}

		if x != px && z != pz {
			cells = appendDistinct(cells, grid.K(x, pz))
		}
		cells = appendDistinct(cells, grid.K(x, z))
	}
	return cells
}

// TracePolyline traces every segment of pts and joins them, dropping the
// duplicated shared waypoint.
func TracePolyline(pts []grid.Key) []grid.Key {
	if len(pts) == 0 {
		return nil
	}
	out := []grid.Key{pts[0]}
	for i := 0; i+1 < len(pts); i++ {
		seg := Trace(pts[i].X, pts[i].Z, pts[i+1].X, pts[i+1].Z)
		for _, c := range seg {
			out = appendDistinct(out, c)
		}
	}
	return out
}

func appendDistinct(cells []grid.Key, c grid.Key) []grid.Key {
	if n := len(cells); n > 0 && cells[n-1] == c {
		return cells
	}
	return append(cells, c)
}
