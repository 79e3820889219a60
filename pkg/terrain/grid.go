// Package terrain provides ground height sources for the rasterizer: the
// memory-mapped grid store written by the terrain export, the small inline
// grid carried in coords.json, heightmap images, and a chain that asks each
// of them in turn.
package terrain

import (
	"fmt"

	"github.com/StoreStation/linecraft/pkg/raster"
)

// Grid is a dense ground height grid, row-major by Z then X.
type Grid struct {
	MinX   int   `json:"minX"`
	MinZ   int   `json:"minZ"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Data   []int `json:"data"`
}

var _ raster.Terrain = (*Grid)(nil)

// Validate checks that Data covers the whole grid.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("terrain grid: bad size %dx%d", g.Width, g.Height)
	}
	if len(g.Data) < g.Width*g.Height {
		return fmt.Errorf("terrain grid: %d values for %dx%d cells", len(g.Data), g.Width, g.Height)
	}
	return nil
}

// Contains reports whether (x, z) lies on the grid.
func (g *Grid) Contains(x, z int) bool {
	return g != nil && x >= g.MinX && x < g.MinX+g.Width && z >= g.MinZ && z < g.MinZ+g.Height
}

// GroundHeight returns the stored height, or false off the grid.
func (g *Grid) GroundHeight(x, z int) (int, bool) {
	if !g.Contains(x, z) {
		return 0, false
	}
	i := (z-g.MinZ)*g.Width + (x - g.MinX)
	if i >= len(g.Data) {
		return 0, false
	}
	return g.Data[i], true
}

// Chain asks each source in order and returns the first known height.
type Chain []raster.Terrain

// GroundHeight implements raster.Terrain.
func (c Chain) GroundHeight(x, z int) (int, bool) {
	for _, t := range c {
		if t == nil {
			continue
		}
		if y, ok := t.GroundHeight(x, z); ok {
			return y, true
		}
	}
	return 0, false
}
