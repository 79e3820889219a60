// Package raster turns linear map features into face-connected voxel paths
// that follow the terrain.
//
// A network is walked segment by segment. Each segment is traced as a
// supercover line over the XZ grid, given an elevation profile that ramps
// between the attachment heights at its ends and a plateau in the middle,
// and then emitted column by column so that every voxel shares a face with
// the one before it. Supports are dropped under the line every few column
// changes where the ground allows it.
package raster

import "github.com/StoreStation/linecraft/pkg/grid"

// Material is an opaque block identifier such as "minecraft:iron_block".
type Material string

// Air is the material reported for empty space.
const Air Material = "minecraft:air"

// Terrain reports the solid ground height of a column. ok is false when the
// height is unknown; the column is then skipped.
type Terrain interface {
	GroundHeight(x, z int) (y int, ok bool)
}

// TerrainFunc adapts a plain function to Terrain.
type TerrainFunc func(x, z int) (int, bool)

// GroundHeight calls f.
func (f TerrainFunc) GroundHeight(x, z int) (int, bool) {
	return f(x, z)
}

// FlatTerrain is ground at a constant height everywhere.
type FlatTerrain int

// GroundHeight returns the constant height.
func (f FlatTerrain) GroundHeight(int, int) (int, bool) {
	return int(f), true
}

// Placer receives every voxel the rasterizer emits. Placement is an
// idempotent overwrite.
type Placer interface {
	PlaceVoxel(x, y, z int, m Material)
}

// BlockReader exposes existing world blocks, used to keep supports off
// roads and rails.
type BlockReader interface {
	BlockAt(x, y, z int) Material
}

// Voxel is one emitted block.
type Voxel struct {
	X, Y, Z  int
	Material Material
}

// Column returns the XZ key of the voxel.
func (v Voxel) Column() grid.Key {
	return grid.Key{X: v.X, Z: v.Z}
}

// FaceAdjacent reports whether a and b differ by one unit along one axis.
func FaceAdjacent(a, b Voxel) bool {
	return grid.Abs(a.X-b.X)+grid.Abs(a.Y-b.Y)+grid.Abs(a.Z-b.Z) == 1
}

// Recorder is a Placer that keeps every voxel in emission order.
type Recorder struct {
	Voxels []Voxel
}

// PlaceVoxel appends the voxel.
func (r *Recorder) PlaceVoxel(x, y, z int, m Material) {
	r.Voxels = append(r.Voxels, Voxel{X: x, Y: y, Z: z, Material: m})
}

// Of returns the recorded voxels of material m, in emission order.
func (r *Recorder) Of(m Material) []Voxel {
	var out []Voxel
	for _, v := range r.Voxels {
		if v.Material == m {
			out = append(out, v)
		}
	}
	return out
}

// boundedPlacer drops voxels outside the generation bounds.
type boundedPlacer struct {
	dst    Placer
	bounds grid.Bounds
}

func (b boundedPlacer) place(x, y, z int, m Material) bool {
	if !b.bounds.Contains(x, z) {
		return false
	}
	b.dst.PlaceVoxel(x, y, z, m)
	return true
}
