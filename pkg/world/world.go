package world

import (
	"sync"

	"github.com/StoreStation/linecraft/pkg/raster"
)

// Natural blocks used by the flat and generated worlds.
const (
	Bedrock raster.Material = "minecraft:bedrock"
	Stone   raster.Material = "minecraft:stone"
	Dirt    raster.Material = "minecraft:dirt"
	Grass   raster.Material = "minecraft:grass_block"
	Water   raster.Material = "minecraft:water"
)

// FlatGround is the ground height of the flat world.
const FlatGround = 4

// BlockPos is a block position in the world.
type BlockPos struct {
	X, Y, Z int
}

// SurfaceSource reports the exported surface block of a column.
type SurfaceSource interface {
	TopBlock(x, z int) (string, bool)
}

// WaterSource reports the water surface of a column.
type WaterSource interface {
	WaterLevel(x, z int) (int, bool)
}

// World is the block overlay the rasterizer writes into. Placed blocks are
// kept in memory; everything else comes from the configured ground, surface
// and water sources, then the generator, then the flat world. It is safe for
// concurrent use.
type World struct {
	mu     sync.RWMutex
	blocks map[BlockPos]raster.Material

	ground  raster.Terrain
	surface SurfaceSource
	water   WaterSource
	gen     *Generator
}

var (
	_ raster.Placer      = (*World)(nil)
	_ raster.BlockReader = (*World)(nil)
	_ raster.Terrain     = (*World)(nil)
)

// Option configures a World.
type Option func(*World)

// WithGround consults t for ground heights before the generator.
func WithGround(t raster.Terrain) Option {
	return func(w *World) { w.ground = t }
}

// WithSurface takes surface blocks from s where it knows them.
func WithSurface(s SurfaceSource) Option {
	return func(w *World) { w.surface = s }
}

// WithWater takes water levels from s before the generator.
func WithWater(s WaterSource) Option {
	return func(w *World) { w.water = s }
}

// NewWorld returns an empty world over gen. A nil gen with no ground source
// gives the flat world.
func NewWorld(gen *Generator, opts ...Option) *World {
	w := &World{
		blocks: make(map[BlockPos]raster.Material),
		gen:    gen,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// GetBlock returns the block at the given position.
func (w *World) GetBlock(x, y, z int) raster.Material {
	w.mu.RLock()
	m, ok := w.blocks[BlockPos{x, y, z}]
	w.mu.RUnlock()
	if ok {
		return m
	}
	return w.natural(x, y, z)
}

// BlockAt implements raster.BlockReader.
func (w *World) BlockAt(x, y, z int) raster.Material {
	return w.GetBlock(x, y, z)
}

// SetBlock overwrites the block at the given position.
func (w *World) SetBlock(x, y, z int, m raster.Material) {
	w.mu.Lock()
	w.blocks[BlockPos{x, y, z}] = m
	w.mu.Unlock()
}

// PlaceVoxel implements raster.Placer.
func (w *World) PlaceVoxel(x, y, z int, m raster.Material) {
	w.SetBlock(x, y, z, m)
}

// GroundHeight implements raster.Terrain. Placed blocks do not change the
// ground.
func (w *World) GroundHeight(x, z int) (int, bool) {
	if w.ground != nil {
		if y, ok := w.ground.GroundHeight(x, z); ok {
			return y, true
		}
	}
	if w.gen != nil {
		return w.gen.GroundHeight(x, z)
	}
	if w.ground != nil {
		return 0, false
	}
	return FlatGround, true
}

// WaterLevel returns the water surface of the column, if any.
func (w *World) WaterLevel(x, z int) (int, bool) {
	if w.water != nil {
		if y, ok := w.water.WaterLevel(x, z); ok {
			return y, true
		}
	}
	if w.gen != nil {
		return w.gen.WaterLevel(x, z)
	}
	return 0, false
}

// Len returns the number of placed blocks.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

// GetModifications returns a copy of all placed blocks.
func (w *World) GetModifications() map[BlockPos]raster.Material {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make(map[BlockPos]raster.Material, len(w.blocks))
	for k, v := range w.blocks {
		result[k] = v
	}
	return result
}

func (w *World) natural(x, y, z int) raster.Material {
	if w.ground == nil && w.gen == nil {
		return FlatWorldBlock(y)
	}
	ground, ok := w.GroundHeight(x, z)
	if !ok {
		return raster.Air
	}
	if y > ground {
		if level, wet := w.WaterLevel(x, z); wet && y <= level {
			return Water
		}
		return raster.Air
	}
	if y == ground && w.surface != nil {
		if top, ok := w.surface.TopBlock(x, z); ok {
			return raster.Material(top)
		}
	}
	biome := BiomePlains
	if w.gen != nil {
		biome = w.gen.Biome(x, z)
	}
	return column(biome, ground, y)
}

// FlatWorldBlock returns the flat world block at y: bedrock, three dirt,
// grass at FlatGround, air above.
func FlatWorldBlock(y int) raster.Material {
	switch {
	case y < MinY || y > MaxY:
		return raster.Air
	case y == MinY:
		return Bedrock
	case y < FlatGround:
		return Dirt
	case y == FlatGround:
		return Grass
	default:
		return raster.Air
	}
}
