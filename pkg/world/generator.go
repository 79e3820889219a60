package world

import (
	"math"

	"github.com/StoreStation/linecraft/pkg/raster"
)

const (
	// SeaLevel is the water surface of the fallback terrain.
	SeaLevel = 62
	// MinY and MaxY bound the generated column.
	MinY = 0
	MaxY = 255
)

// Generator produces fallback terrain from a seed. It answers ground height
// and block queries for columns no terrain export covers.
type Generator struct {
	Seed int64

	terrain *Perlin // broad height
	temp    *Perlin // biome temperature
	rain    *Perlin // biome rainfall
	lakes   *Perlin
	rivers  *Perlin
}

var _ raster.Terrain = (*Generator)(nil)

// NewGenerator seeds every noise layer from seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:    seed,
		terrain: NewPerlin(seed),
		temp:    NewPerlin(seed + 1),
		rain:    NewPerlin(seed + 2),
		lakes:   NewPerlin(seed + 300),
		rivers:  NewPerlin(seed + 400),
	}
}

// Biome returns the biome of the column.
func (g *Generator) Biome(x, z int) *Biome {
	return BiomeAt(g.temp, g.rain, x, z)
}

// SurfaceHeight returns the top solid Y of the column.
func (g *Generator) SurfaceHeight(x, z int) int {
	b := g.Biome(x, z)

	const heightScale = 0.015
	h := g.terrain.OctaveNoise2D(float64(x)*heightScale, float64(z)*heightScale, 3, 2.0, 0.5)
	height := float64(b.BaseHeight) + h*b.HeightVariation

	// rivers follow the zero line of very low frequency noise
	const riverScale, riverWidth = 0.003, 0.04
	if rv := math.Abs(g.rivers.Noise2D(float64(x)*riverScale, float64(z)*riverScale)); rv < riverWidth {
		height -= (riverWidth - rv) / riverWidth * 15
	}

	// lakes sit where the lake noise peaks
	const lakeScale, lakeThreshold = 0.01, 0.82
	if lv := g.lakes.Noise2D(float64(x)*lakeScale, float64(z)*lakeScale); lv > lakeThreshold {
		height -= (lv - lakeThreshold) / (1 - lakeThreshold) * 12
	}

	return min(max(int(height), MinY+1), MaxY)
}

// GroundHeight implements raster.Terrain; generated ground is always known.
func (g *Generator) GroundHeight(x, z int) (int, bool) {
	return g.SurfaceHeight(x, z), true
}

// WaterLevel reports sea water over columns below sea level.
func (g *Generator) WaterLevel(x, z int) (int, bool) {
	if g.SurfaceHeight(x, z) < SeaLevel {
		return SeaLevel, true
	}
	return 0, false
}

// BlockAt returns the generated block at (x, y, z).
func (g *Generator) BlockAt(x, y, z int) raster.Material {
	switch {
	case y < MinY || y > MaxY:
		return raster.Air
	case y == MinY:
		return Bedrock
	}
	surface := g.SurfaceHeight(x, z)
	if y > surface {
		if y <= SeaLevel {
			return Water
		}
		return raster.Air
	}
	return column(g.Biome(x, z), surface, y)
}

// column returns the natural block at y in a column whose top is surface.
func column(b *Biome, surface, y int) raster.Material {
	if surface < SeaLevel-3 {
		b = BiomeOcean
	}
	switch {
	case y == MinY:
		return Bedrock
	case y == surface:
		return b.Surface
	case y > surface-4:
		return b.Filler
	default:
		return Stone
	}
}
