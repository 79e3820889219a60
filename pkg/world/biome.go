package world

import "github.com/StoreStation/linecraft/pkg/raster"

// Biome sets the shape and materials of the fallback terrain.
type Biome struct {
	Name            string
	Surface         raster.Material
	Filler          raster.Material
	BaseHeight      int
	HeightVariation float64
}

// Fallback terrain biomes.
var (
	BiomeOcean        = &Biome{Name: "ocean", Surface: "minecraft:sand", Filler: "minecraft:sand", BaseHeight: 38, HeightVariation: 8}
	BiomePlains       = &Biome{Name: "plains", Surface: "minecraft:grass_block", Filler: "minecraft:dirt", BaseHeight: 66, HeightVariation: 12}
	BiomeDesert       = &Biome{Name: "desert", Surface: "minecraft:sand", Filler: "minecraft:sandstone", BaseHeight: 64, HeightVariation: 10}
	BiomeExtremeHills = &Biome{Name: "extreme_hills", Surface: "minecraft:grass_block", Filler: "minecraft:stone", BaseHeight: 72, HeightVariation: 50}
	BiomeForest       = &Biome{Name: "forest", Surface: "minecraft:grass_block", Filler: "minecraft:dirt", BaseHeight: 68, HeightVariation: 14}
	BiomeJungle       = &Biome{Name: "jungle", Surface: "minecraft:grass_block", Filler: "minecraft:dirt", BaseHeight: 70, HeightVariation: 20}
	BiomeDarkForest   = &Biome{Name: "dark_forest", Surface: "minecraft:grass_block", Filler: "minecraft:dirt", BaseHeight: 68, HeightVariation: 10}
	BiomeSnowyTundra  = &Biome{Name: "snowy_tundra", Surface: "minecraft:snow_block", Filler: "minecraft:dirt", BaseHeight: 66, HeightVariation: 8}
)

// BiomeAt picks a biome from low-frequency temperature and rainfall noise.
// Cold areas are tundra, temperate ones range from dark forest down to hills
// as they dry out, and hot ones from jungle to desert.
func BiomeAt(tempNoise, rainNoise *Perlin, x, z int) *Biome {
	const scale = 0.003
	bx, bz := float64(x)*scale, float64(z)*scale

	temp := unit(tempNoise.OctaveNoise2D(bx, bz, 2, 2.0, 0.3))
	rain := unit(rainNoise.OctaveNoise2D(bx+500, bz+500, 2, 2.0, 0.3))

	switch {
	case temp < 0.35:
		return BiomeSnowyTundra
	case temp < 0.65:
		switch {
		case rain > 0.7:
			return BiomeDarkForest
		case rain > 0.4:
			return BiomeForest
		case rain > 0.25:
			return BiomePlains
		default:
			return BiomeExtremeHills
		}
	default:
		switch {
		case rain > 0.75:
			return BiomeJungle
		case rain > 0.4:
			return BiomePlains
		default:
			return BiomeDesert
		}
	}
}

// unit maps noise in [-1, 1] to [0, 1].
func unit(v float64) float64 {
	return min(max((v+1)/2, 0), 1)
}
