package terrain

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF (GeoTIFF exports)
)

// HeightmapOptions places a heightmap image in the world. Pixel (0, 0) maps
// to block (OriginX, OriginZ); a pixel's gray level g in [0, 1] becomes
// ground height Base + round(g * Scale).
type HeightmapOptions struct {
	OriginX, OriginZ int
	Base             int
	Scale            float64
}

// DefaultHeightmapOptions maps black to y=0 and white to y=255.
func DefaultHeightmapOptions() HeightmapOptions {
	return HeightmapOptions{Scale: 255}
}

// Heightmap is a ground source decoded from a grayscale image.
type Heightmap struct {
	grid   Grid
	Format string // decoder name, e.g. "png" or "tiff"
}

// LoadHeightmap decodes the PNG, TIFF or BMP image at path.
func LoadHeightmap(path string, opts HeightmapOptions) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()
	return DecodeHeightmap(f, opts)
}

// DecodeHeightmap reads a heightmap image from r.
func DecodeHeightmap(r io.Reader, opts HeightmapOptions) (*Heightmap, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap: %w", err)
	}
	return NewHeightmap(img, format, opts), nil
}

// NewHeightmap converts img to heights once, so lookups are plain slice
// reads.
func NewHeightmap(img image.Image, format string, opts HeightmapOptions) *Heightmap {
	b := img.Bounds()
	h := &Heightmap{
		grid: Grid{
			MinX:   opts.OriginX,
			MinZ:   opts.OriginZ,
			Width:  b.Dx(),
			Height: b.Dy(),
			Data:   make([]int, b.Dx()*b.Dy()),
		},
		Format: format,
	}
	for py := 0; py < b.Dy(); py++ {
		for px := 0; px < b.Dx(); px++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+px, b.Min.Y+py)).(color.Gray16)
			level := float64(g.Y) / math.MaxUint16
			h.grid.Data[py*b.Dx()+px] = opts.Base + int(math.Floor(level*opts.Scale+0.5))
		}
	}
	return h
}

// Bounds returns the covered block rectangle as min and size.
func (h *Heightmap) Bounds() (minX, minZ, width, height int) {
	return h.grid.MinX, h.grid.MinZ, h.grid.Width, h.grid.Height
}

// GroundHeight implements raster.Terrain.
func (h *Heightmap) GroundHeight(x, z int) (int, bool) {
	return h.grid.GroundHeight(x, z)
}
