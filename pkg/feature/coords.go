// Package feature turns map export data into rasterizer batches: it reads
// coords.json and the NDJSON element stream, projects lat/lng onto block
// coordinates and sorts line features into classes.
package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/StoreStation/linecraft/pkg/grid"
	"github.com/StoreStation/linecraft/pkg/terrain"
)

// ErrBadCoords marks a coords document that cannot define a projection.
var ErrBadCoords = errors.New("bad coords")

// LatLng is a geographic point.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BBox is the exported map area.
type BBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Player is the block position the map center is anchored to.
type Player struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Coords is the coords.json document written next to an export.
type Coords struct {
	Center      LatLng        `json:"center"`
	BBox        BBox          `json:"bbox"`
	SizeMeters  int           `json:"sizeMeters"`
	Player      *Player       `json:"player,omitempty"`
	TerrainGrid *terrain.Grid `json:"terrainGrid,omitempty"`
	Features    *Inline       `json:"features,omitempty"`
}

// Inline holds elements embedded in coords.json instead of a separate
// NDJSON stream.
type Inline struct {
	Elements []Element `json:"elements"`
}

// LoadCoords reads and validates a coords file.
func LoadCoords(path string) (*Coords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := DecodeCoords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DecodeCoords parses and validates a coords document.
func DecodeCoords(r io.Reader) (*Coords, error) {
	var c Coords
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode coords: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the bbox and size define a usable projection.
func (c *Coords) Validate() error {
	switch {
	case c.SizeMeters <= 0:
		return fmt.Errorf("%w: sizeMeters %d", ErrBadCoords, c.SizeMeters)
	case c.BBox.East == c.BBox.West:
		return fmt.Errorf("%w: bbox has zero width", ErrBadCoords)
	case c.BBox.North == c.BBox.South:
		return fmt.Errorf("%w: bbox has zero height", ErrBadCoords)
	}
	if c.TerrainGrid != nil {
		if err := c.TerrainGrid.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrBadCoords, err)
		}
	}
	return nil
}

// Elements returns the inline elements, if the document carries any.
func (c *Coords) Elements() []Element {
	if c.Features == nil {
		return nil
	}
	return c.Features.Elements
}

// Projection maps lat/lng linearly onto the block grid.
func (c *Coords) Projection() Projection {
	p := Projection{
		center: c.Center,
		bbox:   c.BBox,
		size:   float64(c.SizeMeters),
	}
	if c.Player != nil {
		p.originX = round(c.Player.X)
		p.originZ = round(c.Player.Z)
	}
	return p
}

// Bounds is the block rectangle covered by the bbox.
func (c *Coords) Bounds() grid.Bounds {
	p := c.Projection()
	return grid.NewBounds(
		p.Block(c.BBox.South, c.BBox.West),
		p.Block(c.BBox.North, c.BBox.East),
	)
}

// Projection is a linear lat/lng to block mapping: the bbox spans
// sizeMeters blocks on both axes, north is -Z and the center lands on the
// player position.
type Projection struct {
	center           LatLng
	bbox             BBox
	size             float64
	originX, originZ int
}

// Block projects a point to its block column.
func (p Projection) Block(lat, lng float64) grid.Key {
	dx := (lng - p.center.Lng) / (p.bbox.East - p.bbox.West) * p.size
	dz := (lat - p.center.Lat) / (p.bbox.South - p.bbox.North) * p.size
	return grid.K(round(float64(p.originX)+dx), round(float64(p.originZ)+dz))
}

// round is round-half-up, matching the export tooling.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
