package feature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/StoreStation/linecraft/pkg/grid"
	"github.com/StoreStation/linecraft/pkg/raster"
)

// Class is a family of line features sharing one style.
type Class string

const (
	ClassPipelines Class = "pipelines"
	ClassPower     Class = "power"
	ClassAerialway Class = "aerialway"
)

// AllClasses in the order they are built.
var AllClasses = []Class{ClassPipelines, ClassPower, ClassAerialway}

// ParseClasses parses a comma separated class list. Empty means all.
func ParseClasses(s string) ([]Class, error) {
	if strings.TrimSpace(s) == "" {
		return AllClasses, nil
	}
	var out []Class
	seen := map[Class]bool{}
	for _, part := range strings.Split(s, ",") {
		c := Class(strings.ToLower(strings.TrimSpace(part)))
		if _, ok := classStyles[c]; !ok {
			return nil, fmt.Errorf("unknown feature class %q", part)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Plateaus and support offsets, in blocks above ground.
const (
	pipelineLayerStep = 5
	powerLineOffset   = 31
	minorLineOffset   = 6
	poleOffset        = 6
	towerOffset       = 31
	aerialwayOffset   = 10

	// Aerialway pylons are added along the cable every aerialwayStep blocks
	// of path unless a support already stands within aerialwayClearance.
	aerialwayStep      = 50
	aerialwayClearance = 10
)

var classStyles = map[Class]raster.Style{
	ClassPipelines: {
		Name:            string(ClassPipelines),
		LineMaterial:    "minecraft:iron_block",
		SupportMaterial: "minecraft:polished_blackstone_wall",
		GroundOffset:    0,
		SupportSpacing:  20,
		RampMax:         20,
	},
	ClassPower: {
		Name:            string(ClassPower),
		LineMaterial:    "minecraft:dark_oak_fence",
		SupportMaterial: "minecraft:andesite_wall",
		LatticeMaterial: "minecraft:iron_bars",
		DetailMaterial:  "minecraft:spruce_fence",
		GroundOffset:    2,
		RampMax:         20,
		MaxRise:         1,
		SnapRadius:      1,
	},
	ClassAerialway: {
		Name:            string(ClassAerialway),
		LineMaterial:    "minecraft:dark_oak_fence",
		SupportMaterial: "minecraft:iron_bars",
		GroundOffset:    aerialwayOffset,
		RampMax:         20,
		MaxRise:         1,
		SnapRadius:      1,
	},
}

// StyleOf returns the style a class is drawn with.
func StyleOf(c Class) (raster.Style, bool) {
	s, ok := classStyles[c]
	return s, ok
}

type supportSet struct {
	order []grid.Key
	byKey map[grid.Key]raster.Support
}

func (s *supportSet) put(sp raster.Support) {
	if s.byKey == nil {
		s.byKey = map[grid.Key]raster.Support{}
	}
	if _, ok := s.byKey[sp.Pos]; !ok {
		s.order = append(s.order, sp.Pos)
	}
	s.byKey[sp.Pos] = sp
}

func (s *supportSet) near(k grid.Key, radius int) bool {
	for _, p := range s.order {
		if grid.Chebyshev(p, k) <= radius {
			return true
		}
	}
	return false
}

func (s *supportSet) list() []raster.Support {
	if s == nil {
		return nil
	}
	out := make([]raster.Support, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// Collector sorts elements into per-class networks and support nodes.
type Collector struct {
	proj     Projection
	networks map[Class][]raster.Network
	supports map[Class]*supportSet
	ignored  int
}

// NewCollector returns a collector projecting through p.
func NewCollector(p Projection) *Collector {
	return &Collector{
		proj:     p,
		networks: map[Class][]raster.Network{},
		supports: map[Class]*supportSet{
			ClassPipelines: {},
			ClassPower:     {},
			ClassAerialway: {},
		},
	}
}

// Ignored counts elements that matched no class.
func (c *Collector) Ignored() int { return c.ignored }

// Add classifies one element and reports whether it was used.
func (c *Collector) Add(e Element) bool {
	if e.Type == "" || len(e.Tags) == 0 {
		c.ignored++
		return false
	}
	var used bool
	switch {
	case isPipeline(e):
		used = c.addLine(ClassPipelines, e, pipelinePlateau(e))
	case isPowerSupport(e):
		used = c.addSupport(ClassPower, e, powerSupport(e))
	case e.Tag("power") == "line":
		used = c.addLine(ClassPower, e, powerLineOffset)
	case e.Tag("power") == "minor_line":
		used = c.addLine(ClassPower, e, minorLineOffset)
	case e.Tag("aerialway") == "station":
		used = c.addSupport(ClassAerialway, e, raster.Support{RequiredOffset: aerialwayOffset, Kind: raster.SupportStation})
	case isAerialwayPylon(e):
		used = c.addSupport(ClassAerialway, e, raster.Support{RequiredOffset: aerialwayOffset, Kind: raster.SupportPylon})
	case e.Tag("aerialway") != "":
		used = c.addLine(ClassAerialway, e, aerialwayOffset)
	}
	if !used {
		c.ignored++
	}
	return used
}

// AddStream classifies every element of s and returns how many were used.
func (c *Collector) AddStream(s *Stream) (int, error) {
	used := 0
	for s.Next() {
		if c.Add(s.Element()) {
			used++
		}
	}
	return used, s.Err()
}

func (c *Collector) addLine(class Class, e Element, plateau int) bool {
	if e.Type != "way" || len(e.Geometry) < 2 {
		return false
	}
	pts := make([]grid.Key, len(e.Geometry))
	for i, p := range e.Geometry {
		pts[i] = c.proj.Block(p.Lat, p.Lon)
	}
	c.networks[class] = append(c.networks[class], raster.Network{
		ID:        e.Name(),
		Waypoints: pts,
		Plateau:   plateau,
	})
	return true
}

// addSupport places a node support at the node itself, or at the first
// vertex of a way mapped as a support.
func (c *Collector) addSupport(class Class, e Element, s raster.Support) bool {
	switch {
	case e.Type == "node" && e.Lat != nil && e.Lon != nil:
		s.Pos = c.proj.Block(*e.Lat, *e.Lon)
	case len(e.Geometry) > 0:
		s.Pos = c.proj.Block(e.Geometry[0].Lat, e.Geometry[0].Lon)
	default:
		return false
	}
	c.supports[class].put(s)
	return true
}

// Batch returns the networks and supports of one class. Aerialway batches
// get intermediate pylons along their cables first.
func (c *Collector) Batch(class Class) raster.Batch {
	style, ok := classStyles[class]
	if !ok {
		return raster.Batch{}
	}
	if class == ClassAerialway {
		c.densify(class)
	}
	return raster.Batch{
		Style:    style,
		Networks: c.networks[class],
		Supports: c.supports[class].list(),
	}
}

func (c *Collector) densify(class Class) {
	set := c.supports[class]
	for _, n := range c.networks[class] {
		for _, k := range Densify(n.Waypoints, aerialwayStep) {
			if set.near(k, aerialwayClearance) {
				continue
			}
			set.put(raster.Support{Pos: k, RequiredOffset: aerialwayOffset, Kind: raster.SupportPylon})
		}
	}
}

// Densify walks the polyline and returns a point every step blocks of path
// length, carrying the remainder across vertices.
func Densify(pts []grid.Key, step int) []grid.Key {
	if step <= 0 {
		return nil
	}
	var out []grid.Key
	acc := 0.0
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dz := float64(b.X-a.X), float64(b.Z-a.Z)
		seg := math.Hypot(dx, dz)
		if seg < 1e-4 {
			continue
		}
		ux, uz := dx/seg, dz/seg
		pos := 0.0
		for acc+(seg-pos) >= float64(step) {
			pos += float64(step) - acc
			out = append(out, grid.K(round(float64(a.X)+ux*pos), round(float64(a.Z)+uz*pos)))
			acc = 0
		}
		acc += seg - pos
	}
	return out
}

func isPipeline(e Element) bool {
	if e.Tag("man_made") != "pipeline" {
		return false
	}
	layer, ok := layerOf(e)
	return e.Tag("location") == "overground" || (ok && layer >= 1)
}

func pipelinePlateau(e Element) int {
	layer, ok := layerOf(e)
	if !ok {
		layer = 1
	}
	return max(1, layer) * pipelineLayerStep
}

func layerOf(e Element) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(e.Tags["layer"]))
	return v, err == nil
}

func isPowerSupport(e Element) bool {
	p, mm := e.Tag("power"), e.Tag("man_made")
	return p == "pole" || p == "tower" || mm == "utility_pole" || mm == "pylon"
}

func powerSupport(e Element) raster.Support {
	if e.Tag("power") == "tower" || e.Tag("man_made") == "pylon" {
		return raster.Support{RequiredOffset: towerOffset, Kind: raster.SupportTower}
	}
	return raster.Support{RequiredOffset: poleOffset, Kind: raster.SupportPole}
}

func isAerialwayPylon(e Element) bool {
	switch e.Tag("aerialway") {
	case "pylon", "tower", "support":
		return true
	}
	return false
}
