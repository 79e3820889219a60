package feature

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StoreStation/linecraft/pkg/grid"
	"github.com/StoreStation/linecraft/pkg/raster"
)

const testCoords = `{
	"center": {"lat": 50.0, "lng": 30.0},
	"bbox": {"south": 49.99, "north": 50.01, "west": 29.99, "east": 30.01},
	"sizeMeters": 2000,
	"player": {"x": 100.4, "y": 70, "z": -50.6}
}`

func testProjection(t *testing.T) Projection {
	t.Helper()
	c, err := DecodeCoords(strings.NewReader(testCoords))
	if err != nil {
		t.Fatalf("DecodeCoords: %v", err)
	}
	return c.Projection()
}

func TestProjectionBlock(t *testing.T) {
	p := testProjection(t)
	tests := []struct {
		lat, lng float64
		want     grid.Key
	}{
		{50.0, 30.0, grid.K(100, -51)},
		{50.0, 30.001, grid.K(200, -51)},
		{50.001, 30.0, grid.K(100, -151)},
		{49.999, 29.999, grid.K(0, 49)},
		{50.00001, 30.00001, grid.K(101, -52)},
	}
	for _, tt := range tests {
		if got := p.Block(tt.lat, tt.lng); got != tt.want {
			t.Errorf("Block(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
		}
	}
}

func TestCoordsBounds(t *testing.T) {
	c, err := DecodeCoords(strings.NewReader(testCoords))
	if err != nil {
		t.Fatalf("DecodeCoords: %v", err)
	}
	b := c.Bounds()
	want := grid.Bounds{MinX: -900, MaxX: 1100, MinZ: -1051, MaxZ: 949, Set: true}
	if b != want {
		t.Errorf("Bounds() = %+v, want %+v", b, want)
	}
}

func TestDecodeCoordsErrors(t *testing.T) {
	tests := map[string]string{
		"no size":   `{"bbox": {"south": 1, "north": 2, "west": 1, "east": 2}}`,
		"flat bbox": `{"sizeMeters": 10, "bbox": {"south": 1, "north": 1, "west": 1, "east": 2}}`,
		"thin bbox": `{"sizeMeters": 10, "bbox": {"south": 1, "north": 2, "west": 2, "east": 2}}`,
		"bad grid":  `{"sizeMeters": 10, "bbox": {"south": 1, "north": 2, "west": 1, "east": 2}, "terrainGrid": {"width": 2, "height": 2, "data": [1]}}`,
		"not json":  `{`,
	}
	for name, doc := range tests {
		if _, err := DecodeCoords(strings.NewReader(doc)); err == nil {
			t.Errorf("DecodeCoords(%s) succeeded", name)
		}
	}
}

func TestLoadCoordsInlineElements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coords.json")
	doc := `{"sizeMeters": 100, "center": {"lat": 0, "lng": 0},
		"bbox": {"south": -1, "north": 1, "west": -1, "east": 1},
		"terrainGrid": {"minX": 0, "minZ": 0, "width": 1, "height": 1, "data": [64]},
		"features": {"elements": [{"type": "node", "id": 7, "lat": 0, "lon": 0, "tags": {"power": "pole"}}]}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCoords(path)
	if err != nil {
		t.Fatalf("LoadCoords: %v", err)
	}
	if len(c.Elements()) != 1 || c.Elements()[0].Name() != "node/7" {
		t.Errorf("Elements() = %+v, want node/7", c.Elements())
	}
	if y, ok := c.TerrainGrid.GroundHeight(0, 0); !ok || y != 64 {
		t.Errorf("inline grid GroundHeight(0, 0) = %d, %v, want 64", y, ok)
	}
}

func TestStreamSkipsMalformedLines(t *testing.T) {
	in := `{"type":"way","id":1,"tags":{"power":"line"}}

not json
{"type":"node","id":2,"lat":1,"lon":2}
[1,2]
`
	s := NewStream(strings.NewReader(in))
	var names []string
	for s.Next() {
		names = append(names, s.Element().Name())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if strings.Join(names, " ") != "way/1 node/2" {
		t.Errorf("elements = %v, want [way/1 node/2]", names)
	}
	if s.Read() != 2 || s.Malformed() != 2 {
		t.Errorf("Read() = %d, Malformed() = %d, want 2 and 2", s.Read(), s.Malformed())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestParseClasses(t *testing.T) {
	tests := []struct {
		in   string
		want []Class
	}{
		{"", AllClasses},
		{"power", []Class{ClassPower}},
		{" Aerialway , pipelines,power,power", []Class{ClassAerialway, ClassPipelines, ClassPower}},
	}
	for _, tt := range tests {
		got, err := ParseClasses(tt.in)
		if err != nil || len(got) != len(tt.want) {
			t.Errorf("ParseClasses(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseClasses(%q)[%d] = %s, want %s", tt.in, i, got[i], tt.want[i])
			}
		}
	}
	if _, err := ParseClasses("roads"); err == nil {
		t.Error("ParseClasses(roads) succeeded")
	}
}

func TestStylesAreValid(t *testing.T) {
	for _, c := range AllClasses {
		s, ok := StyleOf(c)
		if !ok {
			t.Fatalf("StyleOf(%s) missing", c)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("StyleOf(%s).Validate() = %v", c, err)
		}
	}
}

func way(id int64, tags map[string]string, pts ...Point) Element {
	return Element{Type: "way", ID: id, Tags: tags, Geometry: pts}
}

func node(id int64, lat, lon float64, tags map[string]string) Element {
	return Element{Type: "node", ID: id, Lat: &lat, Lon: &lon, Tags: tags}
}

func TestCollectorPipelines(t *testing.T) {
	c := NewCollector(testProjection(t))
	a, b := Point{50, 30}, Point{50, 30.001}
	tests := []struct {
		e       Element
		used    bool
		plateau int
	}{
		{way(1, map[string]string{"man_made": "pipeline", "location": "overground"}, a, b), true, 5},
		{way(2, map[string]string{"man_made": "pipeline", "layer": "2"}, a, b), true, 10},
		{way(3, map[string]string{"man_made": "pipeline", "layer": " 0 ", "location": "overground"}, a, b), true, 5},
		{way(4, map[string]string{"man_made": "pipeline"}, a, b), false, 0},
		{way(5, map[string]string{"man_made": "pipeline", "layer": "-1"}, a, b), false, 0},
		{way(6, map[string]string{"man_made": "pipeline", "location": "overground"}, a), false, 0},
	}
	for _, tt := range tests {
		if got := c.Add(tt.e); got != tt.used {
			t.Errorf("Add(%s) = %v, want %v", tt.e.Name(), got, tt.used)
		}
	}
	batch := c.Batch(ClassPipelines)
	if len(batch.Networks) != 3 {
		t.Fatalf("pipeline networks = %d, want 3", len(batch.Networks))
	}
	for i, want := range []int{5, 10, 5} {
		if got := batch.Networks[i].Plateau; got != want {
			t.Errorf("network %s plateau = %d, want %d", batch.Networks[i].ID, got, want)
		}
	}
	if got := batch.Networks[0].Waypoints; got[0] != grid.K(100, -51) || got[1] != grid.K(200, -51) {
		t.Errorf("waypoints = %v", got)
	}
	if c.Ignored() != 3 {
		t.Errorf("Ignored() = %d, want 3", c.Ignored())
	}
}

func TestCollectorPower(t *testing.T) {
	c := NewCollector(testProjection(t))
	c.Add(way(1, map[string]string{"power": "line"}, Point{50, 30}, Point{50, 30.001}))
	c.Add(way(2, map[string]string{"power": "minor_line"}, Point{50, 30}, Point{50.001, 30}))
	c.Add(node(3, 50, 30, map[string]string{"power": "tower"}))
	c.Add(node(4, 50, 30.001, map[string]string{"man_made": "utility_pole"}))
	c.Add(way(5, map[string]string{"man_made": "pylon"}, Point{50.001, 30}, Point{50.001, 30.0001}))
	c.Add(node(6, 50, 30.001, map[string]string{"power": "Pole"}))

	batch := c.Batch(ClassPower)
	if batch.Style.Name != "power" || batch.Style.GroundOffset != 2 {
		t.Errorf("style = %+v", batch.Style)
	}
	if len(batch.Networks) != 2 || batch.Networks[0].Plateau != 31 || batch.Networks[1].Plateau != 6 {
		t.Errorf("networks = %+v, want plateaus 31 and 6", batch.Networks)
	}
	want := []raster.Support{
		{Pos: grid.K(100, -51), RequiredOffset: 31, Kind: raster.SupportTower},
		{Pos: grid.K(200, -51), RequiredOffset: 6, Kind: raster.SupportPole},
		{Pos: grid.K(100, -151), RequiredOffset: 31, Kind: raster.SupportTower},
	}
	if len(batch.Supports) != len(want) {
		t.Fatalf("supports = %+v, want %+v", batch.Supports, want)
	}
	for i := range want {
		if batch.Supports[i] != want[i] {
			t.Errorf("support %d = %+v, want %+v", i, batch.Supports[i], want[i])
		}
	}
}

func TestDensify(t *testing.T) {
	tests := []struct {
		pts  []grid.Key
		step int
		want []grid.Key
	}{
		{[]grid.Key{{0, 0}, {120, 0}}, 50, []grid.Key{{50, 0}, {100, 0}}},
		{[]grid.Key{{0, 0}, {30, 0}, {30, 40}}, 50, []grid.Key{{30, 20}}},
		{[]grid.Key{{0, 0}, {0, 0}, {0, 49}}, 50, nil},
		{[]grid.Key{{0, 0}, {10, 0}}, 0, nil},
	}
	for _, tt := range tests {
		got := Densify(tt.pts, tt.step)
		if len(got) != len(tt.want) {
			t.Errorf("Densify(%v, %d) = %v, want %v", tt.pts, tt.step, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Densify(%v, %d)[%d] = %v, want %v", tt.pts, tt.step, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCollectorAerialway(t *testing.T) {
	c := NewCollector(testProjection(t))
	// 200 blocks due east from (100,-51) to (300,-51).
	cable := way(1, map[string]string{"aerialway": "chair_lift"}, Point{50, 30}, Point{50, 30.002})
	if !c.Add(cable) {
		t.Fatal("chair lift not classified")
	}
	c.Add(node(2, 50, 30, map[string]string{"aerialway": "station"}))
	c.Add(node(3, 50, 30.00105, map[string]string{"aerialway": "pylon"}))
	if c.Add(way(4, map[string]string{"aerialway": "station"})) {
		t.Error("station without geometry was classified")
	}

	batch := c.Batch(ClassAerialway)
	if len(batch.Networks) != 1 || batch.Networks[0].Plateau != 10 {
		t.Fatalf("networks = %+v", batch.Networks)
	}
	got := map[grid.Key]raster.SupportKind{}
	for _, s := range batch.Supports {
		if s.RequiredOffset != 10 {
			t.Errorf("support %v offset = %d, want 10", s.Pos, s.RequiredOffset)
		}
		got[s.Pos] = s.Kind
	}
	// (200,-51) is skipped: the mapped pylon at (205,-51) is within 10.
	want := map[grid.Key]raster.SupportKind{
		grid.K(100, -51): raster.SupportStation,
		grid.K(205, -51): raster.SupportPylon,
		grid.K(150, -51): raster.SupportPylon,
		grid.K(250, -51): raster.SupportPylon,
		grid.K(300, -51): raster.SupportPylon,
	}
	if len(got) != len(want) {
		t.Fatalf("supports = %v, want %v", got, want)
	}
	for k, kind := range want {
		if got[k] != kind {
			t.Errorf("support at %v = %s, want %s", k, got[k], kind)
		}
	}
}

func TestCollectorAddStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elements.ndjson")
	in := `{"type":"way","id":1,"tags":{"power":"line"},"geometry":[{"lat":50,"lon":30},{"lat":50,"lon":30.001}]}
{"type":"node","id":2,"lat":50,"lon":30,"tags":{"amenity":"bench"}}
{"type":"node","id":3,"lat":50,"lon":30,"tags":{"power":"pole"}}
`
	if err := os.WriteFile(path, []byte(in), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer s.Close()
	c := NewCollector(testProjection(t))
	used, err := c.AddStream(s)
	if err != nil || used != 2 {
		t.Errorf("AddStream() = %d, %v, want 2", used, err)
	}
	if c.Ignored() != 1 {
		t.Errorf("Ignored() = %d, want 1", c.Ignored())
	}
}
