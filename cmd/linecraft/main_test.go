package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StoreStation/linecraft/pkg/feature"
	"github.com/StoreStation/linecraft/pkg/logging"
	"github.com/StoreStation/linecraft/pkg/terrain"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-coords", "c.json", "-classes", "power", "-workers", "4", "-chat", "packet"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.CoordsPath != "c.json" || cfg.Workers != 4 || cfg.Chat != "packet" {
		t.Errorf("parseFlags() = %+v", cfg)
	}
	if len(cfg.Classes) != 1 || cfg.Classes[0] != feature.ClassPower {
		t.Errorf("Classes = %v, want [power]", cfg.Classes)
	}

	bad := [][]string{
		{},
		{"-coords", "c.json", "-workers", "0"},
		{"-coords", "c.json", "-classes", "roads"},
		{"-coords", "c.json", "-chat", "xml"},
	}
	for _, args := range bad {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("parseFlags(%v) succeeded", args)
		}
	}
}

// writeFixture lays out a 201x201 flat export at y=64 centred on (0, 0),
// one block per 0.00001 degrees.
func writeFixture(t *testing.T, dir string) Config {
	t.Helper()
	data := make([]int, 201*201)
	for i := range data {
		data[i] = 64
	}
	coords := feature.Coords{
		Center:      feature.LatLng{},
		BBox:        feature.BBox{South: -0.001, North: 0.001, West: -0.001, East: 0.001},
		SizeMeters:  200,
		TerrainGrid: &terrain.Grid{MinX: -100, MinZ: -100, Width: 201, Height: 201, Data: data},
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		t.Fatal(err)
	}
	coordsPath := filepath.Join(dir, "coords.json")
	if err := os.WriteFile(coordsPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	elements := `{"type":"way","id":1,"tags":{"power":"line"},"geometry":[{"lat":0,"lon":-0.0004},{"lat":0,"lon":0.0004}]}
{"type":"node","id":2,"lat":0,"lon":-0.0004,"tags":{"power":"tower"}}
{"type":"node","id":3,"lat":0,"lon":0.0004,"tags":{"power":"tower"}}
{"type":"way","id":4,"tags":{"man_made":"pipeline","layer":"1"},"geometry":[{"lat":0.0002,"lon":0},{"lat":0.0002,"lon":0.0006}]}
{"type":"node","id":5,"lat":0,"lon":0,"tags":{"amenity":"bench"}}
`
	featuresPath := filepath.Join(dir, "elements.ndjson")
	if err := os.WriteFile(featuresPath, []byte(elements), 0o644); err != nil {
		t.Fatal(err)
	}
	return Config{
		CoordsPath:   coordsPath,
		FeaturesPath: featuresPath,
		Classes:      feature.AllClasses,
		Workers:      2,
		MetricsPath:  filepath.Join(dir, "metrics.prom"),
		OutPath:      filepath.Join(dir, "voxels.ndjson"),
		Chat:         "json",
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := writeFixture(t, t.TempDir())
	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, logging.Noop(), &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"[linecraft]", "pipelines: 1 networks", "power: 1 networks"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}

	f, err := os.Open(cfg.OutPath)
	if err != nil {
		t.Fatalf("open voxels: %v", err)
	}
	defer f.Close()
	counts := map[string]int{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var v voxelRecord
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			t.Fatalf("bad voxel line %q: %v", sc.Text(), err)
		}
		counts[v.Block]++
		if v.Block == "minecraft:dark_oak_fence" && v.Y != 96 {
			t.Errorf("power wire at %+v, want y=96 between two towers", v)
		}
		if v.Y <= 64 {
			t.Errorf("voxel %+v at or below the ground", v)
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if counts["minecraft:dark_oak_fence"] != 81 {
		t.Errorf("wire voxels = %d, want 81", counts["minecraft:dark_oak_fence"])
	}
	// two 30-level lattice towers, each with a 6x6 platform under the wire
	if counts["minecraft:iron_bars"] != 1200 {
		t.Errorf("tower lattice voxels = %d, want 2x600", counts["minecraft:iron_bars"])
	}
	if counts["minecraft:spruce_fence"] != 72 {
		t.Errorf("tower platform voxels = %d, want 2x36", counts["minecraft:spruce_fence"])
	}
	if counts["minecraft:andesite_wall"] != 0 {
		t.Errorf("pole voxels = %d, want none on a tower line", counts["minecraft:andesite_wall"])
	}
	if counts["minecraft:iron_block"] == 0 || counts["minecraft:polished_blackstone_wall"] == 0 {
		t.Errorf("pipeline voxels missing: %v", counts)
	}

	metrics, err := os.ReadFile(cfg.MetricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(metrics), `linecraft_networks_total{outcome="rasterized",style="power"} 1`) {
		t.Errorf("metrics textfile missing the power network:\n%s", metrics)
	}
}

func TestRunMissingCoords(t *testing.T) {
	cfg := Config{CoordsPath: filepath.Join(t.TempDir(), "missing.json"), Classes: feature.AllClasses, Workers: 1}
	if err := run(context.Background(), cfg, logging.Noop(), &bytes.Buffer{}); err == nil {
		t.Error("run with missing coords succeeded")
	}
}
