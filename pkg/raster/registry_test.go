package raster

import (
	"testing"

	"github.com/StoreStation/linecraft/pkg/grid"
)

func TestResolveFreeEndsAndJunctions(t *testing.T) {
	style := Style{Name: "pipelines", LineMaterial: testLine, GroundOffset: 0, RampMax: 20}
	a := Network{ID: "a", Waypoints: []grid.Key{grid.K(0, 0), grid.K(10, 0)}, Plateau: 5}
	b := Network{ID: "b", Waypoints: []grid.Key{grid.K(10, 0), grid.K(10, 10)}, Plateau: 15}

	reg := NewRegistry()
	reg.AddNetwork(a)
	reg.AddNetwork(b)

	tests := []struct {
		at      grid.Key
		plateau int
		want    int
	}{
		{grid.K(0, 0), 5, 0},
		{grid.K(10, 0), 5, 15},
		{grid.K(10, 0), 15, 15},
		{grid.K(10, 10), 15, 0},
	}
	for _, tt := range tests {
		if got := reg.Resolve(tt.at, tt.plateau, style); got != tt.want {
			t.Errorf("Resolve(%v, %d) = %d, want %d", tt.at, tt.plateau, got, tt.want)
		}
	}
	if got := reg.Degree(grid.K(10, 0), 0); got != 2 {
		t.Errorf("Degree(10,0) = %d, want 2", got)
	}
}

func TestResolveSnapsToSupports(t *testing.T) {
	style := Style{Name: "power", LineMaterial: "minecraft:dark_oak_fence", GroundOffset: 2, SnapRadius: 1, RampMax: 20}
	line := Network{ID: "w", Waypoints: []grid.Key{grid.K(0, 0), grid.K(10, 0)}, Plateau: 6}

	reg := NewRegistry()
	reg.AddSupport(Support{Pos: grid.K(11, 1), RequiredOffset: 31, Kind: SupportTower})
	reg.AddNetwork(line)

	got := reg.ResolveTargets(line, style)
	if got[0] != 2 || got[1] != 31 {
		t.Errorf("ResolveTargets() = %v, want [2 31]", got)
	}
	if s, ok := reg.SupportNear(grid.K(10, 0), 1); !ok || s.Kind != SupportTower {
		t.Errorf("SupportNear(10,0, 1) = %v, %v, want the tower", s, ok)
	}
	if _, ok := reg.SupportNear(grid.K(0, 0), 1); ok {
		t.Error("SupportNear(0,0, 1) found a support, want none")
	}
}

func TestResolveSupportBelowPlateau(t *testing.T) {
	style := Style{Name: "power", LineMaterial: "minecraft:dark_oak_fence", GroundOffset: 2, SnapRadius: 1, RampMax: 20}
	reg := NewRegistry()
	reg.AddSupport(Support{Pos: grid.K(5, 5), RequiredOffset: 6, Kind: SupportPole})
	reg.AddNetwork(Network{ID: "major", Waypoints: []grid.Key{grid.K(0, 5), grid.K(5, 5)}, Plateau: 31})

	if got := reg.Resolve(grid.K(5, 5), 31, style); got != 31 {
		t.Errorf("Resolve(5,5) = %d, want 31", got)
	}
}

func TestRegistryLastSupportWins(t *testing.T) {
	reg := NewRegistry()
	reg.AddSupport(Support{Pos: grid.K(1, 1), RequiredOffset: 6})
	reg.AddSupport(Support{Pos: grid.K(1, 1), RequiredOffset: 31})
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
	if s, _ := reg.SupportAt(grid.K(1, 1)); s.RequiredOffset != 31 {
		t.Errorf("SupportAt(1,1).RequiredOffset = %d, want 31", s.RequiredOffset)
	}
}
