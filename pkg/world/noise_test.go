package world

import (
	"math"
	"testing"
)

func TestPerlinDeterminism(t *testing.T) {
	p1, p2 := NewPerlin(12345), NewPerlin(12345)
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.37, float64(i)*0.53
		if p1.Noise2D(x, y) != p2.Noise2D(x, y) {
			t.Fatalf("Noise2D(%f, %f) differs between equal seeds", x, y)
		}
	}
}

func TestPerlinRange(t *testing.T) {
	p := NewPerlin(42)
	for i := 0; i < 10000; i++ {
		x, y := float64(i)*0.1-500, float64(i)*0.07-350
		if v := p.Noise2D(x, y); v < -1.5 || v > 1.5 {
			t.Errorf("Noise2D(%f, %f) = %f, out of range", x, y, v)
		}
	}
}

func TestPerlinZeroAtLatticePoints(t *testing.T) {
	p := NewPerlin(9)
	for x := -5; x <= 5; x++ {
		if v := p.Noise2D(float64(x), 3); v != 0 {
			t.Errorf("Noise2D(%d, 3) = %f, want 0", x, v)
		}
	}
}

func TestOctaveNoiseSmoothness(t *testing.T) {
	p := NewPerlin(77)
	prev := p.OctaveNoise2D(0, 0, 4, 2.0, 0.5)
	maxDiff := 0.0
	for i := 1; i < 1000; i++ {
		v := p.OctaveNoise2D(float64(i)*0.01, 0, 4, 2.0, 0.5)
		maxDiff = math.Max(maxDiff, math.Abs(v-prev))
		prev = v
	}
	if maxDiff > 0.5 {
		t.Errorf("OctaveNoise2D max step = %f, want smooth transitions", maxDiff)
	}
	if got := p.OctaveNoise2D(1.5, 2.5, 0, 2, 0.5); got != 0 {
		t.Errorf("OctaveNoise2D with no octaves = %f, want 0", got)
	}
}

func TestDifferentSeeds(t *testing.T) {
	p1, p2 := NewPerlin(1), NewPerlin(2)
	same := 0
	for i := 0; i < 100; i++ {
		x, y := float64(i)*0.5+0.25, float64(i)*0.3+0.1
		if p1.Noise2D(x, y) == p2.Noise2D(x, y) {
			same++
		}
	}
	if same > 30 {
		t.Errorf("different seeds produced %d/100 identical values", same)
	}
}
