package raster

import "testing"

func TestBuildProfileRamps(t *testing.T) {
	tests := []struct {
		start, end, plateau, n, rampMax int
		wantLStart, wantLEnd            int
	}{
		{2, 2, 31, 60, 20, 20, 20},
		{0, 31, 31, 10, 20, 10, 0},
		{31, 0, 31, 10, 20, 0, 10},
		{5, 5, 5, 30, 20, 0, 0},
		{0, 10, 30, 20, 20, 12, 8},
		{0, 0, 10, 7, 20, 3, 4},
		{0, 0, 10, 0, 20, 0, 0},
	}
	for _, tt := range tests {
		p := BuildProfile(tt.start, tt.end, tt.plateau, tt.n, tt.rampMax)
		if p.LStart != tt.wantLStart || p.LEnd != tt.wantLEnd {
			t.Errorf("BuildProfile(%d, %d, %d, %d, %d) ramps = (%d, %d), want (%d, %d)",
				tt.start, tt.end, tt.plateau, tt.n, tt.rampMax, p.LStart, p.LEnd, tt.wantLStart, tt.wantLEnd)
		}
	}
}

func TestProfileOffsets(t *testing.T) {
	p := BuildProfile(2, 2, 31, 60, 20)
	tests := []struct {
		idx, want int
	}{
		{0, 2},
		{10, 17},
		{20, 31},
		{30, 31},
		{40, 31},
		{60, 2},
	}
	for _, tt := range tests {
		if got := p.Offset(tt.idx); got != tt.want {
			t.Errorf("Offset(%d) = %d, want %d", tt.idx, got, tt.want)
		}
	}

	p = BuildProfile(0, 31, 31, 10, 20)
	if got := p.Offset(0); got != 0 {
		t.Errorf("Offset(0) = %d, want 0", got)
	}
	if got := p.Offset(5); got != 16 {
		t.Errorf("Offset(5) = %d, want 16", got)
	}
	if got := p.Offset(10); got != 31 {
		t.Errorf("Offset(10) = %d, want 31", got)
	}
}

func TestProfileZeroDeltaCollapse(t *testing.T) {
	p := BuildProfile(6, 6, 6, 45, 20)
	first, last := p.PlateauRange()
	if first != 0 || last != 45 {
		t.Errorf("PlateauRange() = (%d, %d), want (0, 45)", first, last)
	}
	for i := 0; i <= p.N; i++ {
		if got := p.Offset(i); got != 6 {
			t.Fatalf("Offset(%d) = %d, want 6", i, got)
		}
	}
}

func TestProfileRampBound(t *testing.T) {
	ceilDiv := func(a, b int) int { return (a + b - 1) / b }
	for _, start := range []int{0, 2, 10, 31} {
		for _, end := range []int{0, 2, 10, 31} {
			for _, plateau := range []int{5, 10, 31} {
				for _, n := range []int{1, 3, 9, 25, 40, 100} {
					p := BuildProfile(start, end, plateau, n, 20)
					if p.LStart > 20 || p.LEnd > 20 {
						t.Fatalf("BuildProfile(%d, %d, %d, %d, 20) ramps (%d, %d) exceed 20",
							start, end, plateau, n, p.LStart, p.LEnd)
					}
					if p.LStart+p.LEnd > n {
						t.Fatalf("BuildProfile(%d, %d, %d, %d, 20) ramps (%d, %d) longer than segment",
							start, end, plateau, n, p.LStart, p.LEnd)
					}
					first, last := p.PlateauRange()
					for i := 0; i < first; i++ {
						step := abs(p.Offset(i+1) - p.Offset(i))
						if limit := ceilDiv(abs(plateau-start), p.LStart); step > limit {
							t.Errorf("start ramp of BuildProfile(%d, %d, %d, %d, 20) steps %d at %d, limit %d",
								start, end, plateau, n, step, i, limit)
						}
					}
					for i := last; i < n; i++ {
						step := abs(p.Offset(i+1) - p.Offset(i))
						if limit := ceilDiv(abs(end-plateau), p.LEnd); step > limit {
							t.Errorf("end ramp of BuildProfile(%d, %d, %d, %d, 20) steps %d at %d, limit %d",
								start, end, plateau, n, step, i, limit)
						}
					}
					if got := p.Offset(n); got != end {
						t.Errorf("BuildProfile(%d, %d, %d, %d, 20).Offset(%d) = %d, want %d",
							start, end, plateau, n, n, got, end)
					}
				}
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
