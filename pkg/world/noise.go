package world

import "math"

// Perlin is seeded 2D gradient noise.
type Perlin struct {
	perm [512]uint8
}

// NewPerlin shuffles the permutation table with an LCG seeded by seed.
func NewPerlin(seed int64) *Perlin {
	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	s := uint64(seed)
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := (s >> 16) % uint64(i+1)
		base[i], base[j] = base[j], base[i]
	}

	p := &Perlin{}
	copy(p.perm[:256], base[:])
	copy(p.perm[256:], base[:])
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash uint8, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return y - x
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Noise2D returns noise at (x, y), roughly in [-1, 1].
func (p *Perlin) Noise2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi, yi := int(fx)&255, int(fy)&255
	xf, yf := x-fx, y-fy
	u, v := fade(xf), fade(yf)

	a := int(p.perm[xi]) + yi
	b := int(p.perm[xi+1]) + yi

	bottom := lerp(u, grad(p.perm[a], xf, yf), grad(p.perm[b], xf-1, yf))
	top := lerp(u, grad(p.perm[a+1], xf, yf-1), grad(p.perm[b+1], xf-1, yf-1))
	return lerp(v, bottom, top)
}

// OctaveNoise2D sums octaves of Noise2D and normalizes by the total
// amplitude.
func (p *Perlin) OctaveNoise2D(x, y float64, octaves int, lacunarity, persistence float64) float64 {
	var total, norm float64
	freq, amp := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		total += p.Noise2D(x*freq, y*freq) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}
