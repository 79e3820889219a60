package grid

// Degrees counts how many polyline segments touch each key.
type Degrees map[Key]int

// AddSegment increments the degree of both endpoints of a segment.
func (d Degrees) AddSegment(a, b Key) {
	d[a]++
	d[b]++
}

// AddPolyline counts every segment of pts. Zero-length segments still count,
// matching how the endpoints are walked.
func (d Degrees) AddPolyline(pts []Key) {
	for i := 0; i+1 < len(pts); i++ {
		d.AddSegment(pts[i], pts[i+1])
	}
}

// Of returns the degree of k, zero if it was never touched.
func (d Degrees) Of(k Key) int {
	return d[k]
}

// MaxOffsets tracks, per key, the largest offset contributed by any feature
// touching it.
type MaxOffsets map[Key]int

// Observe records off at k, keeping the maximum.
func (m MaxOffsets) Observe(k Key, off int) {
	if prev, ok := m[k]; !ok || off > prev {
		m[k] = off
	}
}

// Get returns the maximum offset seen at k.
func (m MaxOffsets) Get(k Key) (int, bool) {
	v, ok := m[k]
	return v, ok
}
