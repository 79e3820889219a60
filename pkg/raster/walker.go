package raster

import "github.com/StoreStation/linecraft/pkg/grid"

// Walker is the per-network state of the vertical continuity walk. It is
// fed one path cell at a time and keeps the last placed column and height
// across segment boundaries, so a whole network comes out as one
// face-connected run of voxels.
//
// A Walker is not safe for concurrent use.
type Walker struct {
	terrain  Terrain
	out      boundedPlacer
	material Material
	maxRise  int

	// top of the last placed column
	col  grid.Key
	y    int
	have bool

	stats Stats
}

// StepResult describes what a single Step did.
type StepResult struct {
	Y       int  // line height in this column
	Placed  bool // false when the column had no ground data
	Moved   bool // the column changed from the previous placed one
	Skipped bool
}

// NewWalker returns a walker emitting m through p.
func NewWalker(t Terrain, p Placer, m Material) *Walker {
	return &Walker{
		terrain:  t,
		out:      boundedPlacer{dst: p},
		material: m,
	}
}

// SetBounds limits placement to b. The walk itself is unaffected.
func (w *Walker) SetBounds(b grid.Bounds) {
	w.out.bounds = b
}

// SetMaxRise clamps the height change between consecutive columns to r
// blocks for steps that are not marked exact. Zero disables the clamp.
func (w *Walker) SetMaxRise(r int) {
	w.maxRise = max(r, 0)
}

// Stats returns the counters accumulated so far.
func (w *Walker) Stats() Stats {
	return w.stats
}

// Step advances the walk to cell c with the given offset above ground.
// exact disables the rise clamp for this cell; segment ends use it so the
// line attaches at its resolved height.
func (w *Walker) Step(c grid.Key, offset int, exact bool) StepResult {
	w.stats.Cells++

	ground, ok := w.terrain.GroundHeight(c.X, c.Z)
	if !ok {
		// a gap breaks the run; the next known column starts fresh
		w.have = false
		w.stats.ColumnsSkipped++
		return StepResult{Skipped: true}
	}

	target := ground + 1 + offset
	if w.have && w.maxRise > 0 && !exact {
		target = grid.Clamp(target, w.y-w.maxRise, w.y+w.maxRise)
	}
	target = max(target, ground+1)

	if !w.have || (c != w.col && !grid.Adjacent(c, w.col)) {
		w.place(c, target)
		w.col, w.y, w.have = c, target, true
		return StepResult{Y: target, Placed: true}
	}

	if c == w.col {
		w.fill(c, w.y, target)
		w.y = target
		return StepResult{Y: target, Placed: true}
	}

	// Raise the old column to the entry height first, then step across at
	// that height, then climb or drop inside the new column. Doing the
	// horizontal move before the vertical one keeps every pair of
	// consecutive voxels face-adjacent.
	entry := max(w.y, ground+1)
	for y := w.y + 1; y <= entry; y++ {
		w.place(w.col, y)
	}
	w.place(c, entry)
	w.fill(c, entry, target)

	w.col, w.y = c, target
	w.stats.Transitions++
	return StepResult{Y: target, Placed: true, Moved: true}
}

// fill places one voxel per unit from just past from up to and including to.
func (w *Walker) fill(c grid.Key, from, to int) {
	switch {
	case to > from:
		for y := from + 1; y <= to; y++ {
			w.place(c, y)
		}
	case to < from:
		for y := from - 1; y >= to; y-- {
			w.place(c, y)
		}
	}
}

func (w *Walker) place(c grid.Key, y int) {
	if w.out.place(c.X, y, c.Z, w.material) {
		w.stats.LineVoxels++
	}
}
