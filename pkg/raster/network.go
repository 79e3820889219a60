package raster

import "github.com/StoreStation/linecraft/pkg/grid"

// Network is one linear feature: an open polyline and the offset it flies
// at between attachments.
type Network struct {
	ID        string
	Waypoints []grid.Key
	Plateau   int
}

// Normalized returns a copy of n without repeated consecutive waypoints.
func (n Network) Normalized() Network {
	pts := make([]grid.Key, 0, len(n.Waypoints))
	for _, p := range n.Waypoints {
		if len(pts) > 0 && pts[len(pts)-1] == p {
			continue
		}
		pts = append(pts, p)
	}
	n.Waypoints = pts
	return n
}

// Segments returns the number of segments after normalization.
func (n Network) Segments() int {
	return max(len(n.Normalized().Waypoints)-1, 0)
}

// Degenerate reports whether n has fewer than two distinct waypoints.
func (n Network) Degenerate() bool {
	return n.Segments() == 0
}

// Batch is every network of one class plus the support nodes collected for
// it during the same run.
type Batch struct {
	Style    Style
	Networks []Network
	Supports []Support
}

// Registry builds the registry for the batch.
func (b Batch) Registry() *Registry {
	reg := NewRegistry()
	for _, s := range b.Supports {
		reg.AddSupport(s)
	}
	for _, n := range b.Networks {
		reg.AddNetwork(n)
	}
	return reg
}

// Stats counts what a walk produced.
type Stats struct {
	Segments         int
	Cells            int
	Transitions      int
	LineVoxels       int
	ColumnsSkipped   int
	SupportsPlaced   int
	SupportsRejected int
	SupportVoxels    int
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Segments:         s.Segments + o.Segments,
		Cells:            s.Cells + o.Cells,
		Transitions:      s.Transitions + o.Transitions,
		LineVoxels:       s.LineVoxels + o.LineVoxels,
		ColumnsSkipped:   s.ColumnsSkipped + o.ColumnsSkipped,
		SupportsPlaced:   s.SupportsPlaced + o.SupportsPlaced,
		SupportsRejected: s.SupportsRejected + o.SupportsRejected,
		SupportVoxels:    s.SupportVoxels + o.SupportVoxels,
	}
}

// BatchResult summarizes a RunBatch call.
type BatchResult struct {
	Style      string
	Stats      Stats
	Rasterized int
	Skipped    int
	Failed     int
	Errors     []error
}
