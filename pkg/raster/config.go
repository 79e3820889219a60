package raster

import (
	"errors"
	"fmt"

	"github.com/StoreStation/linecraft/pkg/grid"
)

// Style holds the per-class parameters of a batch of networks.
type Style struct {
	Name            string
	LineMaterial    Material
	SupportMaterial Material
	LatticeMaterial Material // tower and pylon legs; empty uses SupportMaterial
	DetailMaterial  Material // crossarms, platforms and caps; empty uses SupportMaterial
	GroundOffset    int      // offset a free line end comes down to
	SupportSpacing  int      // column transitions between periodic supports; 0 disables
	RampMax         int      // longest ramp between an end and the plateau
	MaxRise         int      // per-column height change limit for inner cells; 0 disables
	SnapRadius      int      // how far from a waypoint a support node is still matched
}

// Validate reports the first invalid field.
func (s Style) Validate() error {
	switch {
	case s.LineMaterial == "":
		return fmt.Errorf("style %q: %w: line material is empty", s.Name, ErrInvalidStyle)
	case s.SupportSpacing > 0 && s.SupportMaterial == "":
		return fmt.Errorf("style %q: %w: support material is empty", s.Name, ErrInvalidStyle)
	case s.RampMax < 0:
		return fmt.Errorf("style %q: %w: negative ramp length %d", s.Name, ErrInvalidStyle, s.RampMax)
	case s.GroundOffset < 0:
		return fmt.Errorf("style %q: %w: negative ground offset %d", s.Name, ErrInvalidStyle, s.GroundOffset)
	case s.SupportSpacing < 0, s.MaxRise < 0, s.SnapRadius < 0:
		return fmt.Errorf("style %q: %w: negative spacing, rise or snap radius", s.Name, ErrInvalidStyle)
	}
	return nil
}

// Config holds the settings shared by every batch.
type Config struct {
	// Workers is how many networks of a batch run at once. The placer must
	// be safe for concurrent use when it is above 1.
	Workers int
	// Bounds limits placement; the zero value places everywhere.
	Bounds grid.Bounds
	// DisallowedGround and DisallowedAbove keep supports off paved surfaces
	// and rails.
	DisallowedGround []Material
	DisallowedAbove  []Material
}

// DefaultConfig returns a single-worker config that keeps supports off
// concrete roads and rail tracks.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
		DisallowedGround: []Material{
			"minecraft:gray_concrete",
			"minecraft:white_concrete",
			"minecraft:yellow_concrete",
		},
		DisallowedAbove: []Material{
			"minecraft:rail",
			"minecraft:powered_rail",
			"minecraft:detector_rail",
			"minecraft:activator_rail",
		},
	}
}

// Validate reports an invalid config.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("raster: negative worker count %d", c.Workers)
	}
	return nil
}

var (
	// ErrInvalidStyle marks a style that cannot be rasterized.
	ErrInvalidStyle = errors.New("invalid style")
	// ErrDegenerateNetwork marks a network with fewer than two distinct
	// waypoints. Such networks are skipped, not failed.
	ErrDegenerateNetwork = errors.New("degenerate network")
	// ErrNoNetworks is returned by RunBatch when nothing was rasterized.
	ErrNoNetworks = errors.New("no networks rasterized")
	// ErrFeaturePanic wraps a panic raised while rasterizing one network.
	ErrFeaturePanic = errors.New("feature panicked")
)

// NetworkError ties a failure to the network that caused it.
type NetworkError struct {
	ID  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s: %v", e.ID, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
