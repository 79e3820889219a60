// Package observability holds the Prometheus metrics and OpenTelemetry
// tracing setup used by the linecraft CLI.
package observability

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/StoreStation/linecraft/pkg/grid"
	"github.com/StoreStation/linecraft/pkg/raster"
)

// RasterCollector exposes rasterizer metrics. It implements raster.Observer
// so it can be handed straight to a Rasterizer.
type RasterCollector struct {
	gatherer prometheus.Gatherer

	Networks         *prometheus.CounterVec
	Voxels           *prometheus.CounterVec
	SupportsRejected *prometheus.CounterVec
	ColumnsSkipped   prometheus.Counter
	BatchDuration    *prometheus.HistogramVec
	BatchProgress    *prometheus.GaugeVec

	mu      sync.Mutex
	style   string
	started map[string]time.Time
}

var _ raster.Observer = (*RasterCollector)(nil)

// NewRasterCollector registers rasterizer metrics against reg, falling back
// to the default registerer.
func NewRasterCollector(reg prometheus.Registerer) (*RasterCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	networks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linecraft_networks_total",
		Help: "Networks processed, by style and outcome (rasterized, skipped, failed).",
	}, []string{"style", "outcome"}), "linecraft_networks_total")
	if err != nil {
		return nil, err
	}

	voxels, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linecraft_voxels_total",
		Help: "Voxels placed, by style and kind (line, support).",
	}, []string{"style", "kind"}), "linecraft_voxels_total")
	if err != nil {
		return nil, err
	}

	rejected, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linecraft_supports_rejected_total",
		Help: "Support placement attempts that failed, by reason.",
	}, []string{"style", "reason"}), "linecraft_supports_rejected_total")
	if err != nil {
		return nil, err
	}

	skipped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linecraft_columns_skipped_total",
		Help: "Path columns skipped because the ground height was unknown.",
	}), "linecraft_columns_skipped_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linecraft_batch_duration_seconds",
		Help:    "Wall time spent rasterizing one batch.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"style"}), "linecraft_batch_duration_seconds")
	if err != nil {
		return nil, err
	}

	progress, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linecraft_batch_progress_ratio",
		Help: "Fraction of segments of the current batch already walked.",
	}, []string{"style"}), "linecraft_batch_progress_ratio")
	if err != nil {
		return nil, err
	}

	return &RasterCollector{
		gatherer:         gatherer,
		Networks:         networks,
		Voxels:           voxels,
		SupportsRejected: rejected,
		ColumnsSkipped:   skipped,
		BatchDuration:    durations,
		BatchProgress:    progress,
		started:          map[string]time.Time{},
	}, nil
}

// Gatherer returns the gatherer the collector registered against.
func (c *RasterCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// WriteTextfile writes a snapshot of every gathered metric in the text
// exposition format, for the node exporter's textfile collector.
func (c *RasterCollector) WriteTextfile(path string) error {
	if c == nil || c.gatherer == nil {
		return errors.New("observability: no gatherer")
	}
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func (c *RasterCollector) currentStyle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

func (c *RasterCollector) BatchStarted(style string, _ int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.style = style
	c.started[style] = time.Now()
	c.mu.Unlock()
	c.BatchProgress.WithLabelValues(style).Set(0)
}

func (c *RasterCollector) NetworkDone(_ string, stats raster.Stats, err error) {
	if c == nil {
		return
	}
	style := c.currentStyle()
	outcome := "rasterized"
	switch {
	case errors.Is(err, raster.ErrDegenerateNetwork):
		outcome = "skipped"
	case err != nil:
		outcome = "failed"
	}
	c.Networks.WithLabelValues(style, outcome).Inc()
	c.Voxels.WithLabelValues(style, "line").Add(float64(stats.LineVoxels))
	c.Voxels.WithLabelValues(style, "support").Add(float64(stats.SupportVoxels))
}

func (c *RasterCollector) SupportPlaced(string, grid.Key, int) {}

func (c *RasterCollector) SupportRejected(_ string, _ grid.Key, reason raster.RejectReason) {
	if c == nil {
		return
	}
	c.SupportsRejected.WithLabelValues(c.currentStyle(), reason.String()).Inc()
}

func (c *RasterCollector) ColumnSkipped(string, grid.Key) {
	if c == nil {
		return
	}
	c.ColumnsSkipped.Inc()
}

func (c *RasterCollector) Progress(style string, done, total int) {
	if c == nil || total <= 0 {
		return
	}
	c.BatchProgress.WithLabelValues(style).Set(float64(done) / float64(total))
}

func (c *RasterCollector) BatchDone(style string, _ raster.BatchResult) {
	if c == nil {
		return
	}
	c.mu.Lock()
	start, ok := c.started[style]
	delete(c.started, style)
	c.mu.Unlock()
	if ok {
		c.BatchDuration.WithLabelValues(style).Observe(time.Since(start).Seconds())
	}
	c.BatchProgress.WithLabelValues(style).Set(1)
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
