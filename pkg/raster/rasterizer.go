package raster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/StoreStation/linecraft/pkg/grid"
)

const tracerName = "github.com/StoreStation/linecraft/pkg/raster"

// progressStep is the percentage between two Progress events of a batch.
const progressStep = 20

// Rasterizer drives networks through the walker and support placer and
// writes the result into one Placer.
type Rasterizer struct {
	cfg      Config
	terrain  Terrain
	blocks   BlockReader
	placer   Placer
	observer Observer
	tracer   trace.Tracer
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithBlockReader enables the surface checks for supports.
func WithBlockReader(b BlockReader) Option {
	return func(r *Rasterizer) { r.blocks = b }
}

// WithObserver sets the event sink.
func WithObserver(o Observer) Option {
	return func(r *Rasterizer) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Rasterizer) {
		if t != nil {
			r.tracer = t
		}
	}
}

// New returns a rasterizer reading ground from t and writing to p.
func New(cfg Config, t Terrain, p Placer, opts ...Option) *Rasterizer {
	r := &Rasterizer{
		cfg:      cfg,
		terrain:  t,
		placer:   p,
		observer: NopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rasterize walks one network. Any panic raised by a collaborator is
// recovered and returned as a *NetworkError wrapping ErrFeaturePanic.
func (r *Rasterizer) Rasterize(ctx context.Context, reg *Registry, style Style, n Network) (Stats, error) {
	return r.rasterize(ctx, reg, style, n, nil)
}

func (r *Rasterizer) rasterize(ctx context.Context, reg *Registry, style Style, n Network, onSegment func()) (stats Stats, err error) {
	ctx, span := r.tracer.Start(ctx, "raster.network", trace.WithAttributes(
		attribute.String("network.id", n.ID),
		attribute.String("style", style.Name),
	))
	defer func() {
		if p := recover(); p != nil {
			err = &NetworkError{ID: n.ID, Err: fmt.Errorf("%w: %v", ErrFeaturePanic, p)}
		}
		if err != nil && !errors.Is(err, ErrDegenerateNetwork) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int("segments", stats.Segments),
			attribute.Int("line_voxels", stats.LineVoxels),
			attribute.Int("supports", stats.SupportsPlaced),
		)
		span.End()
	}()

	if err := style.Validate(); err != nil {
		return Stats{}, &NetworkError{ID: n.ID, Err: err}
	}
	n = n.Normalized()
	if n.Degenerate() {
		return Stats{}, &NetworkError{ID: n.ID, Err: ErrDegenerateNetwork}
	}
	if reg == nil {
		reg = NewRegistry()
		reg.AddNetwork(n)
	}
	targets := reg.ResolveTargets(n, style)

	walker := NewWalker(r.terrain, r.placer, style.LineMaterial)
	walker.SetBounds(r.cfg.Bounds)
	walker.SetMaxRise(style.MaxRise)

	supports := NewSupportPlacer(r.terrain, r.blocks, r.placer, style.SupportMaterial, style.SupportSpacing)
	supports.SetShapeMaterials(style.LatticeMaterial, style.DetailMaterial)
	supports.SetBounds(r.cfg.Bounds)
	supports.Disallow(r.cfg.DisallowedGround, r.cfg.DisallowedAbove)
	supports.OnPlaced = func(at grid.Key, _, top int) {
		r.observer.SupportPlaced(n.ID, at, top)
	}
	supports.OnRejected = func(at grid.Key, reason RejectReason) {
		r.observer.SupportRejected(n.ID, at, reason)
	}

	collect := func() Stats {
		s := walker.Stats().Add(supports.Stats())
		s.Segments = stats.Segments
		return s
	}

	for i := 0; i+1 < len(n.Waypoints); i++ {
		if err := ctx.Err(); err != nil {
			return collect(), err
		}
		a, b := n.Waypoints[i], n.Waypoints[i+1]
		cells := Trace(a.X, a.Z, b.X, b.Z)
		last := len(cells) - 1
		prof := BuildProfile(targets[i], targets[i+1], n.Plateau, last, style.RampMax)

		for idx, c := range cells {
			first := i == 0 && idx == 0
			res := walker.Step(c, prof.Offset(idx), idx == 0 || idx == last)
			if res.Skipped {
				r.observer.ColumnSkipped(n.ID, c)
				continue
			}
			if !first && !res.Moved {
				continue
			}
			if node, ok := r.supportNode(reg, style, c, idx == 0 || idx == last); ok && !supports.Placed().Has(c) {
				// one attempt per column: a failed node still counts as a transition
				if !supports.Force(c, res.Y, node.Kind) && res.Moved {
					supports.Advance()
				}
				continue
			}
			if res.Moved {
				supports.Transition(c, res.Y)
			}
		}

		stats.Segments++
		if onSegment != nil {
			onSegment()
		}
	}
	return collect(), nil
}

// supportNode returns the registered node the line crossing c should
// attempt right away. Any cell sitting exactly on a node does; waypoints
// also match nodes within the snap radius.
func (r *Rasterizer) supportNode(reg *Registry, style Style, c grid.Key, waypoint bool) (Support, bool) {
	if reg.Len() == 0 {
		return Support{}, false
	}
	if s, ok := reg.SupportAt(c); ok {
		return s, true
	}
	if !waypoint {
		return Support{}, false
	}
	return reg.SupportNear(c, style.SnapRadius)
}

type outcome struct {
	stats Stats
	err   error
}

// RunBatch rasterizes every network of b, up to Config.Workers at a time.
// Failed and degenerate networks do not stop the batch; their errors are
// collected in the result. ErrNoNetworks is returned only when nothing was
// rasterized.
func (r *Rasterizer) RunBatch(ctx context.Context, b Batch) (BatchResult, error) {
	res := BatchResult{Style: b.Style.Name}
	if err := r.cfg.Validate(); err != nil {
		return res, err
	}
	if err := b.Style.Validate(); err != nil {
		return res, fmt.Errorf("raster: %w", err)
	}

	ctx, span := r.tracer.Start(ctx, "raster.batch", trace.WithAttributes(
		attribute.String("style", b.Style.Name),
		attribute.Int("networks", len(b.Networks)),
		attribute.Int("supports", len(b.Supports)),
	))
	defer span.End()

	reg := b.Registry()
	r.observer.BatchStarted(b.Style.Name, len(b.Networks))

	total := 0
	for _, n := range b.Networks {
		total += n.Segments()
	}
	prog := newProgress(total, func(done, total int) {
		r.observer.Progress(b.Style.Name, done, total)
	})

	outcomes := make([]outcome, len(b.Networks))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < max(r.cfg.Workers, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				n := b.Networks[i]
				if err := ctx.Err(); err != nil {
					outcomes[i] = outcome{err: err}
					continue
				}
				stats, err := r.rasterize(ctx, reg, b.Style, n, prog.step)
				outcomes[i] = outcome{stats: stats, err: err}
				r.observer.NetworkDone(n.ID, stats, err)
			}
		}()
	}
	for i := range b.Networks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, o := range outcomes {
		res.Stats = res.Stats.Add(o.stats)
		switch {
		case o.err == nil:
			res.Rasterized++
		case errors.Is(o.err, ErrDegenerateNetwork):
			res.Skipped++
		case errors.Is(o.err, context.Canceled), errors.Is(o.err, context.DeadlineExceeded):
			// cancelled before or during the walk; reported once below
		default:
			res.Failed++
			res.Errors = append(res.Errors, o.err)
		}
	}

	span.SetAttributes(
		attribute.Int("rasterized", res.Rasterized),
		attribute.Int("failed", res.Failed),
		attribute.Int("line_voxels", res.Stats.LineVoxels),
	)
	r.observer.BatchDone(b.Style.Name, res)

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	if res.Rasterized == 0 {
		span.SetStatus(codes.Error, ErrNoNetworks.Error())
		return res, fmt.Errorf("%s: %w", b.Style.Name, ErrNoNetworks)
	}
	return res, nil
}

// progress reports segment completion every progressStep percent.
type progress struct {
	mu     sync.Mutex
	done   int
	total  int
	next   int
	report func(done, total int)
}

func newProgress(total int, report func(done, total int)) *progress {
	return &progress{total: total, next: progressStep, report: report}
}

func (p *progress) step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.total <= 0 || p.done*100 < p.next*p.total {
		return
	}
	for p.next <= 100 && p.done*100 >= p.next*p.total {
		p.next += progressStep
	}
	p.report(p.done, p.total)
}
