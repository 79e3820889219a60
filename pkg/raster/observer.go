package raster

import (
	"context"

	"github.com/StoreStation/linecraft/pkg/grid"
	"github.com/StoreStation/linecraft/pkg/logging"
)

// Observer receives rasterization events. With more than one worker the
// per-network callbacks arrive from several goroutines at once, so
// implementations must be safe for concurrent use.
type Observer interface {
	BatchStarted(style string, networks int)
	NetworkDone(id string, stats Stats, err error)
	SupportPlaced(id string, at grid.Key, height int)
	SupportRejected(id string, at grid.Key, reason RejectReason)
	ColumnSkipped(id string, at grid.Key)
	Progress(style string, done, total int)
	BatchDone(style string, result BatchResult)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) BatchStarted(string, int)                       {}
func (NopObserver) NetworkDone(string, Stats, error)               {}
func (NopObserver) SupportPlaced(string, grid.Key, int)            {}
func (NopObserver) SupportRejected(string, grid.Key, RejectReason) {}
func (NopObserver) ColumnSkipped(string, grid.Key)                 {}
func (NopObserver) Progress(string, int, int)                      {}
func (NopObserver) BatchDone(string, BatchResult)                  {}

// Observers fans every event out to each member in order.
type Observers []Observer

func (o Observers) BatchStarted(style string, networks int) {
	for _, x := range o {
		x.BatchStarted(style, networks)
	}
}

func (o Observers) NetworkDone(id string, stats Stats, err error) {
	for _, x := range o {
		x.NetworkDone(id, stats, err)
	}
}

func (o Observers) SupportPlaced(id string, at grid.Key, height int) {
	for _, x := range o {
		x.SupportPlaced(id, at, height)
	}
}

func (o Observers) SupportRejected(id string, at grid.Key, reason RejectReason) {
	for _, x := range o {
		x.SupportRejected(id, at, reason)
	}
}

func (o Observers) ColumnSkipped(id string, at grid.Key) {
	for _, x := range o {
		x.ColumnSkipped(id, at)
	}
}

func (o Observers) Progress(style string, done, total int) {
	for _, x := range o {
		x.Progress(style, done, total)
	}
}

func (o Observers) BatchDone(style string, result BatchResult) {
	for _, x := range o {
		x.BatchDone(style, result)
	}
}

// LogObserver writes rasterizer events to a structured logger. Per-column
// and per-support events go out at debug level. Every line is logged with
// the context the observer was built with, so it carries that run's id.
type LogObserver struct {
	Log logging.Logger
	ctx context.Context
}

// NewLogObserver returns an observer logging through l under ctx.
func NewLogObserver(ctx context.Context, l logging.Logger) *LogObserver {
	if l == nil {
		l = logging.Noop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &LogObserver{Log: l, ctx: context.WithoutCancel(ctx)}
}

func (o *LogObserver) BatchStarted(style string, networks int) {
	o.Log.Info(o.ctx, "batch started",
		logging.String("style", style), logging.Int("networks", networks))
}

func (o *LogObserver) NetworkDone(id string, stats Stats, err error) {
	fields := []logging.Field{
		logging.String("network", id),
		logging.Int("segments", stats.Segments),
		logging.Int("line_voxels", stats.LineVoxels),
		logging.Int("supports", stats.SupportsPlaced),
	}
	if err != nil {
		o.Log.Warn(o.ctx, "network not rasterized", append(fields, logging.Err(err))...)
		return
	}
	o.Log.Debug(o.ctx, "network rasterized", fields...)
}

func (o *LogObserver) SupportPlaced(id string, at grid.Key, height int) {
	o.Log.Debug(o.ctx, "support placed",
		logging.String("network", id), logging.String("at", at.String()), logging.Int("height", height))
}

func (o *LogObserver) SupportRejected(id string, at grid.Key, reason RejectReason) {
	o.Log.Debug(o.ctx, "support rejected",
		logging.String("network", id), logging.String("at", at.String()), logging.String("reason", reason.String()))
}

func (o *LogObserver) ColumnSkipped(id string, at grid.Key) {
	o.Log.Debug(o.ctx, "column skipped, no ground data",
		logging.String("network", id), logging.String("at", at.String()))
}

func (o *LogObserver) Progress(style string, done, total int) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	o.Log.Info(o.ctx, "progress",
		logging.String("style", style), logging.Int("segments", done),
		logging.Int("total", total), logging.Int("percent", pct))
}

func (o *LogObserver) BatchDone(style string, result BatchResult) {
	o.Log.Info(o.ctx, "batch done",
		logging.String("style", style),
		logging.Int("rasterized", result.Rasterized),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed),
		logging.Int("line_voxels", result.Stats.LineVoxels),
		logging.Int("supports", result.Stats.SupportsPlaced))
}
