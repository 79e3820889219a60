package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/StoreStation/linecraft/pkg/chat"
	"github.com/StoreStation/linecraft/pkg/feature"
	"github.com/StoreStation/linecraft/pkg/logging"
	"github.com/StoreStation/linecraft/pkg/observability"
	"github.com/StoreStation/linecraft/pkg/raster"
	"github.com/StoreStation/linecraft/pkg/terrain"
	"github.com/StoreStation/linecraft/pkg/world"
)

func run(ctx context.Context, cfg Config, log logging.Logger, stdout io.Writer) error {
	coords, err := feature.LoadCoords(cfg.CoordsPath)
	if err != nil {
		return err
	}
	bounds := coords.Bounds()

	w, closeGround, err := buildWorld(cfg, coords, log)
	if err != nil {
		return err
	}
	defer closeGround()

	collector := feature.NewCollector(coords.Projection())
	if err := collect(ctx, cfg, coords, collector, log); err != nil {
		return err
	}

	metrics, err := observability.NewRasterCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	observers := raster.Observers{raster.NewLogObserver(ctx, log), metrics}
	var broadcaster *chat.Broadcaster
	packets := false
	if cfg.Chat != "" {
		format, err := chat.ParseFormat(cfg.Chat)
		if err != nil {
			return err
		}
		broadcaster = chat.NewBroadcaster(stdout, format)
		observers = append(observers, broadcaster)
		packets = format == chat.FormatPacket
	}

	rcfg := raster.DefaultConfig()
	rcfg.Workers = cfg.Workers
	rcfg.Bounds = bounds
	r := raster.New(rcfg, w, w, raster.WithBlockReader(w), raster.WithObserver(observers))

	var summary []string
	for _, class := range cfg.Classes {
		batch := collector.Batch(class)
		if len(batch.Networks) == 0 {
			log.Info(ctx, "no features of class", logging.String("class", string(class)))
			continue
		}
		res, err := r.RunBatch(ctx, batch)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, raster.ErrNoNetworks):
			log.Warn(ctx, "nothing rasterized", logging.String("class", string(class)), logging.Err(err))
		case err != nil:
			return err
		}
		summary = append(summary, fmt.Sprintf("%s: %d networks (%d skipped, %d failed), %d line voxels, %d supports",
			class, res.Rasterized, res.Skipped, res.Failed, res.Stats.LineVoxels, res.Stats.SupportsPlaced))
	}

	if broadcaster != nil {
		if err := broadcaster.Err(); err != nil {
			log.Warn(ctx, "chat output failed", logging.Err(err))
		}
	}
	// Packet output is binary; keep stdout clean for the reader.
	if !packets {
		for _, line := range summary {
			fmt.Fprintln(stdout, line)
		}
	}

	if cfg.OutPath != "" {
		if err := writeVoxels(cfg.OutPath, w); err != nil {
			return err
		}
		log.Info(ctx, "voxels written", logging.String("path", cfg.OutPath), logging.Int("blocks", w.Len()))
	}
	if cfg.MetricsPath != "" {
		if err := metrics.WriteTextfile(cfg.MetricsPath); err != nil {
			return err
		}
	}
	return nil
}

// buildWorld assembles the ground chain: grid store, inline coords grid,
// heightmap, then the procedural generator when a seed is given.
func buildWorld(cfg Config, coords *feature.Coords, log logging.Logger) (*world.World, func(), error) {
	var (
		chain terrain.Chain
		opts  []world.Option
	)
	closeFn := func() {}

	if cfg.TerrainPath != "" {
		store, err := terrain.OpenStore(cfg.TerrainPath)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() {
			if err := store.Close(); err != nil {
				log.Warn(context.Background(), "close terrain store", logging.Err(err))
			}
		}
		chain = append(chain, store)
		opts = append(opts, world.WithSurface(store), world.WithWater(store))
	}
	if coords.TerrainGrid != nil {
		chain = append(chain, coords.TerrainGrid)
	}
	if cfg.HeightmapPath != "" {
		b := coords.Bounds()
		hm, err := terrain.LoadHeightmap(cfg.HeightmapPath, terrain.HeightmapOptions{
			OriginX: b.MinX,
			OriginZ: b.MinZ,
			Base:    cfg.HeightmapBase,
			Scale:   cfg.HeightmapScale,
		})
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		chain = append(chain, hm)
	}
	if len(chain) > 0 {
		opts = append(opts, world.WithGround(chain))
	}

	var gen *world.Generator
	if cfg.Seed != 0 {
		gen = world.NewGenerator(cfg.Seed)
	}
	return world.NewWorld(gen, opts...), closeFn, nil
}

func collect(ctx context.Context, cfg Config, coords *feature.Coords, c *feature.Collector, log logging.Logger) error {
	if cfg.FeaturesPath == "" {
		used := 0
		for _, e := range coords.Elements() {
			if c.Add(e) {
				used++
			}
		}
		log.Info(ctx, "features classified", logging.String("source", "coords"), logging.Int("used", used),
			logging.Int("ignored", c.Ignored()))
		return nil
	}

	s, err := feature.OpenStream(cfg.FeaturesPath)
	if err != nil {
		return err
	}
	defer s.Close()
	used, err := c.AddStream(s)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.FeaturesPath, err)
	}
	log.Info(ctx, "features classified", logging.String("source", cfg.FeaturesPath),
		logging.Int("read", s.Read()), logging.Int("used", used),
		logging.Int("ignored", c.Ignored()), logging.Int("malformed", s.Malformed()))
	return nil
}

type voxelRecord struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	Block string `json:"block"`
}

// writeVoxels writes every placed block, chunk by chunk, one JSON object
// per line.
func writeVoxels(path string, w *world.World) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, c := range w.Chunks() {
		for _, b := range c.Blocks {
			rec := voxelRecord{X: b.Pos.X, Y: b.Pos.Y, Z: b.Pos.Z, Block: string(b.Material)}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
