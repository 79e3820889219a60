// Command linecraft rasterizes pipelines, power lines and aerialways from a
// map export into block voxels that follow the terrain.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/StoreStation/linecraft/pkg/chat"
	"github.com/StoreStation/linecraft/pkg/feature"
	"github.com/StoreStation/linecraft/pkg/logging"
	"github.com/StoreStation/linecraft/pkg/observability"
)

// Config is everything the command line controls.
type Config struct {
	CoordsPath     string
	FeaturesPath   string
	TerrainPath    string
	HeightmapPath  string
	HeightmapBase  int
	HeightmapScale float64
	Seed           int64
	Classes        []feature.Class
	Workers        int
	MetricsPath    string
	OutPath        string
	Chat           string
}

func parseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("linecraft", flag.ContinueOnError)
	coords := fs.String("coords", "", "coords.json of the export (required)")
	features := fs.String("features", "", "NDJSON element stream; defaults to the elements inside coords.json")
	terrainMeta := fs.String("terrain", "", "grid.meta.json of a terrain grid store")
	heightmap := fs.String("heightmap", "", "grayscale PNG, TIFF or BMP heightmap anchored at the bbox corner")
	hmBase := fs.Int("heightmap-base", 0, "ground height of a black heightmap pixel")
	hmScale := fs.Float64("heightmap-scale", 255, "height added by a white heightmap pixel")
	seed := fs.Int64("seed", 0, "procedural terrain seed for columns no source covers (0 = none)")
	classes := fs.String("classes", "", "comma separated classes to build: pipelines, power, aerialway (default all)")
	workers := fs.Int("workers", 1, "networks rasterized at once")
	metrics := fs.String("metrics", "", "write a Prometheus textfile snapshot here")
	out := fs.String("out", "", "write placed voxels as NDJSON here")
	chatFormat := fs.String("chat", "", "print chat progress messages to stdout: json or packet")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *coords == "" {
		return Config{}, errors.New("-coords is required")
	}
	if *workers < 1 {
		return Config{}, fmt.Errorf("invalid -workers %d", *workers)
	}
	cls, err := feature.ParseClasses(*classes)
	if err != nil {
		return Config{}, err
	}
	if *chatFormat != "" {
		if _, err := chat.ParseFormat(*chatFormat); err != nil {
			return Config{}, err
		}
	}
	return Config{
		CoordsPath:     *coords,
		FeaturesPath:   *features,
		TerrainPath:    *terrainMeta,
		HeightmapPath:  *heightmap,
		HeightmapBase:  *hmBase,
		HeightmapScale: *hmScale,
		Seed:           *seed,
		Classes:        cls,
		Workers:        *workers,
		MetricsPath:    *metrics,
		OutPath:        *out,
		Chat:           *chatFormat,
	}, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, _ = logging.EnsureRunID(ctx)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing setup failed", logging.Err(err))
		os.Exit(1)
	}

	err = run(ctx, cfg, log, os.Stdout)
	observability.ShutdownWithTimeout(context.Background(), shutdown, log)
	if err != nil {
		log.Error(ctx, "linecraft failed", logging.Err(err))
		os.Exit(1)
	}
}
