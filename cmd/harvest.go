package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/clock"
	"github.com/alpentrace/harvester/internal/config"
	"github.com/alpentrace/harvester/internal/extractor"
	"github.com/alpentrace/harvester/internal/fetcher"
	"github.com/alpentrace/harvester/internal/harvest"
	"github.com/alpentrace/harvester/internal/id"
	"github.com/alpentrace/harvester/internal/listing"
	"github.com/alpentrace/harvester/internal/metrics"
	"github.com/alpentrace/harvester/internal/normalize"
	"github.com/alpentrace/harvester/internal/sink"
	"github.com/alpentrace/harvester/internal/store"
)

// newHarvestCmd creates the 'harvest' subcommand. It runs one complete
// scrape of the configured source: discovery, the worker pool,
// normalization and persistence.
func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Runs one harvest of the configured source",
		Long: `Discovers the source's listing URLs, scrapes them concurrently with
the configured number of workers, normalizes the records and persists
them. Individual page failures never abort the run.`,

		RunE: runHarvestCommand,
	}

	// Bound into config keys by config.Load; unset flags defer to the
	// config file and HARVESTER_* environment.
	cmd.Flags().String("source", "", "source site to harvest (see 'sources')")
	cmd.Flags().Int("workers", 3, "number of concurrent workers")
	cmd.Flags().String("sink", "file", "where records go: file or store")
	cmd.Flags().Bool("append", true, "append to the existing collection instead of replacing it")

	return cmd
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(ctx)
	if err != nil {
		return err
	}
	logger, err := resolveLogger(ctx)
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("run_id", id.NewRunID()))

	if cfg.Metrics.Enabled {
		metrics.Init()
		srv := metrics.NewServer(cfg.Metrics.Addr, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	ext, err := extractor.New(cfg.Source)
	if err != nil {
		return err
	}

	fetch, closeFetcher, err := buildFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	delayMin, delayMax := cfg.DelayBounds()
	orch := harvest.New(ext, fetch, harvest.Config{
		MaxPages: cfg.Harvest.MaxPages,
		DelayMin: delayMin,
		DelayMax: delayMax,
	}, clock.System{}, logger)

	raws := orch.Run(ctx, cfg.Workers)

	records := normalize.New(logger).NormalizeAll(raws)

	persistRun(ctx, cfg, ext.Source(), records, logger)
	return nil
}

// persistRun writes the run's records. The scrape already succeeded at
// this point, so persistence failures of any kind, sink construction
// included, are reported but never fail the run.
func persistRun(ctx context.Context, cfg config.Config, collection string, records []listing.Record, logger *zap.Logger) {
	out, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("sink unavailable, run results were not persisted", zap.Error(err))
		return
	}
	defer closeSink()

	mode := sink.ModeReplace
	if cfg.Sink.Append {
		mode = sink.ModeAppend
	}
	if err := out.Persist(ctx, collection, records, mode); err != nil {
		logger.Error("persistence failed", zap.Error(err))
	}
}

func buildFetcher(cfg config.Config, logger *zap.Logger) (fetcher.Fetcher, func(), error) {
	if cfg.Harvest.Headless {
		f := fetcher.NewHeadlessFetcher(fetcher.HeadlessConfig{
			UserAgent:         cfg.HTTP.UserAgent,
			NavigationTimeout: cfg.HTTPTimeout(),
		}, logger)
		return f, f.Close, nil
	}
	f := fetcher.NewCollyFetcher(fetcher.CollyConfig{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	}, logger)
	return f, func() {}, nil
}

func buildSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (sink.Sink, func(), error) {
	switch cfg.Sink.Kind {
	case "file":
		s, err := sink.NewFileSink(cfg.Sink.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init file sink: %w", err)
		}
		return s, func() {}, nil
	case "store":
		docs, err := store.New(ctx, store.Config{DSN: cfg.Store.DSN})
		if err != nil {
			return nil, nil, fmt.Errorf("init document store: %w", err)
		}
		return sink.NewBoundedWriter(docs, cfg.Store.QuotaBytes, logger), docs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink.kind %q", cfg.Sink.Kind)
	}
}
