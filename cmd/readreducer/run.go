package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/readreducer/pkg/clickhouse"
	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/data/clickhouse/report"
	"github.com/ava-labs/readreducer/pkg/intervals"
	"github.com/ava-labs/readreducer/pkg/metrics"
	"github.com/ava-labs/readreducer/pkg/progress"
	"github.com/ava-labs/readreducer/pkg/queue"
	"github.com/ava-labs/readreducer/pkg/reads"
	"github.com/ava-labs/readreducer/pkg/reduce"
	"github.com/ava-labs/readreducer/pkg/samio"
	"github.com/ava-labs/readreducer/pkg/utils"
)

func run(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	startedAt := time.Now()
	runID := utils.NewRunID(cfg.Input, startedAt)
	sugar = sugar.With("runID", runID)

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"input", cfg.Input,
		"output", cfg.Output,
		"intervals", cfg.Intervals,
		"contextSize", cfg.Consensus.ContextSize,
		"depthCeiling", cfg.Consensus.AverageDepthAtVariableSites,
		"minMappingQuality", cfg.Consensus.MinMappingQuality,
		"minTailQuality", cfg.Consensus.MinTailQuality,
		"minAltProportion", cfg.Consensus.MinAltProportion,
		"minBaseQual", cfg.Consensus.MinBaseQual,
		"maxConsensusQual", cfg.Consensus.MaxConsensusQual,
		"keepDuplicates", cfg.KeepDuplicates,
		"progressInterval", cfg.Progress.Interval,
		"reportClickhouse", cfg.ClickHouseEnabled,
		"reportKafka", cfg.KafkaEnabled,
		"metricsHost", cfg.MetricsHost,
		"metricsPort", cfg.MetricsPort,
	)

	src, err := samio.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	groups := src.ReadGroups()
	var regions []intervals.Region
	if cfg.Intervals != "" {
		regions, err = intervals.Load(cfg.Intervals, src.Contigs())
		if err != nil {
			return fmt.Errorf("failed to load intervals: %w", err)
		}
		sugar.Infow("intervals loaded", "path", cfg.Intervals, "regions", len(regions))
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.NewWithLabels(registry, metrics.Labels{
		Sample:        sampleLabel(cfg.Sample, groups),
		Environment:   cfg.Environment,
		Region:        cfg.Region,
		CloudProvider: cfg.CloudProvider,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	tracker := progress.NewTracker()

	var metricsServer *metrics.Server
	var metricsErrCh <-chan error
	if cfg.MetricsPort > 0 {
		metricsServer = metrics.NewServer(cfg.MetricsAddr(), registry,
			metrics.WithStatus(func() any { return tracker.Snapshot() }))
		metricsErrCh = metricsServer.Start()
		sugar.Infof("metrics server listening on http://%s/metrics", cfg.MetricsAddr())
	}

	sink, err := samio.Create(cfg.Output, src.Header(), cfg.BGZFWorkers)
	if err != nil {
		return err
	}

	engine, err := reduce.New(reduce.Config{
		Consensus: cfg.Consensus,
		Regions:   regions,
		Filters:   buildFilters(cfg.KeepDuplicates),
	}, groups, sink, sugar, m, tracker)
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("failed to create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	// Cancelled once the traversal ends so the helpers below return.
	helpersCtx, stopHelpers := context.WithCancel(gctx)
	defer stopHelpers()

	g.Go(func() error {
		defer stopHelpers()
		if err := engine.Run(gctx, src); err != nil {
			return fmt.Errorf("reduction failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		reporter := progress.Reporters{progress.NewLogReporter(sugar), progress.NewMetricsReporter(m)}
		if err := progress.Start(helpersCtx, tracker, reporter, cfg.Progress); err != nil {
			return fmt.Errorf("progress reporting failed: %w", err)
		}
		return nil
	})

	if metricsErrCh != nil {
		g.Go(func() error {
			select {
			case <-helpersCtx.Done():
				return nil
			case err := <-metricsErrCh:
				if err != nil {
					m.IncError(metrics.ErrTypeConfiguration)
					return fmt.Errorf("metrics server error: %w", err)
				}
				return nil
			}
		})
	}

	err = g.Wait()
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close output: %w", closeErr)
	}

	if err == nil {
		rep := report.FromStats(runID, cfg.Input, cfg.Output, engine.Stats(), time.Now())
		err = sendReport(context.Background(), cfg, rep, sugar, m)
	}

	if metricsServer != nil {
		sugar.Info("shutting down metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			sugar.Warnw("metrics server shutdown error", "error", shutdownErr)
		}
	}

	sugar.Infow("shutdown complete", "elapsed", time.Since(startedAt))
	return err
}

// sendReport opens the enabled report sinks, delivers rep and closes them again.
func sendReport(ctx context.Context, cfg *Config, rep *report.Report, log *zap.SugaredLogger, m *metrics.Metrics) error {
	var sinks []reportSink

	if cfg.ClickHouseEnabled {
		client, err := clickhouse.New(cfg.ClickHouse, log)
		if err != nil {
			m.IncError(metrics.ErrTypeSink)
			return fmt.Errorf("failed to create ClickHouse client: %w", err)
		}
		defer client.Close()
		repo := report.NewRepository(client, cfg.ClickHouse.Cluster, cfg.ClickHouse.Database, cfg.ClickHouse.ReportsTable)
		sinks = append(sinks, repositorySink{repo: repo})
	}

	if cfg.KafkaEnabled {
		pub, err := queue.NewKafkaPublisher(ctx, cfg.Kafka.ConfigMap(), log)
		if err != nil {
			m.IncError(metrics.ErrTypeSink)
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.flushTimeout())
			defer cancel()
			pub.Close(closeCtx)
		}()
		sinks = append(sinks, publisherSink{pub: pub, topic: cfg.Kafka.Topic})
	}

	if len(sinks) == 0 {
		return nil
	}
	return deliverReport(ctx, rep, sinks, log, m)
}

func buildFilters(keepDuplicates bool) []reads.Filter {
	if !keepDuplicates {
		return reads.DefaultFilters()
	}
	return []reads.Filter{reads.UnmappedFilter, reads.SecondaryFilter, reads.QCFailFilter}
}

// sampleLabel prefers the explicit sample, then the first read group declaring one.
func sampleLabel(sample string, groups []consensus.ReadGroup) string {
	if sample != "" {
		return sample
	}
	for _, g := range groups {
		if g.Sample != "" {
			return g.Sample
		}
	}
	return ""
}
