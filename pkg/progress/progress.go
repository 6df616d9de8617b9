package progress

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/readreducer/pkg/metrics"
)

// Reporter publishes a traversal snapshot somewhere.
type Reporter interface {
	Report(ctx context.Context, s Snapshot) error
}

// Start periodically reports the tracker position.
//
// Returns nil on context cancellation (graceful shutdown), or an error if a report
// fails after all retries.
func Start(ctx context.Context, tracker *Tracker, reporter Reporter, cfg Config) error {
	t := time.NewTicker(cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-t.C:
			snap := tracker.Snapshot()

			var lastErr error
			for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
				if ctx.Err() != nil {
					return nil
				}

				reportCtx, cancel := context.WithTimeout(ctx, cfg.ReportTimeout)
				lastErr = reporter.Report(reportCtx, snap)
				cancel()

				if lastErr == nil {
					break
				}
				if ctx.Err() != nil {
					return nil
				}

				// Don't sleep after the last attempt
				if attempt < cfg.MaxRetries {
					select {
					case <-time.After(cfg.RetryBackoff):
					case <-ctx.Done():
						return nil
					}
				}
			}

			if lastErr != nil {
				return fmt.Errorf("failed to report progress (%s:%d) after %d retries: %w",
					snap.Contig, snap.Position, cfg.MaxRetries+1, lastErr)
			}
		}
	}
}

// LogReporter writes snapshots to a logger.
type LogReporter struct {
	log *zap.SugaredLogger
}

func NewLogReporter(log *zap.SugaredLogger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(_ context.Context, s Snapshot) error {
	r.log.Infow("reduction progress",
		"reads", s.Reads,
		"emitted", s.Emitted,
		"contig", s.Contig,
		"position", s.Position,
	)
	return nil
}

// MetricsReporter mirrors snapshots into the position gauges.
type MetricsReporter struct {
	m *metrics.Metrics
}

func NewMetricsReporter(m *metrics.Metrics) *MetricsReporter {
	return &MetricsReporter{m: m}
}

func (r *MetricsReporter) Report(_ context.Context, s Snapshot) error {
	r.m.UpdatePosition(s.RefID, s.Position)
	return nil
}

// Reporters fans a snapshot out to several reporters, stopping at the first error.
type Reporters []Reporter

func (rs Reporters) Report(ctx context.Context, s Snapshot) error {
	for _, r := range rs {
		if err := r.Report(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
