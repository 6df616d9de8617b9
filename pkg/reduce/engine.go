package reduce

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ava-labs/readreducer/pkg/consensus"
	"github.com/ava-labs/readreducer/pkg/intervals"
	"github.com/ava-labs/readreducer/pkg/metrics"
	"github.com/ava-labs/readreducer/pkg/progress"
	"github.com/ava-labs/readreducer/pkg/reads"
)

// ErrClosed is returned by Process after Close.
var ErrClosed = errors.New("engine is closed")

// Config holds everything an Engine needs besides its collaborators.
type Config struct {
	Consensus consensus.Config
	Regions   []intervals.Region // empty means no interval clipping
	Filters   []reads.Filter     // nil means reads.DefaultFilters()
}

// Engine reduces one coordinate-sorted read stream.
type Engine struct {
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	tracker *progress.Tracker

	filters  []reads.Filter
	pre      *Preprocessor
	registry *consensus.Registry
	sink     Sink
	queue    releaseQueue

	started bool
	closed  bool
	seen    bool
	lastRef int
	lastPos int

	stats       Stats
	lastColumns consensus.ColumnStats
}

// New validates cfg and builds an engine writing to sink. m and tracker may be nil.
func New(
	cfg Config,
	groups []consensus.ReadGroup,
	sink Sink,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
	tracker *progress.Tracker,
) (*Engine, error) {
	if sink == nil {
		return nil, errors.New("invalid sink: must not be nil")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	registry, err := consensus.NewRegistry(cfg.Consensus, groups, log)
	if err != nil {
		return nil, err
	}
	pre, err := NewPreprocessor(cfg.Consensus.MinTailQuality, cfg.Regions, log)
	if err != nil {
		return nil, err
	}
	filters := cfg.Filters
	if filters == nil {
		filters = reads.DefaultFilters()
	}
	return &Engine{
		log:      log,
		metrics:  m,
		tracker:  tracker,
		filters:  filters,
		pre:      pre,
		registry: registry,
		sink:     sink,
	}, nil
}

// Start registers the reduced read groups with the sink. Process calls it on first use.
func (e *Engine) Start() error {
	if e.started {
		return nil
	}
	e.started = true
	groups := e.registry.ReducedReadGroups()
	if err := e.sink.AddReadGroups(groups); err != nil {
		e.metrics.IncError(metrics.ErrTypeSink)
		return fmt.Errorf("failed to register reduced read groups: %w", err)
	}
	e.log.Infow("registered reduced read groups", "count", len(groups))
	return nil
}

// Process consumes one input read and writes every output it makes final.
func (e *Engine) Process(r reads.Read) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.Start(); err != nil {
		return err
	}

	e.stats.TotalReads++
	for _, q := range r.Quals {
		e.stats.BaseQualities[q]++
	}
	e.metrics.RecordReadReceived(r.Quals)

	if name, rejected := reads.Rejected(e.filters, r); rejected {
		e.stats.filtered(name)
		e.metrics.RecordReadFiltered(name)
		return nil
	}

	if e.seen && reads.ComparePosition(r.RefID, r.Start, e.lastRef, e.lastPos) < 0 {
		e.metrics.IncError(metrics.ErrTypeOrdering)
		return fmt.Errorf("%w: read %q at %s:%d follows position %d:%d",
			reads.ErrOrderingViolation, r.Name, r.Contig, r.Start, e.lastRef, e.lastPos)
	}
	if e.seen && r.RefID != e.lastRef {
		e.log.Infow("reached contig", "contig", r.Contig, "reads", e.stats.TotalReads)
	}
	e.seen, e.lastRef, e.lastPos = true, r.RefID, r.Start
	e.tracker.Observe(r.RefID, r.Contig, r.Start)

	e.queue.add(e.registry.Advance(r.RefID, r.Start))

	n := e.pre.Normalize(r)
	if n.Empty() {
		e.stats.DroppedReads++
		e.metrics.IncReadsDropped()
	} else {
		out, err := e.registry.RouteAt(n, r.Start)
		if err != nil {
			if errors.Is(err, reads.ErrOrderingViolation) {
				e.metrics.IncError(metrics.ErrTypeOrdering)
			} else {
				e.metrics.IncError(metrics.ErrTypeConfiguration)
			}
			return err
		}
		e.queue.add(out)
	}

	refID, pos := r.RefID, r.Start
	if wr, wp, ok := e.registry.LowWatermark(); ok && reads.ComparePosition(wr, wp, refID, pos) < 0 {
		refID, pos = wr, wp
	}
	err := e.write(e.queue.releaseUpTo(refID, pos))
	e.observeWindows()
	return err
}

// Close flushes every window and writes the remaining reads. It is safe to call more
// than once; only the first call does any work.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.Start(); err != nil {
		return err
	}
	e.queue.add(e.registry.CloseAll())
	err := e.write(e.queue.drain())
	e.observeWindows()

	s := e.stats
	e.log.Infow("reduction complete",
		"totalReads", s.TotalReads,
		"filteredReads", s.FilteredReads,
		"droppedReads", s.DroppedReads,
		"compressedReads", s.EmittedReads,
		"compressionPercent", fmt.Sprintf("%.2f", s.CompressionPercent()),
		"consensusReads", s.ConsensusReads,
		"variableColumns", s.VariableColumns,
		"consensusColumns", s.ConsensusColumns,
	)
	if e.log.Desugar().Core().Enabled(zap.DebugLevel) {
		for _, row := range s.QualityHistogram() {
			e.log.Debug(row)
		}
	}
	return err
}

// Run feeds every read from src through the engine. Close always runs, including when
// ctx is cancelled or src fails.
func (e *Engine) Run(ctx context.Context, src Source) (err error) {
	defer func() {
		if cerr := e.Close(); err == nil {
			err = cerr
		}
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			e.metrics.IncError(metrics.ErrTypeSource)
			return fmt.Errorf("failed to read input: %w", err)
		}
		if err := e.Process(r); err != nil {
			return err
		}
	}
}

// Stats returns a copy of the traversal counters.
func (e *Engine) Stats() Stats {
	return e.stats.clone()
}

func (e *Engine) write(rs []reads.Read) error {
	for _, r := range rs {
		if err := e.sink.Write(r); err != nil {
			e.metrics.IncError(metrics.ErrTypeSink)
			return fmt.Errorf("failed to write read %q: %w", r.Name, err)
		}
		consensusRead := consensus.IsConsensus(r)
		e.stats.EmittedReads++
		if consensusRead {
			e.stats.ConsensusReads++
		} else {
			e.stats.OriginalReads++
		}
		e.metrics.RecordReadEmitted(consensusRead)
	}
	e.tracker.AddEmitted(len(rs))
	return nil
}

func (e *Engine) observeWindows() {
	cols := e.registry.Stats()
	e.metrics.AddColumnsClosed(cols.Variable-e.lastColumns.Variable, cols.Consensus-e.lastColumns.Consensus)
	e.lastColumns = cols
	e.stats.VariableColumns = int64(cols.Variable)
	e.stats.ConsensusColumns = int64(cols.Consensus)
	e.metrics.UpdateWindowMetrics(e.registry.OpenColumns(), e.queue.Len())
}
