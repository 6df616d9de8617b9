package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "readreducer"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	Reads   = "reads"
	Columns = "columns"
	Report  = "report"

	// Emitted read kinds
	KindConsensus = "consensus"
	KindOriginal  = "original"

	// Column classes
	ClassVariable  = "variable"
	ClassConsensus = "consensus"
)

// Labels holds constant labels applied to all metrics.
// These are useful for distinguishing metrics from multiple reducer runs.
type Labels struct {
	Sample        string // Sample being reduced (e.g., "NA12878")
	Environment   string // Deployment environment (e.g., "production", "staging", "development")
	Region        string // Cloud region (e.g., "us-east-1", "eu-west-1")
	CloudProvider string // Cloud provider (e.g., "aws", "oci", "gcp")
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Sample != "" {
		labels["sample"] = l.Sample
	}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	if l.Region != "" {
		labels["region"] = l.Region
	}
	if l.CloudProvider != "" {
		labels["cloud_provider"] = l.CloudProvider
	}
	return labels
}

type Metrics struct {
	// Read flow
	readsReceived prometheus.Counter
	readsFiltered *prometheus.CounterVec // by filter
	readsDropped  prometheus.Counter
	readsEmitted  *prometheus.CounterVec // by kind
	errors        *prometheus.CounterVec

	// Window state
	columnsClosed  *prometheus.CounterVec // by class
	openColumns    prometheus.Gauge
	pendingOutputs prometheus.Gauge

	// Input quality
	baseQuality prometheus.Histogram

	// Traversal position
	refID    prometheus.Gauge
	position prometheus.Gauge

	// Run report persistence and publishing
	reportWrites        *prometheus.CounterVec // by sink, status
	reportWriteDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
// Returns an error if any metric registration fails.
// For metrics with constant labels (e.g., sample), use NewWithLabels instead.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		readsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Reads,
			Name:      "received_total",
			Help:      "Total reads read from the input",
		}),
		readsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Reads,
			Name:      "filtered_total",
			Help:      "Total reads rejected by the filter chain by filter",
		}, []string{"filter"}),
		readsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Reads,
			Name:      "dropped_total",
			Help:      "Total reads left with no bases after clipping",
		}),
		readsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Reads,
			Name:      "emitted_total",
			Help:      "Total reads written to the output by kind",
		}, []string{"kind"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total errors by type",
		}, []string{"type"}),
		columnsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Columns,
			Name:      "closed_total",
			Help:      "Total columns classified by class",
		}, []string{"class"}),
		openColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Columns,
			Name:      "open",
			Help:      "Columns currently held across all read groups",
		}),
		pendingOutputs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Reads,
			Name:      "pending",
			Help:      "Output reads waiting for cross read group ordering",
		}),
		baseQuality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Reads,
			Name:      "base_quality",
			Help:      "Base qualities of input reads",
			Buckets:   prometheus.LinearBuckets(0, 5, 13),
		}),
		refID: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "ref_id",
			Help:      "Reference index of the last read processed",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "position",
			Help:      "Start position of the last read processed",
		}),
		reportWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Report,
			Name:      "writes_total",
			Help:      "Total run report writes by sink and status",
		}, []string{"sink", "status"}),
		reportWriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Report,
			Name:      "write_duration_seconds",
			Help:      "Run report write duration in seconds by sink",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"sink"}),
	}

	err := errors.Join(
		reg.Register(m.readsReceived),
		reg.Register(m.readsFiltered),
		reg.Register(m.readsDropped),
		reg.Register(m.readsEmitted),
		reg.Register(m.errors),
		reg.Register(m.columnsClosed),
		reg.Register(m.openColumns),
		reg.Register(m.pendingOutputs),
		reg.Register(m.baseQuality),
		reg.Register(m.refID),
		reg.Register(m.position),
		reg.Register(m.reportWrites),
		reg.Register(m.reportWriteDuration),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Error type constants.
const (
	ErrTypeOrdering      = "ordering_violation"
	ErrTypeConfiguration = "configuration"
	ErrTypeSink          = "sink"
	ErrTypeSource        = "source"
)

// IncError increments the error counter for the given error type.
func (m *Metrics) IncError(errType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(errType).Inc()
}

// RecordReadReceived records one input read and its base qualities.
func (m *Metrics) RecordReadReceived(quals []byte) {
	if m == nil {
		return
	}
	m.readsReceived.Inc()
	for _, q := range quals {
		m.baseQuality.Observe(float64(q))
	}
}

// RecordReadFiltered records a read rejected by the named filter.
func (m *Metrics) RecordReadFiltered(filter string) {
	if m == nil {
		return
	}
	m.readsFiltered.WithLabelValues(filter).Inc()
}

// IncReadsDropped records a read clipped down to nothing.
func (m *Metrics) IncReadsDropped() {
	if m == nil {
		return
	}
	m.readsDropped.Inc()
}

// RecordReadEmitted records a read written to the output.
func (m *Metrics) RecordReadEmitted(consensus bool) {
	if m == nil {
		return
	}
	kind := KindOriginal
	if consensus {
		kind = KindConsensus
	}
	m.readsEmitted.WithLabelValues(kind).Inc()
}

// AddColumnsClosed records newly classified columns.
func (m *Metrics) AddColumnsClosed(variable, consensus int) {
	if m == nil {
		return
	}
	if variable > 0 {
		m.columnsClosed.WithLabelValues(ClassVariable).Add(float64(variable))
	}
	if consensus > 0 {
		m.columnsClosed.WithLabelValues(ClassConsensus).Add(float64(consensus))
	}
}

// UpdateWindowMetrics updates the in-memory state gauges.
func (m *Metrics) UpdateWindowMetrics(openColumns, pendingOutputs int) {
	if m == nil {
		return
	}
	m.openColumns.Set(float64(openColumns))
	m.pendingOutputs.Set(float64(pendingOutputs))
}

// UpdatePosition records the traversal position.
func (m *Metrics) UpdatePosition(refID, pos int) {
	if m == nil {
		return
	}
	m.refID.Set(float64(refID))
	m.position.Set(float64(pos))
}

// RecordReportWrite records a run report write to sink.
// Pass nil error for successful writes, non-nil for failures.
func (m *Metrics) RecordReportWrite(sink string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.reportWrites.WithLabelValues(sink, status).Inc()
	m.reportWriteDuration.WithLabelValues(sink).Observe(durationSeconds)
}
