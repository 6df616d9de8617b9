package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/readreducer/pkg/data/clickhouse/report"
	"github.com/ava-labs/readreducer/pkg/metrics"
	"github.com/ava-labs/readreducer/pkg/queue"
	"github.com/ava-labs/readreducer/pkg/queue/message"
)

const (
	sinkClickHouse = "clickhouse"
	sinkKafka      = "kafka"
)

// reportSink delivers a finished run's report to one destination.
type reportSink interface {
	Name() string
	Deliver(ctx context.Context, rep *report.Report) error
}

type repositorySink struct {
	repo report.Repository
}

func (s repositorySink) Name() string { return sinkClickHouse }

func (s repositorySink) Deliver(ctx context.Context, rep *report.Report) error {
	if err := s.repo.Initialize(ctx); err != nil {
		return err
	}
	return s.repo.Write(ctx, rep)
}

type publisherSink struct {
	pub   queue.Publisher
	topic string
}

func (s publisherSink) Name() string { return sinkKafka }

func (s publisherSink) Deliver(ctx context.Context, rep *report.Report) error {
	msg, err := reportMessage(s.topic, rep, time.Now())
	if err != nil {
		return err
	}
	return s.pub.Publish(ctx, msg)
}

// reportMessage wraps rep in a reduction.completed envelope keyed by run id.
func reportMessage(topic string, rep *report.Report, at time.Time) (queue.Msg, error) {
	env, err := message.New(message.TypeReductionCompleted, rep.RunID, at, rep)
	if err != nil {
		return queue.Msg{}, err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return queue.Msg{}, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return queue.Msg{
		Topic:   topic,
		Key:     []byte(rep.RunID),
		Value:   value,
		Headers: map[string]string{"type": message.TypeReductionCompleted},
	}, nil
}

// deliverReport sends rep to every sink. A failing sink does not stop the others; all
// failures are returned joined.
func deliverReport(
	ctx context.Context,
	rep *report.Report,
	sinks []reportSink,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) error {
	var errs []error
	for _, s := range sinks {
		start := time.Now()
		err := s.Deliver(ctx, rep)
		m.RecordReportWrite(s.Name(), err, time.Since(start).Seconds())
		if err != nil {
			m.IncError(metrics.ErrTypeSink)
			log.Errorw("failed to deliver run report", "sink", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		log.Infow("run report delivered", "sink", s.Name(), "runID", rep.RunID)
	}
	return errors.Join(errs...)
}
