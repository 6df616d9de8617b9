package queue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// producer is the subset of *kafka.Producer the publisher depends on.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Logs() chan kafka.LogEvent
	Flush(timeoutMs int) int
	Close()
}

var _ producer = (*kafka.Producer)(nil)

const (
	flushTimeoutMs = 10000
	queueFullDelay = time.Second
)

// KafkaPublisher is a synchronous Kafka Publisher. Publish waits for the delivery report of
// its own message; a background goroutine drains the producer's event channel and reports
// fatal client errors on Errors.
type KafkaPublisher struct {
	producer   producer
	log        *zap.SugaredLogger
	errCh      chan error
	eventsDone chan struct{}
	logsDone   chan struct{}
	closedCh   chan struct{}
	once       sync.Once
}

// NewKafkaPublisher creates a producer from conf. ctx bounds the background goroutines.
func NewKafkaPublisher(ctx context.Context, conf *kafka.ConfigMap, log *zap.SugaredLogger) (*KafkaPublisher, error) {
	logs, err := conf.Get("go.logs.channel.enable", false)
	if err != nil {
		return nil, fmt.Errorf("failed to get go.logs.channel.enable: %w", err)
	}
	p, err := kafka.NewProducer(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newKafkaPublisher(ctx, p, logs.(bool), log), nil
}

func newKafkaPublisher(ctx context.Context, p producer, logs bool, log *zap.SugaredLogger) *KafkaPublisher {
	q := &KafkaPublisher{
		producer:   p,
		log:        log,
		errCh:      make(chan error, 1),
		eventsDone: make(chan struct{}),
		logsDone:   make(chan struct{}),
		closedCh:   make(chan struct{}),
	}
	if logs {
		go q.forwardLogs(ctx)
	} else {
		close(q.logsDone)
	}
	go q.monitorEvents(ctx)
	return q
}

// Publish produces msg and waits for its delivery report. If ctx is done first ctx.Err()
// is returned, though the message may still be delivered later.
func (q *KafkaPublisher) Publish(ctx context.Context, msg Msg) error {
	km := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &msg.Topic, Partition: kafka.PartitionAny},
		Key:            msg.Key,
		Value:          msg.Value,
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	// Buffered so a late report after ctx is done does not block librdkafka.
	delivery := make(chan kafka.Event, 1)
	if err := q.produce(ctx, km, delivery); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		return q.delivered(km, ev)
	}
}

// Close stops the background goroutines and flushes the producer. It is safe to call
// more than once.
func (q *KafkaPublisher) Close(ctx context.Context) {
	q.once.Do(func() {
		q.log.Info("closing kafka publisher")
		defer close(q.errCh)

		close(q.closedCh)
		<-q.eventsDone
		<-q.logsDone

		for q.producer.Flush(flushTimeoutMs) > 0 {
			q.log.Warn("producer queue not flushed, retrying")
			if ctx.Err() != nil {
				q.log.Warnw("abandoning producer flush", "error", ctx.Err())
				break
			}
		}
		q.producer.Close()
		q.log.Info("kafka publisher closed")
	})
}

// Errors yields at most one fatal error and is closed by Close. The publisher is unusable
// after an error is received.
func (q *KafkaPublisher) Errors() <-chan error {
	return q.errCh
}

func (q *KafkaPublisher) produce(ctx context.Context, msg *kafka.Message, delivery chan kafka.Event) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := q.producer.Produce(msg, delivery)
		if err == nil {
			return nil
		}

		var kerr kafka.Error
		if !errors.As(err, &kerr) {
			return fmt.Errorf("failed to produce: %w", err)
		}
		switch kerr.Code() {
		case kafka.ErrQueueFull:
			q.log.Warn("producer queue full, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(queueFullDelay):
			}
		case kafka.ErrBrokerNotAvailable:
			return fmt.Errorf("broker not available: %w", err)
		case kafka.ErrInvalidMsgSize:
			return fmt.Errorf("invalid message size: %w", err)
		case kafka.ErrUnknownTopicOrPart:
			return fmt.Errorf("unknown topic or partition: %w", err)
		case kafka.ErrAuthentication:
			return fmt.Errorf("authentication error: %w", err)
		default:
			return fmt.Errorf("failed to produce: %w", err)
		}
	}
}

func (q *KafkaPublisher) delivered(msg *kafka.Message, ev kafka.Event) error {
	switch e := ev.(type) {
	case *kafka.Message:
		if err := e.TopicPartition.Error; err != nil {
			return fmt.Errorf("delivery failed: %w", err)
		}
		if !bytes.Equal(e.Value, msg.Value) {
			return errors.New("delivery report does not match the published message")
		}
		q.log.Debugw("message delivered",
			"topic", *msg.TopicPartition.Topic,
			"partition", e.TopicPartition.Partition,
			"offset", e.TopicPartition.Offset,
		)
		return nil
	case kafka.Error:
		return fmt.Errorf("kafka error: code=%d fatal=%t: %w", e.Code(), e.IsFatal(), e)
	default:
		return fmt.Errorf("unexpected delivery event: %T", ev)
	}
}

func (q *KafkaPublisher) fail(err error) {
	select {
	case q.errCh <- err:
	default:
		q.log.Warnw("dropping publisher error, one is already pending", "error", err)
	}
}

func (q *KafkaPublisher) forwardLogs(ctx context.Context) {
	defer close(q.logsDone)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closedCh:
			return
		case ev, ok := <-q.producer.Logs():
			if !ok {
				return
			}
			q.log.Debugw("librdkafka", "level", ev.Level, "tag", ev.Tag, "message", ev.Message)
		}
	}
}

func (q *KafkaPublisher) monitorEvents(ctx context.Context) {
	defer close(q.eventsDone)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closedCh:
			return
		case ev, ok := <-q.producer.Events():
			if !ok {
				q.fail(errors.New("kafka producer event channel closed"))
				return
			}
			switch e := ev.(type) {
			case kafka.Error:
				if e.IsFatal() || e.Code() == kafka.ErrAllBrokersDown {
					q.fail(fmt.Errorf("fatal kafka error %#x: %w", e.Code(), e))
					return
				}
				q.log.Warnw("ignoring kafka error", "code", e.Code(), "error", e)
			case *kafka.Message:
				// Delivery reports go to the per-message channel; one here was produced elsewhere.
				q.log.Warnw("unexpected delivery report on event channel", "partition", e.TopicPartition)
			default:
				q.log.Debugw("kafka event", "event", e.String())
			}
		}
	}
}
