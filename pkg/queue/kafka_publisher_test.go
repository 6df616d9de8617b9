package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fakeProducer answers every Produce with the report returned by deliver.
type fakeProducer struct {
	events   chan kafka.Event
	logs     chan kafka.LogEvent
	produce  []error
	deliver  func(*kafka.Message) kafka.Event
	produced []*kafka.Message
	closed   bool
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{
		events: make(chan kafka.Event, 1),
		logs:   make(chan kafka.LogEvent, 1),
		deliver: func(m *kafka.Message) kafka.Event {
			return m
		},
	}
}

func (f *fakeProducer) Produce(msg *kafka.Message, delivery chan kafka.Event) error {
	if len(f.produce) > 0 {
		err := f.produce[0]
		f.produce = f.produce[1:]
		if err != nil {
			return err
		}
	}
	f.produced = append(f.produced, msg)
	if ev := f.deliver(msg); ev != nil {
		delivery <- ev
	}
	return nil
}

func (f *fakeProducer) Events() chan kafka.Event  { return f.events }
func (f *fakeProducer) Logs() chan kafka.LogEvent { return f.logs }
func (f *fakeProducer) Flush(int) int             { return 0 }
func (f *fakeProducer) Close()                    { f.closed = true }

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()

	topic := "runs"
	tests := []struct {
		name    string
		produce []error
		deliver func(*kafka.Message) kafka.Event
		wantErr string
	}{
		{
			name: "delivered",
		},
		{
			name: "delivery failure",
			deliver: func(m *kafka.Message) kafka.Event {
				out := *m
				out.TopicPartition.Error = errors.New("leader not available")
				return &out
			},
			wantErr: "delivery failed",
		},
		{
			name: "mismatched report",
			deliver: func(m *kafka.Message) kafka.Event {
				return &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic}, Value: []byte("other")}
			},
			wantErr: "does not match",
		},
		{
			name: "kafka error report",
			deliver: func(*kafka.Message) kafka.Event {
				return kafka.NewError(kafka.ErrMsgTimedOut, "timed out", false)
			},
			wantErr: "kafka error",
		},
		{
			name:    "unknown topic",
			produce: []error{kafka.NewError(kafka.ErrUnknownTopicOrPart, "unknown", false)},
			wantErr: "unknown topic or partition",
		},
		{
			name:    "non kafka error",
			produce: []error{errors.New("boom")},
			wantErr: "failed to produce",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newFakeProducer()
			p.produce = tt.produce
			if tt.deliver != nil {
				p.deliver = tt.deliver
			}
			q := newKafkaPublisher(t.Context(), p, false, zaptest.NewLogger(t).Sugar())
			defer q.Close(t.Context())

			err := q.Publish(t.Context(), Msg{
				Topic:   topic,
				Key:     []byte("run-1"),
				Value:   []byte(`{"type":"reduction.completed"}`),
				Headers: map[string]string{"content-type": "application/json"},
			})
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, p.produced, 1)
			require.Equal(t, []byte("run-1"), p.produced[0].Key)
			require.Equal(t, []kafka.Header{{Key: "content-type", Value: []byte("application/json")}}, p.produced[0].Headers)
		})
	}
}

func TestKafkaPublisher_Publish_ContextDone(t *testing.T) {
	t.Parallel()

	p := newFakeProducer()
	p.deliver = func(*kafka.Message) kafka.Event { return nil }
	q := newKafkaPublisher(t.Context(), p, false, zap.NewNop().Sugar())
	defer q.Close(t.Context())

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, Msg{Topic: "runs", Value: []byte("v")})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKafkaPublisher_QueueFullRetries(t *testing.T) {
	t.Parallel()

	p := newFakeProducer()
	p.produce = []error{kafka.NewError(kafka.ErrQueueFull, "queue full", false)}
	q := newKafkaPublisher(t.Context(), p, false, zap.NewNop().Sugar())
	defer q.Close(t.Context())

	require.NoError(t, q.Publish(t.Context(), Msg{Topic: "runs", Value: []byte("v")}))
	require.Len(t, p.produced, 1)
}

func TestKafkaPublisher_FatalEvent(t *testing.T) {
	t.Parallel()

	p := newFakeProducer()
	q := newKafkaPublisher(t.Context(), p, true, zap.NewNop().Sugar())

	p.events <- kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)

	select {
	case err := <-q.Errors():
		require.ErrorContains(t, err, "fatal kafka error")
	case <-time.After(time.Second):
		require.Fail(t, "expected a fatal error")
	}

	q.Close(t.Context())
	q.Close(t.Context())
	require.True(t, p.closed)
	_, open := <-q.Errors()
	require.False(t, open)
}
