package queue

import "context"

// Msg is one queue message. Key selects the partition when the backend supports it.
type Msg struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type Publisher interface {
	// Publish blocks until the message is acknowledged or ctx is done.
	Publish(ctx context.Context, msg Msg) error

	// Close flushes in-flight messages and releases resources. Canceling ctx may drop
	// messages still in flight.
	Close(ctx context.Context)
}
